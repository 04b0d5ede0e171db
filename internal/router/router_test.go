package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/venue-booking/internal/config"
	"github.com/iliyamo/venue-booking/internal/database/dbtest"
	"github.com/iliyamo/venue-booking/internal/logging"
	"github.com/iliyamo/venue-booking/internal/queue"
	"github.com/iliyamo/venue-booking/internal/schedule"
	"github.com/iliyamo/venue-booking/internal/storage"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []queue.RosterUpdatedEvent
}

func (p *capturePublisher) PublishRosterUpdated(_ context.Context, ev queue.RosterUpdatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

type testApp struct {
	t   *testing.T
	e   *echo.Echo
	fs  afero.Fs
	pub *capturePublisher
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:       "test-secret",
		AccessTTLMin:    15,
		RefreshTTLDays:  1,
		BcryptCost:      4,
		UploadURLPrefix: "/uploads",
		UploadMaxBytes:  1 << 20,
		OrphanGrace:     time.Hour,
	}
}

func newApp(t *testing.T, cfg config.Config) *testApp {
	t.Helper()
	return newAppWithRedis(t, cfg, nil)
}

func newAppWithRedis(t *testing.T, cfg config.Config, rdb *redis.Client) *testApp {
	t.Helper()
	fs := afero.NewMemMapFs()
	pub := &capturePublisher{}
	srv := New(cfg, logging.Discard(), dbtest.New(t), rdb, storage.New(fs, cfg.UploadURLPrefix), pub)
	return &testApp{t: t, e: srv.Echo, fs: fs, pub: pub}
}

func (a *testApp) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(a.t, err)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) upload(path, field, filename string, content []byte) *httptest.ResponseRecorder {
	a.t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(a.t, err)
		_, err = part.Write(content)
		require.NoError(a.t, err)
	} else {
		require.NoError(a.t, w.WriteField("note", "no file"))
	}
	require.NoError(a.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type idResp struct {
	ID int64 `json:"id"`
}

type errResp struct {
	Error string `json:"error"`
}

func (a *testApp) createArtist(name string) int64 {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/artists", map[string]any{"name": name, "type": "DJ"}, "")
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[idResp](a.t, rec).ID
}

func (a *testApp) createEvent(title, start string) int64 {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/events", map[string]any{"title": title, "start_": start}, "")
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[idResp](a.t, rec).ID
}

func TestLaunchNightRoster(t *testing.T) {
	app := newApp(t, testConfig())
	zed := app.createArtist("Zed")
	amy := app.createArtist("Amy")

	rec := app.do(http.MethodPost, "/api/events", map[string]any{"title": "Launch Night", "start_": "2025-06-01T22:00:00Z"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[struct {
		ID       int64    `json:"id"`
		Category string   `json:"category"`
		Start    string   `json:"start_"`
		Warnings []string `json:"warnings"`
	}](t, rec)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Concert", created.Category)
	assert.Equal(t, "2025-06-01T22:00:00Z", created.Start)
	assert.Empty(t, created.Warnings)
	path := fmt.Sprintf("/api/events/%d/artists", created.ID)

	rec = app.do(http.MethodPost, path, `{"artist_ids": []}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Artist bookings updated successfully","artist_count":0}`, rec.Body.String())
	rec = app.do(http.MethodGet, path, nil, "")
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = app.do(http.MethodPost, path, map[string]any{"artist_ids": []int64{zed, amy}}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[struct {
		Count int `json:"artist_count"`
	}](t, rec).Count)

	rec = app.do(http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	booked := decode[[]struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}](t, rec)
	require.Len(t, booked, 2)
	assert.Equal(t, "Amy", booked[0].Name)
	assert.Equal(t, amy, booked[0].ID)
	assert.Equal(t, "Zed", booked[1].Name)

	rec = app.do(http.MethodGet, fmt.Sprintf("/api/artists/%d/events", amy), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	ae := decode[struct {
		Artist struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"artist"`
		Events []idResp `json:"events"`
	}](t, rec)
	assert.Equal(t, "Amy", ae.Artist.Name)
	require.Len(t, ae.Events, 1)
	assert.Equal(t, created.ID, ae.Events[0].ID)

	rec = app.do(http.MethodGet, "/api/artists", nil, "")
	artists := decode[[]struct {
		Name       string `json:"name"`
		EventCount int64  `json:"event_count"`
	}](t, rec)
	require.Len(t, artists, 2)
	assert.Equal(t, int64(1), artists[0].EventCount)
}

func TestRosterRejectsBadInputWithoutChanges(t *testing.T) {
	app := newApp(t, testConfig())
	amy := app.createArtist("Amy")
	id := app.createEvent("Launch Night", "2025-06-01T22:00:00Z")
	path := fmt.Sprintf("/api/events/%d/artists", id)

	rec := app.do(http.MethodPost, path, map[string]any{"artist_ids": []int64{amy}}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	cases := []struct {
		body string
		msg  string
	}{
		{`{"artist_ids": [1, "x"]}`, "Invalid artist ID: x"},
		{`{"artist_ids": [2.5]}`, "Invalid artist ID: 2.5"},
		{fmt.Sprintf(`{"artist_ids": ["%d"]}`, amy), fmt.Sprintf("Invalid artist ID: %d", amy)},
		{`{"artist_ids": [9223372036854775808]}`, "Invalid artist ID: 9223372036854775808"},
		{`{"artist_ids": "1"}`, "Invalid artist_ids provided - must be an array"},
		{`{}`, "Invalid artist_ids provided - must be an array"},
		{`{"artist_ids": [999]}`, "Unknown artist ID: 999"},
	}
	for _, tc := range cases {
		rec := app.do(http.MethodPost, path, tc.body, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.body)
		assert.Equal(t, tc.msg, decode[errResp](t, rec).Error, tc.body)
	}

	rec = app.do(http.MethodGet, path, nil, "")
	booked := decode[[]idResp](t, rec)
	require.Len(t, booked, 1)
	assert.Equal(t, amy, booked[0].ID)

	rec = app.do(http.MethodPost, "/api/events/999/artists", `{"artist_ids": []}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Event not found", decode[errResp](t, rec).Error)
}

func TestRegistration(t *testing.T) {
	app := newApp(t, testConfig())

	rec := app.do(http.MethodPost, "/api/auth/register",
		map[string]any{"name": "Kim", "email": "kim@venue.test", "role": "Booker", "password": "abcd"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Password must be at least 6 characters", decode[errResp](t, rec).Error)

	rec = app.do(http.MethodPost, "/api/auth/register",
		map[string]any{"name": "Kim", "email": "kim@venue.test", "role": "Superstar", "password": "abcdef"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid role", decode[errResp](t, rec).Error)

	rec = app.do(http.MethodPost, "/api/auth/register",
		map[string]any{"name": "Kim", "email": "kim@venue.test", "role": "Event Manager", "password": "abcdef"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	body := decode[struct {
		Message string         `json:"message"`
		User    map[string]any `json:"user"`
	}](t, rec)
	assert.Equal(t, "User created successfully", body.Message)
	assert.Equal(t, "Event Manager", body.User["role"])
	assert.ElementsMatch(t, []string{"id", "name", "email", "role", "phone"}, keys(body.User))

	rec = app.do(http.MethodPost, "/api/auth/register",
		map[string]any{"name": "Kim", "email": "kim@venue.test", "role": "Door", "password": "abcdef"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "User with this email already exists", decode[errResp](t, rec).Error)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestSessionsAndRequiredAuth(t *testing.T) {
	cfg := testConfig()
	cfg.RequireAuth = true
	app := newApp(t, cfg)

	rec := app.do(http.MethodPost, "/api/auth/register",
		map[string]any{"name": "Kim", "email": "kim@venue.test", "role": "Admin", "password": "secret1"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "kim@venue.test", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = app.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "ghost@venue.test", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decode[errResp](t, rec).Error)

	rec = app.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "kim@venue.test", "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	session := decode[struct {
		Access struct {
			Token string `json:"token"`
		} `json:"access"`
		Refresh struct {
			Token string `json:"token"`
		} `json:"refresh"`
	}](t, rec)

	assert.Equal(t, http.StatusUnauthorized, app.do(http.MethodGet, "/api/events", nil, "").Code)
	assert.Equal(t, http.StatusOK, app.do(http.MethodGet, "/api/events", nil, session.Access.Token).Code)

	rec = app.do(http.MethodGet, "/api/auth/me", nil, session.Access.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"kim@venue.test"`)

	rec = app.do(http.MethodPost, "/api/auth/refresh", map[string]any{"refresh_token": session.Refresh.Token}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = app.do(http.MethodPost, "/api/auth/refresh", map[string]any{"refresh_token": session.Refresh.Token}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(http.MethodPost, "/api/auth/logout", nil, session.Access.Token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestNotFoundAndConflicts(t *testing.T) {
	app := newApp(t, testConfig())

	for path, msg := range map[string]string{
		"/api/users/999":          "User not found",
		"/api/artists/999":        "Artist not found",
		"/api/events/999":         "Event not found",
		"/api/artists/999/events": "Artist not found",
		"/api/events/999/images":  "Event not found",
	} {
		rec := app.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, msg), rec.Body.String(), path)
	}
	for _, path := range []string{"/api/users/999", "/api/artists/999", "/api/events/999"} {
		assert.Equal(t, http.StatusNotFound, app.do(http.MethodDelete, path, nil, "").Code, path)
	}
	assert.Equal(t, http.StatusBadRequest, app.do(http.MethodGet, "/api/events/abc", nil, "").Code)

	app.createArtist("Amy")
	rec := app.do(http.MethodPost, "/api/artists", map[string]any{"name": "Amy", "type": "Live"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Artist name already exists", decode[errResp](t, rec).Error)
	rec = app.do(http.MethodGet, "/api/artists", nil, "")
	assert.Len(t, decode[[]idResp](t, rec), 1)

	rec = app.do(http.MethodPost, "/api/artists", map[string]any{"name": "Bo", "type": "Band"}, "")
	assert.Equal(t, "Invalid artist type", decode[errResp](t, rec).Error)

	user := map[string]any{"name": "Kim", "email": "kim@venue.test", "role": "Door", "password": "x"}
	require.Equal(t, http.StatusCreated, app.do(http.MethodPost, "/api/users", user, "").Code)
	rec = app.do(http.MethodPost, "/api/users", user, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email already exists", decode[errResp](t, rec).Error)
	rec = app.do(http.MethodGet, "/api/users", nil, "")
	assert.Len(t, decode[[]idResp](t, rec), 1)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestEventValidationAndWarnings(t *testing.T) {
	app := newApp(t, testConfig())

	rec := app.do(http.MethodPost, "/api/events", map[string]any{"title": "No start"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields", decode[errResp](t, rec).Error)

	for body, msg := range map[string]string{
		`{"title":"x","start_":"2025-06-01T22:00:00Z","admission":101}`:    "Admission must be between 0 and 100",
		`{"title":"x","start_":"2025-06-01T22:00:00Z","break_even":-1}`:    "Break even must be between 0 and 100",
		`{"title":"x","start_":"2025-06-01T22:00:00Z","category":"Party"}`: "Invalid category",
		`{"title":"x","start_":"2025-06-01T22:00:00Z","state":"Maybe"}`:    "Invalid state",
		`{"title":"x","start_":"2025-06-01T22:00:00Z","floors":"Roof"}`:    "Invalid floor",
		`{"title":"x","start_":"tomorrow"}`:                                "Invalid start_",
	} {
		rec := app.do(http.MethodPost, "/api/events", body, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, msg, decode[errResp](t, rec).Error, body)
	}

	rec = app.do(http.MethodPost, "/api/events", map[string]any{"title": "x", "start_": "2025-06-01T22:00:00Z", "responsible_id": 42}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(http.MethodPost, "/api/users", map[string]any{"name": "Lu", "email": "lu@venue.test", "role": "Door", "password": "pw"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	lu := decode[idResp](t, rec).ID

	rec = app.do(http.MethodPost, "/api/events", map[string]any{
		"title":          "Backwards",
		"category":       "Rave",
		"start_":         "2025-06-01T22:00",
		"end_":           "2025-06-01T20:00:00Z",
		"doors_open":     "2025-06-01T23:00:00Z",
		"floor":          "Open Air",
		"responsible_id": lu,
		"admission":      0,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	saved := decode[struct {
		ID              int64    `json:"id"`
		Floors          string   `json:"floors"`
		End             string   `json:"end_"`
		Admission       *int     `json:"admission"`
		ResponsibleName string   `json:"responsible_name"`
		Warnings        []string `json:"warnings"`
	}](t, rec)
	assert.Equal(t, "Open Air", saved.Floors)
	assert.Equal(t, "2025-06-01T20:00:00Z", saved.End)
	require.NotNil(t, saved.Admission)
	assert.Equal(t, 0, *saved.Admission)
	assert.Equal(t, "Lu", saved.ResponsibleName)
	assert.Equal(t, []string{schedule.WarnEndNotAfterStart, schedule.WarnDoorsAfterStart, schedule.WarnDoorsAfterEnd}, saved.Warnings)

	rec = app.do(http.MethodPut, fmt.Sprintf("/api/events/%d", saved.ID), map[string]any{
		"title": "Forwards", "start_": "2025-06-01T22:00:00Z", "end_": "2025-06-02T04:00:00Z",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[struct {
		Title    string   `json:"title"`
		Floors   *string  `json:"floors"`
		Warnings []string `json:"warnings"`
	}](t, rec)
	assert.Equal(t, "Forwards", updated.Title)
	assert.Nil(t, updated.Floors)
	assert.Empty(t, updated.Warnings)

	rec = app.do(http.MethodPut, "/api/events/999", map[string]any{"title": "x", "start_": "2025-06-01T22:00:00Z"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// deleting the crew member keeps the event
	require.Equal(t, http.StatusOK, app.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", lu), nil, "").Code)
	assert.Equal(t, http.StatusOK, app.do(http.MethodGet, fmt.Sprintf("/api/events/%d", saved.ID), nil, "").Code)
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestImagesAndEventDelete(t *testing.T) {
	app := newApp(t, testConfig())
	id := app.createEvent("Launch Night", "2025-06-01T22:00:00Z")
	amy := app.createArtist("Amy")
	path := fmt.Sprintf("/api/events/%d/images", id)
	require.Equal(t, http.StatusOK,
		app.do(http.MethodPost, fmt.Sprintf("/api/events/%d/artists", id), map[string]any{"artist_ids": []int64{amy}}, "").Code)

	rec := app.upload(path, "", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No image file provided", decode[errResp](t, rec).Error)

	rec = app.upload("/api/events/999/images", "image", "a.png", pngBytes)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.upload(path, "image", "notes.txt", []byte("plain text"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "File must be an image", decode[errResp](t, rec).Error)

	rec = app.upload(path, "image", "Poster Final.png", pngBytes)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	img := decode[struct {
		ID       int64  `json:"id"`
		Filename string `json:"filename"`
		URL      string `json:"url"`
	}](t, rec)
	assert.Contains(t, img.Filename, "poster-final.png")
	assert.Equal(t, fmt.Sprintf("/uploads/events/%d/%s", id, img.Filename), img.URL)

	rec = app.do(http.MethodGet, path, nil, "")
	assert.Len(t, decode[[]idResp](t, rec), 1)

	rec = app.do(http.MethodDelete, path, nil, "")
	assert.Equal(t, "Image ID is required", decode[errResp](t, rec).Error)
	rec = app.do(http.MethodDelete, path+"?imageId=999", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Image not found", decode[errResp](t, rec).Error)

	rec = app.do(http.MethodDelete, fmt.Sprintf("%s?imageId=%d", path, img.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Image deleted successfully"}`, rec.Body.String())
	exists, err := afero.Exists(app.fs, fmt.Sprintf("events/%d/%s", id, img.Filename))
	require.NoError(t, err)
	assert.False(t, exists)

	rec = app.upload(path, "image", "second.png", pngBytes)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.do(http.MethodDelete, fmt.Sprintf("/api/events/%d", id), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Event deleted successfully"}`, rec.Body.String())

	exists, err = afero.DirExists(app.fs, fmt.Sprintf("events/%d", id))
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, http.StatusNotFound, app.do(http.MethodGet, fmt.Sprintf("/api/events/%d/artists", id), nil, "").Code)

	rec = app.do(http.MethodGet, "/api/artists", nil, "")
	assert.Contains(t, rec.Body.String(), `"event_count":0`)
}

func TestCalendar(t *testing.T) {
	app := newApp(t, testConfig())
	app.createEvent("Launch Night", "2025-06-01T22:00:00Z")
	app.createEvent("Closing", "2025-06-30T20:00:00Z")
	app.createEvent("Next Month", "2025-07-12T20:00:00Z")

	rec := app.do(http.MethodGet, "/api/events/calendar?view=month&date=2025-06-15", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	cal := decode[schedule.Calendar](t, rec)
	assert.Equal(t, "2025-06-01", cal.From)
	require.Len(t, cal.Days, 42)
	assert.Len(t, cal.Days[0].Events, 1)
	assert.Len(t, cal.Days[29].Events, 1)

	rec = app.do(http.MethodGet, "/api/events/calendar?view=year&date=2025-01-01", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	cal = decode[schedule.Calendar](t, rec)
	require.Len(t, cal.Months, 12)
	assert.Equal(t, 2, cal.Months[5].Count)
	assert.Equal(t, 1, cal.Months[6].Count)

	assert.Equal(t, http.StatusBadRequest, app.do(http.MethodGet, "/api/events/calendar?view=decade", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, app.do(http.MethodGet, "/api/events/calendar?date=15.06.2025", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, app.do(http.MethodGet, "/api/events/calendar?tz=Mars/Olympus", nil, "").Code)

	rec = app.do(http.MethodGet, "/api/events?from=2025-06-15&to=2025-07-01", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]idResp](t, rec), 1)
}

func TestRosterNotification(t *testing.T) {
	app := newApp(t, testConfig())
	id := app.createEvent("Launch Night", "2025-06-01T22:00:00Z")
	amy := app.createArtist("Amy")
	rec := app.do(http.MethodPost, fmt.Sprintf("/api/events/%d/artists", id), map[string]any{"artist_ids": []int64{amy}}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Eventually(t, func() bool {
		app.pub.mu.Lock()
		defer app.pub.mu.Unlock()
		return len(app.pub.events) == 1
	}, 2*time.Second, 10*time.Millisecond)
	app.pub.mu.Lock()
	defer app.pub.mu.Unlock()
	assert.Equal(t, []string{"Amy"}, app.pub.events[0].ArtistNames)
}

func TestRegistrationRefreshesCachedUsers(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := testConfig()
	cfg.Cache = config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}
	app := newAppWithRedis(t, cfg, rdb)

	rec := app.do(http.MethodGet, "/api/users", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	rec = app.do(http.MethodGet, "/api/users", nil, "")
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = app.do(http.MethodPost, "/api/auth/register",
		map[string]any{"name": "Kim", "email": "kim@venue.test", "role": "Booker", "password": "abcdef"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.do(http.MethodGet, "/api/users", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	users := decode[[]struct {
		Email string `json:"email"`
	}](t, rec)
	require.Len(t, users, 1)
	assert.Equal(t, "kim@venue.test", users[0].Email)

	// a rejected registration leaves the cache alone
	rec = app.do(http.MethodPost, "/api/auth/register",
		map[string]any{"name": "Kim", "email": "kim@venue.test", "role": "Booker", "password": "abcdef"}, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "HIT", app.do(http.MethodGet, "/api/users", nil, "").Header().Get("X-Cache"))
}

func TestHealth(t *testing.T) {
	app := newApp(t, testConfig())
	rec := app.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = app.do(http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}
