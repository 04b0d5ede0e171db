package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/repository"
	"github.com/iliyamo/venue-booking/internal/schedule"
	"github.com/iliyamo/venue-booking/internal/service"
)

var eventMsgs = messages{notFound: "Event not found", badRef: "Referenced user does not exist"}

// EventsHandler serves events and the calendar.
type EventsHandler struct {
	Events *repository.EventRepo
	Images *service.ImageService
	Log    *logrus.Entry
	now    func() time.Time
}

func NewEventsHandler(e *repository.EventRepo, images *service.ImageService, log *logrus.Entry) *EventsHandler {
	return &EventsHandler{Events: e, Images: images, Log: log, now: time.Now}
}

// eventReq is the create/update body. Times accept RFC 3339 or the
// zone-less forms HTML datetime inputs send, which are read as UTC.
// "floor" is accepted as an alias of "floors".
type eventReq struct {
	Category       *string `json:"category"`
	Title          string  `json:"title"`
	Start          *string `json:"start_"`
	End            *string `json:"end_"`
	DoorsOpen      *string `json:"doors_open"`
	State          *string `json:"state"`
	Floors         *string `json:"floors"`
	Floor          *string `json:"floor"`
	ResponsibleID  *int64  `json:"responsible_id"`
	LightID        *int64  `json:"light_id"`
	SoundID        *int64  `json:"sound_id"`
	ArtistCareID   *int64  `json:"artist_care_id"`
	Admission      *int    `json:"admission"`
	BreakEven      *int    `json:"break_even"`
	Presstext      *string `json:"presstext"`
	NotesInternal  *string `json:"notes_internal"`
	TechnicalNotes *string `json:"technical_notes"`
	APINotes       *string `json:"api_notes"`
}

// eventResp is an event plus the advisory warnings about its times.
type eventResp struct {
	model.Event
	Warnings []string `json:"warnings"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func optTime(s *string, field string) (*time.Time, string) {
	v := optString(s)
	if v == nil {
		return nil, ""
	}
	t, ok := parseTime(*v)
	if !ok {
		return nil, "Invalid " + field
	}
	return &t, ""
}

func optID(id *int64) *int64 {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}

// event validates the request and converts it. The returned message is
// empty when the request is acceptable.
func (r eventReq) event() (model.Event, string) {
	title := strings.TrimSpace(r.Title)
	start := optString(r.Start)
	if title == "" || start == nil {
		return model.Event{}, msgMissing
	}
	e := model.Event{Title: title, Category: model.CategoryConcert}

	if v := optString(r.Category); v != nil {
		e.Category = model.Category(*v)
		if !e.Category.IsValid() {
			return model.Event{}, "Invalid category"
		}
	}
	if v := optString(r.State); v != nil {
		s := model.EventState(*v)
		if !s.IsValid() {
			return model.Event{}, "Invalid state"
		}
		e.State = &s
	}
	floor := optString(r.Floors)
	if floor == nil {
		floor = optString(r.Floor)
	}
	if floor != nil {
		f := model.Floor(*floor)
		if !f.IsValid() {
			return model.Event{}, "Invalid floor"
		}
		e.Floor = &f
	}

	t, ok := parseTime(*start)
	if !ok {
		return model.Event{}, "Invalid start_"
	}
	e.Start = t
	var msg string
	if e.End, msg = optTime(r.End, "end_"); msg != "" {
		return model.Event{}, msg
	}
	if e.DoorsOpen, msg = optTime(r.DoorsOpen, "doors_open"); msg != "" {
		return model.Event{}, msg
	}

	if r.Admission != nil && (*r.Admission < 0 || *r.Admission > 100) {
		return model.Event{}, "Admission must be between 0 and 100"
	}
	if r.BreakEven != nil && (*r.BreakEven < 0 || *r.BreakEven > 100) {
		return model.Event{}, "Break even must be between 0 and 100"
	}
	e.Admission = r.Admission
	e.BreakEven = r.BreakEven

	e.ResponsibleID = optID(r.ResponsibleID)
	e.LightID = optID(r.LightID)
	e.SoundID = optID(r.SoundID)
	e.ArtistCareID = optID(r.ArtistCareID)
	e.Presstext = optString(r.Presstext)
	e.NotesInternal = optString(r.NotesInternal)
	e.TechnicalNotes = optString(r.TechnicalNotes)
	e.APINotes = optString(r.APINotes)
	return e, ""
}

// List returns events, latest first. Optional from/to query values bound
// the start time (from inclusive, to exclusive).
func (h *EventsHandler) List(c echo.Context) error {
	var f repository.EventFilter
	if v := c.QueryParam("from"); v != "" {
		t, ok := parseBound(v)
		if !ok {
			return bad(c, "Invalid from")
		}
		f.From = t
	}
	if v := c.QueryParam("to"); v != "" {
		t, ok := parseBound(v)
		if !ok {
			return bad(c, "Invalid to")
		}
		f.To = t
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	events, err := h.Events.List(ctx, f)
	if err != nil {
		return fail(c, h.Log, err, eventMsgs)
	}
	return c.JSON(http.StatusOK, events)
}

func parseBound(s string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02", strings.TrimSpace(s)); err == nil {
		return t, true
	}
	return parseTime(s)
}

func (h *EventsHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return bad(c, "Invalid event ID")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	e, err := h.Events.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, err, eventMsgs)
	}
	return c.JSON(http.StatusOK, e)
}

// Create stores the event even when its times look wrong; the problems are
// returned as warnings.
func (h *EventsHandler) Create(c echo.Context) error {
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return bad(c, msgBadBody)
	}
	e, msg := req.event()
	if msg != "" {
		return bad(c, msg)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Events.Create(ctx, &e); err != nil {
		return fail(c, h.Log, err, eventMsgs)
	}
	saved, err := h.Events.GetByID(ctx, e.ID)
	if err != nil {
		return fail(c, h.Log, err, eventMsgs)
	}
	return c.JSON(http.StatusCreated, eventResp{Event: saved, Warnings: schedule.CheckTimes(&e.Start, e.End, e.DoorsOpen)})
}

// Update overwrites every field; like Create it warns but never refuses on
// time ordering.
func (h *EventsHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return bad(c, "Invalid event ID")
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return bad(c, msgBadBody)
	}
	e, msg := req.event()
	if msg != "" {
		return bad(c, msg)
	}
	e.ID = id
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Events.Update(ctx, e); err != nil {
		return fail(c, h.Log, err, eventMsgs)
	}
	saved, err := h.Events.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, err, eventMsgs)
	}
	return c.JSON(http.StatusOK, eventResp{Event: saved, Warnings: schedule.CheckTimes(&e.Start, e.End, e.DoorsOpen)})
}

// Delete removes the event with its bookings and images.
func (h *EventsHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return bad(c, "Invalid event ID")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Events.Delete(ctx, id); err != nil {
		return fail(c, h.Log, err, eventMsgs)
	}
	h.Images.RemoveEventFiles(id)
	return c.JSON(http.StatusOK, echo.Map{"message": "Event deleted successfully"})
}

// Calendar buckets events into a month grid, a week or a year.
//
// Query: view=month|week|year, date=YYYY-MM-DD (default today),
// tz=IANA zone (default UTC).
func (h *EventsHandler) Calendar(c echo.Context) error {
	view, err := schedule.ParseView(c.QueryParam("view"))
	if err != nil {
		return bad(c, "Invalid view")
	}
	loc := time.UTC
	if tz := strings.TrimSpace(c.QueryParam("tz")); tz != "" {
		if loc, err = time.LoadLocation(tz); err != nil {
			return bad(c, "Invalid timezone")
		}
	}
	anchor, err := schedule.ParseDate(c.QueryParam("date"), loc, h.now())
	if err != nil {
		return bad(c, "Invalid date")
	}

	from, to := schedule.Range(view, anchor, loc)
	ctx, cancel := reqCtx(c)
	defer cancel()
	events, err := h.Events.List(ctx, repository.EventFilter{From: from, To: to})
	if err != nil {
		return fail(c, h.Log, err, eventMsgs)
	}
	return c.JSON(http.StatusOK, schedule.Build(view, anchor, loc, events))
}
