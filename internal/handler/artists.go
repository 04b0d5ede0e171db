package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/repository"
)

var artistMsgs = messages{notFound: "Artist not found", conflict: "Artist name already exists"}

// ArtistsHandler serves the artist catalogue.
type ArtistsHandler struct {
	Artists *repository.ArtistRepo
	Events  *repository.EventRepo
	Log     *logrus.Entry
}

func NewArtistsHandler(a *repository.ArtistRepo, e *repository.EventRepo, log *logrus.Entry) *ArtistsHandler {
	return &ArtistsHandler{Artists: a, Events: e, Log: log}
}

type artistReq struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Label   *string `json:"label"`
	Members *string `json:"members"`
	Agency  *string `json:"agency"`
	Notes   *string `json:"notes"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Web     *string `json:"web"`
}

// artist validates the request and converts it; the message is empty when
// the request is acceptable.
func (r artistReq) artist() (model.Artist, string) {
	name := strings.TrimSpace(r.Name)
	if name == "" || r.Type == "" {
		return model.Artist{}, msgMissing
	}
	t := model.ArtistType(r.Type)
	if !t.IsValid() {
		return model.Artist{}, "Invalid artist type"
	}
	return model.Artist{
		Name:    name,
		Type:    t,
		Label:   optString(r.Label),
		Members: optString(r.Members),
		Agency:  optString(r.Agency),
		Notes:   optString(r.Notes),
		Email:   optString(r.Email),
		Phone:   optString(r.Phone),
		Web:     optString(r.Web),
	}, ""
}

func (h *ArtistsHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	artists, err := h.Artists.List(ctx)
	if err != nil {
		return fail(c, h.Log, err, artistMsgs)
	}
	return c.JSON(http.StatusOK, artists)
}

func (h *ArtistsHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return bad(c, "Invalid artist ID")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	a, err := h.Artists.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, err, artistMsgs)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *ArtistsHandler) Create(c echo.Context) error {
	var req artistReq
	if err := c.Bind(&req); err != nil {
		return bad(c, msgBadBody)
	}
	a, msg := req.artist()
	if msg != "" {
		return bad(c, msg)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Artists.Create(ctx, &a); err != nil {
		return fail(c, h.Log, err, artistMsgs)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *ArtistsHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return bad(c, "Invalid artist ID")
	}
	var req artistReq
	if err := c.Bind(&req); err != nil {
		return bad(c, msgBadBody)
	}
	a, msg := req.artist()
	if msg != "" {
		return bad(c, msg)
	}
	a.ID = id
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Artists.Update(ctx, a); err != nil {
		return fail(c, h.Log, err, artistMsgs)
	}
	updated, err := h.Artists.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, err, artistMsgs)
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete removes the artist and its bookings.
func (h *ArtistsHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return bad(c, "Invalid artist ID")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Artists.Delete(ctx, id); err != nil {
		return fail(c, h.Log, err, artistMsgs)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Artist deleted successfully"})
}

// ListEvents lists the events the artist is booked for, latest first.
func (h *ArtistsHandler) ListEvents(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return bad(c, "Invalid artist ID")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	a, err := h.Artists.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, err, artistMsgs)
	}
	events, err := h.Events.ListByArtist(ctx, id)
	if err != nil {
		return fail(c, h.Log, err, artistMsgs)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"artist": echo.Map{"id": a.ID, "name": a.Name},
		"events": events,
	})
}
