package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-booking/internal/repository"
	"github.com/iliyamo/venue-booking/internal/service"
)

// EventArtistsHandler serves the roster sub-resource of an event.
type EventArtistsHandler struct {
	Bookings *repository.BookingRepo
	Events   *repository.EventRepo
	Roster   *service.RosterService
	Log      *logrus.Entry
}

func NewEventArtistsHandler(b *repository.BookingRepo, e *repository.EventRepo, r *service.RosterService, log *logrus.Entry) *EventArtistsHandler {
	return &EventArtistsHandler{Bookings: b, Events: e, Roster: r, Log: log}
}

type rosterReq struct {
	ArtistIDs json.RawMessage `json:"artist_ids"`
}

// List returns the booked artists ordered by name.
func (h *EventArtistsHandler) List(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return bad(c, "Invalid event ID")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	exists, err := h.Events.Exists(ctx, id)
	if err != nil {
		return fail(c, h.Log, err, eventMsgs)
	}
	if !exists {
		return fail(c, h.Log, repository.ErrNotFound, eventMsgs)
	}
	artists, err := h.Bookings.ArtistsForEvent(ctx, id)
	if err != nil {
		return fail(c, h.Log, err, eventMsgs)
	}
	return c.JSON(http.StatusOK, artists)
}

// Replace makes the submitted artist_ids the event's whole roster. The list
// is validated completely before anything is written.
func (h *EventArtistsHandler) Replace(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return bad(c, "Invalid event ID")
	}
	var req rosterReq
	if err := c.Bind(&req); err != nil {
		return bad(c, msgBadBody)
	}
	ids, err := service.ParseArtistIDs(req.ArtistIDs)
	if err != nil {
		return fail(c, h.Log, err, eventMsgs)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Roster.Replace(ctx, id, ids); err != nil {
		return fail(c, h.Log, err, eventMsgs)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":      "Artist bookings updated successfully",
		"artist_count": len(ids),
	})
}
