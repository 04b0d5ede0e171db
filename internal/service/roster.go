package service

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-booking/internal/logging"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/queue"
)

const msgArtistIDsNotArray = "Invalid artist_ids provided - must be an array"

type bookingStore interface {
	Replace(ctx context.Context, eventID int64, artistIDs []int64) error
	ArtistsForEvent(ctx context.Context, eventID int64) ([]model.Artist, error)
}

type eventReader interface {
	GetByID(ctx context.Context, id int64) (model.Event, error)
}

// RosterService replaces the set of artists booked for an event and
// announces the change on the broker.
type RosterService struct {
	bookings bookingStore
	events   eventReader
	pub      queue.Publisher
	log      *logrus.Entry

	publishTimeout time.Duration
	// afterPublish, when set, runs once the background publish returns.
	afterPublish func()
}

func NewRosterService(b bookingStore, e eventReader, pub queue.Publisher, log *logrus.Entry) *RosterService {
	if pub == nil {
		pub = queue.NopPublisher{}
	}
	return &RosterService{
		bookings:       b,
		events:         e,
		pub:            pub,
		log:            log.WithField(logging.FldComponent, "roster"),
		publishTimeout: 5 * time.Second,
	}
}

// ParseArtistIDs decodes the artist_ids value of a roster request. The value
// must be a JSON array; each element must be a positive integer JSON number.
// Strings are rejected even when they hold digits. Duplicates are dropped, first occurrence
// wins. Nothing is returned unless every element is valid.
func ParseArtistIDs(raw json.RawMessage) ([]int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, invalid(msgArtistIDsNotArray)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, invalid(msgArtistIDsNotArray)
	}

	ids := make([]int64, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for _, item := range items {
		id, ok := parseArtistID(item)
		if !ok {
			return nil, invalid("Invalid artist ID: " + displayJSON(item))
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

func parseArtistID(item json.RawMessage) (int64, bool) {
	item = bytes.TrimSpace(item)
	if len(item) == 0 {
		return 0, false
	}
	switch item[0] {
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if id, err := strconv.ParseInt(string(item), 10, 64); err == nil {
			return id, id > 0
		}
		// 3.0 and 3e0 are integers too; float64(MaxInt64) rounds up to 2^63
		f, err := strconv.ParseFloat(string(item), 64)
		if err != nil || f != math.Trunc(f) || f <= 0 || f >= math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}

// displayJSON renders an element for an error message: strings without
// their quotes, anything else as written.
func displayJSON(item json.RawMessage) string {
	item = bytes.TrimSpace(item)
	var s string
	if len(item) > 0 && item[0] == '"' && json.Unmarshal(item, &s) == nil {
		return s
	}
	return string(item)
}

// Replace makes ids the complete roster of the event. On success a
// roster-updated message is published in the background; broker failures
// are logged and never reach the caller.
func (s *RosterService) Replace(ctx context.Context, eventID int64, ids []int64) error {
	if err := s.bookings.Replace(ctx, eventID, ids); err != nil {
		return err
	}

	ev, err := s.buildRosterEvent(ctx, eventID, ids)
	if err != nil {
		s.log.WithError(err).WithField(logging.FldEvent, eventID).Warn("roster saved, notification skipped")
		return nil
	}
	go s.publish(ev)
	return nil
}

func (s *RosterService) buildRosterEvent(ctx context.Context, eventID int64, ids []int64) (queue.RosterUpdatedEvent, error) {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return queue.RosterUpdatedEvent{}, errors.Wrap(err, "load event")
	}
	artists, err := s.bookings.ArtistsForEvent(ctx, eventID)
	if err != nil {
		return queue.RosterUpdatedEvent{}, errors.Wrap(err, "load artists")
	}
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return queue.RosterUpdatedEvent{
		EventID:     eventID,
		EventTitle:  e.Title,
		EventStart:  e.Start.UTC().Format(time.RFC3339),
		ArtistIDs:   ids,
		ArtistNames: names,
		UpdatedAt:   time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (s *RosterService) publish(ev queue.RosterUpdatedEvent) {
	if s.afterPublish != nil {
		defer s.afterPublish()
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.publishTimeout)
	defer cancel()
	if err := s.pub.PublishRosterUpdated(ctx, ev); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			logging.FldEvent: ev.EventID,
			logging.FldCount: len(ev.ArtistIDs),
		}).Warnf("publish %s failed", queue.RosterQueue)
	}
}
