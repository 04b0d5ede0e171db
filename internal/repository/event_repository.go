package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/iliyamo/venue-booking/internal/model"
)

const eventSelect = `SELECT e.id, e.category, e.title, e.start_, e.end_, e.doors_open, e.state, e.floors,
	e.responsible_id, e.light_id, e.sound_id, e.artist_care_id, e.admission, e.break_even,
	e.presstext, e.notes_internal, e.technical_notes, e.api_notes,
	u1.name AS responsible_name, u2.name AS light_name, u3.name AS sound_name, u4.name AS artist_care_name
	FROM events e
	LEFT JOIN users u1 ON e.responsible_id = u1.id
	LEFT JOIN users u2 ON e.light_id = u2.id
	LEFT JOIN users u3 ON e.sound_id = u3.id
	LEFT JOIN users u4 ON e.artist_care_id = u4.id`

// EventFilter narrows List to events starting in [From, To). Zero values
// leave the bound open.
type EventFilter struct {
	From time.Time
	To   time.Time
}

// EventRepo persists rows of the events table.
type EventRepo struct{ db *sqlx.DB }

func NewEventRepo(db *sqlx.DB) *EventRepo { return &EventRepo{db: db} }

// List returns events ordered by start, latest first.
func (r *EventRepo) List(ctx context.Context, f EventFilter) ([]model.Event, error) {
	q := eventSelect + ` WHERE 1 = 1`
	var args []any
	if !f.From.IsZero() {
		q += ` AND e.start_ >= ?`
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		q += ` AND e.start_ < ?`
		args = append(args, f.To.UTC())
	}
	q += ` ORDER BY e.start_ DESC, e.id DESC`

	events := []model.Event{}
	err := r.db.SelectContext(ctx, &events, r.db.Rebind(q), args...)
	return events, errors.Wrap(err, "list events")
}

func (r *EventRepo) GetByID(ctx context.Context, id int64) (model.Event, error) {
	var e model.Event
	err := r.db.GetContext(ctx, &e, r.db.Rebind(eventSelect+` WHERE e.id = ?`), id)
	return e, classify(err)
}

// Exists reports whether an event row with id is present.
func (r *EventRepo) Exists(ctx context.Context, id int64) (bool, error) {
	return eventExists(ctx, r.db, id)
}

// IDs returns the ids of all events.
func (r *EventRepo) IDs(ctx context.Context) (map[int64]struct{}, error) {
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM events`); err != nil {
		return nil, errors.Wrap(err, "list event ids")
	}
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// ListByArtist returns the events an artist is booked for, latest first.
func (r *EventRepo) ListByArtist(ctx context.Context, artistID int64) ([]model.Event, error) {
	events := []model.Event{}
	err := r.db.SelectContext(ctx, &events, r.db.Rebind(eventSelect+`
		JOIN event_bookings eb ON eb.event_id = e.id
		WHERE eb.artist_id = ?
		ORDER BY e.start_ DESC, e.id DESC`), artistID)
	return events, errors.Wrap(err, "list artist events")
}

// Create inserts e and stores the new id in e.ID. Unknown crew user ids
// yield ErrInvalidReference.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	id, err := insertID(ctx, r.db,
		`INSERT INTO events (category, title, start_, end_, doors_open, state, floors,
			responsible_id, light_id, sound_id, artist_care_id, admission, break_even,
			presstext, notes_internal, technical_notes, api_notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		eventArgs(*e)...)
	if err != nil {
		return classify(err)
	}
	e.ID = id
	return nil
}

// Update overwrites every column of the event row.
func (r *EventRepo) Update(ctx context.Context, e model.Event) error {
	args := append(eventArgs(e), e.ID)
	return execAffected(ctx, r.db,
		`UPDATE events SET category = ?, title = ?, start_ = ?, end_ = ?, doors_open = ?, state = ?, floors = ?,
			responsible_id = ?, light_id = ?, sound_id = ?, artist_care_id = ?, admission = ?, break_even = ?,
			presstext = ?, notes_internal = ?, technical_notes = ?, api_notes = ?
		 WHERE id = ?`, args...)
}

// Delete removes the event, its bookings and its image rows in one
// transaction. The caller owns removing the image files.
func (r *EventRepo) Delete(ctx context.Context, id int64) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		ok, err := eventExists(ctx, tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM event_bookings WHERE event_id = ?`), id); err != nil {
			return errors.Wrap(err, "delete event bookings")
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM event_images WHERE event_id = ?`), id); err != nil {
			return errors.Wrap(err, "delete event images")
		}
		return execAffected(ctx, tx, `DELETE FROM events WHERE id = ?`, id)
	})
}

func eventExists(ctx context.Context, q sqlx.ExtContext, id int64) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, q, &n, q.Rebind(`SELECT COUNT(*) FROM events WHERE id = ?`), id)
	if err != nil {
		return false, errors.Wrap(err, "check event")
	}
	return n > 0, nil
}

func eventArgs(e model.Event) []any {
	return []any{
		e.Category, e.Title, e.Start.UTC(), utcPtr(e.End), utcPtr(e.DoorsOpen), e.State, e.Floor,
		e.ResponsibleID, e.LightID, e.SoundID, e.ArtistCareID, e.Admission, e.BreakEven,
		e.Presstext, e.NotesInternal, e.TechnicalNotes, e.APINotes,
	}
}

func utcPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
