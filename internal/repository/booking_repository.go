package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/iliyamo/venue-booking/internal/model"
)

// BookingRepo manages the event_bookings join table.
type BookingRepo struct{ db *sqlx.DB }

func NewBookingRepo(db *sqlx.DB) *BookingRepo { return &BookingRepo{db: db} }

// ArtistsForEvent returns the artists booked for an event ordered by name.
func (r *BookingRepo) ArtistsForEvent(ctx context.Context, eventID int64) ([]model.Artist, error) {
	artists := []model.Artist{}
	err := r.db.SelectContext(ctx, &artists, r.db.Rebind(artistSelect+`
		JOIN event_bookings b ON b.artist_id = a.id
		WHERE b.event_id = ?
		ORDER BY a.name ASC, a.id ASC`), eventID)
	return artists, errors.Wrap(err, "list event artists")
}

// ArtistIDs returns the booked artist ids of an event in ascending order.
func (r *BookingRepo) ArtistIDs(ctx context.Context, eventID int64) ([]int64, error) {
	ids := []int64{}
	err := r.db.SelectContext(ctx, &ids,
		r.db.Rebind(`SELECT artist_id FROM event_bookings WHERE event_id = ? ORDER BY artist_id`), eventID)
	return ids, errors.Wrap(err, "list event artist ids")
}

// Replace makes artistIDs the complete roster of the event. The event and
// every artist are checked first; the old rows are deleted and the new ones
// inserted in the same transaction, so either the whole roster changes or
// nothing does. artistIDs must not contain duplicates.
//
// Errors: ErrNotFound when the event is missing, *UnknownArtistError for the
// first artist id without a row.
func (r *BookingRepo) Replace(ctx context.Context, eventID int64, artistIDs []int64) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		ok, err := eventExists(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}

		if len(artistIDs) > 0 {
			q, args, err := sqlx.In(`SELECT id FROM artists WHERE id IN (?)`, artistIDs)
			if err != nil {
				return errors.Wrap(err, "expand artist ids")
			}
			var found []int64
			if err := tx.SelectContext(ctx, &found, tx.Rebind(q), args...); err != nil {
				return errors.Wrap(err, "check artists")
			}
			present := make(map[int64]bool, len(found))
			for _, id := range found {
				present[id] = true
			}
			for _, id := range artistIDs {
				if !present[id] {
					return &UnknownArtistError{ID: id}
				}
			}
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM event_bookings WHERE event_id = ?`), eventID); err != nil {
			return errors.Wrap(err, "clear bookings")
		}
		if len(artistIDs) == 0 {
			return nil
		}

		// one multi-row INSERT keeps the round trips constant
		q := `INSERT INTO event_bookings (event_id, artist_id) VALUES `
		args := make([]any, 0, len(artistIDs)*2)
		for i, id := range artistIDs {
			if i > 0 {
				q += ", "
			}
			q += "(?, ?)"
			args = append(args, eventID, id)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(q), args...); err != nil {
			return classify(err)
		}
		return nil
	})
}
