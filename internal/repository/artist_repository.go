package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/iliyamo/venue-booking/internal/model"
)

const artistSelect = `SELECT a.id, a.name, a.type, a.label, a.members, a.agency, a.notes, a.email, a.phone, a.web,
	(SELECT COUNT(*) FROM event_bookings eb WHERE eb.artist_id = a.id) AS event_count
	FROM artists a`

// ArtistRepo persists rows of the artists table.
type ArtistRepo struct{ db *sqlx.DB }

func NewArtistRepo(db *sqlx.DB) *ArtistRepo { return &ArtistRepo{db: db} }

// List returns all artists ordered by name with their booking counts.
func (r *ArtistRepo) List(ctx context.Context) ([]model.Artist, error) {
	artists := []model.Artist{}
	err := r.db.SelectContext(ctx, &artists, artistSelect+` ORDER BY a.name ASC`)
	return artists, errors.Wrap(err, "list artists")
}

func (r *ArtistRepo) GetByID(ctx context.Context, id int64) (model.Artist, error) {
	var a model.Artist
	err := r.db.GetContext(ctx, &a, r.db.Rebind(artistSelect+` WHERE a.id = ?`), id)
	return a, classify(err)
}

// Create inserts a and stores the new id in a.ID. A taken name yields
// ErrConflict.
func (r *ArtistRepo) Create(ctx context.Context, a *model.Artist) error {
	id, err := insertID(ctx, r.db,
		`INSERT INTO artists (name, type, label, members, agency, notes, email, phone, web)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Name, a.Type, a.Label, a.Members, a.Agency, a.Notes, a.Email, a.Phone, a.Web)
	if err != nil {
		return classify(err)
	}
	a.ID = id
	return nil
}

func (r *ArtistRepo) Update(ctx context.Context, a model.Artist) error {
	return execAffected(ctx, r.db,
		`UPDATE artists SET name = ?, type = ?, label = ?, members = ?, agency = ?, notes = ?, email = ?, phone = ?, web = ?
		 WHERE id = ?`,
		a.Name, a.Type, a.Label, a.Members, a.Agency, a.Notes, a.Email, a.Phone, a.Web, a.ID)
}

// Delete removes the artist together with its bookings.
func (r *ArtistRepo) Delete(ctx context.Context, id int64) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM event_bookings WHERE artist_id = ?`), id); err != nil {
			return errors.Wrap(err, "delete artist bookings")
		}
		return execAffected(ctx, tx, `DELETE FROM artists WHERE id = ?`, id)
	})
}
