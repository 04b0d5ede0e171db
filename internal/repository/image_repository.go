package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/iliyamo/venue-booking/internal/model"
)

const imageColumns = `id, event_id, filename, url, uploaded_at, deleted_at`

// ImageRepo manages event_images rows. Deletion is two-phase: MarkDeleted
// hides a row, Purge removes it once the file is gone.
type ImageRepo struct{ db *sqlx.DB }

func NewImageRepo(db *sqlx.DB) *ImageRepo { return &ImageRepo{db: db} }

// ListForEvent returns the live images of an event, oldest first.
func (r *ImageRepo) ListForEvent(ctx context.Context, eventID int64) ([]model.EventImage, error) {
	images := []model.EventImage{}
	err := r.db.SelectContext(ctx, &images, r.db.Rebind(`SELECT `+imageColumns+` FROM event_images
		WHERE event_id = ? AND deleted_at IS NULL
		ORDER BY uploaded_at ASC, id ASC`), eventID)
	return images, errors.Wrap(err, "list event images")
}

// Create inserts img and stores the new id in img.ID.
func (r *ImageRepo) Create(ctx context.Context, img *model.EventImage) error {
	id, err := insertID(ctx, r.db,
		`INSERT INTO event_images (event_id, filename, url, uploaded_at) VALUES (?, ?, ?, ?)`,
		img.EventID, img.Filename, img.URL, img.UploadedAt.UTC())
	if err != nil {
		return classify(err)
	}
	img.ID = id
	return nil
}

// MarkDeleted flags a live image of the event as deleted and returns it.
func (r *ImageRepo) MarkDeleted(ctx context.Context, eventID, imageID int64, at time.Time) (model.EventImage, error) {
	var img model.EventImage
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &img, tx.Rebind(`SELECT `+imageColumns+` FROM event_images
			WHERE id = ? AND event_id = ? AND deleted_at IS NULL`), imageID, eventID)
		if err != nil {
			return classify(err)
		}
		at = at.UTC()
		img.DeletedAt = &at
		return execAffected(ctx, tx, `UPDATE event_images SET deleted_at = ? WHERE id = ?`, at, imageID)
	})
	return img, err
}

// Purge removes the row for good.
func (r *ImageRepo) Purge(ctx context.Context, imageID int64) error {
	return execAffected(ctx, r.db, `DELETE FROM event_images WHERE id = ?`, imageID)
}

// ListMarked returns rows flagged as deleted before the given time.
func (r *ImageRepo) ListMarked(ctx context.Context, before time.Time) ([]model.EventImage, error) {
	images := []model.EventImage{}
	err := r.db.SelectContext(ctx, &images, r.db.Rebind(`SELECT `+imageColumns+` FROM event_images
		WHERE deleted_at IS NOT NULL AND deleted_at < ? ORDER BY id`), before.UTC())
	return images, errors.Wrap(err, "list marked images")
}

// Filenames returns, per event, the filenames that still have a row
// (live or marked).
func (r *ImageRepo) Filenames(ctx context.Context) (map[int64]map[string]struct{}, error) {
	var rows []struct {
		EventID  int64  `db:"event_id"`
		Filename string `db:"filename"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT event_id, filename FROM event_images`); err != nil {
		return nil, errors.Wrap(err, "list image filenames")
	}
	out := map[int64]map[string]struct{}{}
	for _, row := range rows {
		if out[row.EventID] == nil {
			out[row.EventID] = map[string]struct{}{}
		}
		out[row.EventID][row.Filename] = struct{}{}
	}
	return out, nil
}
