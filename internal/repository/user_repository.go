package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/iliyamo/venue-booking/internal/model"
)

const userColumns = `id, role, name, email, phone, password_hash`

// eventCrewColumns are the events columns that reference users.
var eventCrewColumns = []string{"responsible_id", "light_id", "sound_id", "artist_care_id"}

// UserRepo persists rows of the users table.
type UserRepo struct{ db *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// List returns all users ordered by name. Password hashes are not loaded.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	err := r.db.SelectContext(ctx, &users, `SELECT id, role, name, email, phone FROM users ORDER BY name ASC`)
	return users, errors.Wrap(err, "list users")
}

// GetByID returns the user without its password hash.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	var u model.User
	err := r.db.GetContext(ctx, &u, r.db.Rebind(`SELECT id, role, name, email, phone FROM users WHERE id = ?`), id)
	return u, classify(err)
}

// GetByEmail looks a user up by exact email, including the password hash.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := r.db.GetContext(ctx, &u,
		r.db.Rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), strings.TrimSpace(email))
	return u, classify(err)
}

// Create inserts u (PasswordHash must already be set) and stores the new id
// in u.ID. A taken email yields ErrConflict.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	id, err := insertID(ctx, r.db,
		`INSERT INTO users (role, name, email, phone, password_hash) VALUES (?, ?, ?, ?, ?)`,
		u.Role, u.Name, strings.TrimSpace(u.Email), u.Phone, u.PasswordHash)
	if err != nil {
		return classify(err)
	}
	u.ID = id
	return nil
}

// Update overwrites the profile columns of u. The password hash is replaced
// only when newHash is non-empty.
func (r *UserRepo) Update(ctx context.Context, u model.User, newHash string) error {
	if newHash != "" {
		return execAffected(ctx, r.db,
			`UPDATE users SET role = ?, name = ?, email = ?, phone = ?, password_hash = ? WHERE id = ?`,
			u.Role, u.Name, strings.TrimSpace(u.Email), u.Phone, newHash, u.ID)
	}
	return execAffected(ctx, r.db,
		`UPDATE users SET role = ?, name = ?, email = ?, phone = ? WHERE id = ?`,
		u.Role, u.Name, strings.TrimSpace(u.Email), u.Phone, u.ID)
}

// Delete removes the user, clearing the crew positions it holds on events
// and deleting its refresh tokens in the same transaction.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, col := range eventCrewColumns {
			q := tx.Rebind(`UPDATE events SET ` + col + ` = NULL WHERE ` + col + ` = ?`)
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return errors.Wrapf(err, "clear events.%s", col)
			}
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM refresh_tokens WHERE user_id = ?`), id); err != nil {
			return errors.Wrap(err, "delete tokens")
		}
		return execAffected(ctx, tx, `DELETE FROM users WHERE id = ?`, id)
	})
}
