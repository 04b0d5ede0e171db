package model

import "time"

// User is a row of the `users` table. A user may be referenced by events in
// up to four crew positions (responsible, light, sound, artist care).
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Role         – one of Roles; shown in the UI, never used for access checks.
//	Name         – display name.
//	Email        – unique login address.
//	Phone        – optional phone number.
//	PasswordHash – bcrypt hash; never serialized.
type User struct {
	ID           int64   `db:"id" json:"id"`
	Role         Role    `db:"role" json:"role"`
	Name         string  `db:"name" json:"name"`
	Email        string  `db:"email" json:"email"`
	Phone        *string `db:"phone" json:"phone"`
	PasswordHash string  `db:"password_hash" json:"-"`
}

// RefreshToken models an entry in the `refresh_tokens` table. Only the
// SHA-256 hash of the token handed to the client is stored.
type RefreshToken struct {
	ID        int64      `db:"id"`
	UserID    int64      `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
}
