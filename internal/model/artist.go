package model

// Artist is a row of the `artists` table. Name is unique.
// EventCount is derived from event_bookings when the artist is read.
type Artist struct {
	ID         int64      `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	Type       ArtistType `db:"type" json:"type"`
	Label      *string    `db:"label" json:"label"`
	Members    *string    `db:"members" json:"members"`
	Agency     *string    `db:"agency" json:"agency"`
	Notes      *string    `db:"notes" json:"notes"`
	Email      *string    `db:"email" json:"email"`
	Phone      *string    `db:"phone" json:"phone"`
	Web        *string    `db:"web" json:"web"`
	EventCount int64      `db:"event_count" json:"event_count"`
}
