package model

import "time"

// Event is a row of the `events` table joined with the display names of the
// four crew members it references. An event always has a title and a start.
type Event struct {
	ID             int64       `db:"id" json:"id"`
	Category       Category    `db:"category" json:"category"`
	Title          string      `db:"title" json:"title"`
	Start          time.Time   `db:"start_" json:"start_"`
	End            *time.Time  `db:"end_" json:"end_"`
	DoorsOpen      *time.Time  `db:"doors_open" json:"doors_open"`
	State          *EventState `db:"state" json:"state"`
	Floor          *Floor      `db:"floors" json:"floors"`
	ResponsibleID  *int64      `db:"responsible_id" json:"responsible_id"`
	LightID        *int64      `db:"light_id" json:"light_id"`
	SoundID        *int64      `db:"sound_id" json:"sound_id"`
	ArtistCareID   *int64      `db:"artist_care_id" json:"artist_care_id"`
	Admission      *int        `db:"admission" json:"admission"`
	BreakEven      *int        `db:"break_even" json:"break_even"`
	Presstext      *string     `db:"presstext" json:"presstext"`
	NotesInternal  *string     `db:"notes_internal" json:"notes_internal"`
	TechnicalNotes *string     `db:"technical_notes" json:"technical_notes"`
	APINotes       *string     `db:"api_notes" json:"api_notes"`

	ResponsibleName *string `db:"responsible_name" json:"responsible_name"`
	LightName       *string `db:"light_name" json:"light_name"`
	SoundName       *string `db:"sound_name" json:"sound_name"`
	ArtistCareName  *string `db:"artist_care_name" json:"artist_care_name"`
}

// EventImage is metadata for an uploaded picture. The file lives under the
// event's upload directory; DeletedAt marks rows whose file is being removed.
type EventImage struct {
	ID         int64      `db:"id" json:"id"`
	EventID    int64      `db:"event_id" json:"event_id"`
	Filename   string     `db:"filename" json:"filename"`
	URL        string     `db:"url" json:"url"`
	UploadedAt time.Time  `db:"uploaded_at" json:"uploaded_at"`
	DeletedAt  *time.Time `db:"deleted_at" json:"-"`
}
