// Package queue defines the messages exchanged over the broker and the
// AMQP publisher and consumer that carry them.
package queue

// RosterQueue is the durable queue receiving roster changes.
const RosterQueue = "event.roster.updated"

// RosterUpdatedEvent is published after an event's artist roster has been
// replaced. It carries enough for consumers to log or notify without
// querying the database.
type RosterUpdatedEvent struct {
	EventID     int64    `json:"event_id"`
	EventTitle  string   `json:"event_title"`
	EventStart  string   `json:"event_start"`
	ArtistIDs   []int64  `json:"artist_ids"`
	ArtistNames []string `json:"artist_names"`
	UpdatedAt   string   `json:"updated_at"`
}
