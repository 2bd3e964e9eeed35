package model

import "time"

const DeadLetterStatusPending = "pending"

// DeadLetterMessage is a notification that could not be published, kept for
// later redelivery.
type DeadLetterMessage struct {
	ID        string    `db:"id"`
	Topic     string    `db:"topic"`
	EventKey  string    `db:"event_key"` // external id of the user the event is about
	Payload   string    `db:"payload"`   // JSON
	LastError string    `db:"last_error"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
