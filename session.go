package aivae

import "time"

// Session is a persisted conversation transcript.
type Session struct {
	ID        string
	Messages  []Message
	CreatedAt time.Time
	UpdatedAt time.Time
}
