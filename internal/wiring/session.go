package wiring

import "github.com/google/uuid"

// NewSessionID mints a session identifier, preferring UUIDv7's
// time-ordered layout and falling back to v4 if the host clock read
// fails.
func NewSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
