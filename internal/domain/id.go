package domain

import "github.com/google/uuid"

// NewID returns a new time-sortable identifier (UUIDv7) for any entity in
// this package. UUIDv7 is used instead of v4 so ids sort naturally by
// creation time once stored in SQL.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
