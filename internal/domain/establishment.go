package domain

import "time"

// Establishment is a place customers leave feedback for.
type Establishment struct {
	ID        int64
	Name      string
	Address   *string
	Type      string
	CreatedAt time.Time
}
