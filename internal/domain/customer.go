package domain

import "time"

// Customer is an account that can submit feedback. Email is unique.
type Customer struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
