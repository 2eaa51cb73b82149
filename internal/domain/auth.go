package domain

import "time"

// Token describes an issued access token. Tokens are never persisted.
type Token struct {
	ID        string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
