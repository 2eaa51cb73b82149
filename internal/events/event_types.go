package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventFeedbackCreated EventType = "feedback_created"
	EventFeedbackDeleted EventType = "feedback_deleted"
)

// Actor identifies the customer that caused an event.
type Actor struct {
	CustomerID int64  `json:"customer_id"`
	Email      string `json:"email"`
}

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID              string      `json:"id"`
	Type            EventType   `json:"type"`
	FeedbackID      int64       `json:"feedback_id"`
	EstablishmentID int64       `json:"establishment_id"`
	Actor           Actor       `json:"actor"`
	Timestamp       time.Time   `json:"timestamp"`
	Payload         interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, feedbackID, establishmentID int64, actor Actor, payload interface{}) Event {
	return Event{
		ID:              uuid.NewString(),
		Type:            eventType,
		FeedbackID:      feedbackID,
		EstablishmentID: establishmentID,
		Actor:           actor,
		Timestamp:       time.Now().UTC(),
		Payload:         payload,
	}
}

// FeedbackCreatedPayload payload.
type FeedbackCreatedPayload struct {
	Title             string `json:"title"`
	Score             int    `json:"score"`
	EstablishmentName string `json:"establishment_name"`
}
