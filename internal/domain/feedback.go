package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	FeedbackTitleMaxLen   = 50
	FeedbackCommentMaxLen = 1000
	FeedbackScoreMin      = 0
	FeedbackScoreMax      = 10
)

var (
	ErrFeedbackTitleRequired = errors.New("title is required")
	ErrFeedbackTitleTooLong  = errors.New("title must be at most 50 characters")
	ErrFeedbackCommentLength = errors.New("text comment must be at most 1000 characters")
	ErrFeedbackScoreRange    = errors.New("score must be between 0 and 10")
)

// Feedback is a single customer's review of a single establishment.
// At most one exists per (CustomerID, EstablishmentID).
type Feedback struct {
	ID              int64
	CustomerID      int64
	EstablishmentID int64
	Title           string
	TextComment     *string
	Score           int
	CreatedAt       time.Time
}

// Validate checks the field invariants independently of any transport validation.
func (f *Feedback) Validate() error {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return ErrFeedbackTitleRequired
	}
	if utf8.RuneCountInString(f.Title) > FeedbackTitleMaxLen {
		return ErrFeedbackTitleTooLong
	}
	if f.TextComment != nil && utf8.RuneCountInString(*f.TextComment) > FeedbackCommentMaxLen {
		return ErrFeedbackCommentLength
	}
	if f.Score < FeedbackScoreMin || f.Score > FeedbackScoreMax {
		return ErrFeedbackScoreRange
	}
	return nil
}

// FeedbackView is the read model returned to clients.
type FeedbackView struct {
	ID                int64   `json:"id"`
	Title             string  `json:"title"`
	TextComment       *string `json:"textComment"`
	Score             int     `json:"score"`
	CustomerEmail     string  `json:"customerEmail"`
	EstablishmentName string  `json:"establishmentName"`
}

// NewFeedbackView joins a feedback with its owner and establishment.
func NewFeedbackView(f *Feedback, customer *Customer, establishment *Establishment) FeedbackView {
	return FeedbackView{
		ID:                f.ID,
		Title:             f.Title,
		TextComment:       f.TextComment,
		Score:             f.Score,
		CustomerEmail:     customer.Email,
		EstablishmentName: establishment.Name,
	}
}
