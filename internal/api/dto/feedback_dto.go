package dto

// FeedbackRequest payload for POST /api/v1/feedback.
type FeedbackRequest struct {
	EstablishmentID int64   `json:"establishmentId" validate:"required,gt=0"`
	Title           string  `json:"title" validate:"required,max=50"`
	TextComment     *string `json:"textComment" validate:"omitempty,max=1000"`
	Score           *int    `json:"score" validate:"required,min=0,max=10"`
}
