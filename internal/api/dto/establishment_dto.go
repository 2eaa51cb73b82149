package dto

import (
	"time"

	"github.com/spec-kit/feedback-service/internal/domain"
)

// EstablishmentResponse is the public shape of an establishment.
type EstablishmentResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address,omitempty"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewEstablishmentResponse(e domain.Establishment) EstablishmentResponse {
	return EstablishmentResponse{
		ID:        e.ID,
		Name:      e.Name,
		Address:   e.Address,
		Type:      e.Type,
		CreatedAt: e.CreatedAt,
	}
}

func NewEstablishmentResponses(items []domain.Establishment) []EstablishmentResponse {
	out := make([]EstablishmentResponse, 0, len(items))
	for _, e := range items {
		out = append(out, NewEstablishmentResponse(e))
	}
	return out
}
