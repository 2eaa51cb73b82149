package memory

import (
	"context"

	"github.com/spec-kit/feedback-service/internal/domain"
)

func strPtr(s string) *string { return &s }

// SeedEstablishments inserts the same establishments the SQL seed migration
// provides, so a Postgres-less run has something to review.
func (s *Store) SeedEstablishments(ctx context.Context) ([]domain.Establishment, error) {
	seed := []domain.Establishment{
		{Name: "The Golden Fork", Address: strPtr("12 Market Street"), Type: "RESTAURANT"},
		{Name: "Corner Goods", Address: strPtr("48 High Road"), Type: "SHOP"},
		{Name: "Harbor View Hotel", Address: strPtr("1 Quay Side"), Type: "HOTEL"},
	}
	repo := s.Repositories().Establishments
	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			return nil, err
		}
	}
	return seed, nil
}
