package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/feedback-service/internal/domain"
	"github.com/spec-kit/feedback-service/internal/repository"
	apperrors "github.com/spec-kit/feedback-service/pkg/util/errorutil"
)

// EstablishmentService serves read-only establishment lookups.
type EstablishmentService struct {
	establishments repository.EstablishmentRepository
}

func NewEstablishmentService(establishments repository.EstablishmentRepository) *EstablishmentService {
	return &EstablishmentService{establishments: establishments}
}

// FindByID returns ESTABLISHMENT_NOT_FOUND when no row matches.
func (s *EstablishmentService) FindByID(ctx context.Context, id int64) (*domain.Establishment, error) {
	establishment, err := s.establishments.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewEstablishmentNotFound(id)
	}
	return establishment, err
}

// FindByType lists establishments of one type; the type is matched case-insensitively.
func (s *EstablishmentService) FindByType(ctx context.Context, establishmentType string) ([]domain.Establishment, error) {
	establishmentType = strings.ToUpper(strings.TrimSpace(establishmentType))
	if establishmentType == "" {
		return nil, apperrors.NewValidationError("type is required", map[string]any{"field": "type"})
	}
	return s.establishments.ListByType(ctx, establishmentType)
}
