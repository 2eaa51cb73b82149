package repository

import (
	"context"

	"github.com/spec-kit/feedback-service/internal/domain"
)

// EstablishmentRepository defines persistence access for establishments.
type EstablishmentRepository interface {
	Create(ctx context.Context, establishment *domain.Establishment) error
	GetByID(ctx context.Context, id int64) (*domain.Establishment, error)
	ListByType(ctx context.Context, establishmentType string) ([]domain.Establishment, error)
}

type establishmentRepository struct {
	db DBTX
}

// NewEstablishmentRepository instantiates repository.
func NewEstablishmentRepository(db DBTX) EstablishmentRepository {
	return &establishmentRepository{db: db}
}

func (r *establishmentRepository) Create(ctx context.Context, establishment *domain.Establishment) error {
	const query = `
        INSERT INTO establishment (name, address, type)
        VALUES ($1, $2, $3)
        RETURNING id, create_time`
	err := r.db.QueryRow(ctx, query,
		establishment.Name,
		establishment.Address,
		establishment.Type,
	).Scan(&establishment.ID, &establishment.CreatedAt)
	return mapError(err)
}

func (r *establishmentRepository) GetByID(ctx context.Context, id int64) (*domain.Establishment, error) {
	const query = `
        SELECT id, name, address, type, create_time
        FROM establishment WHERE id=$1`
	var est domain.Establishment
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&est.ID,
		&est.Name,
		&est.Address,
		&est.Type,
		&est.CreatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	return &est, nil
}

func (r *establishmentRepository) ListByType(ctx context.Context, establishmentType string) ([]domain.Establishment, error) {
	const query = `
        SELECT id, name, address, type, create_time
        FROM establishment WHERE type=$1
        ORDER BY id`
	rows, err := r.db.Query(ctx, query, establishmentType)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []domain.Establishment
	for rows.Next() {
		var est domain.Establishment
		if err := rows.Scan(&est.ID, &est.Name, &est.Address, &est.Type, &est.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, est)
	}
	return result, rows.Err()
}
