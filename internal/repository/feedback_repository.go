package repository

import (
	"context"

	"github.com/spec-kit/feedback-service/internal/domain"
)

// FeedbackRepository encapsulates feedback persistence. Lookups that act on
// behalf of a customer always include the customer id in the predicate.
type FeedbackRepository interface {
	ExistsForCustomer(ctx context.Context, customerID, establishmentID int64) (bool, error)
	Create(ctx context.Context, feedback *domain.Feedback) error
	GetByIDForCustomer(ctx context.Context, id, customerID int64) (*domain.Feedback, error)
	DeleteForCustomer(ctx context.Context, id, customerID int64) error
	ListByEstablishment(ctx context.Context, establishmentID int64) ([]domain.FeedbackView, error)
}

type feedbackRepository struct {
	db DBTX
}

// NewFeedbackRepository instantiates repository.
func NewFeedbackRepository(db DBTX) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) ExistsForCustomer(ctx context.Context, customerID, establishmentID int64) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM feedback WHERE customer_id=$1 AND establishment_id=$2
        )`
	var exists bool
	if err := r.db.QueryRow(ctx, query, customerID, establishmentID).Scan(&exists); err != nil {
		return false, mapError(err)
	}
	return exists, nil
}

// Create inserts feedback. A concurrent insert for the same pair surfaces as
// ErrDuplicate through uq_feedback_customer_establishment.
func (r *feedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	const query = `
        INSERT INTO feedback (customer_id, establishment_id, title, text_comment, score)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, create_time`
	err := r.db.QueryRow(ctx, query,
		feedback.CustomerID,
		feedback.EstablishmentID,
		feedback.Title,
		feedback.TextComment,
		feedback.Score,
	).Scan(&feedback.ID, &feedback.CreatedAt)
	return mapError(err)
}

func (r *feedbackRepository) GetByIDForCustomer(ctx context.Context, id, customerID int64) (*domain.Feedback, error) {
	const query = `
        SELECT id, customer_id, establishment_id, title, text_comment, score, create_time
        FROM feedback WHERE id=$1 AND customer_id=$2`
	var fb domain.Feedback
	if err := r.db.QueryRow(ctx, query, id, customerID).Scan(
		&fb.ID,
		&fb.CustomerID,
		&fb.EstablishmentID,
		&fb.Title,
		&fb.TextComment,
		&fb.Score,
		&fb.CreatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	return &fb, nil
}

func (r *feedbackRepository) DeleteForCustomer(ctx context.Context, id, customerID int64) error {
	const query = `DELETE FROM feedback WHERE id=$1 AND customer_id=$2`
	cmd, err := r.db.Exec(ctx, query, id, customerID)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *feedbackRepository) ListByEstablishment(ctx context.Context, establishmentID int64) ([]domain.FeedbackView, error) {
	const query = `
        SELECT f.id, f.title, f.text_comment, f.score, c.email, e.name
        FROM feedback f
        JOIN customer c ON c.id = f.customer_id
        JOIN establishment e ON e.id = f.establishment_id
        WHERE f.establishment_id=$1
        ORDER BY f.create_time, f.id`
	rows, err := r.db.Query(ctx, query, establishmentID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []domain.FeedbackView
	for rows.Next() {
		var view domain.FeedbackView
		if err := rows.Scan(
			&view.ID,
			&view.Title,
			&view.TextComment,
			&view.Score,
			&view.CustomerEmail,
			&view.EstablishmentName,
		); err != nil {
			return nil, err
		}
		result = append(result, view)
	}
	return result, rows.Err()
}
