package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/feedback-service/internal/auth"
	"github.com/spec-kit/feedback-service/internal/cache"
	"github.com/spec-kit/feedback-service/internal/domain"
	"github.com/spec-kit/feedback-service/internal/events"
	"github.com/spec-kit/feedback-service/internal/observability"
	"github.com/spec-kit/feedback-service/internal/repository"
	apperrors "github.com/spec-kit/feedback-service/pkg/util/errorutil"
)

// FeedbackService enforces who may create, delete and read feedback.
type FeedbackService struct {
	store      repository.Store
	cache      cache.FeedbackCache
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// FeedbackDependencies bundles collaborators for the feedback service.
// Only Store is required.
type FeedbackDependencies struct {
	Store      repository.Store
	Cache      cache.FeedbackCache
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// FeedbackCreateInput describes a feedback submission.
type FeedbackCreateInput struct {
	EstablishmentID int64
	Title           string
	TextComment     *string
	Score           int
}

// NewFeedbackService builds the service.
func NewFeedbackService(deps FeedbackDependencies) *FeedbackService {
	s := &FeedbackService{
		store:      deps.Store,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
	if s.cache == nil {
		s.cache = cache.NewNoopFeedbackCache()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// ResolveIdentity loads the customer behind the request identity.
func (s *FeedbackService) ResolveIdentity(ctx context.Context) (*domain.Customer, error) {
	return resolveCustomer(ctx, s.store.Repositories().Customers)
}

func resolveCustomer(ctx context.Context, customers repository.CustomerRepository) (*domain.Customer, error) {
	subject, ok := auth.CurrentSubject(ctx)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	customer, err := customers.GetByEmail(ctx, subject)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewIdentityNotFound()
	}
	if err != nil {
		return nil, err
	}
	return customer, nil
}

// CreateFeedback stores a feedback entry owned by the current customer.
// At most one entry per customer and establishment is accepted; when two
// submissions race, the storage constraint decides and the loser gets
// DUPLICATE_SUBMISSION.
func (s *FeedbackService) CreateFeedback(ctx context.Context, input FeedbackCreateInput) (*domain.FeedbackView, error) {
	if _, ok := auth.CurrentSubject(ctx); !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	feedback := &domain.Feedback{
		EstablishmentID: input.EstablishmentID,
		Title:           input.Title,
		TextComment:     input.TextComment,
		Score:           input.Score,
	}
	if err := feedback.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}

	var view domain.FeedbackView
	var customer *domain.Customer
	err := s.store.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		customer, err = resolveCustomer(ctx, repos.Customers)
		if err != nil {
			return err
		}
		feedback.CustomerID = customer.ID

		exists, err := repos.Feedback.ExistsForCustomer(ctx, customer.ID, input.EstablishmentID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.NewDuplicateSubmission(input.EstablishmentID)
		}

		establishment, err := repos.Establishments.GetByID(ctx, input.EstablishmentID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewEstablishmentNotFound(input.EstablishmentID)
		}
		if err != nil {
			return err
		}

		if err := repos.Feedback.Create(ctx, feedback); err != nil {
			return err
		}
		view = domain.NewFeedbackView(feedback, customer, establishment)
		return nil
	})
	if errors.Is(err, repository.ErrDuplicate) {
		err = apperrors.NewDuplicateSubmission(input.EstablishmentID)
	}
	if apperrors.HasCode(err, apperrors.CodeDuplicateSubmission) {
		s.metrics.DuplicateRejected()
	}
	if err != nil {
		return nil, err
	}

	s.metrics.FeedbackCreated()
	s.publish(ctx, events.NewEvent(events.EventFeedbackCreated, feedback.ID, feedback.EstablishmentID,
		events.Actor{CustomerID: customer.ID, Email: customer.Email},
		events.FeedbackCreatedPayload{Title: view.Title, Score: view.Score, EstablishmentName: view.EstablishmentName}))
	return &view, nil
}

// DeleteFeedback removes a feedback entry owned by the current customer. A
// missing entry and an entry owned by someone else are reported the same way.
func (s *FeedbackService) DeleteFeedback(ctx context.Context, feedbackID int64) error {
	if _, ok := auth.CurrentSubject(ctx); !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var deleted *domain.Feedback
	var customer *domain.Customer
	err := s.store.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		customer, err = resolveCustomer(ctx, repos.Customers)
		if err != nil {
			return err
		}

		deleted, err = repos.Feedback.GetByIDForCustomer(ctx, feedbackID, customer.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewFeedbackNotFound(feedbackID)
		}
		if err != nil {
			return err
		}

		err = repos.Feedback.DeleteForCustomer(ctx, feedbackID, customer.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewFeedbackNotFound(feedbackID)
		}
		return err
	})
	if err != nil {
		return err
	}

	s.metrics.FeedbackDeleted()
	s.publish(ctx, events.NewEvent(events.EventFeedbackDeleted, deleted.ID, deleted.EstablishmentID,
		events.Actor{CustomerID: customer.ID, Email: customer.Email}, nil))
	return nil
}

// ListFeedback returns every feedback entry of an establishment. No identity
// is required. An empty result is reported as NO_FEEDBACK_FOR_ESTABLISHMENT.
func (s *FeedbackService) ListFeedback(ctx context.Context, establishmentID int64) ([]domain.FeedbackView, error) {
	items, generation, hit, err := s.cache.Get(ctx, establishmentID)
	cacheable := err == nil
	if err != nil {
		s.logger.Warn("feedback cache read failed", zap.Int64("establishment_id", establishmentID), zap.Error(err))
	}
	if hit && len(items) > 0 {
		return items, nil
	}

	items, err = s.store.Repositories().Feedback.ListByEstablishment(ctx, establishmentID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperrors.NewNoFeedbackForEstablishment(establishmentID)
	}

	// Stored under the generation read above; a write committed since then
	// has advanced it and this listing is never served.
	if cacheable {
		if err := s.cache.Set(ctx, establishmentID, generation, items); err != nil {
			s.logger.Warn("feedback cache write failed", zap.Int64("establishment_id", establishmentID), zap.Error(err))
		}
	}
	return items, nil
}

// publish runs after commit; subscriber failures are logged and never undo the write.
func (s *FeedbackService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event subscribers failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("feedback_id", event.FeedbackID),
			zap.Error(err))
	}
}
