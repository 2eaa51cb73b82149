// Package memory provides an in-memory repository.Store for tests and
// development runs without Postgres. Data is lost when the process exits.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/feedback-service/internal/domain"
	"github.com/spec-kit/feedback-service/internal/repository"
)

type pairKey struct {
	customerID      int64
	establishmentID int64
}

// Store keeps all tables behind one mutex. A transaction holds the mutex for
// its whole duration, so transactions are serializable.
type Store struct {
	mu sync.Mutex

	customers      map[int64]domain.Customer
	customerEmails map[string]int64
	establishments map[int64]domain.Establishment
	feedback       map[int64]domain.Feedback
	feedbackPairs  map[pairKey]int64

	nextCustomerID      int64
	nextEstablishmentID int64
	nextFeedbackID      int64

	now func() time.Time
}

var _ repository.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		customers:      make(map[int64]domain.Customer),
		customerEmails: make(map[string]int64),
		establishments: make(map[int64]domain.Establishment),
		feedback:       make(map[int64]domain.Feedback),
		feedbackPairs:  make(map[pairKey]int64),
		now:            time.Now,
	}
}

// Repositories returns repositories that lock per call.
func (s *Store) Repositories() repository.Repositories {
	return s.repos(false)
}

// RunInTx runs fn while holding the store lock. Writes made by fn are kept
// only when fn returns nil.
func (s *Store) RunInTx(ctx context.Context, fn repository.TxFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx, s.repos(true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) repos(inTx bool) repository.Repositories {
	return repository.Repositories{
		Customers:      &customerRepo{s: s, inTx: inTx},
		Establishments: &establishmentRepo{s: s, inTx: inTx},
		Feedback:       &feedbackRepo{s: s, inTx: inTx},
	}
}

// lock acquires the store mutex unless the caller already holds it through RunInTx.
func (s *Store) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type snapshot struct {
	customers      map[int64]domain.Customer
	customerEmails map[string]int64
	establishments map[int64]domain.Establishment
	feedback       map[int64]domain.Feedback
	feedbackPairs  map[pairKey]int64
	ids            [3]int64
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		customers:      cloneMap(s.customers),
		customerEmails: cloneMap(s.customerEmails),
		establishments: cloneMap(s.establishments),
		feedback:       cloneMap(s.feedback),
		feedbackPairs:  cloneMap(s.feedbackPairs),
		ids:            [3]int64{s.nextCustomerID, s.nextEstablishmentID, s.nextFeedbackID},
	}
}

func (s *Store) restore(snap snapshot) {
	s.customers = snap.customers
	s.customerEmails = snap.customerEmails
	s.establishments = snap.establishments
	s.feedback = snap.feedback
	s.feedbackPairs = snap.feedbackPairs
	s.nextCustomerID, s.nextEstablishmentID, s.nextFeedbackID = snap.ids[0], snap.ids[1], snap.ids[2]
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type customerRepo struct {
	s    *Store
	inTx bool
}

func (r *customerRepo) Create(_ context.Context, customer *domain.Customer) error {
	defer r.s.lock(r.inTx)()

	if _, exists := r.s.customerEmails[customer.Email]; exists {
		return repository.ErrDuplicate
	}
	r.s.nextCustomerID++
	now := r.s.now()
	customer.ID = r.s.nextCustomerID
	customer.CreatedAt = now
	customer.UpdatedAt = now
	r.s.customers[customer.ID] = *customer
	r.s.customerEmails[customer.Email] = customer.ID
	return nil
}

func (r *customerRepo) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	defer r.s.lock(r.inTx)()

	customer, ok := r.s.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &customer, nil
}

func (r *customerRepo) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	defer r.s.lock(r.inTx)()

	id, ok := r.s.customerEmails[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	customer := r.s.customers[id]
	return &customer, nil
}

type establishmentRepo struct {
	s    *Store
	inTx bool
}

func (r *establishmentRepo) Create(_ context.Context, establishment *domain.Establishment) error {
	defer r.s.lock(r.inTx)()

	r.s.nextEstablishmentID++
	establishment.ID = r.s.nextEstablishmentID
	establishment.CreatedAt = r.s.now()
	r.s.establishments[establishment.ID] = *establishment
	return nil
}

func (r *establishmentRepo) GetByID(_ context.Context, id int64) (*domain.Establishment, error) {
	defer r.s.lock(r.inTx)()

	est, ok := r.s.establishments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &est, nil
}

func (r *establishmentRepo) ListByType(_ context.Context, establishmentType string) ([]domain.Establishment, error) {
	defer r.s.lock(r.inTx)()

	var result []domain.Establishment
	for _, est := range r.s.establishments {
		if est.Type == establishmentType {
			result = append(result, est)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type feedbackRepo struct {
	s    *Store
	inTx bool
}

func (r *feedbackRepo) ExistsForCustomer(_ context.Context, customerID, establishmentID int64) (bool, error) {
	defer r.s.lock(r.inTx)()

	_, exists := r.s.feedbackPairs[pairKey{customerID, establishmentID}]
	return exists, nil
}

func (r *feedbackRepo) Create(_ context.Context, feedback *domain.Feedback) error {
	defer r.s.lock(r.inTx)()

	key := pairKey{feedback.CustomerID, feedback.EstablishmentID}
	if _, exists := r.s.feedbackPairs[key]; exists {
		return repository.ErrDuplicate
	}
	if _, ok := r.s.customers[feedback.CustomerID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.s.establishments[feedback.EstablishmentID]; !ok {
		return repository.ErrNotFound
	}

	r.s.nextFeedbackID++
	feedback.ID = r.s.nextFeedbackID
	feedback.CreatedAt = r.s.now()
	r.s.feedback[feedback.ID] = *feedback
	r.s.feedbackPairs[key] = feedback.ID
	return nil
}

func (r *feedbackRepo) GetByIDForCustomer(_ context.Context, id, customerID int64) (*domain.Feedback, error) {
	defer r.s.lock(r.inTx)()

	fb, ok := r.s.feedback[id]
	if !ok || fb.CustomerID != customerID {
		return nil, repository.ErrNotFound
	}
	return &fb, nil
}

func (r *feedbackRepo) DeleteForCustomer(_ context.Context, id, customerID int64) error {
	defer r.s.lock(r.inTx)()

	fb, ok := r.s.feedback[id]
	if !ok || fb.CustomerID != customerID {
		return repository.ErrNotFound
	}
	delete(r.s.feedback, id)
	delete(r.s.feedbackPairs, pairKey{fb.CustomerID, fb.EstablishmentID})
	return nil
}

func (r *feedbackRepo) ListByEstablishment(_ context.Context, establishmentID int64) ([]domain.FeedbackView, error) {
	defer r.s.lock(r.inTx)()

	est, ok := r.s.establishments[establishmentID]
	if !ok {
		return nil, nil
	}

	var items []domain.Feedback
	for _, fb := range r.s.feedback {
		if fb.EstablishmentID == establishmentID {
			items = append(items, fb)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	result := make([]domain.FeedbackView, 0, len(items))
	for i := range items {
		customer := r.s.customers[items[i].CustomerID]
		result = append(result, domain.NewFeedbackView(&items[i], &customer, &est))
	}
	return result, nil
}
