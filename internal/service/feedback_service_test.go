package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/feedback-service/internal/auth"
	"github.com/spec-kit/feedback-service/internal/cache"
	"github.com/spec-kit/feedback-service/internal/domain"
	"github.com/spec-kit/feedback-service/internal/events"
	"github.com/spec-kit/feedback-service/internal/observability"
	"github.com/spec-kit/feedback-service/internal/repository"
	"github.com/spec-kit/feedback-service/internal/repository/memory"
	apperrors "github.com/spec-kit/feedback-service/pkg/util/errorutil"
)

const (
	alice = "alice@example.com"
	bob   = "bob@example.com"
)

type fixture struct {
	store          *memory.Store
	svc            *FeedbackService
	dispatcher     events.Dispatcher
	metrics        *observability.Metrics
	customers      map[string]*domain.Customer
	establishments []domain.Establishment
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	establishments, err := store.SeedEstablishments(ctx)
	require.NoError(t, err)

	customers := map[string]*domain.Customer{}
	for _, email := range []string{alice, bob} {
		c := &domain.Customer{Email: email, PasswordHash: "x"}
		require.NoError(t, store.Repositories().Customers.Create(ctx, c))
		customers[email] = c
	}

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	return &fixture{
		store:          store,
		dispatcher:     dispatcher,
		metrics:        metrics,
		customers:      customers,
		establishments: establishments,
		svc: NewFeedbackService(FeedbackDependencies{
			Store:      store,
			Dispatcher: dispatcher,
			Metrics:    metrics,
		}),
	}
}

func as(subject string) context.Context {
	return auth.WithIdentity(context.Background(), auth.Authenticated(subject))
}

func great(establishmentID int64) FeedbackCreateInput {
	return FeedbackCreateInput{EstablishmentID: establishmentID, Title: "Great", Score: 5}
}

func TestCreateFeedbackOncePerEstablishment(t *testing.T) {
	f := newFixture(t)

	view, err := f.svc.CreateFeedback(as(alice), great(1))
	require.NoError(t, err)
	assert.Equal(t, "Great", view.Title)
	assert.Equal(t, 5, view.Score)
	assert.Equal(t, alice, view.CustomerEmail)
	assert.Equal(t, "The Golden Fork", view.EstablishmentName)

	_, err = f.svc.CreateFeedback(as(alice), great(1))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDuplicateSubmission))

	_, err = f.svc.CreateFeedback(as(bob), great(1))
	require.NoError(t, err)
	_, err = f.svc.CreateFeedback(as(alice), great(2))
	require.NoError(t, err)
}

func TestCreateFeedbackErrors(t *testing.T) {
	long := string(make([]rune, 1001))
	tests := []struct {
		name  string
		ctx   context.Context
		input FeedbackCreateInput
		code  string
	}{
		{"anonymous", context.Background(), great(1), apperrors.CodeUnauthorized},
		{"unknown subject", as("ghost@example.com"), great(1), apperrors.CodeIdentityNotFound},
		{"unknown establishment", as(alice), great(99), apperrors.CodeEstablishmentNotFound},
		{"empty title", as(alice), FeedbackCreateInput{EstablishmentID: 1, Title: " ", Score: 5}, apperrors.CodeValidationFailed},
		{"score above range", as(alice), FeedbackCreateInput{EstablishmentID: 1, Title: "ok", Score: 11}, apperrors.CodeValidationFailed},
		{"score below range", as(alice), FeedbackCreateInput{EstablishmentID: 1, Title: "ok", Score: -1}, apperrors.CodeValidationFailed},
		{"comment too long", as(alice), FeedbackCreateInput{EstablishmentID: 1, Title: "ok", TextComment: &long, Score: 1}, apperrors.CodeValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.CreateFeedback(tt.ctx, tt.input)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)

			_, err = f.svc.ListFeedback(context.Background(), 1)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeNoFeedbackForEstablishment))
		})
	}
}

func TestCreateFeedbackBoundaryScores(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateFeedback(as(alice), FeedbackCreateInput{EstablishmentID: 1, Title: "zero", Score: 0})
	require.NoError(t, err)
	_, err = f.svc.CreateFeedback(as(alice), FeedbackCreateInput{EstablishmentID: 2, Title: "ten", Score: 10})
	require.NoError(t, err)
}

func TestConcurrentCreateHasOneWinner(t *testing.T) {
	f := newFixture(t)
	const workers = 16

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateFeedback(as(alice), great(3))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperrors.HasCode(err, apperrors.CodeDuplicateSubmission), "got %v", err)
	}
	assert.Equal(t, 1, succeeded)

	items, err := f.svc.ListFeedback(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

// blindFeedback hides existing rows from the existence check, so only the
// insert's uniqueness check can reject a second submission.
type blindFeedback struct {
	repository.FeedbackRepository
}

func (blindFeedback) ExistsForCustomer(context.Context, int64, int64) (bool, error) {
	return false, nil
}

type blindStore struct {
	*memory.Store
}

func (s blindStore) RunInTx(ctx context.Context, fn repository.TxFunc) error {
	return s.Store.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		repos.Feedback = blindFeedback{repos.Feedback}
		return fn(ctx, repos)
	})
}

func TestUniqueViolationIsReportedAsDuplicate(t *testing.T) {
	f := newFixture(t)
	svc := NewFeedbackService(FeedbackDependencies{Store: blindStore{f.store}})

	_, err := svc.CreateFeedback(as(alice), great(1))
	require.NoError(t, err)

	_, err = svc.CreateFeedback(as(alice), great(1))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDuplicateSubmission), "got %v", err)
}

func TestDeleteFeedbackOwnership(t *testing.T) {
	f := newFixture(t)

	bobs, err := f.svc.CreateFeedback(as(bob), great(1))
	require.NoError(t, err)

	err = f.svc.DeleteFeedback(as(alice), bobs.ID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeFeedbackNotFound))

	err = f.svc.DeleteFeedback(as(alice), 12345)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeFeedbackNotFound))

	err = f.svc.DeleteFeedback(context.Background(), bobs.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	err = f.svc.DeleteFeedback(as("ghost@example.com"), bobs.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeIdentityNotFound))

	require.NoError(t, f.svc.DeleteFeedback(as(bob), bobs.ID))
	err = f.svc.DeleteFeedback(as(bob), bobs.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeFeedbackNotFound))

	_, err = f.svc.CreateFeedback(as(bob), great(1))
	assert.NoError(t, err, "deleting frees the pair for a new submission")
}

func TestListFeedback(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ListFeedback(context.Background(), 1)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNoFeedbackForEstablishment))
	_, err = f.svc.ListFeedback(context.Background(), 404)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNoFeedbackForEstablishment))

	_, err = f.svc.CreateFeedback(as(alice), great(1))
	require.NoError(t, err)
	_, err = f.svc.CreateFeedback(as(bob), FeedbackCreateInput{EstablishmentID: 1, Title: "Meh", Score: 2})
	require.NoError(t, err)

	items, err := f.svc.ListFeedback(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, alice, items[0].CustomerEmail)
	assert.Equal(t, "Meh", items[1].Title)
}

func TestResolveIdentity(t *testing.T) {
	f := newFixture(t)

	customer, err := f.svc.ResolveIdentity(as(alice))
	require.NoError(t, err)
	assert.Equal(t, f.customers[alice].ID, customer.ID)

	_, err = f.svc.ResolveIdentity(context.Background())
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	_, err = f.svc.ResolveIdentity(as("ghost@example.com"))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeIdentityNotFound))
}

func TestFeedbackEventsPublishedAfterCommit(t *testing.T) {
	f := newFixture(t)

	var got []events.Event
	record := func(_ context.Context, e events.Event) error {
		got = append(got, e)
		return nil
	}
	f.dispatcher.Subscribe(events.EventFeedbackCreated, record)
	f.dispatcher.Subscribe(events.EventFeedbackDeleted, record)

	view, err := f.svc.CreateFeedback(as(alice), great(2))
	require.NoError(t, err)
	_, err = f.svc.CreateFeedback(as(alice), great(2))
	require.Error(t, err)
	require.NoError(t, f.svc.DeleteFeedback(as(alice), view.ID))

	require.Len(t, got, 2)
	assert.Equal(t, events.EventFeedbackCreated, got[0].Type)
	assert.Equal(t, view.ID, got[0].FeedbackID)
	assert.Equal(t, int64(2), got[0].EstablishmentID)
	assert.Equal(t, alice, got[0].Actor.Email)
	assert.Equal(t, events.EventFeedbackDeleted, got[1].Type)
}

// recordingCache wraps the in-process cache, records invalidations and can
// run a callback right before a listing is written back.
type recordingCache struct {
	cache.FeedbackCache
	mu          sync.Mutex
	invalidated []int64
	beforeSet   func()
}

func newRecordingCache() *recordingCache {
	return &recordingCache{FeedbackCache: cache.NewMemoryFeedbackCache(time.Minute)}
}

func (c *recordingCache) Set(ctx context.Context, id, generation int64, items []domain.FeedbackView) error {
	if hook := c.beforeSet; hook != nil {
		c.beforeSet = nil
		hook()
	}
	return c.FeedbackCache.Set(ctx, id, generation, items)
}

func (c *recordingCache) Invalidate(ctx context.Context, id int64) error {
	c.mu.Lock()
	c.invalidated = append(c.invalidated, id)
	c.mu.Unlock()
	return c.FeedbackCache.Invalidate(ctx, id)
}

func TestListFeedbackUsesCacheAndEventsInvalidateIt(t *testing.T) {
	f := newFixture(t)
	c := newRecordingCache()
	svc := NewFeedbackService(FeedbackDependencies{Store: f.store, Cache: c, Dispatcher: f.dispatcher})
	NewCacheInvalidator(f.dispatcher, c).RegisterHandlers()

	first, err := svc.CreateFeedback(as(alice), great(1))
	require.NoError(t, err)

	items, err := svc.ListFeedback(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, items, 1)

	cached, _, hit, _ := c.Get(context.Background(), 1)
	require.True(t, hit)
	assert.Equal(t, items, cached)

	_, err = svc.CreateFeedback(as(bob), great(1))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 1}, c.invalidated)

	items, err = svc.ListFeedback(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	require.NoError(t, svc.DeleteFeedback(as(alice), first.ID))
	items, err = svc.ListFeedback(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestListFeedbackDoesNotCacheListingOverlappingAWrite(t *testing.T) {
	f := newFixture(t)
	c := newRecordingCache()
	svc := NewFeedbackService(FeedbackDependencies{Store: f.store, Cache: c, Dispatcher: f.dispatcher})
	NewCacheInvalidator(f.dispatcher, c).RegisterHandlers()

	view, err := svc.CreateFeedback(as(alice), great(1))
	require.NoError(t, err)

	// The delete commits after the listing was read but before it is cached.
	c.beforeSet = func() {
		require.NoError(t, svc.DeleteFeedback(as(alice), view.ID))
	}
	items, err := svc.ListFeedback(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = svc.ListFeedback(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNoFeedbackForEstablishment), "got %v", err)
}
