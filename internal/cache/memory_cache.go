package cache

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/feedback-service/internal/domain"
)

type memoryEntry struct {
	generation int64
	items      []domain.FeedbackView
	expiresAt  time.Time
}

type memoryFeedbackCache struct {
	mu          sync.Mutex
	ttl         time.Duration
	now         func() time.Time
	generations map[int64]int64
	entries     map[int64]memoryEntry
}

// NewMemoryFeedbackCache keeps listings in process. It is only coherent for a
// single instance, so it backs the in-memory store and tests.
func NewMemoryFeedbackCache(ttl time.Duration) FeedbackCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &memoryFeedbackCache{
		ttl:         ttl,
		now:         time.Now,
		generations: make(map[int64]int64),
		entries:     make(map[int64]memoryEntry),
	}
}

func (c *memoryFeedbackCache) Get(_ context.Context, establishmentID int64) ([]domain.FeedbackView, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	generation := c.generations[establishmentID]
	entry, ok := c.entries[establishmentID]
	if !ok || entry.generation != generation || !c.now().Before(entry.expiresAt) {
		return nil, generation, false, nil
	}
	return append([]domain.FeedbackView(nil), entry.items...), generation, true, nil
}

// Set drops listings read under a generation that has since been invalidated.
func (c *memoryFeedbackCache) Set(_ context.Context, establishmentID, generation int64, items []domain.FeedbackView) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generations[establishmentID] {
		return nil
	}
	c.entries[establishmentID] = memoryEntry{
		generation: generation,
		items:      append([]domain.FeedbackView(nil), items...),
		expiresAt:  c.now().Add(c.ttl),
	}
	return nil
}

func (c *memoryFeedbackCache) Invalidate(_ context.Context, establishmentID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generations[establishmentID]++
	delete(c.entries, establishmentID)
	return nil
}
