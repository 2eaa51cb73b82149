// Package cache holds read-through caches for public feedback listings.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/feedback-service/internal/domain"
)

// DefaultTTL applies when a cache is built with a non-positive ttl.
const DefaultTTL = 5 * time.Minute

// FeedbackCache caches the feedback list of an establishment.
//
// Every establishment has a generation that Invalidate advances. Get reports
// the generation it looked at, and Set stores under that generation only, so
// a listing read from storage before an invalidation can never be served
// after it.
type FeedbackCache interface {
	Get(ctx context.Context, establishmentID int64) (items []domain.FeedbackView, generation int64, hit bool, err error)
	Set(ctx context.Context, establishmentID, generation int64, items []domain.FeedbackView) error
	Invalidate(ctx context.Context, establishmentID int64) error
}

// FeedbackListKey is the Redis key for one generation of an establishment's feedback list.
func FeedbackListKey(establishmentID, generation int64) string {
	return fmt.Sprintf("feedback:establishment:%d:v%d", establishmentID, generation)
}

// GenerationKey is the Redis counter advanced on every invalidation.
func GenerationKey(establishmentID int64) string {
	return fmt.Sprintf("feedback:establishment:%d:gen", establishmentID)
}

type redisFeedbackCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisFeedbackCache stores listings as JSON. Superseded generations are
// left to expire after ttl.
func NewRedisFeedbackCache(client *redis.Client, ttl time.Duration) FeedbackCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisFeedbackCache{client: client, ttl: ttl}
}

func (c *redisFeedbackCache) Get(ctx context.Context, establishmentID int64) ([]domain.FeedbackView, int64, bool, error) {
	generation, err := c.client.Get(ctx, GenerationKey(establishmentID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, false, err
	}

	raw, err := c.client.Get(ctx, FeedbackListKey(establishmentID, generation)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, generation, false, nil
	}
	if err != nil {
		return nil, 0, false, err
	}
	var items []domain.FeedbackView
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, 0, false, fmt.Errorf("decode cached feedback: %w", err)
	}
	return items, generation, true, nil
}

func (c *redisFeedbackCache) Set(ctx context.Context, establishmentID, generation int64, items []domain.FeedbackView) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode feedback for cache: %w", err)
	}
	return c.client.Set(ctx, FeedbackListKey(establishmentID, generation), raw, c.ttl).Err()
}

func (c *redisFeedbackCache) Invalidate(ctx context.Context, establishmentID int64) error {
	next, err := c.client.Incr(ctx, GenerationKey(establishmentID)).Result()
	if err != nil {
		return err
	}
	return c.client.Del(ctx, FeedbackListKey(establishmentID, next-1)).Err()
}

type noopFeedbackCache struct{}

// NewNoopFeedbackCache returns a cache that never hits.
func NewNoopFeedbackCache() FeedbackCache {
	return noopFeedbackCache{}
}

func (noopFeedbackCache) Get(context.Context, int64) ([]domain.FeedbackView, int64, bool, error) {
	return nil, 0, false, nil
}

func (noopFeedbackCache) Set(context.Context, int64, int64, []domain.FeedbackView) error { return nil }

func (noopFeedbackCache) Invalidate(context.Context, int64) error { return nil }
