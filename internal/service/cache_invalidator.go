package service

import (
	"context"

	"github.com/spec-kit/feedback-service/internal/cache"
	"github.com/spec-kit/feedback-service/internal/events"
)

// CacheInvalidator drops an establishment's cached feedback list whenever
// its feedback changes.
type CacheInvalidator struct {
	dispatcher events.Dispatcher
	cache      cache.FeedbackCache
}

func NewCacheInvalidator(dispatcher events.Dispatcher, feedbackCache cache.FeedbackCache) *CacheInvalidator {
	return &CacheInvalidator{dispatcher: dispatcher, cache: feedbackCache}
}

// RegisterHandlers subscribes to feedback events.
func (c *CacheInvalidator) RegisterHandlers() {
	if c.dispatcher == nil || c.cache == nil {
		return
	}
	c.dispatcher.Subscribe(events.EventFeedbackCreated, c.invalidate)
	c.dispatcher.Subscribe(events.EventFeedbackDeleted, c.invalidate)
}

func (c *CacheInvalidator) invalidate(ctx context.Context, event events.Event) error {
	return c.cache.Invalidate(ctx, event.EstablishmentID)
}
