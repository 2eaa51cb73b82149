package worker

import (
	"github.com/spec-kit/feedback-service/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// StartCacheInvalidationWorker registers the feedback-list cache invalidation handlers.
func StartCacheInvalidationWorker(invalidator *service.CacheInvalidator) {
	if invalidator == nil {
		return
	}
	invalidator.RegisterHandlers()
}
