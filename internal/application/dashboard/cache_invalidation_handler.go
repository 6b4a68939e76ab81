package dashboard

import (
	"context"

	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/restaurant/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CacheInvalidationHandler drops cached dashboard figures whenever an
// order of the restaurant changes
type CacheInvalidationHandler struct {
	service *DashboardService
	logger  *zap.Logger
}

// NewCacheInvalidationHandler creates a new handler
func NewCacheInvalidationHandler(service *DashboardService, logger *zap.Logger) *CacheInvalidationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheInvalidationHandler{service: service, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *CacheInvalidationHandler) EventTypes() []string {
	return ordering.OrderEventTypes()
}

// Handle invalidates the cache of the event's restaurant
func (h *CacheInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if err := h.service.Invalidate(ctx, event.RestaurantID()); err != nil {
		h.logger.Warn("failed to invalidate dashboard cache",
			zap.String("restaurant_id", event.RestaurantID().String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		return err
	}
	return nil
}
