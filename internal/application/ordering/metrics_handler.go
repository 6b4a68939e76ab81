package ordering

import (
	"context"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MetricsRecorder receives order counters
type MetricsRecorder interface {
	RecordOrderPlaced(ctx context.Context, restaurantID uuid.UUID, paymentMethod string, total decimal.Decimal)
	RecordStatusTransition(ctx context.Context, restaurantID uuid.UUID, from, to string)
	RecordCancellation(ctx context.Context, restaurantID uuid.UUID, from string)
	RecordPayment(ctx context.Context, restaurantID uuid.UUID, status string)
}

// MetricsHandler feeds order events into business metrics
type MetricsHandler struct {
	recorder MetricsRecorder
}

// NewMetricsHandler creates a new MetricsHandler
func NewMetricsHandler(recorder MetricsRecorder) *MetricsHandler {
	return &MetricsHandler{recorder: recorder}
}

// EventTypes returns the event types this handler is interested in
func (h *MetricsHandler) EventTypes() []string {
	return ordering.OrderEventTypes()
}

// Handle records the event; it never fails
func (h *MetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	rid := event.RestaurantID()
	switch e := event.(type) {
	case *ordering.OrderPlacedEvent:
		h.recorder.RecordOrderPlaced(ctx, rid, string(e.PaymentMethod), e.TotalAmount)
	case *ordering.OrderStatusChangedEvent:
		h.recorder.RecordStatusTransition(ctx, rid, string(e.FromStatus), string(e.ToStatus))
	case *ordering.OrderCancelledEvent:
		h.recorder.RecordCancellation(ctx, rid, string(e.FromStatus))
	case *ordering.OrderPaymentStatusChangedEvent:
		h.recorder.RecordPayment(ctx, rid, string(e.To))
	}
	return nil
}
