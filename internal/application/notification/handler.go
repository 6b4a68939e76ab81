package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// Publisher hands messages to the delivery pipeline
type Publisher interface {
	Publish(ctx context.Context, msg NotificationMessage) error
}

// OrderNotificationHandler builds customer messages from order events
type OrderNotificationHandler struct {
	publisher Publisher
	location  *time.Location
	logger    *zap.Logger
}

// NewOrderNotificationHandler creates a new handler. Estimated times are
// rendered in location.
func NewOrderNotificationHandler(publisher Publisher, location *time.Location, logger *zap.Logger) *OrderNotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &OrderNotificationHandler{publisher: publisher, location: location, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderNotificationHandler) EventTypes() []string {
	return []string{ordering.EventTypeOrderPlaced, ordering.EventTypeOrderStatusChanged}
}

// Handle publishes a confirmation or status update for the customer
func (h *OrderNotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var (
		msg NotificationMessage
		ok  bool
	)
	switch e := event.(type) {
	case *ordering.OrderPlacedEvent:
		msg, ok = h.confirmation(e)
	case *ordering.OrderStatusChangedEvent:
		msg, ok = h.statusUpdate(e)
	default:
		return nil
	}
	if !ok {
		h.logger.Debug("No customer phone, skipping notification",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()))
		return nil
	}

	msg.EventType = event.EventType()
	if err := h.publisher.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish notification for order %s: %w", msg.OrderNumber, err)
	}
	h.logger.Info("Notification queued",
		zap.String("restaurant_id", msg.RestaurantID.String()),
		zap.String("order_number", msg.OrderNumber),
		zap.String("event_type", msg.EventType))
	return nil
}

func (h *OrderNotificationHandler) confirmation(e *ordering.OrderPlacedEvent) (NotificationMessage, bool) {
	to := valueobject.NormalizePhone(e.CustomerPhone)
	if to == "" {
		return NotificationMessage{}, false
	}
	body := ConfirmationBody(e.OrderNumber, e.Items, valueobject.NewMoney(e.TotalAmount))
	msg := NewNotificationMessage(e.RestaurantID(), to, body)
	msg.OrderNumber = e.OrderNumber
	return msg, true
}

func (h *OrderNotificationHandler) statusUpdate(e *ordering.OrderStatusChangedEvent) (NotificationMessage, bool) {
	to := valueobject.NormalizePhone(e.CustomerPhone)
	if to == "" {
		return NotificationMessage{}, false
	}
	var eta string
	if e.EstimatedDeliveryTime != nil {
		eta = e.EstimatedDeliveryTime.In(h.location).Format("15:04")
	}
	msg := NewNotificationMessage(e.RestaurantID(), to, StatusUpdateBody(e.OrderNumber, e.ToStatus, eta))
	msg.OrderNumber = e.OrderNumber
	return msg, true
}
