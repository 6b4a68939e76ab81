// Package realtime publishes a per-restaurant feed of data changes to
// connected dashboards and order tracking pages.
package realtime

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/customer"
	"github.com/restaurant/backend/internal/domain/menu"
	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/restaurant/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Tables reported in change events
const (
	TableOrders         = "orders"
	TableMenuItems      = "menu_items"
	TableMenuCategories = "menu_categories"
	TableCustomers      = "customers"
)

// Actions reported in change events
const (
	ActionInsert = "INSERT"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// ChangeEvent describes one changed row
type ChangeEvent struct {
	Table        string    `json:"table"`
	Action       string    `json:"action"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	RecordID     uuid.UUID `json:"record_id"`
	OrderNumber  string    `json:"order_number,omitempty"`
	Status       string    `json:"status,omitempty"`
	At           time.Time `json:"at"`
}

// Broadcaster delivers change events to subscribers
type Broadcaster interface {
	Broadcast(ctx context.Context, event ChangeEvent) error
}

// FromDomainEvent maps a domain event to a change event.
// ok is false for events that are not part of the feed.
func FromDomainEvent(event shared.DomainEvent) (ChangeEvent, bool) {
	ce := ChangeEvent{
		Action:       ActionUpdate,
		RestaurantID: event.RestaurantID(),
		RecordID:     event.AggregateID(),
		At:           event.OccurredAt(),
	}

	switch e := event.(type) {
	case *ordering.OrderPlacedEvent:
		ce.Table, ce.Action = TableOrders, ActionInsert
		ce.OrderNumber, ce.Status = e.OrderNumber, string(ordering.OrderStatusPending)
	case *ordering.OrderStatusChangedEvent:
		ce.Table = TableOrders
		ce.OrderNumber, ce.Status = e.OrderNumber, string(e.ToStatus)
	case *ordering.OrderCancelledEvent:
		ce.Table = TableOrders
		ce.OrderNumber, ce.Status = e.OrderNumber, string(ordering.OrderStatusCancelled)
	case *ordering.OrderPaymentStatusChangedEvent:
		ce.Table = TableOrders
		ce.OrderNumber = e.OrderNumber
	case *menu.ItemEvent:
		ce.Table = TableMenuItems
		switch e.EventType() {
		case menu.EventTypeMenuItemCreated:
			ce.Action = ActionInsert
		case menu.EventTypeMenuItemDeleted:
			ce.Action = ActionDelete
		}
	case *menu.CategoryChangedEvent:
		ce.Table, ce.Action = TableMenuCategories, string(e.Action)
	case *customer.CustomerChangedEvent:
		ce.Table = TableCustomers
		if e.EventType() == customer.EventTypeCustomerCreated {
			ce.Action = ActionInsert
		}
	default:
		return ChangeEvent{}, false
	}
	return ce, true
}

// ChangeFeedHandler forwards order, menu and customer events to a Broadcaster
type ChangeFeedHandler struct {
	broadcaster Broadcaster
	logger      *zap.Logger
}

// NewChangeFeedHandler creates a new ChangeFeedHandler
func NewChangeFeedHandler(broadcaster Broadcaster, logger *zap.Logger) *ChangeFeedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeFeedHandler{broadcaster: broadcaster, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ChangeFeedHandler) EventTypes() []string {
	types := ordering.OrderEventTypes()
	types = append(types, menu.MenuEventTypes()...)
	return append(types, customer.EventTypeCustomerCreated, customer.EventTypeCustomerUpdated)
}

// Handle broadcasts the change
func (h *ChangeFeedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	ce, ok := FromDomainEvent(event)
	if !ok {
		return nil
	}
	if err := h.broadcaster.Broadcast(ctx, ce); err != nil {
		h.logger.Warn("Failed to broadcast change",
			zap.String("table", ce.Table),
			zap.String("restaurant_id", ce.RestaurantID.String()),
			zap.Error(err))
		return err
	}
	return nil
}
