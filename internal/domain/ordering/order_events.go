package ordering

import (
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeOrder is the aggregate type name used in events
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderPlaced               = "OrderPlaced"
	EventTypeOrderStatusChanged        = "OrderStatusChanged"
	EventTypeOrderCancelled            = "OrderCancelled"
	EventTypeOrderPaymentStatusChanged = "OrderPaymentStatusChanged"
)

// OrderEventTypes lists every event raised by the Order aggregate
func OrderEventTypes() []string {
	return []string{
		EventTypeOrderPlaced,
		EventTypeOrderStatusChanged,
		EventTypeOrderCancelled,
		EventTypeOrderPaymentStatusChanged,
	}
}

// OrderItemInfo is the item snapshot carried by events
type OrderItemInfo struct {
	MenuItemID uuid.UUID       `json:"menu_item_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// OrderPlacedEvent is raised when checkout creates an order
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID         uuid.UUID       `json:"order_id"`
	OrderNumber     string          `json:"order_number"`
	CustomerID      *uuid.UUID      `json:"customer_id,omitempty"`
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   string          `json:"customer_phone"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	DeliveryAddress string          `json:"delivery_address"`
	CustomerNotes   string          `json:"customer_notes,omitempty"`
	Items           []OrderItemInfo `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(order *Order) *OrderPlacedEvent {
	items := make([]OrderItemInfo, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemInfo{
			MenuItemID: item.MenuItemID,
			Name:       item.ItemName,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		}
	}
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, order.ID, order.RestaurantID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		CustomerID:      order.CustomerID,
		CustomerName:    order.CustomerName,
		CustomerPhone:   order.CustomerPhone,
		PaymentMethod:   order.PaymentMethod,
		DeliveryAddress: order.DeliveryAddress,
		CustomerNotes:   order.CustomerNotes,
		Items:           items,
		Subtotal:        order.Subtotal,
		TotalAmount:     order.TotalAmount,
	}
}

// OrderStatusChangedEvent is raised on every forward status transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID               uuid.UUID   `json:"order_id"`
	OrderNumber           string      `json:"order_number"`
	CustomerPhone         string      `json:"customer_phone"`
	FromStatus            OrderStatus `json:"from_status"`
	ToStatus              OrderStatus `json:"to_status"`
	EstimatedDeliveryTime *time.Time  `json:"estimated_delivery_time,omitempty"`
	ChangedBy             *uuid.UUID  `json:"changed_by,omitempty"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(order *Order, from OrderStatus, changedBy *uuid.UUID) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent:       shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, order.ID, order.RestaurantID),
		OrderID:               order.ID,
		OrderNumber:           order.OrderNumber,
		CustomerPhone:         order.CustomerPhone,
		FromStatus:            from,
		ToStatus:              order.Status,
		EstimatedDeliveryTime: order.EstimatedDeliveryTime,
		ChangedBy:             changedBy,
	}
}

// OrderCancelledEvent is raised when an order is cancelled
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID   `json:"order_id"`
	OrderNumber   string      `json:"order_number"`
	CustomerPhone string      `json:"customer_phone"`
	FromStatus    OrderStatus `json:"from_status"`
	Reason        string      `json:"reason,omitempty"`
	ChangedBy     *uuid.UUID  `json:"changed_by,omitempty"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(order *Order, from OrderStatus, changedBy *uuid.UUID) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeOrder, order.ID, order.RestaurantID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		CustomerPhone:   order.CustomerPhone,
		FromStatus:      from,
		Reason:          order.CancelReason,
		ChangedBy:       changedBy,
	}
}

// OrderPaymentStatusChangedEvent is raised when the payment status changes
type OrderPaymentStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID     `json:"order_id"`
	OrderNumber string        `json:"order_number"`
	From        PaymentStatus `json:"from"`
	To          PaymentStatus `json:"to"`
}

// NewOrderPaymentStatusChangedEvent creates a new OrderPaymentStatusChangedEvent
func NewOrderPaymentStatusChangedEvent(order *Order, from PaymentStatus) *OrderPaymentStatusChangedEvent {
	return &OrderPaymentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaymentStatusChanged, AggregateTypeOrder, order.ID, order.RestaurantID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		From:            from,
		To:              order.PaymentStatus,
	}
}
