package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
// order_number is unique across restaurants.
type OrderModel struct {
	RestaurantAggregateModel
	OrderNumber           string                 `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID            *uuid.UUID             `gorm:"type:uuid;index"`
	CustomerName          string                 `gorm:"type:varchar(200);not null"`
	CustomerPhone         string                 `gorm:"type:varchar(20)"`
	Status                ordering.OrderStatus   `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentMethod         ordering.PaymentMethod `gorm:"type:varchar(20);not null"`
	PaymentStatus         ordering.PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	Subtotal              decimal.Decimal        `gorm:"type:decimal(12,2);not null;default:0"`
	TaxAmount             decimal.Decimal        `gorm:"type:decimal(12,2);not null;default:0"`
	DeliveryFee           decimal.Decimal        `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount           decimal.Decimal        `gorm:"type:decimal(12,2);not null;default:0"`
	DeliveryAddress       string                 `gorm:"type:text"`
	CustomerNotes         string                 `gorm:"type:text"`
	EstimatedDeliveryTime *time.Time
	DeliveredAt           *time.Time
	CancelledAt           *time.Time
	CancelReason          string                    `gorm:"type:varchar(500)"`
	Items                 []OrderItemModel          `gorm:"foreignKey:OrderID;references:ID"`
	StatusHistory         []OrderStatusHistoryModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderNumberSequenceModel is the per-year order number counter
type OrderNumberSequenceModel struct {
	Year      int   `gorm:"primaryKey;autoIncrement:false"`
	LastValue int64 `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderNumberSequenceModel) TableName() string {
	return "order_number_sequences"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *ordering.Order {
	order := &ordering.Order{
		RestaurantAggregateRoot: m.ToRestaurantAggregateRoot(),
		OrderNumber:             m.OrderNumber,
		CustomerID:              m.CustomerID,
		CustomerName:            m.CustomerName,
		CustomerPhone:           m.CustomerPhone,
		Status:                  m.Status,
		PaymentMethod:           m.PaymentMethod,
		PaymentStatus:           m.PaymentStatus,
		Subtotal:                m.Subtotal,
		TaxAmount:               m.TaxAmount,
		DeliveryFee:             m.DeliveryFee,
		TotalAmount:             m.TotalAmount,
		DeliveryAddress:         m.DeliveryAddress,
		CustomerNotes:           m.CustomerNotes,
		EstimatedDeliveryTime:   m.EstimatedDeliveryTime,
		DeliveredAt:             m.DeliveredAt,
		CancelledAt:             m.CancelledAt,
		CancelReason:            m.CancelReason,
		Items:                   make([]ordering.OrderItem, len(m.Items)),
		StatusHistory:           make([]ordering.StatusHistoryEntry, len(m.StatusHistory)),
	}
	for i, item := range m.Items {
		order.Items[i] = *item.ToDomain()
	}
	for i, entry := range m.StatusHistory {
		order.StatusHistory[i] = *entry.ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *ordering.Order) {
	m.FromDomainRestaurantAggregateRoot(o.RestaurantAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.CustomerID = o.CustomerID
	m.CustomerName = o.CustomerName
	m.CustomerPhone = o.CustomerPhone
	m.Status = o.Status
	m.PaymentMethod = o.PaymentMethod
	m.PaymentStatus = o.PaymentStatus
	m.Subtotal = o.Subtotal
	m.TaxAmount = o.TaxAmount
	m.DeliveryFee = o.DeliveryFee
	m.TotalAmount = o.TotalAmount
	m.DeliveryAddress = o.DeliveryAddress
	m.CustomerNotes = o.CustomerNotes
	m.EstimatedDeliveryTime = o.EstimatedDeliveryTime
	m.DeliveredAt = o.DeliveredAt
	m.CancelledAt = o.CancelledAt
	m.CancelReason = o.CancelReason
	m.Items = make([]OrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i] = *OrderItemModelFromDomain(o.ID, &o.Items[i])
	}
	m.StatusHistory = make([]OrderStatusHistoryModel, len(o.StatusHistory))
	for i := range o.StatusHistory {
		m.StatusHistory[i] = *OrderStatusHistoryModelFromDomain(o.ID, &o.StatusHistory[i])
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity.
func OrderModelFromDomain(o *ordering.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is the persistence model for the OrderItem entity.
type OrderItemModel struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	MenuItemID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemName            string          `gorm:"type:varchar(200);not null"`
	Quantity            int             `gorm:"not null"`
	UnitPrice           decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TotalPrice          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SpecialInstructions string          `gorm:"type:text"`
	CreatedAt           time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem.
func (m *OrderItemModel) ToDomain() *ordering.OrderItem {
	return &ordering.OrderItem{
		ID:                  m.ID,
		OrderID:             m.OrderID,
		MenuItemID:          m.MenuItemID,
		ItemName:            m.ItemName,
		Quantity:            m.Quantity,
		UnitPrice:           m.UnitPrice,
		TotalPrice:          m.TotalPrice,
		SpecialInstructions: m.SpecialInstructions,
		CreatedAt:           m.CreatedAt,
	}
}

// OrderItemModelFromDomain creates a persistence model for an item of the given order.
func OrderItemModelFromDomain(orderID uuid.UUID, i *ordering.OrderItem) *OrderItemModel {
	return &OrderItemModel{
		ID:                  i.ID,
		OrderID:             orderID,
		MenuItemID:          i.MenuItemID,
		ItemName:            i.ItemName,
		Quantity:            i.Quantity,
		UnitPrice:           i.UnitPrice,
		TotalPrice:          i.TotalPrice,
		SpecialInstructions: i.SpecialInstructions,
		CreatedAt:           i.CreatedAt,
	}
}

// OrderStatusHistoryModel is an append-only row per status change.
type OrderStatusHistoryModel struct {
	ID        uuid.UUID            `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID            `gorm:"type:uuid;not null;index"`
	Status    ordering.OrderStatus `gorm:"type:varchar(20);not null"`
	Message   string               `gorm:"type:text"`
	ChangedBy *uuid.UUID           `gorm:"type:uuid"`
	ChangedAt time.Time            `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (OrderStatusHistoryModel) TableName() string {
	return "order_status_history"
}

// ToDomain converts the persistence model to a domain StatusHistoryEntry.
func (m *OrderStatusHistoryModel) ToDomain() *ordering.StatusHistoryEntry {
	return &ordering.StatusHistoryEntry{
		ID:        m.ID,
		OrderID:   m.OrderID,
		Status:    m.Status,
		Message:   m.Message,
		ChangedBy: m.ChangedBy,
		ChangedAt: m.ChangedAt,
	}
}

// OrderStatusHistoryModelFromDomain creates a persistence model for a history entry of the given order.
func OrderStatusHistoryModelFromDomain(orderID uuid.UUID, e *ordering.StatusHistoryEntry) *OrderStatusHistoryModel {
	return &OrderStatusHistoryModel{
		ID:        e.ID,
		OrderID:   orderID,
		Status:    e.Status,
		Message:   e.Message,
		ChangedBy: e.ChangedBy,
		ChangedAt: e.ChangedAt,
	}
}
