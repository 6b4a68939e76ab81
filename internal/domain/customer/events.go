package customer

import (
	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
)

const AggregateTypeCustomer = "Customer"

const (
	EventTypeCustomerCreated = "CustomerCreated"
	EventTypeCustomerUpdated = "CustomerUpdated"
)

// CustomerChangedEvent is raised when a customer is created or updated
type CustomerChangedEvent struct {
	shared.BaseDomainEvent
	CustomerID  uuid.UUID `json:"customer_id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	TotalOrders int       `json:"total_orders"`
}

// NewCustomerChangedEvent creates a new CustomerChangedEvent
func NewCustomerChangedEvent(c *Customer, eventType string) *CustomerChangedEvent {
	return &CustomerChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeCustomer, c.ID, c.RestaurantID),
		CustomerID:      c.ID,
		Name:            c.Name,
		Phone:           c.Phone,
		TotalOrders:     c.TotalOrders,
	}
}
