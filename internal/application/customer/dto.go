package customer

import (
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/customer"
	"github.com/shopspring/decimal"
)

// CustomerListFilter narrows customer listings
type CustomerListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"limit" binding:"omitempty,min=1,max=200"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email,omitempty"`
	Address       string          `json:"address,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	TotalOrders   int             `json:"total_orders"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
	LastOrderAt   *time.Time      `json:"last_order_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// StatsResponse is the customer overview of a restaurant
type StatsResponse struct {
	TotalCustomers        int64           `json:"total_customers"`
	TotalRevenue          decimal.Decimal `json:"total_revenue"`
	TotalOrders           int64           `json:"total_orders"`
	AverageOrderValue     decimal.Decimal `json:"average_order_value"`
	NewCustomersThisMonth int64           `json:"new_customers_this_month"`
}

// ToCustomerResponse converts a domain customer to a response
func ToCustomerResponse(c *customer.Customer) CustomerResponse {
	return CustomerResponse{
		ID:            c.ID,
		Name:          c.Name,
		Phone:         c.FormattedPhone(),
		Email:         c.Email,
		Address:       c.Address,
		Notes:         c.Notes,
		TotalOrders:   c.TotalOrders,
		TotalSpent:    c.TotalSpent,
		AverageTicket: c.AverageTicket(),
		LastOrderAt:   c.LastOrderAt,
		CreatedAt:     c.CreatedAt,
	}
}

// ToCustomerResponses converts a slice of customers
func ToCustomerResponses(customers []customer.Customer) []CustomerResponse {
	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses
}
