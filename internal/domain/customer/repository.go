package customer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Stats is the customer overview of a restaurant
type Stats struct {
	TotalCustomers        int64           `json:"total_customers"`
	TotalRevenue          decimal.Decimal `json:"total_revenue"`
	TotalOrders           int64           `json:"total_orders"`
	NewCustomersThisMonth int64           `json:"new_customers_this_month"`
}

// AverageOrderValue returns TotalRevenue / TotalOrders, zero when there are no orders
func (s Stats) AverageOrderValue() decimal.Decimal {
	if s.TotalOrders == 0 {
		return decimal.Zero
	}
	return s.TotalRevenue.Div(decimal.NewFromInt(s.TotalOrders)).Round(2)
}

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	FindByID(ctx context.Context, restaurantID, id uuid.UUID) (*Customer, error)

	// FindByPhone finds a customer by normalized phone digits
	FindByPhone(ctx context.Context, restaurantID uuid.UUID, phone string) (*Customer, error)

	// FindAllForRestaurant lists customers; Search matches name or phone
	FindAllForRestaurant(ctx context.Context, restaurantID uuid.UUID, filter shared.Filter) ([]Customer, error)

	CountForRestaurant(ctx context.Context, restaurantID uuid.UUID, filter shared.Filter) (int64, error)

	// FindTop returns customers ordered by total_spent desc
	FindTop(ctx context.Context, restaurantID uuid.UUID, limit int) ([]Customer, error)

	// Stats aggregates all customers; customers created since monthStart count as new
	Stats(ctx context.Context, restaurantID uuid.UUID, monthStart time.Time) (*Stats, error)

	// Create inserts a new customer. It returns shared.ErrAlreadyExists when
	// the restaurant already has a customer with the same phone.
	Create(ctx context.Context, customer *Customer) error

	// UpdateContact writes name, email, address and notes. Order totals are
	// never written from a loaded copy.
	UpdateContact(ctx context.Context, customer *Customer) error

	// AddOrder adds one order of amount to the stored totals in a single
	// statement and returns the updated customer.
	AddOrder(ctx context.Context, restaurantID, id uuid.UUID, amount decimal.Decimal, at time.Time) (*Customer, error)
}
