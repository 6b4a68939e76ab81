package ordering

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderSummary is the aggregate of a set of orders computed by the database
type OrderSummary struct {
	Count             int64
	Revenue           decimal.Decimal
	DistinctCustomers int64
	StatusCounts      map[OrderStatus]int64
}

// AverageOrderValue returns Revenue / Count, or zero when there are no orders
func (s *OrderSummary) AverageOrderValue() decimal.Decimal {
	if s == nil || s.Count == 0 {
		return decimal.Zero
	}
	return s.Revenue.Div(decimal.NewFromInt(s.Count)).Round(2)
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByIDForRestaurant finds an order by ID scoped to a restaurant
	FindByIDForRestaurant(ctx context.Context, restaurantID, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its system-wide public number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindAllForRestaurant lists orders, newest first
	FindAllForRestaurant(ctx context.Context, restaurantID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindByStatus lists orders with the given status
	FindByStatus(ctx context.Context, restaurantID uuid.UUID, status OrderStatus, filter shared.Filter) ([]Order, error)

	// FindCreatedBetween lists orders created in [from, to)
	FindCreatedBetween(ctx context.Context, restaurantID uuid.UUID, from, to time.Time) ([]Order, error)

	// CountForRestaurant counts orders matching the filter
	CountForRestaurant(ctx context.Context, restaurantID uuid.UUID, filter shared.Filter) (int64, error)

	// SummarizeBetween aggregates orders created in [from, to)
	SummarizeBetween(ctx context.Context, restaurantID uuid.UUID, from, to time.Time) (*OrderSummary, error)

	// Save creates or updates an order with its items and history
	Save(ctx context.Context, order *Order) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, order *Order) error

	// GenerateOrderNumber allocates the next PED-YYYY-NNNNN number. Numbers
	// are unique across all restaurants.
	GenerateOrderNumber(ctx context.Context) (string, error)
}
