package menu

import (
	"context"

	"github.com/google/uuid"
)

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	// FindByID finds a category scoped to a restaurant
	FindByID(ctx context.Context, restaurantID, id uuid.UUID) (*Category, error)

	// FindActive returns active categories ordered by display_order
	FindActive(ctx context.Context, restaurantID uuid.UUID) ([]Category, error)

	// FindAll returns all categories ordered by display_order
	FindAll(ctx context.Context, restaurantID uuid.UUID) ([]Category, error)

	Save(ctx context.Context, category *Category) error
	Delete(ctx context.Context, restaurantID, id uuid.UUID) error
}

// ItemFilter narrows item queries
type ItemFilter struct {
	CategoryID    *uuid.UUID
	AvailableOnly bool
	PopularOnly   bool
	Limit         int
}

// ItemRepository defines the interface for menu item persistence
type ItemRepository interface {
	// FindByID finds an item scoped to a restaurant
	FindByID(ctx context.Context, restaurantID, id uuid.UUID) (*Item, error)

	// FindByIDs loads the given items; missing ids are simply absent from the result
	FindByIDs(ctx context.Context, restaurantID uuid.UUID, ids []uuid.UUID) ([]Item, error)

	// Find returns items ordered by display_order then name
	Find(ctx context.Context, restaurantID uuid.UUID, filter ItemFilter) ([]Item, error)

	Save(ctx context.Context, item *Item) error
	Delete(ctx context.Context, restaurantID, id uuid.UUID) error
}
