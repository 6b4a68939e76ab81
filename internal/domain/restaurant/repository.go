package restaurant

import (
	"context"

	"github.com/google/uuid"
)

// RestaurantRepository defines the interface for restaurant persistence
type RestaurantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Restaurant, error)
	Save(ctx context.Context, r *Restaurant) error
}

// StaffUserRepository defines the interface for staff user persistence
type StaffUserRepository interface {
	FindByID(ctx context.Context, restaurantID, id uuid.UUID) (*StaffUser, error)

	// FindByEmail looks a user up across restaurants for login
	FindByEmail(ctx context.Context, email string) (*StaffUser, error)

	FindAllForRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]StaffUser, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, u *StaffUser) error
}

// WhatsAppSettingsRepository defines the interface for WhatsApp settings persistence
type WhatsAppSettingsRepository interface {
	// FindByRestaurant returns shared.ErrNotFound when nothing is configured
	FindByRestaurant(ctx context.Context, restaurantID uuid.UUID) (*WhatsAppSettings, error)
	Save(ctx context.Context, s *WhatsAppSettings) error
}
