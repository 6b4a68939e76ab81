package restaurant

import (
	"strings"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
)

// Restaurant is the tenant of the system. Its ID scopes every other aggregate.
type Restaurant struct {
	shared.BaseAggregateRoot
	Name                string
	BusinessType        string
	Address             string
	Phone               string
	Email               string
	OwnerID             *uuid.UUID
	OnboardingCompleted bool
}

// NewRestaurant creates a restaurant from the onboarding profile step
func NewRestaurant(name, businessType, address, phone, email string) (*Restaurant, error) {
	r := &Restaurant{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := r.UpdateProfile(name, businessType, address, phone, email); err != nil {
		return nil, err
	}
	r.AddDomainEvent(NewRestaurantEvent(EventTypeRestaurantCreated, r))
	return r, nil
}

// UpdateProfile replaces the restaurant profile
func (r *Restaurant) UpdateProfile(name, businessType, address, phone, email string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Restaurant name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Restaurant name cannot exceed 200 characters")
	}
	if email = strings.TrimSpace(email); email != "" && !valueobject.IsValidEmail(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}

	r.Name = name
	r.BusinessType = strings.TrimSpace(businessType)
	r.Address = strings.TrimSpace(address)
	r.Phone = valueobject.NormalizePhone(phone)
	r.Email = valueobject.NormalizeEmail(email)
	r.Touch()
	return nil
}

// AssignOwner sets the owning staff user
func (r *Restaurant) AssignOwner(userID uuid.UUID) {
	r.OwnerID = &userID
	r.Touch()
}

// CompleteOnboarding marks the onboarding wizard as finished
func (r *Restaurant) CompleteOnboarding() {
	if r.OnboardingCompleted {
		return
	}
	r.OnboardingCompleted = true
	r.Touch()
	r.AddDomainEvent(NewRestaurantEvent(EventTypeOnboardingCompleted, r))
}

const AggregateTypeRestaurant = "Restaurant"

const (
	EventTypeRestaurantCreated   = "RestaurantCreated"
	EventTypeOnboardingCompleted = "RestaurantOnboardingCompleted"
)

// RestaurantEvent is raised on restaurant lifecycle changes
type RestaurantEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewRestaurantEvent creates a restaurant event. The restaurant is its own scope.
func NewRestaurantEvent(eventType string, r *Restaurant) *RestaurantEvent {
	return &RestaurantEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeRestaurant, r.ID, r.ID),
		Name:            r.Name,
	}
}
