package onboarding

import (
	"context"

	"github.com/restaurant/backend/internal/domain/menu"
	"github.com/restaurant/backend/internal/domain/restaurant"
	"github.com/restaurant/backend/internal/domain/shared"
)

// Setup is everything a finished onboarding creates
type Setup struct {
	Restaurant *restaurant.Restaurant
	Owner      *restaurant.StaffUser
	Categories []*menu.Category
	WhatsApp   *restaurant.WhatsAppSettings
	Users      []*restaurant.StaffUser
}

// Events collects the pending domain events of every aggregate in the setup
// and clears them
func (s *Setup) Events() []shared.DomainEvent {
	var events []shared.DomainEvent
	take := func(a shared.AggregateRoot) {
		events = append(events, a.GetDomainEvents()...)
		a.ClearDomainEvents()
	}
	take(s.Restaurant)
	take(s.Owner)
	for _, c := range s.Categories {
		take(c)
	}
	if s.WhatsApp != nil {
		take(s.WhatsApp)
	}
	for _, u := range s.Users {
		take(u)
	}
	return events
}

// Store persists a Setup atomically: either everything is created or nothing is
type Store interface {
	Create(ctx context.Context, setup *Setup) error
}
