package menu

import (
	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeCategory = "MenuCategory"
	AggregateTypeItem     = "MenuItem"
)

// Event type constants
const (
	EventTypeMenuItemCreated             = "MenuItemCreated"
	EventTypeMenuItemUpdated             = "MenuItemUpdated"
	EventTypeMenuItemDeleted             = "MenuItemDeleted"
	EventTypeMenuItemAvailabilityChanged = "MenuItemAvailabilityChanged"
	EventTypeMenuCategoryChanged         = "MenuCategoryChanged"
)

// ChangeAction describes what happened to a category
type ChangeAction string

const (
	ChangeActionCreated ChangeAction = "INSERT"
	ChangeActionUpdated ChangeAction = "UPDATE"
	ChangeActionDeleted ChangeAction = "DELETE"
)

// MenuEventTypes lists every event raised by menu aggregates
func MenuEventTypes() []string {
	return []string{
		EventTypeMenuItemCreated,
		EventTypeMenuItemUpdated,
		EventTypeMenuItemDeleted,
		EventTypeMenuItemAvailabilityChanged,
		EventTypeMenuCategoryChanged,
	}
}

// ItemEvent carries a snapshot of a menu item
type ItemEvent struct {
	shared.BaseDomainEvent
	ItemID      uuid.UUID       `json:"item_id"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	IsAvailable bool            `json:"is_available"`
}

func newItemEvent(eventType string, item *Item) *ItemEvent {
	return &ItemEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeItem, item.ID, item.RestaurantID),
		ItemID:          item.ID,
		CategoryID:      item.CategoryID,
		Name:            item.Name,
		Price:           item.Price,
		IsAvailable:     item.IsAvailable,
	}
}

// NewItemCreatedEvent creates a MenuItemCreated event
func NewItemCreatedEvent(item *Item) *ItemEvent {
	return newItemEvent(EventTypeMenuItemCreated, item)
}

// NewItemUpdatedEvent creates a MenuItemUpdated event
func NewItemUpdatedEvent(item *Item) *ItemEvent {
	return newItemEvent(EventTypeMenuItemUpdated, item)
}

// NewItemDeletedEvent creates a MenuItemDeleted event
func NewItemDeletedEvent(item *Item) *ItemEvent {
	return newItemEvent(EventTypeMenuItemDeleted, item)
}

// NewItemAvailabilityChangedEvent creates a MenuItemAvailabilityChanged event
func NewItemAvailabilityChangedEvent(item *Item) *ItemEvent {
	return newItemEvent(EventTypeMenuItemAvailabilityChanged, item)
}

// CategoryChangedEvent is raised on any category insert, update or delete
type CategoryChangedEvent struct {
	shared.BaseDomainEvent
	CategoryID uuid.UUID    `json:"category_id"`
	Action     ChangeAction `json:"action"`
	Name       string       `json:"name"`
	IsActive   bool         `json:"is_active"`
}

// NewCategoryChangedEvent creates a MenuCategoryChanged event
func NewCategoryChangedEvent(c *Category, action ChangeAction) *CategoryChangedEvent {
	return &CategoryChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMenuCategoryChanged, AggregateTypeCategory, c.ID, c.RestaurantID),
		CategoryID:      c.ID,
		Action:          action,
		Name:            c.Name,
		IsActive:        c.IsActive,
	}
}
