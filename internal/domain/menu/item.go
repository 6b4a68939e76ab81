package menu

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DefaultPreparationTime is used when an item is created without one (minutes)
const DefaultPreparationTime = 30

// DefaultPopularLimit is the number of popular items returned by default
const DefaultPopularLimit = 6

// Item is a dish or drink that can be ordered
type Item struct {
	shared.RestaurantAggregateRoot
	CategoryID      *uuid.UUID
	Name            string
	Description     string
	Price           decimal.Decimal
	PreparationTime int
	ImageURL        string
	IsAvailable     bool
	IsPopular       bool
	DisplayOrder    int
}

// ItemOption configures optional fields on creation
type ItemOption func(*Item)

// WithDescription sets the item description
func WithDescription(description string) ItemOption {
	return func(i *Item) {
		i.Description = strings.TrimSpace(description)
	}
}

// WithPreparationTime sets the preparation time in minutes
func WithPreparationTime(minutes int) ItemOption {
	return func(i *Item) {
		i.PreparationTime = minutes
	}
}

// WithCategory assigns the item to a category
func WithCategory(categoryID uuid.UUID) ItemOption {
	return func(i *Item) {
		if categoryID != uuid.Nil {
			i.CategoryID = &categoryID
		}
	}
}

// WithPopular flags the item as popular
func WithPopular(popular bool) ItemOption {
	return func(i *Item) {
		i.IsPopular = popular
	}
}

// WithDisplayOrder sets the item position inside its category
func WithDisplayOrder(order int) ItemOption {
	return func(i *Item) {
		i.DisplayOrder = order
	}
}

// NewItem creates an available menu item
func NewItem(restaurantID uuid.UUID, name string, price valueobject.Money, opts ...ItemOption) (*Item, error) {
	if restaurantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RESTAURANT", "Restaurant ID cannot be empty")
	}
	if err := validateItemName(name); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}

	item := &Item{
		RestaurantAggregateRoot: shared.NewRestaurantAggregateRoot(restaurantID),
		Name:                    strings.TrimSpace(name),
		Price:                   price.Amount(),
		PreparationTime:         DefaultPreparationTime,
		IsAvailable:             true,
	}
	for _, opt := range opts {
		opt(item)
	}
	if item.PreparationTime <= 0 {
		return nil, shared.NewDomainError("INVALID_PREPARATION_TIME", "Preparation time must be positive")
	}

	item.AddDomainEvent(NewItemCreatedEvent(item))
	return item, nil
}

// Update changes the descriptive fields of the item
func (i *Item) Update(name, description string, preparationTime int) error {
	if err := validateItemName(name); err != nil {
		return err
	}
	if preparationTime <= 0 {
		return shared.NewDomainError("INVALID_PREPARATION_TIME", "Preparation time must be positive")
	}
	i.Name = strings.TrimSpace(name)
	i.Description = strings.TrimSpace(description)
	i.PreparationTime = preparationTime
	i.changed()
	return nil
}

// SetPrice changes the menu price. Existing orders keep their captured price.
func (i *Item) SetPrice(price valueobject.Money) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	i.Price = price.Amount()
	i.changed()
	return nil
}

// SetAvailability toggles whether the item can be ordered
func (i *Item) SetAvailability(available bool) {
	if i.IsAvailable == available {
		return
	}
	i.IsAvailable = available
	i.Touch()
	i.AddDomainEvent(NewItemAvailabilityChangedEvent(i))
}

// MarkPopular sets the popular flag
func (i *Item) MarkPopular(popular bool) {
	if i.IsPopular == popular {
		return
	}
	i.IsPopular = popular
	i.changed()
}

// SetImage sets the public image URL
func (i *Item) SetImage(url string) {
	i.ImageURL = strings.TrimSpace(url)
	i.changed()
}

// SetDisplayOrder sets the position inside the category
func (i *Item) SetDisplayOrder(order int) {
	if i.DisplayOrder == order {
		return
	}
	i.DisplayOrder = order
	i.changed()
}

// MoveToCategory moves the item. uuid.Nil removes the category.
func (i *Item) MoveToCategory(categoryID uuid.UUID) {
	if categoryID == uuid.Nil {
		i.CategoryID = nil
	} else {
		i.CategoryID = &categoryID
	}
	i.changed()
}

// MarkDeleted records a deletion event before the repository removes the row
func (i *Item) MarkDeleted() {
	i.AddDomainEvent(NewItemDeletedEvent(i))
}

// PriceMoney returns the price as Money
func (i *Item) PriceMoney() valueobject.Money {
	return valueobject.NewMoney(i.Price)
}

// InCategory reports whether the item belongs to the given category
func (i *Item) InCategory(categoryID uuid.UUID) bool {
	return i.CategoryID != nil && *i.CategoryID == categoryID
}

func (i *Item) changed() {
	i.Touch()
	i.AddDomainEvent(NewItemUpdatedEvent(i))
}

func validateItemName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Item name cannot exceed 200 characters")
	}
	return nil
}

func validatePrice(price valueobject.Money) error {
	if !price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Price must be greater than zero")
	}
	return nil
}
