package menu

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
)

// Category groups menu items on the public menu
type Category struct {
	shared.RestaurantAggregateRoot
	Name         string
	Description  string
	DisplayOrder int
	IsActive     bool
}

// NewCategory creates a new active category
func NewCategory(restaurantID uuid.UUID, name, description string, displayOrder int) (*Category, error) {
	if restaurantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RESTAURANT", "Restaurant ID cannot be empty")
	}
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	c := &Category{
		RestaurantAggregateRoot: shared.NewRestaurantAggregateRoot(restaurantID),
		Name:                    strings.TrimSpace(name),
		Description:             strings.TrimSpace(description),
		DisplayOrder:            displayOrder,
		IsActive:                true,
	}
	c.AddDomainEvent(NewCategoryChangedEvent(c, ChangeActionCreated))
	return c, nil
}

// Update changes name and description
func (c *Category) Update(name, description string) error {
	if err := validateCategoryName(name); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(name)
	c.Description = strings.TrimSpace(description)
	c.Touch()
	c.AddDomainEvent(NewCategoryChangedEvent(c, ChangeActionUpdated))
	return nil
}

// SetDisplayOrder changes the position of the category on the menu
func (c *Category) SetDisplayOrder(order int) {
	if c.DisplayOrder == order {
		return
	}
	c.DisplayOrder = order
	c.Touch()
	c.AddDomainEvent(NewCategoryChangedEvent(c, ChangeActionUpdated))
}

// Activate shows the category on the public menu
func (c *Category) Activate() {
	c.setActive(true)
}

// Deactivate hides the category from the public menu
func (c *Category) Deactivate() {
	c.setActive(false)
}

func (c *Category) setActive(active bool) {
	if c.IsActive == active {
		return
	}
	c.IsActive = active
	c.Touch()
	c.AddDomainEvent(NewCategoryChangedEvent(c, ChangeActionUpdated))
}

// MarkDeleted records a deletion event before the repository removes the row
func (c *Category) MarkDeleted() {
	c.AddDomainEvent(NewCategoryChangedEvent(c, ChangeActionDeleted))
}

func validateCategoryName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return nil
}
