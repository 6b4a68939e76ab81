package models

import (
	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/menu"
	"github.com/shopspring/decimal"
)

// CategoryModel is the persistence model for the menu Category aggregate root.
type CategoryModel struct {
	RestaurantAggregateModel
	Name         string `gorm:"type:varchar(100);not null"`
	Description  string `gorm:"type:text"`
	DisplayOrder int    `gorm:"not null;default:0"`
	IsActive     bool   `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "menu_categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() *menu.Category {
	return &menu.Category{
		RestaurantAggregateRoot: m.ToRestaurantAggregateRoot(),
		Name:                    m.Name,
		Description:             m.Description,
		DisplayOrder:            m.DisplayOrder,
		IsActive:                m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Category entity.
func (m *CategoryModel) FromDomain(c *menu.Category) {
	m.FromDomainRestaurantAggregateRoot(c.RestaurantAggregateRoot)
	m.Name = c.Name
	m.Description = c.Description
	m.DisplayOrder = c.DisplayOrder
	m.IsActive = c.IsActive
}

// CategoryModelFromDomain creates a new persistence model from a domain Category entity.
func CategoryModelFromDomain(c *menu.Category) *CategoryModel {
	m := &CategoryModel{}
	m.FromDomain(c)
	return m
}

// MenuItemModel is the persistence model for the menu Item aggregate root.
type MenuItemModel struct {
	RestaurantAggregateModel
	CategoryID      *uuid.UUID      `gorm:"type:uuid;index"`
	Name            string          `gorm:"type:varchar(200);not null"`
	Description     string          `gorm:"type:text"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PreparationTime int             `gorm:"not null;default:30"`
	ImageURL        string          `gorm:"type:varchar(500)"`
	IsAvailable     bool            `gorm:"not null;index"`
	IsPopular       bool            `gorm:"not null;default:false"`
	DisplayOrder    int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (MenuItemModel) TableName() string {
	return "menu_items"
}

// ToDomain converts the persistence model to a domain Item entity.
func (m *MenuItemModel) ToDomain() *menu.Item {
	return &menu.Item{
		RestaurantAggregateRoot: m.ToRestaurantAggregateRoot(),
		CategoryID:              m.CategoryID,
		Name:                    m.Name,
		Description:             m.Description,
		Price:                   m.Price,
		PreparationTime:         m.PreparationTime,
		ImageURL:                m.ImageURL,
		IsAvailable:             m.IsAvailable,
		IsPopular:               m.IsPopular,
		DisplayOrder:            m.DisplayOrder,
	}
}

// FromDomain populates the persistence model from a domain Item entity.
func (m *MenuItemModel) FromDomain(i *menu.Item) {
	m.FromDomainRestaurantAggregateRoot(i.RestaurantAggregateRoot)
	m.CategoryID = i.CategoryID
	m.Name = i.Name
	m.Description = i.Description
	m.Price = i.Price
	m.PreparationTime = i.PreparationTime
	m.ImageURL = i.ImageURL
	m.IsAvailable = i.IsAvailable
	m.IsPopular = i.IsPopular
	m.DisplayOrder = i.DisplayOrder
}

// MenuItemModelFromDomain creates a new persistence model from a domain Item entity.
func MenuItemModelFromDomain(i *menu.Item) *MenuItemModel {
	m := &MenuItemModel{}
	m.FromDomain(i)
	return m
}
