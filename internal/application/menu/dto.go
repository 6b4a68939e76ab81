package menu

import (
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/menu"
	"github.com/restaurant/backend/internal/domain/restaurant"
	"github.com/shopspring/decimal"
)

// CreateCategoryRequest represents a request to create a menu category
type CreateCategoryRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=100"`
	Description  string `json:"description" binding:"max=1000"`
	DisplayOrder int    `json:"display_order"`
}

// UpdateCategoryRequest represents a request to update a menu category
type UpdateCategoryRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description  *string `json:"description" binding:"omitempty,max=1000"`
	DisplayOrder *int    `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	DisplayOrder int       `json:"display_order"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateItemRequest represents a request to create a menu item
type CreateItemRequest struct {
	CategoryID      *uuid.UUID      `json:"category_id"`
	Name            string          `json:"name" binding:"required,min=1,max=200"`
	Description     string          `json:"description" binding:"max=2000"`
	Price           decimal.Decimal `json:"price" binding:"required"`
	PreparationTime int             `json:"preparation_time" binding:"omitempty,min=1"`
	IsPopular       bool            `json:"is_popular"`
	DisplayOrder    int             `json:"display_order"`
}

// UpdateItemRequest represents a request to update a menu item
type UpdateItemRequest struct {
	CategoryID      *uuid.UUID       `json:"category_id"`
	Name            *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description     *string          `json:"description" binding:"omitempty,max=2000"`
	Price           *decimal.Decimal `json:"price"`
	PreparationTime *int             `json:"preparation_time" binding:"omitempty,min=1"`
	IsPopular       *bool            `json:"is_popular"`
	DisplayOrder    *int             `json:"display_order"`
}

// SetAvailabilityRequest toggles item availability
type SetAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" binding:"required"`
}

// ItemListFilter narrows item listings
type ItemListFilter struct {
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
}

// ItemResponse represents a menu item in API responses
type ItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	CategoryID      *uuid.UUID      `json:"category_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	PreparationTime int             `json:"preparation_time"`
	ImageURL        string          `json:"image_url,omitempty"`
	IsAvailable     bool            `json:"is_available"`
	IsPopular       bool            `json:"is_popular"`
	DisplayOrder    int             `json:"display_order"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// MenuSection is a category with its items
type MenuSection struct {
	Category CategoryResponse `json:"category"`
	Items    []ItemResponse   `json:"items"`
}

// FullMenuResponse is the menu grouped by active category
type FullMenuResponse struct {
	Sections      []MenuSection  `json:"sections"`
	Uncategorized []ItemResponse `json:"uncategorized,omitempty"`
}

// RestaurantSummary is the restaurant header of the public menu
type RestaurantSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	BusinessType string    `json:"business_type"`
	Address      string    `json:"address"`
	Phone        string    `json:"phone"`
}

// PublicMenuResponse is what customers see when they open the menu
type PublicMenuResponse struct {
	Restaurant RestaurantSummary `json:"restaurant"`
	Menu       FullMenuResponse  `json:"menu"`
}

// ImageUploadResponse is returned after an item image upload
type ImageUploadResponse struct {
	Key      string       `json:"key"`
	ImageURL string       `json:"image_url"`
	Item     ItemResponse `json:"item"`
}

// ToCategoryResponse converts a domain category to a response
func ToCategoryResponse(c *menu.Category) CategoryResponse {
	return CategoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		DisplayOrder: c.DisplayOrder,
		IsActive:     c.IsActive,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// ToCategoryResponses converts a slice of categories
func ToCategoryResponses(categories []menu.Category) []CategoryResponse {
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = ToCategoryResponse(&categories[i])
	}
	return responses
}

// ToItemResponse converts a domain item to a response
func ToItemResponse(i *menu.Item) ItemResponse {
	return ItemResponse{
		ID:              i.ID,
		CategoryID:      i.CategoryID,
		Name:            i.Name,
		Description:     i.Description,
		Price:           i.Price,
		PreparationTime: i.PreparationTime,
		ImageURL:        i.ImageURL,
		IsAvailable:     i.IsAvailable,
		IsPopular:       i.IsPopular,
		DisplayOrder:    i.DisplayOrder,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
}

// ToItemResponses converts a slice of items
func ToItemResponses(items []menu.Item) []ItemResponse {
	responses := make([]ItemResponse, len(items))
	for i := range items {
		responses[i] = ToItemResponse(&items[i])
	}
	return responses
}

func toRestaurantSummary(r *restaurant.Restaurant) RestaurantSummary {
	return RestaurantSummary{
		ID:           r.ID,
		Name:         r.Name,
		BusinessType: r.BusinessType,
		Address:      r.Address,
		Phone:        r.Phone,
	}
}
