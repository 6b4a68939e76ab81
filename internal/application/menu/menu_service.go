package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/menu"
	"github.com/restaurant/backend/internal/domain/restaurant"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// MaxImageSize is the largest accepted menu image (5 MiB)
const MaxImageSize = 5 << 20

// ImageContentTypes maps accepted image extensions to their content type.
// SVG is not accepted.
var ImageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ObjectStorage stores uploaded files and returns their public URL
type ObjectStorage interface {
	PutObject(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

// MenuService handles categories and items
type MenuService struct {
	categoryRepo   menu.CategoryRepository
	itemRepo       menu.ItemRepository
	restaurantRepo restaurant.RestaurantRepository
	storage        ObjectStorage
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewMenuService creates a new MenuService
func NewMenuService(
	categoryRepo menu.CategoryRepository,
	itemRepo menu.ItemRepository,
	restaurantRepo restaurant.RestaurantRepository,
	storage ObjectStorage,
	logger *zap.Logger,
) *MenuService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MenuService{
		categoryRepo:   categoryRepo,
		itemRepo:       itemRepo,
		restaurantRepo: restaurantRepo,
		storage:        storage,
		logger:         logger,
		now:            time.Now,
	}
}

// SetEventPublisher sets the event publisher
func (s *MenuService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ListCategories returns active categories, or all of them when includeInactive is set
func (s *MenuService) ListCategories(ctx context.Context, restaurantID uuid.UUID, includeInactive bool) ([]CategoryResponse, error) {
	var (
		categories []menu.Category
		err        error
	)
	if includeInactive {
		categories, err = s.categoryRepo.FindAll(ctx, restaurantID)
	} else {
		categories, err = s.categoryRepo.FindActive(ctx, restaurantID)
	}
	if err != nil {
		return nil, err
	}
	return ToCategoryResponses(categories), nil
}

// CreateCategory creates a new category
func (s *MenuService) CreateCategory(ctx context.Context, restaurantID uuid.UUID, req CreateCategoryRequest) (*CategoryResponse, error) {
	category, err := menu.NewCategory(restaurantID, req.Name, req.Description, req.DisplayOrder)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	s.publish(ctx, category.GetDomainEvents())
	category.ClearDomainEvents()

	response := ToCategoryResponse(category)
	return &response, nil
}

// UpdateCategory updates a category
func (s *MenuService) UpdateCategory(ctx context.Context, restaurantID, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, restaurantID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Description != nil {
		name, description := category.Name, category.Description
		if req.Name != nil {
			name = *req.Name
		}
		if req.Description != nil {
			description = *req.Description
		}
		if err := category.Update(name, description); err != nil {
			return nil, err
		}
	}
	if req.DisplayOrder != nil {
		category.SetDisplayOrder(*req.DisplayOrder)
	}
	if req.IsActive != nil {
		if *req.IsActive {
			category.Activate()
		} else {
			category.Deactivate()
		}
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	s.publish(ctx, category.GetDomainEvents())
	category.ClearDomainEvents()

	response := ToCategoryResponse(category)
	return &response, nil
}

// DeleteCategory deletes a category. Its items stay on the menu without a category.
func (s *MenuService) DeleteCategory(ctx context.Context, restaurantID, id uuid.UUID) error {
	category, err := s.categoryRepo.FindByID(ctx, restaurantID, id)
	if err != nil {
		return err
	}
	category.MarkDeleted()
	if err := s.categoryRepo.Delete(ctx, restaurantID, id); err != nil {
		return err
	}
	s.publish(ctx, category.GetDomainEvents())
	return nil
}

// ListItems returns items, optionally of one category
func (s *MenuService) ListItems(ctx context.Context, restaurantID uuid.UUID, filter ItemListFilter) ([]ItemResponse, error) {
	itemFilter := menu.ItemFilter{}
	if filter.CategoryID != "" {
		categoryID, err := uuid.Parse(filter.CategoryID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_CATEGORY", "Invalid category ID")
		}
		itemFilter.CategoryID = &categoryID
	}
	items, err := s.itemRepo.Find(ctx, restaurantID, itemFilter)
	if err != nil {
		return nil, err
	}
	return ToItemResponses(items), nil
}

// Available returns the items customers can order
func (s *MenuService) Available(ctx context.Context, restaurantID uuid.UUID) ([]ItemResponse, error) {
	items, err := s.itemRepo.Find(ctx, restaurantID, menu.ItemFilter{AvailableOnly: true})
	if err != nil {
		return nil, err
	}
	return ToItemResponses(items), nil
}

// Popular returns available popular items
func (s *MenuService) Popular(ctx context.Context, restaurantID uuid.UUID, limit int) ([]ItemResponse, error) {
	if limit <= 0 {
		limit = menu.DefaultPopularLimit
	}
	items, err := s.itemRepo.Find(ctx, restaurantID, menu.ItemFilter{
		AvailableOnly: true,
		PopularOnly:   true,
		Limit:         limit,
	})
	if err != nil {
		return nil, err
	}
	return ToItemResponses(items), nil
}

// GetItem retrieves a single item
func (s *MenuService) GetItem(ctx context.Context, restaurantID, id uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, restaurantID, id)
	if err != nil {
		return nil, err
	}
	response := ToItemResponse(item)
	return &response, nil
}

// CreateItem creates a new menu item
func (s *MenuService) CreateItem(ctx context.Context, restaurantID uuid.UUID, req CreateItemRequest) (*ItemResponse, error) {
	opts := []menu.ItemOption{
		menu.WithDescription(req.Description),
		menu.WithPopular(req.IsPopular),
		menu.WithDisplayOrder(req.DisplayOrder),
	}
	if req.PreparationTime > 0 {
		opts = append(opts, menu.WithPreparationTime(req.PreparationTime))
	}
	if req.CategoryID != nil && *req.CategoryID != uuid.Nil {
		if err := s.ensureCategory(ctx, restaurantID, *req.CategoryID); err != nil {
			return nil, err
		}
		opts = append(opts, menu.WithCategory(*req.CategoryID))
	}

	item, err := menu.NewItem(restaurantID, req.Name, valueobject.NewMoney(req.Price), opts...)
	if err != nil {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.publish(ctx, item.GetDomainEvents())
	item.ClearDomainEvents()

	response := ToItemResponse(item)
	return &response, nil
}

// UpdateItem updates a menu item
func (s *MenuService) UpdateItem(ctx context.Context, restaurantID, id uuid.UUID, req UpdateItemRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, restaurantID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Description != nil || req.PreparationTime != nil {
		name, description, prep := item.Name, item.Description, item.PreparationTime
		if req.Name != nil {
			name = *req.Name
		}
		if req.Description != nil {
			description = *req.Description
		}
		if req.PreparationTime != nil {
			prep = *req.PreparationTime
		}
		if err := item.Update(name, description, prep); err != nil {
			return nil, err
		}
	}
	if req.Price != nil {
		if err := item.SetPrice(valueobject.NewMoney(*req.Price)); err != nil {
			return nil, err
		}
	}
	if req.CategoryID != nil {
		if *req.CategoryID != uuid.Nil {
			if err := s.ensureCategory(ctx, restaurantID, *req.CategoryID); err != nil {
				return nil, err
			}
		}
		item.MoveToCategory(*req.CategoryID)
	}
	if req.IsPopular != nil {
		item.MarkPopular(*req.IsPopular)
	}
	if req.DisplayOrder != nil {
		item.SetDisplayOrder(*req.DisplayOrder)
	}

	return s.saveItem(ctx, item)
}

// SetAvailability toggles whether an item can be ordered
func (s *MenuService) SetAvailability(ctx context.Context, restaurantID, id uuid.UUID, available bool) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, restaurantID, id)
	if err != nil {
		return nil, err
	}
	item.SetAvailability(available)
	return s.saveItem(ctx, item)
}

// DeleteItem removes a menu item. Past orders keep their copy of name and price.
func (s *MenuService) DeleteItem(ctx context.Context, restaurantID, id uuid.UUID) error {
	item, err := s.itemRepo.FindByID(ctx, restaurantID, id)
	if err != nil {
		return err
	}
	item.MarkDeleted()
	if err := s.itemRepo.Delete(ctx, restaurantID, id); err != nil {
		return err
	}
	s.publish(ctx, item.GetDomainEvents())
	return nil
}

// UploadImage stores an item image under menu-images/<restaurant>/<unix-ms>.<ext>
// and points the item at it.
func (s *MenuService) UploadImage(ctx context.Context, restaurantID, itemID uuid.UUID, filename string, content io.Reader, size int64) (*ImageUploadResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Image storage is not configured")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := ImageContentTypes[ext]
	if !ok {
		return nil, shared.NewDomainError("INVALID_FILE_TYPE", fmt.Sprintf("File type %q is not allowed", ext))
	}
	if size <= 0 || size > MaxImageSize {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "Image must be between 1 byte and 5 MB")
	}

	item, err := s.itemRepo.FindByID(ctx, restaurantID, itemID)
	if err != nil {
		return nil, err
	}

	key := ImageKey(restaurantID, s.now(), ext)
	url, err := s.storage.PutObject(ctx, key, contentType, content, size)
	if err != nil {
		return nil, fmt.Errorf("upload menu image: %w", err)
	}

	item.SetImage(url)
	resp, err := s.saveItem(ctx, item)
	if err != nil {
		if delErr := s.storage.DeleteObject(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned menu image", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("menu image uploaded",
		zap.String("restaurant_id", restaurantID.String()),
		zap.String("item_id", itemID.String()),
		zap.String("key", key),
	)
	return &ImageUploadResponse{Key: key, ImageURL: url, Item: *resp}, nil
}

// ImageKey returns the object key of a menu image uploaded at t
func ImageKey(restaurantID uuid.UUID, t time.Time, ext string) string {
	return fmt.Sprintf("menu-images/%s/%d%s", restaurantID, t.UnixMilli(), ext)
}

// FullMenu returns active categories with their items. Items without an
// active category are listed separately.
func (s *MenuService) FullMenu(ctx context.Context, restaurantID uuid.UUID, availableOnly bool) (*FullMenuResponse, error) {
	categories, err := s.categoryRepo.FindActive(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	items, err := s.itemRepo.Find(ctx, restaurantID, menu.ItemFilter{AvailableOnly: availableOnly})
	if err != nil {
		return nil, err
	}

	byCategory := make(map[uuid.UUID][]ItemResponse, len(categories))
	var uncategorized []ItemResponse
	active := make(map[uuid.UUID]bool, len(categories))
	for _, c := range categories {
		active[c.ID] = true
	}
	for i := range items {
		item := &items[i]
		if item.CategoryID != nil && active[*item.CategoryID] {
			byCategory[*item.CategoryID] = append(byCategory[*item.CategoryID], ToItemResponse(item))
			continue
		}
		uncategorized = append(uncategorized, ToItemResponse(item))
	}

	resp := &FullMenuResponse{Sections: make([]MenuSection, 0, len(categories)), Uncategorized: uncategorized}
	for i := range categories {
		sectionItems := byCategory[categories[i].ID]
		if sectionItems == nil {
			sectionItems = []ItemResponse{}
		}
		resp.Sections = append(resp.Sections, MenuSection{
			Category: ToCategoryResponse(&categories[i]),
			Items:    sectionItems,
		})
	}
	return resp, nil
}

// PublicMenu returns the restaurant header with its orderable menu
func (s *MenuService) PublicMenu(ctx context.Context, restaurantID uuid.UUID) (*PublicMenuResponse, error) {
	r, err := s.restaurantRepo.FindByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	full, err := s.FullMenu(ctx, restaurantID, true)
	if err != nil {
		return nil, err
	}
	return &PublicMenuResponse{Restaurant: toRestaurantSummary(r), Menu: *full}, nil
}

func (s *MenuService) ensureCategory(ctx context.Context, restaurantID, categoryID uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, restaurantID, categoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return err
	}
	return nil
}

func (s *MenuService) saveItem(ctx context.Context, item *menu.Item) (*ItemResponse, error) {
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.publish(ctx, item.GetDomainEvents())
	item.ClearDomainEvents()

	response := ToItemResponse(item)
	return &response, nil
}

func (s *MenuService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish menu events", zap.Error(err))
	}
}
