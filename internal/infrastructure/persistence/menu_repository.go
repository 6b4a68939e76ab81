package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/menu"
	"github.com/restaurant/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCategoryRepository implements menu.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

var _ menu.CategoryRepository = (*GormCategoryRepository)(nil)

// FindByID finds a category of a restaurant
func (r *GormCategoryRepository) FindByID(ctx context.Context, restaurantID, id uuid.UUID) (*menu.Category, error) {
	var model models.CategoryModel
	if err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND id = ?", restaurantID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindActive returns the active categories in display order
func (r *GormCategoryRepository) FindActive(ctx context.Context, restaurantID uuid.UUID) ([]menu.Category, error) {
	return r.find(r.db.WithContext(ctx).Where("restaurant_id = ? AND is_active = ?", restaurantID, true))
}

// FindAll returns every category in display order
func (r *GormCategoryRepository) FindAll(ctx context.Context, restaurantID uuid.UUID) ([]menu.Category, error) {
	return r.find(r.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID))
}

func (r *GormCategoryRepository) find(query *gorm.DB) ([]menu.Category, error) {
	var list []models.CategoryModel
	if err := query.Order("display_order ASC, name ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	categories := make([]menu.Category, len(list))
	for i := range list {
		categories[i] = *list[i].ToDomain()
	}
	return categories, nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *menu.Category) error {
	return r.db.WithContext(ctx).Save(models.CategoryModelFromDomain(category)).Error
}

// Delete removes a category. Items of the category are kept and become
// uncategorized.
func (r *GormCategoryRepository) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.MenuItemModel{}).
			Where("restaurant_id = ? AND category_id = ?", restaurantID, id).
			Update("category_id", nil).Error; err != nil {
			return err
		}

		result := tx.Where("restaurant_id = ? AND id = ?", restaurantID, id).Delete(&models.CategoryModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return notFound(gorm.ErrRecordNotFound)
		}
		return nil
	})
}

// GormItemRepository implements menu.ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

var _ menu.ItemRepository = (*GormItemRepository)(nil)

// FindByID finds a menu item of a restaurant
func (r *GormItemRepository) FindByID(ctx context.Context, restaurantID, id uuid.UUID) (*menu.Item, error) {
	var model models.MenuItemModel
	if err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND id = ?", restaurantID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs loads several items of a restaurant; missing ids are skipped
func (r *GormItemRepository) FindByIDs(ctx context.Context, restaurantID uuid.UUID, ids []uuid.UUID) ([]menu.Item, error) {
	if len(ids) == 0 {
		return []menu.Item{}, nil
	}
	var list []models.MenuItemModel
	if err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND id IN ?", restaurantID, ids).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return toDomainItems(list), nil
}

// Find returns items in display order
func (r *GormItemRepository) Find(ctx context.Context, restaurantID uuid.UUID, filter menu.ItemFilter) ([]menu.Item, error) {
	query := r.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID)
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.AvailableOnly {
		query = query.Where("is_available = ?", true)
	}
	if filter.PopularOnly {
		query = query.Where("is_popular = ?", true)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var list []models.MenuItemModel
	if err := query.Order("display_order ASC, name ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return toDomainItems(list), nil
}

// Save creates or updates a menu item
func (r *GormItemRepository) Save(ctx context.Context, item *menu.Item) error {
	return r.db.WithContext(ctx).Save(models.MenuItemModelFromDomain(item)).Error
}

// Delete removes a menu item. Past orders keep their item snapshot.
func (r *GormItemRepository) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND id = ?", restaurantID, id).
		Delete(&models.MenuItemModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound)
	}
	return nil
}

func toDomainItems(list []models.MenuItemModel) []menu.Item {
	items := make([]menu.Item, len(list))
	for i := range list {
		items[i] = *list[i].ToDomain()
	}
	return items
}
