package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/restaurant"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/restaurant/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRestaurantRepository implements RestaurantRepository using GORM
type GormRestaurantRepository struct {
	db *gorm.DB
}

// NewGormRestaurantRepository creates a new GormRestaurantRepository
func NewGormRestaurantRepository(db *gorm.DB) *GormRestaurantRepository {
	return &GormRestaurantRepository{db: db}
}

var _ restaurant.RestaurantRepository = (*GormRestaurantRepository)(nil)

// FindByID finds a restaurant by ID
func (r *GormRestaurantRepository) FindByID(ctx context.Context, id uuid.UUID) (*restaurant.Restaurant, error) {
	var model models.RestaurantModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a restaurant
func (r *GormRestaurantRepository) Save(ctx context.Context, rest *restaurant.Restaurant) error {
	return r.db.WithContext(ctx).Save(models.RestaurantModelFromDomain(rest)).Error
}

// GormStaffUserRepository implements StaffUserRepository using GORM
type GormStaffUserRepository struct {
	db *gorm.DB
}

// NewGormStaffUserRepository creates a new GormStaffUserRepository
func NewGormStaffUserRepository(db *gorm.DB) *GormStaffUserRepository {
	return &GormStaffUserRepository{db: db}
}

var _ restaurant.StaffUserRepository = (*GormStaffUserRepository)(nil)

// FindByID finds a staff user of a restaurant
func (r *GormStaffUserRepository) FindByID(ctx context.Context, restaurantID, id uuid.UUID) (*restaurant.StaffUser, error) {
	var model models.StaffUserModel
	if err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND id = ?", restaurantID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a staff user by login email across restaurants
func (r *GormStaffUserRepository) FindByEmail(ctx context.Context, email string) (*restaurant.StaffUser, error) {
	var model models.StaffUserModel
	if err := r.db.WithContext(ctx).
		Where("email = ?", valueobject.NormalizeEmail(email)).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAllForRestaurant lists the staff of a restaurant, owner first
func (r *GormStaffUserRepository) FindAllForRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]restaurant.StaffUser, error) {
	var list []models.StaffUserModel
	if err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("CASE WHEN role = 'owner' THEN 0 ELSE 1 END, created_at ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	users := make([]restaurant.StaffUser, len(list))
	for i := range list {
		users[i] = *list[i].ToDomain()
	}
	return users, nil
}

// ExistsByEmail checks if a login email is taken
func (r *GormStaffUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.StaffUserModel{}).
		Where("email = ?", valueobject.NormalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a staff user
func (r *GormStaffUserRepository) Save(ctx context.Context, u *restaurant.StaffUser) error {
	return r.db.WithContext(ctx).Save(models.StaffUserModelFromDomain(u)).Error
}

// GormWhatsAppSettingsRepository implements WhatsAppSettingsRepository using GORM
type GormWhatsAppSettingsRepository struct {
	db *gorm.DB
}

// NewGormWhatsAppSettingsRepository creates a new GormWhatsAppSettingsRepository
func NewGormWhatsAppSettingsRepository(db *gorm.DB) *GormWhatsAppSettingsRepository {
	return &GormWhatsAppSettingsRepository{db: db}
}

var _ restaurant.WhatsAppSettingsRepository = (*GormWhatsAppSettingsRepository)(nil)

// FindByRestaurant returns the WhatsApp settings of a restaurant
func (r *GormWhatsAppSettingsRepository) FindByRestaurant(ctx context.Context, restaurantID uuid.UUID) (*restaurant.WhatsAppSettings, error) {
	var model models.WhatsAppSettingsModel
	if err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates WhatsApp settings
func (r *GormWhatsAppSettingsRepository) Save(ctx context.Context, s *restaurant.WhatsAppSettings) error {
	return r.db.WithContext(ctx).Save(models.WhatsAppSettingsModelFromDomain(s)).Error
}
