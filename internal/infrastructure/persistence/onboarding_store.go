package persistence

import (
	"context"
	"errors"

	"github.com/restaurant/backend/internal/domain/onboarding"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOnboardingStore persists a finished onboarding in one transaction
type GormOnboardingStore struct {
	db *gorm.DB
}

// NewGormOnboardingStore creates a new GormOnboardingStore
func NewGormOnboardingStore(db *gorm.DB) *GormOnboardingStore {
	return &GormOnboardingStore{db: db}
}

var _ onboarding.Store = (*GormOnboardingStore)(nil)

// Create inserts the restaurant, its owner, categories, WhatsApp settings
// and invited users. Nothing is written when any insert fails.
func (s *GormOnboardingStore) Create(ctx context.Context, setup *onboarding.Setup) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.RestaurantModelFromDomain(setup.Restaurant)).Error; err != nil {
			return err
		}
		if err := tx.Create(models.StaffUserModelFromDomain(setup.Owner)).Error; err != nil {
			return err
		}

		if len(setup.Categories) > 0 {
			categories := make([]*models.CategoryModel, len(setup.Categories))
			for i, c := range setup.Categories {
				categories[i] = models.CategoryModelFromDomain(c)
			}
			if err := tx.Create(&categories).Error; err != nil {
				return err
			}
		}

		if setup.WhatsApp != nil {
			if err := tx.Create(models.WhatsAppSettingsModelFromDomain(setup.WhatsApp)).Error; err != nil {
				return err
			}
		}

		for _, u := range setup.Users {
			if err := tx.Create(models.StaffUserModelFromDomain(u)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}
