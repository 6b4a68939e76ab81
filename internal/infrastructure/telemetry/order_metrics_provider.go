package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// activeOrderStatuses are the statuses shown on the kitchen board
var activeOrderStatuses = []string{"pending", "confirmed", "preparing", "ready", "delivering"}

// GormActiveOrdersProvider counts board orders straight from the orders table.
type GormActiveOrdersProvider struct {
	db *gorm.DB
}

// NewGormActiveOrdersProvider creates a new GormActiveOrdersProvider.
func NewGormActiveOrdersProvider(db *gorm.DB) *GormActiveOrdersProvider {
	return &GormActiveOrdersProvider{db: db}
}

// ActiveOrdersByStatus returns the number of active orders per status.
// Statuses without orders are reported as zero so the gauge drops back.
func (p *GormActiveOrdersProvider) ActiveOrdersByStatus(ctx context.Context, restaurantID uuid.UUID) (map[string]int64, error) {
	type row struct {
		Status string `gorm:"column:status"`
		Count  int64  `gorm:"column:count"`
	}

	var rows []row
	err := p.db.WithContext(ctx).
		Table("orders").
		Select("status, COUNT(*) AS count").
		Where("restaurant_id = ? AND status IN ?", restaurantID, activeOrderStatuses).
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(activeOrderStatuses))
	for _, s := range activeOrderStatuses {
		counts[s] = 0
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// GormRestaurantProvider lists restaurants for periodic collection.
type GormRestaurantProvider struct {
	db *gorm.DB
}

// NewGormRestaurantProvider creates a new GormRestaurantProvider.
func NewGormRestaurantProvider(db *gorm.DB) *GormRestaurantProvider {
	return &GormRestaurantProvider{db: db}
}

// RestaurantIDs returns every restaurant id.
func (p *GormRestaurantProvider) RestaurantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).Table("restaurants").Pluck("id", &ids).Error
	return ids, err
}
