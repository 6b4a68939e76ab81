package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel provides common persistence fields for aggregate roots.
// It extends BaseModel with version for optimistic locking.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// ToAggregateRoot rebuilds the domain aggregate root header
func (m *AggregateModel) ToAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: m.BaseModel.ToDomain(),
		Version:    m.Version,
	}
}

// RestaurantAggregateModel provides common persistence fields for
// restaurant-scoped aggregate roots.
type RestaurantAggregateModel struct {
	AggregateModel
	RestaurantID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// FromDomainRestaurantAggregateRoot populates RestaurantAggregateModel from domain RestaurantAggregateRoot
func (m *RestaurantAggregateModel) FromDomainRestaurantAggregateRoot(r shared.RestaurantAggregateRoot) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.RestaurantID = r.RestaurantID
}

// ToRestaurantAggregateRoot rebuilds the domain RestaurantAggregateRoot
func (m *RestaurantAggregateModel) ToRestaurantAggregateRoot() shared.RestaurantAggregateRoot {
	return shared.RestaurantAggregateRoot{
		BaseAggregateRoot: m.ToAggregateRoot(),
		RestaurantID:      m.RestaurantID,
	}
}

// All lists every persistence model, parents before children. Test
// databases are migrated from it; production schemas come from migrations/.
func All() []interface{} {
	return []interface{}{
		&RestaurantModel{},
		&StaffUserModel{},
		&WhatsAppSettingsModel{},
		&CategoryModel{},
		&MenuItemModel{},
		&CustomerModel{},
		&OrderModel{},
		&OrderItemModel{},
		&OrderStatusHistoryModel{},
		&OrderNumberSequenceModel{},
	}
}

// CompositeIndexes are unique indexes spanning an embedded column, which
// struct tags cannot declare. They mirror the ones in migrations/.
var CompositeIndexes = []string{
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_restaurant_phone ON customers(restaurant_id, phone)",
}
