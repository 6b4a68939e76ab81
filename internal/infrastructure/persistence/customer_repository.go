package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/customer"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/restaurant/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

var _ customer.CustomerRepository = (*GormCustomerRepository)(nil)

// FindByID finds a customer by ID within a restaurant
func (r *GormCustomerRepository) FindByID(ctx context.Context, restaurantID, id uuid.UUID) (*customer.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND id = ?", restaurantID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByPhone finds a customer by phone within a restaurant. The phone is
// compared on digits only.
func (r *GormCustomerRepository) FindByPhone(ctx context.Context, restaurantID uuid.UUID, phone string) (*customer.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND phone = ?", restaurantID, valueobject.NormalizePhone(phone)).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAllForRestaurant finds all customers of a restaurant with filtering
func (r *GormCustomerRepository) FindAllForRestaurant(ctx context.Context, restaurantID uuid.UUID, filter shared.Filter) ([]customer.Customer, error) {
	var list []models.CustomerModel
	query := r.db.WithContext(ctx).Model(&models.CustomerModel{}).Where("restaurant_id = ?", restaurantID)
	query = r.applyFilter(query, filter)

	if err := query.Find(&list).Error; err != nil {
		return nil, err
	}
	return toDomainCustomers(list), nil
}

// CountForRestaurant counts customers of a restaurant with optional filters
func (r *GormCustomerRepository) CountForRestaurant(ctx context.Context, restaurantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.CustomerModel{}).Where("restaurant_id = ?", restaurantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindTop returns the customers who spent the most
func (r *GormCustomerRepository) FindTop(ctx context.Context, restaurantID uuid.UUID, limit int) ([]customer.Customer, error) {
	if limit <= 0 {
		limit = customer.DefaultTopLimit
	}
	var list []models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND total_orders > 0", restaurantID).
		Order("total_spent DESC, total_orders DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return toDomainCustomers(list), nil
}

// Stats aggregates customer figures of a restaurant in SQL
func (r *GormCustomerRepository) Stats(ctx context.Context, restaurantID uuid.UUID, monthStart time.Time) (*customer.Stats, error) {
	var row struct {
		TotalCustomers int64
		TotalRevenue   decimal.NullDecimal
		TotalOrders    int64
		NewThisMonth   int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Select(`COUNT(*) AS total_customers,
			SUM(total_spent) AS total_revenue,
			COALESCE(SUM(total_orders), 0) AS total_orders,
			COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0) AS new_this_month`, monthStart).
		Where("restaurant_id = ?", restaurantID).
		Scan(&row).Error; err != nil {
		return nil, fmt.Errorf("customer stats: %w", err)
	}

	stats := &customer.Stats{
		TotalCustomers:        row.TotalCustomers,
		TotalRevenue:          decimal.Zero,
		TotalOrders:           row.TotalOrders,
		NewCustomersThisMonth: row.NewThisMonth,
	}
	if row.TotalRevenue.Valid {
		stats.TotalRevenue = row.TotalRevenue.Decimal.Round(2)
	}
	return stats, nil
}

// Create inserts a customer; a phone already registered in the restaurant
// leaves the row untouched and reports ErrAlreadyExists.
func (r *GormCustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "restaurant_id"}, {Name: "phone"}},
			DoNothing: true,
		}).
		Create(models.CustomerModelFromDomain(c))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrAlreadyExists
	}
	return nil
}

// UpdateContact writes the contact columns of an existing customer
func (r *GormCustomerRepository) UpdateContact(ctx context.Context, c *customer.Customer) error {
	result := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Where("restaurant_id = ? AND id = ?", c.RestaurantID, c.ID).
		Updates(map[string]interface{}{
			"name":       c.Name,
			"email":      c.Email,
			"address":    c.Address,
			"notes":      c.Notes,
			"updated_at": c.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AddOrder increments the order totals in the database so concurrent
// checkouts of the same customer all count. last_order_at only moves forward.
func (r *GormCustomerRepository) AddOrder(ctx context.Context, restaurantID, id uuid.UUID, amount decimal.Decimal, at time.Time) (*customer.Customer, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Where("restaurant_id = ? AND id = ?", restaurantID, id).
		Updates(map[string]interface{}{
			"total_orders":  gorm.Expr("total_orders + 1"),
			"total_spent":   gorm.Expr("total_spent + ?", amount),
			"last_order_at": gorm.Expr("CASE WHEN last_order_at IS NULL OR last_order_at < ? THEN ? ELSE last_order_at END", at, at),
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, shared.ErrNotFound
	}
	return r.FindByID(ctx, restaurantID, id)
}

// applyFilter applies filter options to the query
func (r *GormCustomerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	return query.Order(customerSort.OrderBy(filter.OrderBy, filter.OrderDir))
}

// applyFilterWithoutPagination applies search but not pagination or ordering
func (r *GormCustomerRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search == "" {
		return query
	}
	search := "%" + strings.ToLower(filter.Search) + "%"
	if digits := valueobject.NormalizePhone(filter.Search); digits != "" {
		return query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?",
			search, search, "%"+digits+"%")
	}
	return query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", search, search)
}

func toDomainCustomers(list []models.CustomerModel) []customer.Customer {
	customers := make([]customer.Customer, len(list))
	for i := range list {
		customers[i] = *list[i].ToDomain()
	}
	return customers
}
