package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderNumberPrefix starts every generated order number
const OrderNumberPrefix = "PED"

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db, now: time.Now}
}

var _ ordering.OrderRepository = (*GormOrderRepository)(nil)

func (r *GormOrderRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("changed_at ASC")
		})
}

// FindByID finds an order by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	var model models.OrderModel
	if err := r.preloaded(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForRestaurant finds an order by ID within a restaurant
func (r *GormOrderRepository) FindByIDForRestaurant(ctx context.Context, restaurantID, id uuid.UUID) (*ordering.Order, error) {
	var model models.OrderModel
	if err := r.preloaded(ctx).
		Where("restaurant_id = ? AND id = ?", restaurantID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByOrderNumber finds an order by its public number. Numbers are unique
// across restaurants.
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*ordering.Order, error) {
	var model models.OrderModel
	if err := r.preloaded(ctx).
		Where("order_number = ?", strings.ToUpper(strings.TrimSpace(orderNumber))).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAllForRestaurant finds all orders of a restaurant with filtering
func (r *GormOrderRepository) FindAllForRestaurant(ctx context.Context, restaurantID uuid.UUID, filter shared.Filter) ([]ordering.Order, error) {
	var list []models.OrderModel
	query := r.preloaded(ctx).Model(&models.OrderModel{}).Where("restaurant_id = ?", restaurantID)
	query = r.applyFilter(query, filter)

	if err := query.Find(&list).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(list), nil
}

// FindByStatus finds orders of a restaurant in the given status
func (r *GormOrderRepository) FindByStatus(ctx context.Context, restaurantID uuid.UUID, status ordering.OrderStatus, filter shared.Filter) ([]ordering.Order, error) {
	return r.FindAllForRestaurant(ctx, restaurantID, filter.WithFilter("status", string(status)))
}

// FindCreatedBetween finds orders created in [from, to), oldest first
func (r *GormOrderRepository) FindCreatedBetween(ctx context.Context, restaurantID uuid.UUID, from, to time.Time) ([]ordering.Order, error) {
	var list []models.OrderModel
	if err := r.preloaded(ctx).
		Where("restaurant_id = ? AND created_at >= ? AND created_at < ?", restaurantID, from, to).
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(list), nil
}

// CountForRestaurant counts orders of a restaurant with optional filters
func (r *GormOrderRepository) CountForRestaurant(ctx context.Context, restaurantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).Where("restaurant_id = ?", restaurantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SummarizeBetween aggregates the orders created in [from, to) in SQL
func (r *GormOrderRepository) SummarizeBetween(ctx context.Context, restaurantID uuid.UUID, from, to time.Time) (*ordering.OrderSummary, error) {
	var totals struct {
		Count             int64
		Revenue           decimal.NullDecimal
		DistinctCustomers int64
	}
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.OrderModel{}).
			Where("restaurant_id = ? AND created_at >= ? AND created_at < ?", restaurantID, from, to)
	}

	if err := base().
		Select("COUNT(*) AS count, SUM(total_amount) AS revenue, COUNT(DISTINCT customer_id) AS distinct_customers").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("summarize orders: %w", err)
	}

	var byStatus []struct {
		Status ordering.OrderStatus
		Count  int64
	}
	if err := base().
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}

	summary := &ordering.OrderSummary{
		Count:             totals.Count,
		Revenue:           decimal.Zero,
		DistinctCustomers: totals.DistinctCustomers,
		StatusCounts:      make(map[ordering.OrderStatus]int64, len(byStatus)),
	}
	if totals.Revenue.Valid {
		summary.Revenue = totals.Revenue.Decimal.Round(2)
	}
	for _, row := range byStatus {
		summary.StatusCounts[row.Status] = row.Count
	}
	return summary, nil
}

// Save creates or updates an order with its items and history. History
// entries are append-only: existing rows are never rewritten.
func (r *GormOrderRepository) Save(ctx context.Context, order *ordering.Order) error {
	model := models.OrderModelFromDomain(order)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}
		return saveOrderChildren(tx, model)
	})
}

// SaveWithLock saves an order with optimistic locking. The update only
// applies while the stored version still matches the loaded one; on
// success the order's version is incremented.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *ordering.Order) error {
	model := models.OrderModelFromDomain(order)
	expected := order.Version

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.OrderModel{}).
			Where("id = ? AND restaurant_id = ? AND version = ?", order.ID, order.RestaurantID, expected).
			Updates(map[string]interface{}{
				"customer_id":             model.CustomerID,
				"customer_name":           model.CustomerName,
				"customer_phone":          model.CustomerPhone,
				"status":                  model.Status,
				"payment_method":          model.PaymentMethod,
				"payment_status":          model.PaymentStatus,
				"subtotal":                model.Subtotal,
				"tax_amount":              model.TaxAmount,
				"delivery_fee":            model.DeliveryFee,
				"total_amount":            model.TotalAmount,
				"delivery_address":        model.DeliveryAddress,
				"customer_notes":          model.CustomerNotes,
				"estimated_delivery_time": model.EstimatedDeliveryTime,
				"delivered_at":            model.DeliveredAt,
				"cancelled_at":            model.CancelledAt,
				"cancel_reason":           model.CancelReason,
				"version":                 expected + 1,
				"updated_at":              model.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.OrderModel{}).
				Where("id = ? AND restaurant_id = ?", order.ID, order.RestaurantID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.ErrConcurrencyConflict
		}

		return saveOrderChildren(tx, model)
	})
	if err != nil {
		return err
	}

	order.IncrementVersion()
	return nil
}

// saveOrderChildren syncs items and appends new history entries
func saveOrderChildren(tx *gorm.DB, model *models.OrderModel) error {
	itemIDs := make([]uuid.UUID, len(model.Items))
	for i, item := range model.Items {
		itemIDs[i] = item.ID
	}

	// Delete items not in the current list
	del := tx.Where("order_id = ?", model.ID)
	if len(itemIDs) > 0 {
		del = del.Where("id NOT IN ?", itemIDs)
	}
	if err := del.Delete(&models.OrderItemModel{}).Error; err != nil {
		return err
	}

	for i := range model.Items {
		if err := tx.Save(&model.Items[i]).Error; err != nil {
			return err
		}
	}

	if len(model.StatusHistory) > 0 {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.StatusHistory).Error; err != nil {
			return err
		}
	}
	return nil
}

// GenerateOrderNumber allocates the next order number of the current year.
// The counter row is shared by every restaurant, so a number identifies one
// order system-wide. The upsert increments atomically, which keeps concurrent
// checkouts from drawing the same value.
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	year := r.now().Year()

	var next int64
	err := r.db.WithContext(ctx).Raw(
		`INSERT INTO order_number_sequences (year, last_value) VALUES (?, 1)
		ON CONFLICT (year) DO UPDATE SET last_value = order_number_sequences.last_value + 1
		RETURNING last_value`, year).
		Scan(&next).Error
	if err != nil {
		return "", fmt.Errorf("allocate order number: %w", err)
	}
	if next < 1 {
		return "", fmt.Errorf("allocate order number: counter returned %d", next)
	}
	return FormatOrderNumber(year, next), nil
}

// FormatOrderNumber renders PED-YYYY-NNNNN. Sequences past 99999 keep
// growing in width.
func FormatOrderNumber(year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%05d", OrderNumberPrefix, year, seq)
}

// applyFilter applies filter options to the query
func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	return query.Order(orderSort.OrderBy(filter.OrderBy, filter.OrderDir))
}

// applyFilterWithoutPagination applies search and filters but not pagination or ordering
func (r *GormOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(order_number) LIKE ? OR LOWER(customer_name) LIKE ? OR customer_phone LIKE ?",
			search, search, search)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "open":
			if open, ok := value.(bool); ok && open {
				query = query.Where("status NOT IN ?", []ordering.OrderStatus{
					ordering.OrderStatusDelivered, ordering.OrderStatusCancelled,
				})
			}
		}
	}
	return query
}

func toDomainOrders(list []models.OrderModel) []ordering.Order {
	orders := make([]ordering.Order, len(list))
	for i := range list {
		orders[i] = *list[i].ToDomain()
	}
	return orders
}

// notFound maps gorm.ErrRecordNotFound to shared.ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}
