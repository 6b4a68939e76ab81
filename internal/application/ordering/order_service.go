package ordering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/checkout"
	"github.com/restaurant/backend/internal/domain/customer"
	"github.com/restaurant/backend/internal/domain/menu"
	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/restaurant/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultListLimit is the page size used when a listing asks for none
const DefaultListLimit = 50

// DefaultStatsDays is the default stats window
const DefaultStatsDays = 30

// InitialEstimateMinutes is the delivery estimate of a new order
const InitialEstimateMinutes = 45

// CustomerRegistry finds or creates the customer placing an order and
// accumulates their totals
type CustomerRegistry interface {
	FindOrCreate(ctx context.Context, restaurantID uuid.UUID, phone, name, email, address string) (*customer.Customer, error)
	RecordOrder(ctx context.Context, restaurantID, customerID uuid.UUID, amount decimal.Decimal, at time.Time) error
}

// ContactProvider returns the phone customers use to reach a restaurant
type ContactProvider interface {
	ContactPhone(ctx context.Context, restaurantID uuid.UUID) (string, error)
}

// Options configure pricing and local time for the order service
type Options struct {
	DefaultDeliveryFee decimal.Decimal
	TaxRate            decimal.Decimal
	Location           *time.Location
	IdempotencyTTL     time.Duration
}

// OrderService handles order business operations
type OrderService struct {
	orderRepo      ordering.OrderRepository
	itemRepo       menu.ItemRepository
	customers      CustomerRegistry
	contacts       ContactProvider
	idempotency    shared.IdempotencyStore
	eventPublisher shared.EventPublisher
	opts           Options
	logger         *zap.Logger
	now            func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo ordering.OrderRepository,
	itemRepo menu.ItemRepository,
	customers CustomerRegistry,
	opts Options,
	logger *zap.Logger,
) *OrderService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.IdempotencyTTL <= 0 {
		opts.IdempotencyTTL = shared.DefaultIdempotencyConfig().TTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		customers: customers,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// SetEventPublisher sets the event publisher
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore enables Idempotency-Key handling on checkout
func (s *OrderService) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.idempotency = store
}

// SetContactProvider sets the source of the restaurant contact phone
func (s *OrderService) SetContactProvider(p ContactProvider) {
	s.contacts = p
}

// SetClock overrides the time source (tests)
func (s *OrderService) SetClock(now func() time.Time) {
	s.now = now
}

// PlaceOrder validates a checkout submission and creates the order.
// Prices come from the menu; client prices are ignored.
func (s *OrderService) PlaceOrder(ctx context.Context, restaurantID uuid.UUID, req PlaceOrderRequest) (*OrderResponse, error) {
	key := ""
	if req.IdempotencyKey != "" && s.idempotency != nil {
		key = fmt.Sprintf("checkout:%s:%s", restaurantID, req.IdempotencyKey)
		existing, err := s.claim(ctx, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	resp, err := s.placeOrder(ctx, restaurantID, req.Form)
	if key != "" {
		if err != nil {
			if relErr := s.idempotency.Release(ctx, key); relErr != nil {
				s.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(relErr))
			}
		} else if setErr := s.idempotency.SetResult(ctx, key, resp.OrderNumber, s.opts.IdempotencyTTL); setErr != nil {
			s.logger.Warn("failed to store idempotency result", zap.String("key", key), zap.Error(setErr))
		}
	}
	return resp, err
}

// claim returns the order of a previous request with the same key, or nil
// when this request now owns the key
func (s *OrderService) claim(ctx context.Context, key string) (*OrderResponse, error) {
	isNew, err := s.idempotency.MarkProcessed(ctx, key, s.opts.IdempotencyTTL)
	if err != nil {
		s.logger.Warn("idempotency store unavailable, processing anyway", zap.Error(err))
		return nil, nil
	}
	if isNew {
		return nil, nil
	}
	number, err := s.idempotency.GetResult(ctx, key)
	if err != nil {
		return nil, err
	}
	if number == "" {
		return nil, shared.NewDomainError("CONCURRENCY_CONFLICT", "A request with this Idempotency-Key is still being processed")
	}
	order, err := s.orderRepo.FindByOrderNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

func (s *OrderService) placeOrder(ctx context.Context, restaurantID uuid.UUID, form checkout.Form) (resp *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "place",
		telemetry.AttrRestaurantID.String(restaurantID.String()),
		telemetry.AttrItemCount.Int(len(form.Items)),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	form.Normalize()
	if err := checkout.Validate(form); err != nil {
		return nil, err
	}

	menuItems, err := s.resolveMenuItems(ctx, restaurantID, form.Items)
	if err != nil {
		return nil, err
	}
	for i := range form.Items {
		item := menuItems[form.Items[i].MenuItemID]
		form.Items[i].Name = item.Name
		form.Items[i].Price = item.Price
	}
	if err := checkout.ValidateChange(form, form.Total()); err != nil {
		return nil, err
	}

	address, err := form.DeliveryAddress()
	if err != nil {
		return nil, err
	}

	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	order, err := ordering.NewOrder(restaurantID, orderNumber, form.CustomerName, form.Phone, ordering.PaymentMethod(form.PaymentMethod))
	if err != nil {
		return nil, err
	}
	order.SetDeliveryAddress(address)
	order.SetCustomerNotes(form.CustomerNotes())

	for _, line := range form.Items {
		item := menuItems[line.MenuItemID]
		if _, err := order.AddItem(item.ID, item.Name, line.Quantity, item.PriceMoney(), line.Notes); err != nil {
			return nil, err
		}
	}

	if err := order.SetDeliveryFee(valueobject.NewMoney(s.opts.DefaultDeliveryFee)); err != nil {
		return nil, err
	}
	if s.opts.TaxRate.IsPositive() {
		tax := valueobject.NewMoney(order.Subtotal.Mul(s.opts.TaxRate))
		if err := order.SetTaxAmount(tax); err != nil {
			return nil, err
		}
	}
	if err := order.SetEstimatedDeliveryTime(s.now().Add(InitialEstimateMinutes * time.Minute)); err != nil {
		return nil, err
	}

	// The courier collects the full total, delivery fee included
	if err := checkout.ValidateChange(form, order.TotalAmount); err != nil {
		return nil, err
	}

	cust, err := s.customers.FindOrCreate(ctx, restaurantID, form.Phone, form.CustomerName, form.Email, address)
	if err != nil {
		return nil, err
	}
	order.SetCustomer(cust.ID)

	if err := order.Place(); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	if err := s.customers.RecordOrder(ctx, restaurantID, cust.ID, order.TotalAmount, order.CreatedAt); err != nil {
		s.logger.Error("failed to record order on customer",
			zap.String("order_number", order.OrderNumber),
			zap.String("customer_id", cust.ID.String()),
			zap.Error(err),
		)
	}

	s.publishEvents(ctx, order)
	span.SetAttributes(
		telemetry.AttrOrderID.String(order.ID.String()),
		telemetry.AttrOrderNumber.String(order.OrderNumber),
		telemetry.AttrCustomerID.String(cust.ID.String()),
	)

	s.logger.Info("order placed",
		zap.String("restaurant_id", restaurantID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("total", order.TotalAmount.StringFixed(2)),
		zap.Int("items", order.ItemCount()),
	)

	response := ToOrderResponse(order)
	return &response, nil
}

// resolveMenuItems loads every cart item and checks it can be ordered
func (s *OrderService) resolveMenuItems(ctx context.Context, restaurantID uuid.UUID, lines []checkout.CartLine) (map[uuid.UUID]*menu.Item, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.MenuItemID)
	}
	items, err := s.itemRepo.FindByIDs(ctx, restaurantID, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*menu.Item, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	for _, l := range lines {
		item, ok := byID[l.MenuItemID]
		if !ok {
			return nil, shared.NewValidationError(checkout.StepSummary, "items",
				fmt.Sprintf("Menu item %s not found", l.MenuItemID))
		}
		if !item.IsAvailable {
			return nil, shared.NewValidationError(checkout.StepSummary, "items",
				fmt.Sprintf("%s is not available right now", item.Name))
		}
	}
	return byID, nil
}

// GetByID retrieves an order of a restaurant
func (s *OrderService) GetByID(ctx context.Context, restaurantID, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByIDForRestaurant(ctx, restaurantID, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// GetByNumber retrieves an order by its public number
func (s *OrderService) GetByNumber(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// List retrieves orders newest first, optionally by status
func (s *OrderService) List(ctx context.Context, restaurantID uuid.UUID, filter OrderListFilter) ([]OrderResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = DefaultListLimit
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != "" {
		status, err := ordering.ParseOrderStatus(filter.Status)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Filters["status"] = string(status)
	}

	orders, err := s.orderRepo.FindAllForRestaurant(ctx, restaurantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.CountForRestaurant(ctx, restaurantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToOrderResponses(orders), total, nil
}

// ListToday returns the orders created during the current local day
func (s *OrderService) ListToday(ctx context.Context, restaurantID uuid.UUID) ([]OrderResponse, error) {
	from, to := DayWindow(s.now(), s.opts.Location)
	orders, err := s.orderRepo.FindCreatedBetween(ctx, restaurantID, from, to)
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders), nil
}

// Board returns the kanban board: every open order plus the orders
// delivered or cancelled today.
func (s *OrderService) Board(ctx context.Context, restaurantID uuid.UUID) (*BoardResponse, error) {
	from, to := DayWindow(s.now(), s.opts.Location)
	today, err := s.orderRepo.FindCreatedBetween(ctx, restaurantID, from, to)
	if err != nil {
		return nil, err
	}

	open := shared.Filter{
		Page:     1,
		PageSize: 500,
		OrderBy:  "created_at",
		OrderDir: "asc",
		Filters:  map[string]interface{}{"open": true},
	}
	active, err := s.orderRepo.FindAllForRestaurant(ctx, restaurantID, open)
	if err != nil {
		return nil, err
	}

	columns := make(map[ordering.OrderStatus][]OrderResponse)
	seen := make(map[uuid.UUID]bool)
	for _, list := range [][]ordering.Order{active, today} {
		for i := range list {
			o := &list[i]
			if seen[o.ID] {
				continue
			}
			seen[o.ID] = true
			columns[o.Status] = append(columns[o.Status], ToOrderResponse(o))
		}
	}

	board := &BoardResponse{Columns: make([]BoardColumn, 0, len(ordering.AllStatuses()))}
	for _, status := range ordering.AllStatuses() {
		orders := columns[status]
		if orders == nil {
			orders = []OrderResponse{}
		}
		board.Columns = append(board.Columns, BoardColumn{Status: string(status), Orders: orders})
	}
	return board, nil
}

// Advance moves an order to its next status
func (s *OrderService) Advance(ctx context.Context, restaurantID, orderID, changedBy uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, restaurantID, orderID, func(o *ordering.Order) error {
		return o.Advance(&changedBy)
	})
}

// UpdateStatus moves an order to the requested status. Only the next
// status or cancelled are accepted.
func (s *OrderService) UpdateStatus(ctx context.Context, restaurantID, orderID, changedBy uuid.UUID, req UpdateStatusRequest) (*OrderResponse, error) {
	status, err := ordering.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, restaurantID, orderID, func(o *ordering.Order) error {
		if status == ordering.OrderStatusCancelled {
			return o.Cancel(req.Reason, &changedBy)
		}
		return o.AdvanceTo(status, &changedBy)
	})
}

// Cancel cancels an order
func (s *OrderService) Cancel(ctx context.Context, restaurantID, orderID, changedBy uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	return s.mutate(ctx, restaurantID, orderID, func(o *ordering.Order) error {
		return o.Cancel(req.Reason, &changedBy)
	})
}

// UpdatePaymentStatus changes the payment status of an order
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, restaurantID, orderID uuid.UUID, req UpdatePaymentStatusRequest) (*OrderResponse, error) {
	return s.mutate(ctx, restaurantID, orderID, func(o *ordering.Order) error {
		return o.UpdatePaymentStatus(ordering.PaymentStatus(req.PaymentStatus))
	})
}

// mutate loads, changes and saves an order with optimistic locking, then
// publishes its events. A version conflict is returned to the caller, who
// must re-fetch.
func (s *OrderService) mutate(ctx context.Context, restaurantID, orderID uuid.UUID, change func(*ordering.Order) error) (resp *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "update",
		telemetry.AttrRestaurantID.String(restaurantID.String()),
		telemetry.AttrOrderID.String(orderID.String()),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	order, err := s.orderRepo.FindByIDForRestaurant(ctx, restaurantID, orderID)
	if err != nil {
		return nil, err
	}

	if err := change(order); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			s.logger.Info("order modified concurrently",
				zap.String("order_id", orderID.String()),
				zap.Int("version", order.Version),
			)
		}
		return nil, err
	}

	s.publishEvents(ctx, order)
	span.SetAttributes(telemetry.AttrOrderStatus.String(string(order.Status)))

	response := ToOrderResponse(order)
	return &response, nil
}

func (s *OrderService) publishEvents(ctx context.Context, order *ordering.Order) {
	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish order events",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}

// Stats returns totals for the last days days. Revenue includes every order
// regardless of status.
func (s *OrderService) Stats(ctx context.Context, restaurantID uuid.UUID, days int) (*StatsResponse, error) {
	if days <= 0 {
		days = DefaultStatsDays
	}
	now := s.now()
	summary, err := s.orderRepo.SummarizeBetween(ctx, restaurantID, now.AddDate(0, 0, -days), now)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(ordering.AllStatuses()))
	for _, st := range ordering.AllStatuses() {
		counts[string(st)] = summary.StatusCounts[st]
	}

	return &StatsResponse{
		Days:              days,
		TotalOrders:       summary.Count,
		TotalRevenue:      summary.Revenue,
		AverageOrderValue: summary.AverageOrderValue(),
		StatusCounts:      counts,
	}, nil
}

// DayWindow returns [start of day, start of next day) of t in loc
func DayWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
