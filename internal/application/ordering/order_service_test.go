package ordering

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/checkout"
	"github.com/restaurant/backend/internal/domain/customer"
	"github.com/restaurant/backend/internal/domain/menu"
	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIDForRestaurant(ctx context.Context, restaurantID, id uuid.UUID) (*ordering.Order, error) {
	args := m.Called(ctx, restaurantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*ordering.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAllForRestaurant(ctx context.Context, restaurantID uuid.UUID, filter shared.Filter) ([]ordering.Order, error) {
	args := m.Called(ctx, restaurantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByStatus(ctx context.Context, restaurantID uuid.UUID, status ordering.OrderStatus, filter shared.Filter) ([]ordering.Order, error) {
	args := m.Called(ctx, restaurantID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindCreatedBetween(ctx context.Context, restaurantID uuid.UUID, from, to time.Time) ([]ordering.Order, error) {
	args := m.Called(ctx, restaurantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) CountForRestaurant(ctx context.Context, restaurantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, restaurantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) SummarizeBetween(ctx context.Context, restaurantID uuid.UUID, from, to time.Time) (*ordering.OrderSummary, error) {
	args := m.Called(ctx, restaurantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordering.OrderSummary), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *ordering.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, order *ordering.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockItemRepository is a mock implementation of menu.ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByID(ctx context.Context, restaurantID, id uuid.UUID) (*menu.Item, error) {
	args := m.Called(ctx, restaurantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*menu.Item), args.Error(1)
}

func (m *MockItemRepository) FindByIDs(ctx context.Context, restaurantID uuid.UUID, ids []uuid.UUID) ([]menu.Item, error) {
	args := m.Called(ctx, restaurantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]menu.Item), args.Error(1)
}

func (m *MockItemRepository) Find(ctx context.Context, restaurantID uuid.UUID, filter menu.ItemFilter) ([]menu.Item, error) {
	args := m.Called(ctx, restaurantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]menu.Item), args.Error(1)
}

func (m *MockItemRepository) Save(ctx context.Context, item *menu.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	args := m.Called(ctx, restaurantID, id)
	return args.Error(0)
}

// MockCustomerRegistry is a mock implementation of CustomerRegistry
type MockCustomerRegistry struct {
	mock.Mock
}

func (m *MockCustomerRegistry) FindOrCreate(ctx context.Context, restaurantID uuid.UUID, phone, name, email, address string) (*customer.Customer, error) {
	args := m.Called(ctx, restaurantID, phone, name, email, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRegistry) RecordOrder(ctx context.Context, restaurantID, customerID uuid.UUID, amount decimal.Decimal, at time.Time) error {
	args := m.Called(ctx, restaurantID, customerID, amount, at)
	return args.Error(0)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) SetResult(ctx context.Context, key, result string, ttl time.Duration) error {
	args := m.Called(ctx, key, result, ttl)
	return args.Error(0)
}

func (m *MockIdempotencyStore) GetResult(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type staticContacts string

func (s staticContacts) ContactPhone(context.Context, uuid.UUID) (string, error) {
	return string(s), nil
}

var (
	testRestaurantID = uuid.New()
	testStaffID      = uuid.New()
	testOrderNumber  = "PED-2026-00001"
	testNow          = time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)
)

type fixture struct {
	orders    *MockOrderRepository
	items     *MockItemRepository
	customers *MockCustomerRegistry
	publisher *MockEventPublisher
	service   *OrderService
	pizza     menu.Item
	soda      menu.Item
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pizza, err := menu.NewItem(testRestaurantID, "Pizza Margherita", valueobject.NewMoneyFromFloat(40))
	require.NoError(t, err)
	soda, err := menu.NewItem(testRestaurantID, "Guaraná", valueobject.NewMoneyFromFloat(6.5))
	require.NoError(t, err)

	f := &fixture{
		orders:    new(MockOrderRepository),
		items:     new(MockItemRepository),
		customers: new(MockCustomerRegistry),
		publisher: new(MockEventPublisher),
		pizza:     *pizza,
		soda:      *soda,
	}
	f.service = NewOrderService(f.orders, f.items, f.customers, Options{
		DefaultDeliveryFee: decimal.NewFromInt(5),
		Location:           time.UTC,
	}, nil)
	f.service.SetEventPublisher(f.publisher)
	f.service.SetClock(func() time.Time { return testNow })
	return f
}

func (f *fixture) request() PlaceOrderRequest {
	return PlaceOrderRequest{Form: checkout.Form{
		CustomerName:  "Maria Silva",
		CEP:           "01310100",
		Address:       "Av. Paulista",
		Number:        "1000",
		Neighborhood:  "Bela Vista",
		City:          "São Paulo",
		State:         "sp",
		PaymentMethod: "pix",
		PixTiming:     checkout.PixTimingNow,
		Phone:         "11999998888",
		Items: []checkout.CartLine{
			{MenuItemID: f.pizza.ID, Name: "Pizza", Price: decimal.NewFromInt(1), Quantity: 2},
			{MenuItemID: f.soda.ID, Name: "Guaraná", Price: decimal.NewFromInt(1), Quantity: 1, Notes: "gelado"},
		},
	}}
}

func (f *fixture) expectHappyPath(t *testing.T) *customer.Customer {
	t.Helper()
	cust, err := customer.NewCustomer(testRestaurantID, "Maria Silva", "11999998888")
	require.NoError(t, err)

	f.items.On("FindByIDs", mock.Anything, testRestaurantID, mock.Anything).
		Return([]menu.Item{f.pizza, f.soda}, nil)
	f.customers.On("FindOrCreate", mock.Anything, testRestaurantID, "(11) 99999-8888", "Maria Silva", "", mock.Anything).
		Return(cust, nil)
	f.orders.On("GenerateOrderNumber", mock.Anything).Return(testOrderNumber, nil)
	f.orders.On("Save", mock.Anything, mock.AnythingOfType("*ordering.Order")).Return(nil)
	f.customers.On("RecordOrder", mock.Anything, testRestaurantID, cust.ID, mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	return cust
}

func TestOrderService_PlaceOrder_Success(t *testing.T) {
	f := newFixture(t)
	cust := f.expectHappyPath(t)

	resp, err := f.service.PlaceOrder(context.Background(), testRestaurantID, f.request())
	require.NoError(t, err)

	assert.Equal(t, testOrderNumber, resp.OrderNumber)
	assert.Equal(t, string(ordering.OrderStatusPending), resp.Status)
	assert.Equal(t, "86.50", resp.Subtotal.StringFixed(2), "menu prices win over client prices")
	assert.Equal(t, "5.00", resp.DeliveryFee.StringFixed(2))
	assert.Equal(t, "91.50", resp.TotalAmount.StringFixed(2))
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, "gelado", resp.Items[1].SpecialInstructions)
	assert.Equal(t, cust.ID, *resp.CustomerID)
	assert.Contains(t, resp.DeliveryAddress, "Av. Paulista")
	require.NotNil(t, resp.EstimatedDeliveryTime)
	assert.Equal(t, testNow.Add(45*time.Minute), *resp.EstimatedDeliveryTime)
	assert.Len(t, resp.StatusHistory, 1)

	f.customers.AssertCalled(t, "RecordOrder", mock.Anything, testRestaurantID, cust.ID,
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.RequireFromString("91.50")) }),
		mock.Anything)
	f.publisher.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 1 && events[0].EventType() == ordering.EventTypeOrderPlaced
	}))
}

func TestOrderService_PlaceOrder_TaxRate(t *testing.T) {
	f := newFixture(t)
	f.service.opts.TaxRate = decimal.RequireFromString("0.10")
	f.expectHappyPath(t)

	resp, err := f.service.PlaceOrder(context.Background(), testRestaurantID, f.request())
	require.NoError(t, err)
	assert.Equal(t, "8.65", resp.TaxAmount.StringFixed(2))
	assert.Equal(t, "100.15", resp.TotalAmount.StringFixed(2))
}

func TestOrderService_PlaceOrder_ValidationError(t *testing.T) {
	f := newFixture(t)
	req := f.request()
	req.Phone = "123"

	_, err := f.service.PlaceOrder(context.Background(), testRestaurantID, req)
	var verr *shared.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, checkout.StepContact, verr.Step)
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func cashRequest(f *fixture, changeAmount string) PlaceOrderRequest {
	req := f.request()
	req.PaymentMethod = "money"
	req.PixTiming = ""
	req.NeedsChange = true
	req.ChangeAmount = changeAmount
	return req
}

func TestOrderService_PlaceOrder_ChangeUsesMenuPrices(t *testing.T) {
	f := newFixture(t)
	f.items.On("FindByIDs", mock.Anything, testRestaurantID, mock.Anything).
		Return([]menu.Item{f.pizza, f.soda}, nil)

	// R$ 10,00 covers the client prices (R$ 3,00) but not the menu total
	_, err := f.service.PlaceOrder(context.Background(), testRestaurantID, cashRequest(f, "1000"))

	var verr *shared.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, checkout.StepPayment, verr.Step)
	assert.Equal(t, "change_amount", verr.Field)
	f.orders.AssertNotCalled(t, "GenerateOrderNumber", mock.Anything)
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.customers.AssertNotCalled(t, "FindOrCreate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_PlaceOrder_ChangeIncludesDeliveryFee(t *testing.T) {
	f := newFixture(t)
	f.expectHappyPath(t)

	// R$ 90,00 exceeds the R$ 86,50 subtotal but not the R$ 91,50 total
	_, err := f.service.PlaceOrder(context.Background(), testRestaurantID, cashRequest(f, "9000"))

	var verr *shared.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, checkout.StepPayment, verr.Step)
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.customers.AssertNotCalled(t, "FindOrCreate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_PlaceOrder_CashWithChange(t *testing.T) {
	f := newFixture(t)
	f.expectHappyPath(t)

	resp, err := f.service.PlaceOrder(context.Background(), testRestaurantID, cashRequest(f, "10000"))
	require.NoError(t, err)
	assert.Equal(t, "91.50", resp.TotalAmount.StringFixed(2))
	assert.Contains(t, resp.CustomerNotes, "Troco para: R$ 100,00")
}

func TestOrderService_PlaceOrder_UnavailableItem(t *testing.T) {
	f := newFixture(t)
	f.soda.SetAvailability(false)
	f.items.On("FindByIDs", mock.Anything, testRestaurantID, mock.Anything).
		Return([]menu.Item{f.pizza, f.soda}, nil)

	_, err := f.service.PlaceOrder(context.Background(), testRestaurantID, f.request())
	var verr *shared.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "items", verr.Field)
	assert.Contains(t, verr.Message, "Guaraná")
}

func TestOrderService_PlaceOrder_UnknownItem(t *testing.T) {
	f := newFixture(t)
	f.items.On("FindByIDs", mock.Anything, testRestaurantID, mock.Anything).
		Return([]menu.Item{f.pizza}, nil)

	_, err := f.service.PlaceOrder(context.Background(), testRestaurantID, f.request())
	require.Error(t, err)
	f.customers.AssertNotCalled(t, "FindOrCreate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_PlaceOrder_IdempotentReplay(t *testing.T) {
	f := newFixture(t)
	store := new(MockIdempotencyStore)
	f.service.SetIdempotencyStore(store)

	key := "checkout:" + testRestaurantID.String() + ":abc"
	existing, err := ordering.NewOrder(testRestaurantID, testOrderNumber, "Maria", "11999998888", ordering.PaymentMethodPix)
	require.NoError(t, err)

	store.On("MarkProcessed", mock.Anything, key, mock.Anything).Return(false, nil)
	store.On("GetResult", mock.Anything, key).Return(testOrderNumber, nil)
	f.orders.On("FindByOrderNumber", mock.Anything, testOrderNumber).Return(existing, nil)

	req := f.request()
	req.IdempotencyKey = "abc"
	resp, err := f.service.PlaceOrder(context.Background(), testRestaurantID, req)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, resp.ID)
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestOrderService_PlaceOrder_IdempotencyInFlight(t *testing.T) {
	f := newFixture(t)
	store := new(MockIdempotencyStore)
	f.service.SetIdempotencyStore(store)

	store.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	store.On("GetResult", mock.Anything, mock.Anything).Return("", nil)

	req := f.request()
	req.IdempotencyKey = "abc"
	_, err := f.service.PlaceOrder(context.Background(), testRestaurantID, req)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestOrderService_PlaceOrder_IdempotencyStoresResult(t *testing.T) {
	f := newFixture(t)
	f.expectHappyPath(t)
	store := new(MockIdempotencyStore)
	f.service.SetIdempotencyStore(store)

	store.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	store.On("SetResult", mock.Anything, mock.Anything, testOrderNumber, mock.Anything).Return(nil)

	req := f.request()
	req.IdempotencyKey = "abc"
	_, err := f.service.PlaceOrder(context.Background(), testRestaurantID, req)
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestOrderService_PlaceOrder_ReleasesKeyOnFailure(t *testing.T) {
	f := newFixture(t)
	store := new(MockIdempotencyStore)
	f.service.SetIdempotencyStore(store)

	store.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	store.On("Release", mock.Anything, mock.Anything).Return(nil)

	req := f.request()
	req.IdempotencyKey = "abc"
	req.Items = nil
	_, err := f.service.PlaceOrder(context.Background(), testRestaurantID, req)
	require.Error(t, err)
	store.AssertCalled(t, "Release", mock.Anything, mock.Anything)
}

func placedOrder(t *testing.T) *ordering.Order {
	t.Helper()
	order, err := ordering.NewOrder(testRestaurantID, testOrderNumber, "Maria", "11999998888", ordering.PaymentMethodPix)
	require.NoError(t, err)
	_, err = order.AddItem(uuid.New(), "Pizza", 1, valueobject.NewMoneyFromFloat(40), "")
	require.NoError(t, err)
	require.NoError(t, order.Place())
	order.ClearDomainEvents()
	return order
}

func TestOrderService_Advance(t *testing.T) {
	f := newFixture(t)
	order := placedOrder(t)
	f.orders.On("FindByIDForRestaurant", mock.Anything, testRestaurantID, order.ID).Return(order, nil)
	f.orders.On("SaveWithLock", mock.Anything, order).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Advance(context.Background(), testRestaurantID, order.ID, testStaffID)
	require.NoError(t, err)
	assert.Equal(t, string(ordering.OrderStatusConfirmed), resp.Status)
	assert.Len(t, resp.StatusHistory, 2)
	assert.Equal(t, testStaffID, *resp.StatusHistory[1].ChangedBy)
	assert.Empty(t, order.GetDomainEvents())
}

func TestOrderService_UpdateStatus_RejectsSkip(t *testing.T) {
	f := newFixture(t)
	order := placedOrder(t)
	f.orders.On("FindByIDForRestaurant", mock.Anything, testRestaurantID, order.ID).Return(order, nil)

	_, err := f.service.UpdateStatus(context.Background(), testRestaurantID, order.ID, testStaffID,
		UpdateStatusRequest{Status: "ready"})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	f.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestOrderService_UpdateStatus_Cancel(t *testing.T) {
	f := newFixture(t)
	order := placedOrder(t)
	f.orders.On("FindByIDForRestaurant", mock.Anything, testRestaurantID, order.ID).Return(order, nil)
	f.orders.On("SaveWithLock", mock.Anything, order).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.UpdateStatus(context.Background(), testRestaurantID, order.ID, testStaffID,
		UpdateStatusRequest{Status: "cancelled", Reason: "sem entregador"})
	require.NoError(t, err)
	assert.Equal(t, string(ordering.OrderStatusCancelled), resp.Status)
	assert.Equal(t, "sem entregador", resp.CancelReason)
}

func TestOrderService_UpdateStatus_Conflict(t *testing.T) {
	f := newFixture(t)
	order := placedOrder(t)
	f.orders.On("FindByIDForRestaurant", mock.Anything, testRestaurantID, order.ID).Return(order, nil)
	f.orders.On("SaveWithLock", mock.Anything, order).Return(shared.ErrConcurrencyConflict)

	_, err := f.service.UpdateStatus(context.Background(), testRestaurantID, order.ID, testStaffID,
		UpdateStatusRequest{Status: "confirmed"})
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestOrderService_UpdateStatus_UnknownStatus(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.UpdateStatus(context.Background(), testRestaurantID, uuid.New(), testStaffID,
		UpdateStatusRequest{Status: "lost"})
	require.Error(t, err)
}

func TestOrderService_GetByID_NotFound(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()
	f.orders.On("FindByIDForRestaurant", mock.Anything, testRestaurantID, id).Return(nil, shared.ErrNotFound)

	_, err := f.service.GetByID(context.Background(), testRestaurantID, id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOrderService_List(t *testing.T) {
	f := newFixture(t)
	order := placedOrder(t)
	f.orders.On("FindAllForRestaurant", mock.Anything, testRestaurantID, mock.MatchedBy(func(fl shared.Filter) bool {
		return fl.PageSize == DefaultListLimit && fl.OrderDir == "desc" && fl.Filters["status"] == "pending"
	})).Return([]ordering.Order{*order}, nil)
	f.orders.On("CountForRestaurant", mock.Anything, testRestaurantID, mock.Anything).Return(int64(1), nil)

	orders, total, err := f.service.List(context.Background(), testRestaurantID, OrderListFilter{Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, orders, 1)
}

func TestOrderService_Board(t *testing.T) {
	f := newFixture(t)
	open := placedOrder(t)
	delivered := placedOrder(t)
	for _, st := range ordering.Lifecycle()[1:] {
		require.NoError(t, delivered.AdvanceTo(st, nil))
	}

	from, to := DayWindow(testNow, time.UTC)
	f.orders.On("FindCreatedBetween", mock.Anything, testRestaurantID, from, to).
		Return([]ordering.Order{*open, *delivered}, nil)
	f.orders.On("FindAllForRestaurant", mock.Anything, testRestaurantID, mock.Anything).
		Return([]ordering.Order{*open}, nil)

	board, err := f.service.Board(context.Background(), testRestaurantID)
	require.NoError(t, err)
	require.Len(t, board.Columns, len(ordering.AllStatuses()))

	byStatus := map[string]int{}
	for _, c := range board.Columns {
		byStatus[c.Status] = len(c.Orders)
	}
	assert.Equal(t, 1, byStatus["pending"])
	assert.Equal(t, 1, byStatus["delivered"])
	assert.Equal(t, 0, byStatus["preparing"])
}

func TestOrderService_Stats(t *testing.T) {
	f := newFixture(t)
	summary := &ordering.OrderSummary{
		Count:   4,
		Revenue: decimal.RequireFromString("250.00"),
		StatusCounts: map[ordering.OrderStatus]int64{
			ordering.OrderStatusDelivered: 3,
			ordering.OrderStatusCancelled: 1,
		},
	}
	f.orders.On("SummarizeBetween", mock.Anything, testRestaurantID, testNow.AddDate(0, 0, -30), testNow).
		Return(summary, nil)

	stats, err := f.service.Stats(context.Background(), testRestaurantID, 0)
	require.NoError(t, err)
	assert.Equal(t, 30, stats.Days)
	assert.Equal(t, "62.50", stats.AverageOrderValue.StringFixed(2))
	assert.Equal(t, int64(3), stats.StatusCounts["delivered"])
	assert.Equal(t, int64(0), stats.StatusCounts["pending"])
	assert.Len(t, stats.StatusCounts, len(ordering.AllStatuses()))
}

func TestDayWindow(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	from, to := DayWindow(time.Date(2026, 3, 15, 1, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, 14, from.Day())
	assert.Equal(t, 24*time.Hour, to.Sub(from))
}
