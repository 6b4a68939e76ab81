package printing

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/restaurant/backend/internal/domain/restaurant"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository implements only the lookups tickets need
type MockOrderRepository struct {
	ordering.OrderRepository
	mock.Mock
}

func (m *MockOrderRepository) FindByIDForRestaurant(ctx context.Context, restaurantID, id uuid.UUID) (*ordering.Order, error) {
	args := m.Called(ctx, restaurantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordering.Order), args.Error(1)
}

type MockRestaurantRepository struct {
	mock.Mock
}

func (m *MockRestaurantRepository) FindByID(ctx context.Context, id uuid.UUID) (*restaurant.Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*restaurant.Restaurant), args.Error(1)
}

func (m *MockRestaurantRepository) Save(ctx context.Context, r *restaurant.Restaurant) error {
	return m.Called(ctx, r).Error(0)
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) RenderPDF(ctx context.Context, html string, paperWidthMM float64) ([]byte, error) {
	args := m.Called(ctx, html, paperWidthMM)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockStorage struct {
	mock.Mock
	body []byte
}

func (m *MockStorage) PutObject(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	m.body, _ = io.ReadAll(body)
	args := m.Called(ctx, key, contentType, size)
	return args.String(0), args.Error(1)
}

func newTestOrder(t *testing.T, restaurantID uuid.UUID) *ordering.Order {
	t.Helper()
	o, err := ordering.NewOrder(restaurantID, "PED-2026-00042", "João <Silva>", "11999998888", ordering.PaymentMethodMoney)
	require.NoError(t, err)
	_, err = o.AddItem(uuid.New(), "Pizza Calabresa", 2, valueobject.NewMoneyFromCents(4590), "sem cebola")
	require.NoError(t, err)
	_, err = o.AddItem(uuid.New(), "Guaraná", 1, valueobject.NewMoneyFromCents(700), "")
	require.NoError(t, err)
	require.NoError(t, o.SetDeliveryFee(valueobject.NewMoneyFromCents(500)))
	o.SetDeliveryAddress("Rua das Flores, 10 - Centro")
	o.SetCustomerNotes("Troco para: R$ 100,00")
	o.CreatedAt = time.Date(2026, 3, 16, 22, 5, 0, 0, time.UTC)
	return o
}

func TestRenderTicketHTML(t *testing.T) {
	rid := uuid.New()
	r, err := restaurant.NewRestaurant("Cantina da Nona", "pizzaria", "Rua A, 1", "1133334444", "nona@cantina.com")
	require.NoError(t, err)
	order := newTestOrder(t, rid)
	saoPaulo := time.FixedZone("BRT", -3*60*60)

	html, err := RenderTicketHTML(NewTicketData(r, order, saoPaulo, 80))
	require.NoError(t, err)

	assert.Contains(t, html, "Cantina da Nona")
	assert.Contains(t, html, "PED-2026-00042")
	assert.Contains(t, html, "16/03/2026 19:05")
	assert.Contains(t, html, "João &lt;Silva&gt;", "customer input is escaped")
	assert.Contains(t, html, "(11) 99999-8888")
	assert.Contains(t, html, "Rua das Flores, 10 - Centro")
	assert.Contains(t, html, "2x</td><td>Pizza Calabresa")
	assert.Contains(t, html, "sem cebola")
	assert.Contains(t, html, "Troco para")
	assert.Contains(t, html, "Dinheiro (na entrega)")
	assert.Contains(t, html, "size: 80mm auto")
	assert.NotContains(t, html, "Impostos", "zero tax is omitted")
}

func TestTicketService_RenderTicket(t *testing.T) {
	rid := uuid.New()
	order := newTestOrder(t, rid)
	orders := new(MockOrderRepository)
	restaurants := new(MockRestaurantRepository)
	renderer := new(MockRenderer)
	storage := new(MockStorage)
	svc := NewTicketService(orders, restaurants, renderer, storage, TicketConfig{StoragePrefix: "tickets"}, nil)

	orders.On("FindByIDForRestaurant", mock.Anything, rid, order.ID).Return(order, nil)
	restaurants.On("FindByID", mock.Anything, rid).Return(nil, shared.ErrNotFound)
	renderer.On("RenderPDF", mock.Anything, mock.MatchedBy(func(html string) bool {
		return strings.Contains(html, "PED-2026-00042")
	}), 80.0).Return([]byte("%PDF-1.4"), nil)
	key := "tickets/" + rid.String() + "/PED-2026-00042.pdf"
	storage.On("PutObject", mock.Anything, key, "application/pdf", int64(8)).Return("https://cdn/"+key, nil)

	resp, err := svc.RenderTicket(context.Background(), rid, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/"+key, resp.URL)
	assert.Equal(t, key, resp.Key)
	assert.Equal(t, 8, resp.Size)
	assert.Equal(t, "%PDF-1.4", string(storage.body))
}

func TestTicketService_RenderTicket_Errors(t *testing.T) {
	rid := uuid.New()

	t.Run("printing disabled", func(t *testing.T) {
		svc := NewTicketService(new(MockOrderRepository), new(MockRestaurantRepository), nil, new(MockStorage), TicketConfig{}, nil)
		_, err := svc.RenderTicket(context.Background(), rid, uuid.New())
		assert.ErrorIs(t, err, ErrPrintingDisabled)
	})

	t.Run("order not found", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc := NewTicketService(orders, new(MockRestaurantRepository), new(MockRenderer), new(MockStorage), TicketConfig{}, nil)
		id := uuid.New()
		orders.On("FindByIDForRestaurant", mock.Anything, rid, id).Return(nil, shared.ErrNotFound)

		_, err := svc.RenderTicket(context.Background(), rid, id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("render failure", func(t *testing.T) {
		order := newTestOrder(t, rid)
		orders := new(MockOrderRepository)
		restaurants := new(MockRestaurantRepository)
		renderer := new(MockRenderer)
		storage := new(MockStorage)
		svc := NewTicketService(orders, restaurants, renderer, storage, TicketConfig{}, nil)

		orders.On("FindByIDForRestaurant", mock.Anything, rid, order.ID).Return(order, nil)
		restaurants.On("FindByID", mock.Anything, rid).Return(nil, shared.ErrNotFound)
		renderer.On("RenderPDF", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("chrome gone"))

		_, err := svc.RenderTicket(context.Background(), rid, order.ID)
		assert.EqualError(t, err, "chrome gone")
		storage.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTicketService_PreviewHTML(t *testing.T) {
	rid := uuid.New()
	order := newTestOrder(t, rid)
	orders := new(MockOrderRepository)
	restaurants := new(MockRestaurantRepository)
	svc := NewTicketService(orders, restaurants, nil, nil, TicketConfig{PaperWidthMM: 58}, nil)

	orders.On("FindByIDForRestaurant", mock.Anything, rid, order.ID).Return(order, nil)
	restaurants.On("FindByID", mock.Anything, rid).Return(nil, shared.ErrNotFound)

	html, err := svc.PreviewHTML(context.Background(), rid, order.ID)
	require.NoError(t, err)
	assert.Contains(t, html, "size: 58mm auto")
}
