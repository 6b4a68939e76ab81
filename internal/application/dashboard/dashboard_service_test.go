package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// summaryRepo answers SummarizeBetween; other methods are not used here
type summaryRepo struct {
	ordering.OrderRepository
	mock.Mock
}

func (r *summaryRepo) SummarizeBetween(ctx context.Context, restaurantID uuid.UUID, from, to time.Time) (*ordering.OrderSummary, error) {
	args := r.Called(ctx, restaurantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordering.OrderSummary), args.Error(1)
}

type MockStatsCache struct {
	mock.Mock
}

func (m *MockStatsCache) Get(ctx context.Context, restaurantID uuid.UUID) (*StatsResponse, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*StatsResponse), args.Error(1)
}

func (m *MockStatsCache) Set(ctx context.Context, restaurantID uuid.UUID, stats *StatsResponse, ttl time.Duration) error {
	return m.Called(ctx, restaurantID, stats, ttl).Error(0)
}

func (m *MockStatsCache) Invalidate(ctx context.Context, restaurantID uuid.UUID) error {
	return m.Called(ctx, restaurantID).Error(0)
}

var testRestaurantID = uuid.New()

func TestWindows(t *testing.T) {
	// Wednesday 2026-03-18
	now := time.Date(2026, 3, 18, 15, 4, 0, 0, time.UTC)
	today, week, month := Windows(now, time.UTC)

	assert.Equal(t, time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC), today[0])
	assert.Equal(t, time.Date(2026, 3, 19, 0, 0, 0, 0, time.UTC), today[1])
	assert.Equal(t, time.Sunday, week[0].Weekday())
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), week[0])
	assert.Equal(t, time.Date(2026, 3, 22, 0, 0, 0, 0, time.UTC), week[1])
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), month[0])
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), month[1])
}

func TestWindows_SundayStartsWeek(t *testing.T) {
	now := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	_, week, _ := Windows(now, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), week[0])
}

func TestWindows_LocalDay(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	now := time.Date(2026, 3, 18, 2, 0, 0, 0, time.UTC) // 23:00 on the 17th in BRT
	today, _, _ := Windows(now, loc)
	assert.Equal(t, 17, today[0].Day())
}

func TestDashboardService_Stats_ComputesAndCaches(t *testing.T) {
	repo := new(summaryRepo)
	cache := new(MockStatsCache)
	svc := NewDashboardService(repo, cache, time.UTC, nil)
	now := time.Date(2026, 3, 18, 15, 0, 0, 0, time.UTC)

	cache.On("Get", mock.Anything, testRestaurantID).Return(nil, nil)
	cache.On("Set", mock.Anything, testRestaurantID, mock.Anything, CacheTTL).Return(nil)
	repo.On("SummarizeBetween", mock.Anything, testRestaurantID, mock.Anything, mock.Anything).
		Return(&ordering.OrderSummary{Count: 3, Revenue: decimal.RequireFromString("120.50"), DistinctCustomers: 2}, nil)

	stats, err := svc.Stats(context.Background(), testRestaurantID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Today.Orders)
	assert.Equal(t, int64(2), stats.Week.Customers)
	assert.Equal(t, "120.50", stats.Month.Revenue.StringFixed(2))
	repo.AssertNumberOfCalls(t, "SummarizeBetween", 3)
	cache.AssertExpectations(t)
}

func TestDashboardService_Stats_CacheHit(t *testing.T) {
	repo := new(summaryRepo)
	cache := new(MockStatsCache)
	svc := NewDashboardService(repo, cache, time.UTC, nil)
	now := time.Date(2026, 3, 18, 15, 0, 0, 0, time.UTC)
	today, _, _ := Windows(now, time.UTC)
	cached := &StatsResponse{Today: PeriodStats{From: today[0], Orders: 9}}
	cache.On("Get", mock.Anything, testRestaurantID).Return(cached, nil)

	stats, err := svc.Stats(context.Background(), testRestaurantID, now)
	require.NoError(t, err)
	assert.Same(t, cached, stats)
	repo.AssertNotCalled(t, "SummarizeBetween", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDashboardService_Stats_CachedYesterdayIsRecomputed(t *testing.T) {
	repo := new(summaryRepo)
	cache := new(MockStatsCache)
	loc := time.FixedZone("BRT", -3*3600)
	svc := NewDashboardService(repo, cache, loc, nil)

	beforeMidnight := time.Date(2026, 3, 17, 23, 58, 0, 0, loc)
	afterMidnight := beforeMidnight.Add(4 * time.Minute)
	yesterday, _, _ := Windows(beforeMidnight, loc)
	cached := &StatsResponse{Today: PeriodStats{From: yesterday[0], To: yesterday[1], Orders: 40}}

	cache.On("Get", mock.Anything, testRestaurantID).Return(cached, nil)
	cache.On("Set", mock.Anything, testRestaurantID, mock.Anything, CacheTTL).Return(nil)
	repo.On("SummarizeBetween", mock.Anything, testRestaurantID, mock.Anything, mock.Anything).
		Return(&ordering.OrderSummary{Count: 1, Revenue: decimal.RequireFromString("25.00")}, nil)

	stats, err := svc.Stats(context.Background(), testRestaurantID, afterMidnight)
	require.NoError(t, err)
	assert.NotSame(t, cached, stats)
	assert.Equal(t, int64(1), stats.Today.Orders)
	assert.Equal(t, 18, stats.Today.From.Day())
	repo.AssertCalled(t, "SummarizeBetween", mock.Anything, testRestaurantID,
		time.Date(2026, 3, 18, 0, 0, 0, 0, loc), time.Date(2026, 3, 19, 0, 0, 0, 0, loc))
	cache.AssertExpectations(t)
}

func TestDashboardService_Stats_CacheErrorFallsBack(t *testing.T) {
	repo := new(summaryRepo)
	cache := new(MockStatsCache)
	svc := NewDashboardService(repo, cache, time.UTC, nil)

	cache.On("Get", mock.Anything, testRestaurantID).Return(nil, errors.New("redis down"))
	cache.On("Set", mock.Anything, testRestaurantID, mock.Anything, CacheTTL).Return(errors.New("redis down"))
	repo.On("SummarizeBetween", mock.Anything, testRestaurantID, mock.Anything, mock.Anything).
		Return(&ordering.OrderSummary{}, nil)

	_, err := svc.Stats(context.Background(), testRestaurantID, time.Now())
	require.NoError(t, err)
}

func TestCacheInvalidationHandler(t *testing.T) {
	cache := new(MockStatsCache)
	svc := NewDashboardService(new(summaryRepo), cache, time.UTC, nil)
	h := NewCacheInvalidationHandler(svc, nil)
	assert.Contains(t, h.EventTypes(), ordering.EventTypeOrderPlaced)

	cache.On("Invalidate", mock.Anything, testRestaurantID).Return(nil)
	event := shared.NewBaseDomainEvent(ordering.EventTypeOrderStatusChanged, ordering.AggregateTypeOrder, uuid.New(), testRestaurantID)
	require.NoError(t, h.Handle(context.Background(), &event))
	cache.AssertExpectations(t)
}
