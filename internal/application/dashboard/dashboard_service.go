// Package dashboard computes the staff dashboard figures.
package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CacheTTL is how long dashboard figures are served from cache
const CacheTTL = 5 * time.Minute

// PeriodStats are the figures of one window
type PeriodStats struct {
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
	Orders    int64           `json:"orders"`
	Revenue   decimal.Decimal `json:"revenue"`
	Customers int64           `json:"customers"`
}

// StatsResponse holds the today, week and month windows
type StatsResponse struct {
	Today       PeriodStats `json:"today"`
	Week        PeriodStats `json:"week"`
	Month       PeriodStats `json:"month"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// StatsCache stores computed dashboard figures per restaurant
type StatsCache interface {
	Get(ctx context.Context, restaurantID uuid.UUID) (*StatsResponse, error)
	Set(ctx context.Context, restaurantID uuid.UUID, stats *StatsResponse, ttl time.Duration) error
	Invalidate(ctx context.Context, restaurantID uuid.UUID) error
}

// DashboardService computes dashboard figures with SQL aggregates
type DashboardService struct {
	orderRepo ordering.OrderRepository
	cache     StatsCache
	location  *time.Location
	logger    *zap.Logger
}

// NewDashboardService creates a new DashboardService. cache may be nil.
func NewDashboardService(orderRepo ordering.OrderRepository, cache StatsCache, location *time.Location, logger *zap.Logger) *DashboardService {
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		orderRepo: orderRepo,
		cache:     cache,
		location:  location,
		logger:    logger,
	}
}

// Stats returns the dashboard figures at now. A cached value is returned
// only while its day window is still the current local day; cache failures
// fall back to the database.
func (s *DashboardService) Stats(ctx context.Context, restaurantID uuid.UUID, now time.Time) (*StatsResponse, error) {
	today, week, month := Windows(now, s.location)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, restaurantID)
		if err != nil {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		} else if cached != nil && cached.Today.From.Equal(today[0]) {
			return cached, nil
		}
	}

	resp := &StatsResponse{GeneratedAt: now}
	for _, w := range []struct {
		dst    *PeriodStats
		window [2]time.Time
	}{
		{&resp.Today, today},
		{&resp.Week, week},
		{&resp.Month, month},
	} {
		summary, err := s.orderRepo.SummarizeBetween(ctx, restaurantID, w.window[0], w.window[1])
		if err != nil {
			return nil, err
		}
		*w.dst = PeriodStats{
			From:      w.window[0],
			To:        w.window[1],
			Orders:    summary.Count,
			Revenue:   summary.Revenue,
			Customers: summary.DistinctCustomers,
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, restaurantID, resp, CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return resp, nil
}

// Invalidate drops the cached figures of a restaurant
func (s *DashboardService) Invalidate(ctx context.Context, restaurantID uuid.UUID) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, restaurantID)
}

// Windows returns the [from, to) ranges of the local day, the week starting
// Sunday and the month containing now.
func Windows(now time.Time, loc *time.Location) (today, week, month [2]time.Time) {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	today = [2]time.Time{dayStart, dayStart.AddDate(0, 0, 1)}

	weekStart := dayStart.AddDate(0, 0, -int(dayStart.Weekday()))
	week = [2]time.Time{weekStart, weekStart.AddDate(0, 0, 7)}

	monthStart := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	month = [2]time.Time{monthStart, monthStart.AddDate(0, 1, 0)}
	return today, week, month
}
