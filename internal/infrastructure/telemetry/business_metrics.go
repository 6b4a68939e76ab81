package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned by NewBusinessMetrics without a meter.
var ErrMeterNil = errors.New("NewBusinessMetrics: meter cannot be nil")

// ActiveOrdersProvider reports per-status counts of orders still in the
// kitchen flow.
type ActiveOrdersProvider interface {
	ActiveOrdersByStatus(ctx context.Context, restaurantID uuid.UUID) (map[string]int64, error)
}

// RestaurantProvider lists the restaurants to sample the active order gauge for.
type RestaurantProvider interface {
	RestaurantIDs(ctx context.Context) ([]uuid.UUID, error)
}

type BusinessMetricsConfig struct {
	Meter                metric.Meter
	Logger               *zap.Logger
	ActiveOrdersProvider ActiveOrdersProvider
}

// BusinessMetrics counts orders, revenue, board transitions and payments per
// restaurant.
type BusinessMetrics struct {
	logger *zap.Logger
	active ActiveOrdersProvider

	placed      metric.Int64Counter
	revenue     metric.Int64Counter
	transitions metric.Int64Counter
	cancelled   metric.Int64Counter
	payments    metric.Int64Counter
	activeGauge metric.Int64Gauge

	stop        chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
}

func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	bm := &BusinessMetrics{
		logger: logger,
		active: cfg.ActiveOrdersProvider,
		stop:   make(chan struct{}),
	}

	var err error
	for _, c := range []struct {
		dst         *metric.Int64Counter
		name        string
		description string
		unit        string
	}{
		{&bm.placed, "restaurant_order_placed_total", "Orders placed through checkout", "{orders}"},
		{&bm.revenue, "restaurant_order_revenue_total", "Order totals in cents", "{cents}"},
		{&bm.transitions, "restaurant_order_transition_total", "Order status transitions by target status", "{transitions}"},
		{&bm.cancelled, "restaurant_order_cancelled_total", "Cancelled orders by the status they left", "{orders}"},
		{&bm.payments, "restaurant_payment_total", "Payment status changes", "{payments}"},
	} {
		*c.dst, err = cfg.Meter.Int64Counter(c.name,
			metric.WithDescription(c.description),
			metric.WithUnit(c.unit),
		)
		if err != nil {
			return nil, err
		}
	}

	bm.activeGauge, err = cfg.Meter.Int64Gauge("restaurant_orders_active",
		metric.WithDescription("Orders not yet delivered or cancelled"),
		metric.WithUnit("{orders}"),
	)
	if err != nil {
		return nil, err
	}
	return bm, nil
}

// RecordOrderPlaced counts a new order and adds its total, in cents, to revenue.
func (bm *BusinessMetrics) RecordOrderPlaced(ctx context.Context, restaurantID uuid.UUID, paymentMethod string, total decimal.Decimal) {
	attrs := metric.WithAttributes(
		AttrRestaurantID.String(restaurantID.String()),
		AttrPaymentMethod.String(paymentMethod),
	)
	bm.placed.Add(ctx, 1, attrs)
	bm.revenue.Add(ctx, total.Shift(2).Round(0).IntPart(), attrs)
}

func (bm *BusinessMetrics) RecordStatusTransition(ctx context.Context, restaurantID uuid.UUID, from, to string) {
	bm.transitions.Add(ctx, 1, metric.WithAttributes(
		AttrRestaurantID.String(restaurantID.String()),
		AttrOrderStatusFrom.String(from),
		AttrOrderStatus.String(to),
	))
}

func (bm *BusinessMetrics) RecordCancellation(ctx context.Context, restaurantID uuid.UUID, from string) {
	bm.cancelled.Add(ctx, 1, metric.WithAttributes(
		AttrRestaurantID.String(restaurantID.String()),
		AttrOrderStatusFrom.String(from),
	))
}

func (bm *BusinessMetrics) RecordPayment(ctx context.Context, restaurantID uuid.UUID, status string) {
	bm.payments.Add(ctx, 1, metric.WithAttributes(
		AttrRestaurantID.String(restaurantID.String()),
		AttrPaymentStatus.String(status),
	))
}

func (bm *BusinessMetrics) RecordActiveOrders(ctx context.Context, restaurantID uuid.UUID, status string, count int64) {
	bm.activeGauge.Record(ctx, count, metric.WithAttributes(
		AttrRestaurantID.String(restaurantID.String()),
		AttrOrderStatus.String(status),
	))
}

// StartPeriodicCollection samples the active order gauge every interval until
// Stop or ctx cancellation. Later calls are no-ops.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, restaurants RestaurantProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = time.Minute
		}
		go bm.collectLoop(ctx, restaurants, interval)
	})
}

func (bm *BusinessMetrics) collectLoop(ctx context.Context, restaurants RestaurantProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		bm.collectActiveOrders(ctx, restaurants)
		select {
		case <-bm.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (bm *BusinessMetrics) collectActiveOrders(ctx context.Context, restaurants RestaurantProvider) {
	if bm.active == nil {
		return
	}
	ids, err := restaurants.RestaurantIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to list restaurants for metrics collection", zap.Error(err))
		return
	}
	for _, id := range ids {
		counts, err := bm.active.ActiveOrdersByStatus(ctx, id)
		if err != nil {
			bm.logger.Warn("Failed to count active orders",
				zap.String("restaurant_id", id.String()),
				zap.Error(err),
			)
			continue
		}
		for status, n := range counts {
			bm.RecordActiveOrders(ctx, id, status, n)
		}
	}
}

func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() { close(bm.stop) })
}
