package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DatabaseConfig controls how GORM statements are traced and measured.
type DatabaseConfig struct {
	DBSystem      string // "postgresql" or "sqlite"
	Tracing       bool
	LogFullSQL    bool // keep bound values in span statements
	SlowThreshold time.Duration
}

const startedAtKey = "restaurant:query_started_at"

type dbInstruments struct {
	cfg      DatabaseConfig
	logger   *zap.Logger
	duration metric.Float64Histogram
	slow     metric.Int64Counter
}

// InstrumentDatabase registers the otelgorm tracing plugin (when enabled), a
// statement duration histogram with a slow query counter, and observable
// gauges for the connection pool.
func InstrumentDatabase(db *gorm.DB, meter metric.Meter, cfg DatabaseConfig, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = db.Dialector.Name()
	}

	if cfg.Tracing {
		opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
		if !cfg.LogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return fmt.Errorf("register otelgorm: %w", err)
		}
	}

	ins := &dbInstruments{cfg: cfg, logger: logger}
	var err error
	ins.duration, err = meter.Float64Histogram("db_query_duration_seconds",
		metric.WithDescription("Duration of GORM statements"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DBDurationBuckets...),
	)
	if err != nil {
		return err
	}
	ins.slow, err = meter.Int64Counter("db_slow_queries_total",
		metric.WithDescription("Statements slower than the configured threshold"),
		metric.WithUnit("{queries}"),
	)
	if err != nil {
		return err
	}
	if err := ins.registerCallbacks(db); err != nil {
		return err
	}
	return registerPoolGauges(db, meter)
}

func (ins *dbInstruments) registerCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		op     string
		before func(string, func(*gorm.DB)) error
		after  func(string, func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
	}
	for _, h := range hooks {
		if err := h.before("restaurant:before_"+h.op, markStart); err != nil {
			return err
		}
		if err := h.after("restaurant:after_"+h.op, ins.observe(h.op)); err != nil {
			return err
		}
	}
	return nil
}

func markStart(tx *gorm.DB) {
	tx.InstanceSet(startedAtKey, time.Now())
}

func (ins *dbInstruments) observe(op string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		v, ok := tx.InstanceGet(startedAtKey)
		if !ok {
			return
		}
		started, ok := v.(time.Time)
		if !ok {
			return
		}
		elapsed := time.Since(started)
		ctx := tx.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		attrs := metric.WithAttributes(
			AttrDBOperation.String(op),
			AttrDBTable.String(tx.Statement.Table),
		)
		ins.duration.Record(ctx, elapsed.Seconds(), attrs)

		if ins.cfg.SlowThreshold > 0 && elapsed >= ins.cfg.SlowThreshold {
			ins.slow.Add(ctx, 1, attrs)
			ins.logger.Warn("Slow database query",
				zap.String("operation", op),
				zap.String("table", tx.Statement.Table),
				zap.Duration("elapsed", elapsed),
				zap.String("sql", ins.statement(tx)),
			)
		}
	}
}

func (ins *dbInstruments) statement(tx *gorm.DB) string {
	sql := tx.Statement.SQL.String()
	if ins.cfg.LogFullSQL && sql != "" {
		return tx.Dialector.Explain(sql, tx.Statement.Vars...)
	}
	return strings.TrimSpace(sql)
}

func registerPoolGauges(db *gorm.DB, meter metric.Meter) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("pool stats: %w", err)
	}
	open, err := meter.Int64ObservableGauge("db_pool_open_connections",
		metric.WithDescription("Open connections, in use plus idle"))
	if err != nil {
		return err
	}
	inUse, err := meter.Int64ObservableGauge("db_pool_in_use_connections")
	if err != nil {
		return err
	}
	idle, err := meter.Int64ObservableGauge("db_pool_idle_connections")
	if err != nil {
		return err
	}
	waits, err := meter.Int64ObservableCounter("db_pool_wait_total",
		metric.WithDescription("Connections waited for since start"))
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(open, int64(stats.OpenConnections))
		o.ObserveInt64(inUse, int64(stats.InUse))
		o.ObserveInt64(idle, int64(stats.Idle))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, open, inUse, idle, waits)
	return err
}
