package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Scope names who a request acts for.
type Scope struct {
	RequestID    string
	RestaurantID string
	UserID       string
}

type ctxKey struct{}

type scoped struct {
	log   *zap.Logger
	scope Scope
}

// WithContext attaches log to ctx, keeping any scope already there.
func WithContext(ctx context.Context, log *zap.Logger) context.Context {
	s, _ := ctx.Value(ctxKey{}).(scoped)
	s.log = log
	return context.WithValue(ctx, ctxKey{}, s)
}

// WithScope merges the non-empty fields of add into the request scope and
// tags the context logger with them.
func WithScope(ctx context.Context, add Scope) context.Context {
	s, _ := ctx.Value(ctxKey{}).(scoped)
	if s.log == nil {
		s.log = zap.NewNop()
	}
	var fields []zap.Field
	if add.RequestID != "" {
		s.scope.RequestID = add.RequestID
		fields = append(fields, zap.String("request_id", add.RequestID))
	}
	if add.RestaurantID != "" {
		s.scope.RestaurantID = add.RestaurantID
		fields = append(fields, zap.String("restaurant_id", add.RestaurantID))
	}
	if add.UserID != "" {
		s.scope.UserID = add.UserID
		fields = append(fields, zap.String("user_id", add.UserID))
	}
	s.log = s.log.With(fields...)
	return context.WithValue(ctx, ctxKey{}, s)
}

func ScopeFrom(ctx context.Context) Scope {
	s, _ := ctx.Value(ctxKey{}).(scoped)
	return s.scope
}

// FromContext returns the request logger, tagged with the active trace and
// span IDs. Without one it returns a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	log, ok := lookup(ctx)
	if !ok {
		return zap.NewNop()
	}
	return log
}

func lookup(ctx context.Context) (*zap.Logger, bool) {
	if ctx == nil {
		return nil, false
	}
	s, ok := ctx.Value(ctxKey{}).(scoped)
	if !ok || s.log == nil {
		return nil, false
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return s.log.With(
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		), true
	}
	return s.log, true
}
