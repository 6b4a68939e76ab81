// Package event dispatches domain events to in-process handlers after the
// aggregate that raised them has been saved.
package event

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/restaurant/backend/internal/domain/shared"
	"go.uber.org/zap"
)

type subscription struct {
	handler shared.EventHandler
	async   bool
}

// InMemoryEventBus implements EventBus with in-memory pub/sub.
// Synchronous handlers run in Publish; async handlers run on their own
// goroutine and are awaited by Stop.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]subscription // eventType -> handlers
	wildcard []subscription

	logger *zap.Logger
	failed atomic.Int64

	// lifecycle guards running so no wg.Add can race the Wait in Stop
	lifecycle sync.Mutex
	running   bool
	wg        sync.WaitGroup
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &InMemoryEventBus{
		handlers: make(map[string][]subscription),
		logger:   logger,
		running:  true,
	}
	return b
}

// Publish dispatches events to their handlers. Handler failures are logged
// and never returned to the caller.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		for _, sub := range b.handlersFor(event.EventType()) {
			if !sub.async {
				b.dispatch(ctx, sub.handler, event)
				continue
			}
			if !b.track() {
				b.logger.Warn("event bus stopped, dropping async dispatch",
					zap.String("event_type", event.EventType()),
					zap.String("handler", handlerName(sub.handler)))
				continue
			}
			go func(h shared.EventHandler, e shared.DomainEvent) {
				defer b.wg.Done()
				// the request that raised the event may finish first
				b.dispatch(context.WithoutCancel(ctx), h, e)
			}(sub.handler, event)
		}
	}
	return nil
}

// Subscribe registers a synchronous handler. Without event types the
// handler's own EventTypes are used; if those are empty it receives all events.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	b.register(subscription{handler: handler}, eventTypes)
}

// SubscribeAsync registers a handler that runs off the publishing goroutine
func (b *InMemoryEventBus) SubscribeAsync(handler shared.EventHandler, eventTypes ...string) {
	b.register(subscription{handler: handler, async: true}, eventTypes)
}

func (b *InMemoryEventBus) register(sub subscription, eventTypes []string) {
	if len(eventTypes) == 0 {
		eventTypes = sub.handler.EventTypes()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(eventTypes) == 0 {
		b.wildcard = append(b.wildcard, sub)
	}
	for _, eventType := range eventTypes {
		b.handlers[eventType] = append(b.handlers[eventType], sub)
	}

	b.logger.Debug("handler subscribed",
		zap.String("handler", handlerName(sub.handler)),
		zap.Strings("event_types", eventTypes),
		zap.Bool("async", sub.async))
}

// Unsubscribe removes a handler from every event type
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	match := func(s subscription) bool { return s.handler == handler }
	b.wildcard = slices.DeleteFunc(b.wildcard, match)
	for eventType, subs := range b.handlers {
		subs = slices.DeleteFunc(subs, match)
		if len(subs) == 0 {
			delete(b.handlers, eventType)
			continue
		}
		b.handlers[eventType] = subs
	}
}

func (b *InMemoryEventBus) handlersFor(eventType string) []subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subs := b.handlers[eventType]
	result := make([]subscription, 0, len(subs)+len(b.wildcard))
	result = append(result, subs...)
	return append(result, b.wildcard...)
}

// track reserves a wait group slot for one async dispatch; false once stopped
func (b *InMemoryEventBus) track() bool {
	b.lifecycle.Lock()
	defer b.lifecycle.Unlock()
	if !b.running {
		return false
	}
	b.wg.Add(1)
	return true
}

// Start marks the bus as accepting async work
func (b *InMemoryEventBus) Start(_ context.Context) error {
	b.lifecycle.Lock()
	b.running = true
	b.lifecycle.Unlock()
	b.logger.Info("event bus started")
	return nil
}

// Stop waits for in-flight async handlers or until ctx is done
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.lifecycle.Lock()
	b.running = false
	b.lifecycle.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		b.logger.Info("event bus stopped", zap.Int64("failed_dispatches", b.failed.Load()))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event bus stop: %w", ctx.Err())
	}
}

// FailedDispatches returns how many handler calls failed or panicked
func (b *InMemoryEventBus) FailedDispatches() int64 {
	return b.failed.Load()
}

// dispatch runs one handler, recovering panics
func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) {
	fields := func(extra ...zap.Field) []zap.Field {
		return append([]zap.Field{
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
			zap.String("restaurant_id", event.RestaurantID().String()),
			zap.String("handler", handlerName(handler)),
		}, extra...)
	}

	defer func() {
		if r := recover(); r != nil {
			b.failed.Add(1)
			b.logger.Error("handler panicked", fields(zap.Any("panic", r))...)
		}
	}()

	if err := handler.Handle(ctx, event); err != nil {
		b.failed.Add(1)
		b.logger.Error("handler failed to process event", fields(zap.Error(err))...)
	}
}

func handlerName(h shared.EventHandler) string {
	return fmt.Sprintf("%T", h)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
