package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Order", uuid.New(), uuid.New()),
	}
}

type testHandler struct {
	eventTypes []string
	err        error
	panics     bool
	block      chan struct{}

	mu      sync.Mutex
	handled []shared.DomainEvent
	ctxErrs []error
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.block != nil {
		<-h.block
	}
	h.mu.Lock()
	h.handled = append(h.handled, event)
	h.ctxErrs = append(h.ctxErrs, ctx.Err())
	h.mu.Unlock()
	if h.panics {
		panic("boom")
	}
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	placed := newTestHandler("OrderPlaced")
	both := newTestHandler("OrderPlaced", "OrderStatusChanged")
	other := newTestHandler("MenuItemCreated")
	bus.Subscribe(placed)
	bus.Subscribe(both)
	bus.Subscribe(other)

	err := bus.Publish(context.Background(), newTestEvent("OrderPlaced"), newTestEvent("OrderStatusChanged"))
	require.NoError(t, err)

	assert.Equal(t, 1, placed.count())
	assert.Equal(t, 2, both.count())
	assert.Zero(t, other.count())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := newTestHandler("OrderPlaced")
	bus.Subscribe(h, "OrderCancelled")

	_ = bus.Publish(context.Background(), newTestEvent("OrderPlaced"))
	assert.Zero(t, h.count())
	_ = bus.Publish(context.Background(), newTestEvent("OrderCancelled"))
	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_Wildcard(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	all := newTestHandler()
	bus.Subscribe(all)

	_ = bus.Publish(context.Background(), newTestEvent("OrderPlaced"), newTestEvent("CustomerCreated"))
	assert.Equal(t, 2, all.count())
}

func TestInMemoryEventBus_FailuresDoNotStopDispatch(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	failing := newTestHandler("OrderPlaced")
	failing.err = errors.New("broker down")
	panicking := newTestHandler("OrderPlaced")
	panicking.panics = true
	healthy := newTestHandler("OrderPlaced")
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("OrderPlaced"))
	require.NoError(t, err)

	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, int64(2), bus.FailedDispatches())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := newTestHandler("OrderPlaced")
	bus.Subscribe(h)

	_ = bus.Publish(context.Background(), newTestEvent("OrderPlaced"))
	bus.Unsubscribe(h)
	_ = bus.Publish(context.Background(), newTestEvent("OrderPlaced"))

	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_AsyncOutlivesRequestContext(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := newTestHandler("OrderPlaced")
	h.block = make(chan struct{})
	bus.SubscribeAsync(h)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Publish(ctx, newTestEvent("OrderPlaced")))
	cancel()
	assert.Zero(t, h.count(), "publish does not wait for async handlers")
	close(h.block)

	stopCtx, stop := context.WithTimeout(context.Background(), time.Second)
	defer stop()
	require.NoError(t, bus.Stop(stopCtx))

	require.Equal(t, 1, h.count())
	assert.NoError(t, h.ctxErrs[0])
}

func TestInMemoryEventBus_StopTimeout(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := newTestHandler("OrderPlaced")
	h.block = make(chan struct{})
	defer close(h.block)
	bus.SubscribeAsync(h)
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPlaced")))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bus.Stop(ctx), context.DeadlineExceeded)
}

func TestInMemoryEventBus_StoppedDropsAsync(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	async := newTestHandler("OrderPlaced")
	inline := newTestHandler("OrderPlaced")
	bus.SubscribeAsync(async)
	bus.Subscribe(inline)
	require.NoError(t, bus.Stop(context.Background()))

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPlaced")))
	assert.Zero(t, async.count())
	assert.Equal(t, 1, inline.count())

	require.NoError(t, bus.Start(context.Background()))
}

func TestInMemoryEventBus_StopRacingPublish(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := newTestHandler("OrderPlaced")
	bus.SubscribeAsync(h)

	var publishers sync.WaitGroup
	for i := 0; i < 50; i++ {
		publishers.Add(1)
		go func() {
			defer publishers.Done()
			_ = bus.Publish(context.Background(), newTestEvent("OrderPlaced"))
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))
	settled := h.count()

	publishers.Wait()
	assert.Equal(t, settled, h.count(), "nothing is dispatched after Stop returns")
}
