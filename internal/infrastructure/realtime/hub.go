// Package realtime fans change events out to server-sent event streams, and
// across API instances through Redis pub/sub.
package realtime

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	realtimeapp "github.com/restaurant/backend/internal/application/realtime"
	"github.com/restaurant/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	defaultMaxClients = 500
	defaultBuffer     = 16
)

// ErrTooManyClients is returned when the hub is at capacity
var ErrTooManyClients = shared.NewDomainError("TOO_MANY_CLIENTS", "Too many realtime connections, try again later")

var _ realtimeapp.Broadcaster = (*Hub)(nil)

// Client is one open stream. OrderNumber narrows the stream to a single order.
type Client struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	OrderNumber  string
	events       chan realtimeapp.ChangeEvent
	dropped      atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// Events returns the channel the client reads from. It is closed on
// Unsubscribe.
func (c *Client) Events() <-chan realtimeapp.ChangeEvent {
	return c.events
}

// Dropped returns how many events were skipped because the client was slow
func (c *Client) Dropped() int64 {
	return c.dropped.Load()
}

// offer sends without blocking; it never sends on a closed channel
func (c *Client) offer(e realtimeapp.ChangeEvent) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.events <- e:
	default:
		c.dropped.Add(1)
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	close(c.events)
}

func (c *Client) wants(e realtimeapp.ChangeEvent) bool {
	if e.RestaurantID != c.RestaurantID {
		return false
	}
	return c.OrderNumber == "" || (e.Table == realtimeapp.TableOrders && e.OrderNumber == c.OrderNumber)
}

// Hub keeps the open streams of this instance
type Hub struct {
	clients    sync.Map // uuid.UUID -> *Client
	count      atomic.Int64
	maxClients int64
	bufferSize int
	logger     *zap.Logger
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithMaxClients caps concurrent streams
func WithMaxClients(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.maxClients = int64(n)
		}
	}
}

// WithBufferSize sets the per-client event buffer
func WithBufferSize(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.bufferSize = n
		}
	}
}

// WithHubLogger sets the logger
func WithHubLogger(logger *zap.Logger) HubOption {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHub creates an empty hub
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		maxClients: defaultMaxClients,
		bufferSize: defaultBuffer,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers a stream for a restaurant. orderNumber may be empty.
func (h *Hub) Subscribe(restaurantID uuid.UUID, orderNumber string) (*Client, error) {
	if h.count.Add(1) > h.maxClients {
		h.count.Add(-1)
		return nil, ErrTooManyClients
	}
	c := &Client{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		OrderNumber:  orderNumber,
		events:       make(chan realtimeapp.ChangeEvent, h.bufferSize),
	}
	h.clients.Store(c.ID, c)
	h.logger.Debug("Realtime client connected",
		zap.String("client_id", c.ID.String()),
		zap.String("restaurant_id", restaurantID.String()))
	return c, nil
}

// Unsubscribe removes the client and closes its channel
func (h *Hub) Unsubscribe(c *Client) {
	if _, ok := h.clients.LoadAndDelete(c.ID); !ok {
		return
	}
	h.count.Add(-1)
	c.close()
	h.logger.Debug("Realtime client disconnected",
		zap.String("client_id", c.ID.String()),
		zap.Int64("dropped", c.Dropped()))
}

// ClientCount returns the number of open streams
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Broadcast delivers the event to matching clients without blocking.
// Clients with a full buffer miss the event.
func (h *Hub) Broadcast(_ context.Context, event realtimeapp.ChangeEvent) error {
	h.clients.Range(func(_, value any) bool {
		c := value.(*Client)
		if c.wants(event) {
			c.offer(event)
		}
		return true
	})
	return nil
}

// Close ends every open stream. Handlers see their event channel closed.
func (h *Hub) Close() {
	h.clients.Range(func(_, value any) bool {
		h.Unsubscribe(value.(*Client))
		return true
	})
}
