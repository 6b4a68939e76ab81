package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	realtimeapp "github.com/restaurant/backend/internal/application/realtime"
	"go.uber.org/zap"
)

const defaultCloseTimeout = 5 * time.Second

// envelope wraps an event with the instance that produced it
type envelope struct {
	Origin string                  `json:"origin"`
	Event  realtimeapp.ChangeEvent `json:"event"`
}

var _ realtimeapp.Broadcaster = (*RedisRelay)(nil)

// RedisRelay broadcasts to the local hub and to other instances through a
// Redis channel. Messages published by this instance are ignored on receipt.
type RedisRelay struct {
	client     redis.UniversalClient
	hub        *Hub
	channel    string
	instanceID string
	logger     *zap.Logger

	mu        sync.Mutex
	cancelFn  context.CancelFunc
	doneCh    chan struct{}
	doneOnce  sync.Once
	isRunning bool
}

// NewRedisRelay creates a relay. The caller owns client.
func NewRedisRelay(client redis.UniversalClient, hub *Hub, channel string, logger *zap.Logger) *RedisRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRelay{
		client:     client,
		hub:        hub,
		channel:    channel,
		instanceID: uuid.NewString(),
		logger:     logger,
		doneCh:     make(chan struct{}),
	}
}

// InstanceID identifies this process on the channel
func (r *RedisRelay) InstanceID() string {
	return r.instanceID
}

// Broadcast delivers locally first, then publishes for other instances.
// A publish failure still leaves local clients served.
func (r *RedisRelay) Broadcast(ctx context.Context, event realtimeapp.ChangeEvent) error {
	_ = r.hub.Broadcast(ctx, event)

	data, err := json.Marshal(envelope{Origin: r.instanceID, Event: event})
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		r.logger.Warn("Failed to publish change event",
			zap.String("channel", r.channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish change event: %w", err)
	}
	return nil
}

// Run subscribes to the channel and relays remote events to the hub until
// ctx is cancelled. It blocks.
func (r *RedisRelay) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.isRunning {
		r.mu.Unlock()
		return errors.New("relay already running")
	}
	r.isRunning = true
	subCtx, cancel := context.WithCancel(ctx)
	r.cancelFn = cancel
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.isRunning = false
		r.mu.Unlock()
		r.markDone()
	}()

	pubsub := r.client.Subscribe(subCtx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}
	r.logger.Info("Subscribed to change feed channel",
		zap.String("channel", r.channel),
		zap.String("instance_id", r.instanceID))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				r.logger.Warn("Change feed channel closed")
				return nil
			}
			r.relay(subCtx, msg.Payload)
		}
	}
}

// relay forwards one remote payload to the hub
func (r *RedisRelay) relay(ctx context.Context, payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		r.logger.Error("Failed to unmarshal change event",
			zap.String("payload", payload),
			zap.Error(err))
		return
	}
	if env.Origin == r.instanceID {
		return
	}
	_ = r.hub.Broadcast(ctx, env.Event)
}

func (r *RedisRelay) markDone() {
	r.doneOnce.Do(func() {
		close(r.doneCh)
	})
}

// Close stops Run and waits for it to return
func (r *RedisRelay) Close() error {
	r.mu.Lock()
	cancelFn := r.cancelFn
	r.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-r.doneCh:
		case <-time.After(defaultCloseTimeout):
			r.logger.Warn("Timeout waiting for change feed subscription to stop")
		}
	}
	return nil
}
