package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/restaurant/backend/internal/application/notification"
	"go.uber.org/zap"
)

// Deliverer sends one notification
type Deliverer interface {
	Deliver(ctx context.Context, msg notification.NotificationMessage) error
}

type outcome int

const (
	outcomeAck outcome = iota
	outcomeRequeue
	outcomeDeadLetter
)

func (o outcome) String() string {
	switch o {
	case outcomeAck:
		return "ack"
	case outcomeRequeue:
		return "requeue"
	default:
		return "dead_letter"
	}
}

// decide maps a delivery result to an acknowledgement. Failed messages are
// requeued once and dead-lettered on the second failure.
func decide(err error, redelivered bool) outcome {
	switch {
	case err == nil:
		return outcomeAck
	case notification.IsPermanent(err):
		return outcomeAck
	case redelivered:
		return outcomeDeadLetter
	default:
		return outcomeRequeue
	}
}

var errMalformed = errors.New("malformed notification")

// Consumer reads the notification queue and hands messages to a Deliverer
type Consumer struct {
	ch        *amqp.Channel
	queue     string
	tag       string
	prefetch  int
	deliverer Deliverer
	logger    *zap.Logger
}

// NewConsumer creates a new Consumer
func NewConsumer(client *Client, queue, tag string, prefetch int, deliverer Deliverer, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prefetch <= 0 {
		prefetch = 10
	}
	return &Consumer{
		ch:        client.Channel(),
		queue:     queue,
		tag:       tag,
		prefetch:  prefetch,
		deliverer: deliverer,
		logger:    logger,
	}
}

// Run consumes until ctx is cancelled, then drains in-flight deliveries
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("set prefetch: %w", err)
	}
	deliveries, err := c.ch.Consume(c.queue, c.tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}
	c.logger.Info("Notifier consuming",
		zap.String("queue", c.queue),
		zap.Int("prefetch", c.prefetch))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for d := range deliveries {
			c.handle(ctx, d)
		}
	}()

	select {
	case <-ctx.Done():
		_ = c.ch.Cancel(c.tag, false)
		<-done
		return nil
	case <-done:
		return errors.New("delivery channel closed")
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	err := c.process(ctx, d.Body)
	result := decide(err, d.Redelivered)
	if errors.Is(err, errMalformed) {
		result = outcomeDeadLetter
	}

	fields := []zap.Field{
		zap.String("message_id", d.MessageId),
		zap.Bool("redelivered", d.Redelivered),
		zap.Stringer("outcome", result),
	}
	switch {
	case err == nil:
		c.logger.Debug("Notification delivered", fields...)
	case result == outcomeAck:
		c.logger.Info("Notification dropped", append(fields, zap.Error(err))...)
	default:
		c.logger.Warn("Notification failed", append(fields, zap.Error(err))...)
	}

	var ackErr error
	switch result {
	case outcomeAck:
		ackErr = d.Ack(false)
	case outcomeRequeue:
		ackErr = d.Nack(false, true)
	case outcomeDeadLetter:
		ackErr = d.Nack(false, false)
	}
	if ackErr != nil {
		c.logger.Error("Failed to acknowledge delivery", zap.Error(ackErr))
	}
}

func (c *Consumer) process(ctx context.Context, body []byte) error {
	var msg notification.NotificationMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	return c.deliverer.Deliver(ctx, msg)
}
