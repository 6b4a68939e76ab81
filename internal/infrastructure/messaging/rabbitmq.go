// Package messaging carries customer notifications over RabbitMQ between the
// API server and the notifier worker.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/restaurant/backend/internal/application/notification"
	"github.com/restaurant/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	routingKey      = "whatsapp"
	deadLetterKey   = "whatsapp.dead"
	deadLetterXName = "notifications.dlx"
)

// Topology names the exchange and queues used for notifications
type Topology struct {
	Exchange   string
	Queue      string
	DeadLetter string
}

// TopologyFromConfig builds the topology from broker settings
func TopologyFromConfig(cfg *config.RabbitMQConfig) Topology {
	return Topology{
		Exchange:   cfg.Exchange,
		Queue:      cfg.Queue,
		DeadLetter: cfg.DeadLetter,
	}
}

// Client is a RabbitMQ connection with one channel in confirm mode
type Client struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	acks   <-chan amqp.Confirmation
	mu     sync.Mutex
	logger *zap.Logger
}

// Dial connects to the broker and enables publisher confirms
func Dial(url string, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("enable confirms: %w", err)
	}

	c := &Client{
		conn:   conn,
		ch:     ch,
		acks:   ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
		logger: logger,
	}
	go c.watchClose(ch.NotifyClose(make(chan *amqp.Error, 1)))
	return c, nil
}

func (c *Client) watchClose(closed <-chan *amqp.Error) {
	if e, ok := <-closed; ok && e != nil {
		c.logger.Error("RabbitMQ channel closed",
			zap.Int("code", e.Code),
			zap.String("reason", e.Reason))
	}
}

// Channel returns the underlying channel
func (c *Client) Channel() *amqp.Channel {
	return c.ch
}

// Ping reports whether the connection is open
func (c *Client) Ping() error {
	if c.conn == nil || c.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	return nil
}

// Close closes the channel and the connection
func (c *Client) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// DeclareTopology declares the direct exchange, the work queue and its
// dead-letter queue. Declarations are idempotent.
func (c *Client) DeclareTopology(t Topology) error {
	if err := c.ch.ExchangeDeclare(t.Exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", t.Exchange, err)
	}
	if err := c.ch.ExchangeDeclare(deadLetterXName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", deadLetterXName, err)
	}
	if _, err := c.ch.QueueDeclare(t.Queue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    deadLetterXName,
		"x-dead-letter-routing-key": deadLetterKey,
	}); err != nil {
		return fmt.Errorf("declare queue %s: %w", t.Queue, err)
	}
	if _, err := c.ch.QueueDeclare(t.DeadLetter, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", t.DeadLetter, err)
	}
	if err := c.ch.QueueBind(t.Queue, routingKey, t.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", t.Queue, err)
	}
	if err := c.ch.QueueBind(t.DeadLetter, deadLetterKey, deadLetterXName, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", t.DeadLetter, err)
	}
	return nil
}

// publish sends body and waits for the broker confirm. Calls are serialized.
func (c *Client) publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ch.PublishWithContext(ctx, exchange, key, false, false, msg); err != nil {
		return err
	}
	select {
	case conf := <-c.acks:
		if conf.Ack {
			return nil
		}
		return errors.New("publish NACK from broker")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Publisher queues notification messages on the notifications exchange
type Publisher struct {
	client   *Client
	exchange string
	logger   *zap.Logger
}

var _ notification.Publisher = (*Publisher)(nil)

// NewPublisher creates a new Publisher
func NewPublisher(client *Client, exchange string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{client: client, exchange: exchange, logger: logger}
}

// Publish queues msg as a persistent JSON message
func (p *Publisher) Publish(ctx context.Context, msg notification.NotificationMessage) error {
	pub, err := encodeMessage(msg)
	if err != nil {
		return err
	}
	if err := p.client.publish(ctx, p.exchange, routingKey, pub); err != nil {
		return fmt.Errorf("publish notification %s: %w", msg.ID, err)
	}
	p.logger.Debug("Notification queued",
		zap.String("message_id", msg.ID.String()),
		zap.String("event_type", msg.EventType))
	return nil
}

func encodeMessage(msg notification.NotificationMessage) (amqp.Publishing, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal notification: %w", err)
	}
	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    msg.ID.String(),
		Type:         msg.EventType,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}, nil
}
