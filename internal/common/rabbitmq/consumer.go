// internal/common/rabbitmq/consumer.go
package rabbitmq

import (
	"context"
	"fmt"

	"student-report-worker/internal/common/config"
	"student-report-worker/internal/common/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer owns one AMQP connection and channel. Prefetch is capped so the
// worker holds a single unacknowledged message at a time; a message is only
// redelivered if the worker dies without settling it.
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	cfg     config.RabbitConfig
	logger  logger.Logger
}

// NewConsumer dials the broker and declares the exchange, queue, and
// binding. Declarations are idempotent against an existing topology as long
// as the attributes match.
func NewConsumer(cfg config.RabbitConfig, log logger.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		cfg.Exchange,
		cfg.ExchangeType,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	queue, err := channel.QueueDeclare(
		cfg.Queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", cfg.Queue, err)
	}

	if err := channel.QueueBind(
		queue.Name,
		cfg.RoutingKey,
		cfg.Exchange,
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue %s: %w", queue.Name, err)
	}

	if err := channel.Qos(cfg.PrefetchCount, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set prefetch: %w", err)
	}

	log.Info("Connected to RabbitMQ", map[string]interface{}{
		"exchange":    cfg.Exchange,
		"queue":       queue.Name,
		"routing_key": cfg.RoutingKey,
		"prefetch":    cfg.PrefetchCount,
	})

	return &Consumer{
		conn:    conn,
		channel: channel,
		cfg:     cfg,
		logger:  log,
	}, nil
}

// Consume starts delivering messages from the queue. Acknowledgements are
// manual; the caller settles every delivery with Ack or Nack. The returned
// channel closes when the AMQP channel closes or ctx is cancelled.
func (c *Consumer) Consume(ctx context.Context) (<-chan Delivery, error) {
	raw, err := c.channel.ConsumeWithContext(
		ctx,
		c.cfg.Queue,
		"",    // consumer tag, broker-assigned
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming from %s: %w", c.cfg.Queue, err)
	}

	out := make(chan Delivery)
	go func() {
		defer close(out)
		for d := range raw {
			out <- Delivery{d: d}
		}
	}()

	return out, nil
}

// Close shuts down the channel and connection.
func (c *Consumer) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.WithError(err).Warn("Failed to close channel", nil)
		}
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Delivery is one message off the queue. Exactly one of Ack or Nack must be
// called per delivery, or the broker keeps the message reserved until the
// connection drops.
type Delivery struct {
	d amqp.Delivery
}

// Body returns the raw message payload.
func (d Delivery) Body() []byte {
	return d.d.Body
}

// Ack marks the message as processed.
func (d Delivery) Ack() error {
	return d.d.Ack(false)
}

// Nack rejects the message. With requeue false the broker drops it (or dead
// letters it if the queue is configured for that).
func (d Delivery) Nack(requeue bool) error {
	return d.d.Nack(false, requeue)
}
