// Package rabbitmq publishes CloudEvents to durable RabbitMQ queues, one queue per topic.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shareit/service-booking/internal/platform/kafka"
	"go.uber.org/zap"
)

// CloudEventsContentType marks message bodies as structured CloudEvents.
const CloudEventsContentType = "application/cloudevents+json"

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher holds one connection and channel for the life of the process.
type Publisher struct {
	mu       sync.Mutex
	conn     io.Closer
	ch       channel
	declared map[string]bool
	logger   *zap.Logger
}

// NewPublisher dials url and opens a channel.
func NewPublisher(url string, logger *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel open failed: %w", err)
	}
	return newPublisher(conn, ch, logger), nil
}

func newPublisher(conn io.Closer, ch channel, logger *zap.Logger) *Publisher {
	return &Publisher{conn: conn, ch: ch, declared: make(map[string]bool), logger: logger}
}

// PublishEvent sends evt as a persistent message to the queue named topic.
// The queue is declared on first use.
func (p *Publisher) PublishEvent(ctx context.Context, topic string, evt kafka.CloudEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal cloud event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.declared[topic] {
		if _, err := p.ch.QueueDeclare(topic, true, false, false, false, nil); err != nil {
			return fmt.Errorf("rabbitmq queue declare failed: %w", err)
		}
		p.declared[topic] = true
	}

	pub := amqp.Publishing{
		ContentType:  CloudEventsContentType,
		DeliveryMode: amqp.Persistent,
		MessageId:    evt.ID,
		Type:         evt.Type,
		Timestamp:    evt.Time,
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", topic, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish failed: %w", err)
	}
	p.logger.Debug("event published", zap.String("queue", topic), zap.String("event_type", evt.Type))
	return nil
}

// Close closes the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.ch.Close()
	return p.conn.Close()
}
