package application

import (
	"context"

	"github.com/shareit/service-booking/internal/platform/kafka"
)

// EventPublisher delivers CloudEvents to a topic. Implemented by the Kafka
// producer and the RabbitMQ publisher.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, evt kafka.CloudEvent) error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishEvent(context.Context, string, kafka.CloudEvent) error { return nil }
