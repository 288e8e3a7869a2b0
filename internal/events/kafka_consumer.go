package events

import (
	"context"
	"errors"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/shareit/service-booking/internal/application"
	"github.com/shareit/service-booking/internal/domain/catalog"
	"github.com/shareit/service-booking/internal/metrics"
	"github.com/shareit/service-booking/internal/platform/kafka"
	"go.uber.org/zap"
)

// CatalogEventConsumer listens to catalog events and keeps the local user
// and item projections current.
type CatalogEventConsumer struct {
	consumer  *kafka.Consumer
	directory *application.DirectoryService
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewCatalogEventConsumer creates a new CatalogEventConsumer.
func NewCatalogEventConsumer(
	brokers []string,
	groupID string,
	directory *application.DirectoryService,
	m *metrics.Metrics,
	logger *zap.Logger,
) *CatalogEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, catalog.TopicEvents, logger)
	return &CatalogEventConsumer{
		consumer:  consumer,
		directory: directory,
		metrics:   m,
		logger:    logger,
	}
}

// Start begins consuming catalog events. This blocks until the context is cancelled.
func (c *CatalogEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *CatalogEventConsumer) Close() error {
	return c.consumer.Close()
}

// errMalformed marks events that will never apply and must not be retried.
var errMalformed = errors.New("malformed catalog event")

func (c *CatalogEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from catalog topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	err = c.apply(ctx, cloudEvent)
	c.metrics.ObserveCatalogEvent(cloudEvent.Type, err)
	if errors.Is(err, errMalformed) {
		c.logger.Error("skipping malformed catalog event",
			zap.String("type", cloudEvent.Type),
			zap.String("event_id", cloudEvent.ID),
			zap.Error(err),
		)
		return nil
	}
	if err != nil {
		c.logger.Error("failed to apply catalog event",
			zap.String("type", cloudEvent.Type),
			zap.String("event_id", cloudEvent.ID),
			zap.Error(err),
		)
	}
	return err
}

func (c *CatalogEventConsumer) apply(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	switch cloudEvent.Type {
	case catalog.EventUserUpserted:
		var evt catalog.UserUpsertedEvent
		if err := cloudEvent.ParseData(&evt); err != nil || evt.UserID <= 0 {
			return errors.Join(errMalformed, err)
		}
		return c.directory.ApplyUser(ctx, evt)

	case catalog.EventItemUpserted:
		var evt catalog.ItemUpsertedEvent
		if err := cloudEvent.ParseData(&evt); err != nil || evt.ItemID <= 0 {
			return errors.Join(errMalformed, err)
		}
		return c.directory.ApplyItem(ctx, evt)

	case catalog.EventUserDeleted, catalog.EventItemDeleted:
		var evt catalog.DeletedEvent
		if err := cloudEvent.ParseData(&evt); err != nil || evt.ID <= 0 {
			return errors.Join(errMalformed, err)
		}
		if cloudEvent.Type == catalog.EventUserDeleted {
			return c.directory.DeleteUser(ctx, evt.ID)
		}
		return c.directory.DeleteItem(ctx, evt.ID)

	default:
		c.logger.Debug("ignoring unhandled catalog event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}
