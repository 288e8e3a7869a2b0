package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shareit/service-booking/internal/platform/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type published struct {
	queue string
	msg   amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	declareErr error
	publishErr error
	sent       []published
	closed     bool
}

func (c *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, _ amqp.Table) (amqp.Queue, error) {
	if c.declareErr != nil {
		return amqp.Queue{}, c.declareErr
	}
	if !durable || autoDelete || exclusive || noWait {
		return amqp.Queue{}, errors.New("unexpected queue flags")
	}
	c.declared = append(c.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	if exchange != "" {
		return errors.New("expected default exchange")
	}
	c.sent = append(c.sent, published{queue: key, msg: msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

type fakeConn struct{ closed bool }

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func sampleEvent(t *testing.T, eventType string) kafka.CloudEvent {
	t.Helper()
	evt, err := kafka.NewCloudEvent("service-booking", eventType, "7", map[string]int64{"booking_id": 7})
	require.NoError(t, err)
	return evt
}

func TestPublisher_DeclaresEachQueueOnce(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(&fakeConn{}, ch, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, p.PublishEvent(ctx, "booking.events", sampleEvent(t, "booking.created")))
	require.NoError(t, p.PublishEvent(ctx, "booking.events", sampleEvent(t, "booking.approved")))
	require.NoError(t, p.PublishEvent(ctx, "audit.events", sampleEvent(t, "booking.created")))

	assert.Equal(t, []string{"booking.events", "audit.events"}, ch.declared)
	require.Len(t, ch.sent, 3)
	assert.Equal(t, "booking.events", ch.sent[1].queue)
}

func TestPublisher_MessageShape(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(&fakeConn{}, ch, zap.NewNop())
	evt := sampleEvent(t, "booking.created")

	require.NoError(t, p.PublishEvent(context.Background(), "booking.events", evt))
	require.Len(t, ch.sent, 1)

	msg := ch.sent[0].msg
	assert.Equal(t, CloudEventsContentType, msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, evt.ID, msg.MessageId)
	assert.Equal(t, "booking.created", msg.Type)

	var got kafka.CloudEvent
	require.NoError(t, json.Unmarshal(msg.Body, &got))
	assert.Equal(t, evt.ID, got.ID)
	assert.Equal(t, "7", got.Subject)
}

func TestPublisher_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("declare failure is retried on next publish", func(t *testing.T) {
		ch := &fakeChannel{declareErr: errors.New("access refused")}
		p := newPublisher(&fakeConn{}, ch, zap.NewNop())

		err := p.PublishEvent(ctx, "booking.events", sampleEvent(t, "booking.created"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "queue declare failed")
		assert.Empty(t, ch.sent)

		ch.declareErr = nil
		require.NoError(t, p.PublishEvent(ctx, "booking.events", sampleEvent(t, "booking.created")))
		assert.Equal(t, []string{"booking.events"}, ch.declared)
	})

	t.Run("publish failure is returned", func(t *testing.T) {
		cause := errors.New("channel closed")
		ch := &fakeChannel{publishErr: cause}
		p := newPublisher(&fakeConn{}, ch, zap.NewNop())

		err := p.PublishEvent(ctx, "booking.events", sampleEvent(t, "booking.created"))
		require.Error(t, err)
		assert.ErrorIs(t, err, cause)
	})
}

func TestPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	conn := &fakeConn{}
	p := newPublisher(conn, ch, zap.NewNop())

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
	assert.True(t, conn.closed)
}
