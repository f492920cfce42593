package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestPublishInvokesSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	var seen []EventType
	d.Subscribe(EventBidCreated, func(ctx context.Context, e Event) error {
		seen = append(seen, e.Type)
		return nil
	})
	d.Subscribe(EventBidCreated, func(ctx context.Context, e Event) error {
		seen = append(seen, e.Type)
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventBidCreated, Timestamp: time.Now()})
	require.NoError(t, err)
	assert.Len(t, seen, 2)
}

func TestPublishSkipsUnrelatedSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	called := false
	d.Subscribe(EventShipmentDelivered, func(ctx context.Context, e Event) error {
		called = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventBidCreated}))
	assert.False(t, called)
}

func TestHandlerErrorDoesNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	var order []string
	d.Subscribe(EventPaymentReceived, func(ctx context.Context, e Event) error {
		order = append(order, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventPaymentReceived, func(ctx context.Context, e Event) error {
		order = append(order, "second")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventPaymentReceived}))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestHandlerErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := NewInMemoryDispatcher(zap.New(core))

	d.Subscribe(EventBidCreated, func(ctx context.Context, e Event) error {
		return errors.New("boom")
	})

	require.NoError(t, d.Publish(context.Background(), Event{ID: "evt-1", Type: EventBidCreated}))

	entries := logs.FilterMessage("event handler failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, string(EventBidCreated), fields["event_type"])
	assert.Equal(t, "evt-1", fields["event_id"])
}
