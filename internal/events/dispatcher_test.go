package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/support-kit/case-assistant/internal/events"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	d := events.NewInMemoryDispatcher()

	var calls int
	d.Subscribe(events.EventStaleCasesDetected, func(_ context.Context, _ events.Event) error {
		calls++
		return nil
	})
	d.Subscribe(events.EventStaleCasesDetected, func(_ context.Context, _ events.Event) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), events.Event{Type: events.EventStaleCasesDetected})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestPublishContinuesPastFailingHandler(t *testing.T) {
	d := events.NewInMemoryDispatcher()
	boom := errors.New("handler boom")

	var secondRan bool
	d.Subscribe(events.EventSearchDegraded, func(_ context.Context, _ events.Event) error {
		return boom
	})
	d.Subscribe(events.EventSearchDegraded, func(_ context.Context, _ events.Event) error {
		secondRan = true
		return nil
	})

	err := d.Publish(context.Background(), events.Event{Type: events.EventSearchDegraded})
	require.ErrorIs(t, err, boom)
	require.True(t, secondRan)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	d := events.NewInMemoryDispatcher()
	require.NoError(t, d.Publish(context.Background(), events.Event{Type: events.EventSearchDegraded}))
}
