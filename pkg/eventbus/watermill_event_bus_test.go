package eventbus

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/benchbot/pkg/channels/gochannel"
	"github.com/dukex/benchbot/pkg/events"
	"github.com/dukex/benchbot/pkg/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) *WatermillEventBus {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	return NewWatermillEventBus(pub, sub, logger)
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan events.Event, 1)

	bus.Handle(events.BenchmarkRequestedEvent, func(ctx context.Context, event events.Event) error {
		received <- event

		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx, events.TriggerTopic))

	sent := events.BenchmarkRequested{
		BaseEvent: events.BaseEvent{
			ID:        bus.GenerateID(),
			Type:      events.BenchmarkRequestedEvent,
			Timestamp: time.Now().UTC(),
		},
		Trigger: github.TriggerEvent{
			Action: github.ActionLabeled,
			Label:  "benchmark",
			Owner:  "o",
			Repo:   "r",
			Number: 42,
		},
	}

	require.NoError(t, bus.Publish(ctx, events.TriggerTopic, sent.Trigger.Key(), sent))

	select {
	case event := <-received:
		requested, ok := event.(*events.BenchmarkRequested)
		require.True(t, ok)
		assert.Equal(t, sent.ID, requested.ID)
		assert.Equal(t, sent.Trigger, requested.Trigger)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestUnhandledEventTypesAreAcked(t *testing.T) {
	bus := newTestBus(t)

	handled := make(chan events.Event, 1)

	bus.Handle(events.RunFinishedEvent, func(ctx context.Context, event events.Event) error {
		handled <- event

		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx, events.RunTopic))

	// An event type without a handler must not wedge the subscription.
	unhandled := events.RunStarted{
		BaseEvent: events.BaseEvent{ID: bus.GenerateID(), Type: events.RunStartedEvent},
	}
	require.NoError(t, bus.Publish(ctx, events.RunTopic, "o/r#1", unhandled))

	finished := events.RunFinished{
		BaseEvent: events.BaseEvent{ID: bus.GenerateID(), Type: events.RunFinishedEvent},
	}
	require.NoError(t, bus.Publish(ctx, events.RunTopic, "o/r#1", finished))

	select {
	case event := <-handled:
		assert.Equal(t, events.RunFinishedEvent, event.GetType())
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestGenerateIDIsUnique(t *testing.T) {
	bus := newTestBus(t)

	assert.NotEqual(t, bus.GenerateID(), bus.GenerateID())
}
