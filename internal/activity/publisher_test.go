package activity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/weiawesome/wes-io-live/watchparty/pkg/pubsub"
)

type published struct {
	channel string
	event   *pubsub.Event
}

type fakeBus struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (f *fakeBus) Publish(_ context.Context, channel string, event *pubsub.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{channel: channel, event: event})
	return f.err
}

func (f *fakeBus) Close() error { return nil }

func (f *fakeBus) snapshot() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.events...)
}

func TestPublisher_PublishesInOrder(t *testing.T) {
	bus := &fakeBus{}
	p := NewPublisher(bus, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	p.Record(pubsub.EventPlaybackChanged, "lobby", &pubsub.PlaybackChangedPayload{MediaID: "abc12345678", Playing: true})
	p.Record(pubsub.EventChatRelayed, "lobby", &pubsub.ChatRelayedPayload{Sender: "A", TextLength: 2})

	require.Eventually(t, func() bool { return len(bus.snapshot()) == 2 }, time.Second, 5*time.Millisecond)

	events := bus.snapshot()
	require.Equal(t, "watchparty:room:lobby:activity", events[0].channel)
	require.Equal(t, pubsub.EventPlaybackChanged, events[0].event.Type)
	require.Equal(t, pubsub.EventChatRelayed, events[1].event.Type)

	var payload pubsub.PlaybackChangedPayload
	require.NoError(t, events[0].event.UnmarshalPayload(&payload))
	require.Equal(t, "abc12345678", payload.MediaID)
	require.True(t, payload.Playing)
}

func TestPublisher_DropsWhenFull(t *testing.T) {
	bus := &fakeBus{}
	p := NewPublisher(bus, 1)

	// Not running: the second event cannot be queued.
	p.Record(pubsub.EventChatRelayed, "lobby", &pubsub.ChatRelayedPayload{})
	p.Record(pubsub.EventChatRelayed, "lobby", &pubsub.ChatRelayedPayload{})

	require.Equal(t, int64(1), p.Dropped())
}

func TestPublisher_DrainsOnShutdown(t *testing.T) {
	bus := &fakeBus{}
	p := NewPublisher(bus, 4)

	p.Record(pubsub.EventRoomOccupied, "lobby", &pubsub.RoomPresencePayload{Participants: 1})
	p.Record(pubsub.EventRoomEmptied, "lobby", &pubsub.RoomPresencePayload{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Run(ctx)

	require.Len(t, bus.snapshot(), 2)
}

func TestPublisher_BusErrorsAreNotFatal(t *testing.T) {
	bus := &fakeBus{err: errors.New("broker down")}
	p := NewPublisher(bus, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	p.Record(pubsub.EventChatRelayed, "lobby", &pubsub.ChatRelayedPayload{})
	p.Record(pubsub.EventChatRelayed, "lobby", &pubsub.ChatRelayedPayload{})

	require.Eventually(t, func() bool { return len(bus.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
}
