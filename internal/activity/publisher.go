// Package activity forwards room activity to the configured event bus
// without blocking the hub event loop.
package activity

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/weiawesome/wes-io-live/watchparty/pkg/log"
	"github.com/weiawesome/wes-io-live/watchparty/pkg/pubsub"
)

const publishTimeout = 5 * time.Second

type queuedEvent struct {
	channel string
	event   *pubsub.Event
}

// Publisher queues events in memory and publishes them from a single
// goroutine, preserving per-process order.
type Publisher struct {
	bus     pubsub.Publisher
	queue   chan queuedEvent
	dropped atomic.Int64
}

func NewPublisher(bus pubsub.Publisher, queueSize int) *Publisher {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Publisher{
		bus:   bus,
		queue: make(chan queuedEvent, queueSize),
	}
}

// Record queues an event. When the queue is full the event is dropped.
func (p *Publisher) Record(eventType, roomID string, payload interface{}) {
	l := log.L()

	event, err := pubsub.NewEvent(eventType, roomID, payload)
	if err != nil {
		l.Error().Err(err).Str(log.FieldEvent, eventType).Msg("failed to encode activity event")
		return
	}

	select {
	case p.queue <- queuedEvent{channel: pubsub.RoomActivityChannel(roomID), event: event}:
	default:
		p.dropped.Add(1)
		l.Warn().Str(log.FieldEvent, eventType).Str(log.FieldRoomID, roomID).Msg("activity queue full, event dropped")
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

// Run publishes queued events until ctx ends, then flushes what is left.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.drain()
			return
		case q := <-p.queue:
			p.publish(ctx, q)
		}
	}
}

func (p *Publisher) drain() {
	for {
		select {
		case q := <-p.queue:
			p.publish(context.Background(), q)
		default:
			return
		}
	}
}

func (p *Publisher) publish(ctx context.Context, q queuedEvent) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.bus.Publish(ctx, q.channel, q.event); err != nil {
		l := log.L()
		l.Error().Err(err).Str("channel", q.channel).Str(log.FieldEvent, q.event.Type).Msg("failed to publish activity event")
	}
}
