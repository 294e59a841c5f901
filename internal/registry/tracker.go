package registry

import (
	"context"
	"sync"
	"time"

	"github.com/weiawesome/wes-io-live/watchparty/pkg/log"
	"github.com/weiawesome/wes-io-live/watchparty/pkg/pubsub"
)

const opTimeout = 5 * time.Second

// Recorder receives presence activity. activity.Publisher satisfies it.
type Recorder interface {
	Record(eventType, roomID string, payload interface{})
}

// Tracker turns room presence changes into registry updates. Callers on the
// hub goroutine only note the latest state of a room; Run applies it. Changes
// are coalesced per room and never dropped, so the registry always converges
// on the last reported state.
type Tracker struct {
	registry Registry
	recorder Recorder

	mu      sync.Mutex
	pending map[string]bool // roomID -> occupied, not yet applied
	order   []string
	applied map[string]bool // rooms currently registered; owned by Run
	wake    chan struct{}
}

func NewTracker(reg Registry, recorder Recorder) *Tracker {
	return &Tracker{
		registry: reg,
		recorder: recorder,
		pending:  make(map[string]bool),
		applied:  make(map[string]bool),
		wake:     make(chan struct{}, 1),
	}
}

func (t *Tracker) RoomOccupied(roomID string) {
	t.set(roomID, true)
}

func (t *Tracker) RoomEmptied(roomID string) {
	t.set(roomID, false)
}

func (t *Tracker) set(roomID string, occupied bool) {
	t.mu.Lock()
	if _, ok := t.pending[roomID]; !ok {
		t.order = append(t.order, roomID)
	}
	t.pending[roomID] = occupied
	t.mu.Unlock()

	select {
	case t.wake <- struct{}{}:
	default:
	}
}

type presenceOp struct {
	roomID   string
	occupied bool
}

func (t *Tracker) take() []presenceOp {
	t.mu.Lock()
	defer t.mu.Unlock()

	ops := make([]presenceOp, 0, len(t.order))
	for _, roomID := range t.order {
		ops = append(ops, presenceOp{roomID: roomID, occupied: t.pending[roomID]})
	}
	t.pending = make(map[string]bool)
	t.order = nil
	return ops
}

// Run applies pending presence changes until ctx ends.
func (t *Tracker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.wake:
			for _, op := range t.take() {
				t.apply(ctx, op)
			}
		}
	}
}

func (t *Tracker) apply(ctx context.Context, op presenceOp) {
	// A room that filled and emptied again before Run caught up is a no-op.
	if t.applied[op.roomID] == op.occupied {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	l := log.L()
	if op.occupied {
		t.applied[op.roomID] = true
		if err := t.registry.Register(ctx, op.roomID); err != nil {
			l.Error().Err(err).Str(log.FieldRoomID, op.roomID).Msg("failed to register room")
		}
		t.recorder.Record(pubsub.EventRoomOccupied, op.roomID, &pubsub.RoomPresencePayload{Participants: 1})
		return
	}

	delete(t.applied, op.roomID)
	if err := t.registry.Deregister(ctx, op.roomID); err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, op.roomID).Msg("failed to deregister room")
	}
	t.recorder.Record(pubsub.EventRoomEmptied, op.roomID, &pubsub.RoomPresencePayload{})
}
