package store

import (
	"errors"
	"sync"

	"github.com/weiawesome/wes-io-live/watchparty/internal/domain"
)

// PlaybackStore holds the authoritative playback state of one room.
type PlaybackStore struct {
	mu    sync.Mutex
	state domain.PlaybackState
}

func NewPlaybackStore(initial domain.PlaybackState) *PlaybackStore {
	return &PlaybackStore{state: initial}
}

// Get returns the current snapshot.
func (s *PlaybackStore) Get() domain.PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Apply merges the present fields of patch into the state and returns the
// new snapshot. It is the only mutator; the last call wins.
func (s *PlaybackStore) Apply(patch domain.PlaybackPatch) domain.PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.state.Merge(patch)
	return s.state
}

// ErrRoomLimit is returned by Open when no new room may be created.
var ErrRoomLimit = errors.New("room limit reached")

// Rooms maps room IDs to their playback stores. Stores are created on first
// use and live for the lifetime of the process.
type Rooms struct {
	mu           sync.RWMutex
	stores       map[string]*PlaybackStore
	defaultMedia domain.MediaID
	maxRooms     int
}

// NewRooms creates the room map with the default room already present.
// maxRooms bounds how many rooms Open will create; zero means no limit.
func NewRooms(defaultRoom string, defaultMedia domain.MediaID, maxRooms int) *Rooms {
	r := &Rooms{
		stores:       make(map[string]*PlaybackStore),
		defaultMedia: defaultMedia,
		maxRooms:     maxRooms,
	}
	r.stores[defaultRoom] = NewPlaybackStore(domain.NewPlaybackState(defaultMedia))
	return r
}

// Open makes sure roomID has a store, creating one unless the limit is
// reached. Existing rooms always open.
func (r *Rooms) Open(roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stores[roomID]; ok {
		return nil
	}
	if r.maxRooms > 0 && len(r.stores) >= r.maxRooms {
		return ErrRoomLimit
	}
	r.stores[roomID] = NewPlaybackStore(domain.NewPlaybackState(r.defaultMedia))
	return nil
}

// For returns the store of roomID, creating it if needed. Connections only
// reach a room after Open admitted it.
func (r *Rooms) For(roomID string) *PlaybackStore {
	r.mu.RLock()
	s, ok := r.stores[roomID]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[roomID]; ok {
		return s
	}
	s = NewPlaybackStore(domain.NewPlaybackState(r.defaultMedia))
	r.stores[roomID] = s
	return s
}

// Lookup returns the store of roomID without creating it.
func (r *Rooms) Lookup(roomID string) (*PlaybackStore, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[roomID]
	return s, ok
}
