package hub

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/samber/lo"
	"github.com/weiawesome/wes-io-live/watchparty/internal/config"
	"github.com/weiawesome/wes-io-live/watchparty/internal/domain"
	"github.com/weiawesome/wes-io-live/watchparty/pkg/log"
)

// EventHandler receives connection lifecycle and inbound frames. All methods
// are called from the hub goroutine, one event at a time.
type EventHandler interface {
	OnConnect(c *Client)
	OnMessage(c *Client, message []byte)
	OnDisconnect(c *Client)
}

// Hub is the session registry. It owns the set of connected clients per
// room and serializes every event through Run.
type Hub struct {
	clients    map[string]*Client            // clientID -> client
	rooms      map[string]map[string]*Client // roomID -> clientID -> client
	register   chan *Client
	unregister chan *Client
	inbound    chan *InboundMessage
	done       chan struct{}
	handler    EventHandler
	mu         sync.RWMutex
	config     config.WebSocketConfig
}

// InboundMessage is one frame read from a client.
type InboundMessage struct {
	Client  *Client
	Message []byte
}

func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan *InboundMessage, 256),
		done:       make(chan struct{}),
		config:     cfg,
	}
}

// SetHandler must be called before Run.
func (h *Hub) SetHandler(handler EventHandler) {
	h.handler = handler
}

// Run processes register, unregister and inbound events until ctx ends.
// Each event, including the sends it triggers, completes before the next
// one is taken.
func (h *Hub) Run(ctx context.Context) {
	l := log.L()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			l.Info().Msg("hub stopped")
			return

		case client := <-h.register:
			h.add(client)
			l.Debug().Str(log.FieldConnectionID, client.ID()).Str(log.FieldRoomID, client.Room()).Msg("client registered")
			if h.handler != nil {
				h.handler.OnConnect(client)
			}

		case client := <-h.unregister:
			if !h.remove(client) {
				continue
			}
			l.Debug().Str(log.FieldConnectionID, client.ID()).Str(log.FieldRoomID, client.Room()).Msg("client unregistered")
			if h.handler != nil {
				h.handler.OnDisconnect(client)
			}

		case msg := <-h.inbound:
			if !h.isRegistered(msg.Client) {
				continue
			}
			if h.handler != nil {
				h.handler.OnMessage(msg.Client, msg.Message)
			}
		}
	}
}

// Register adds a client to the hub. It returns false once the hub stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Dispatch queues a frame for the event loop. It returns false once the hub
// stopped.
func (h *Hub) Dispatch(client *Client, message []byte) bool {
	// inbound is buffered, so a send can still succeed after Run returned.
	select {
	case <-h.done:
		return false
	default:
	}

	select {
	case h.inbound <- &InboundMessage{Client: client, Message: message}:
		return true
	case <-h.done:
		return false
	}
}

// Broadcast sends message to every client of roomID except exclude and
// returns the number of clients it was queued for. A client whose buffer is
// full is skipped and scheduled for removal; the others still receive it.
func (h *Hub) Broadcast(roomID string, message interface{}, exclude string) int {
	data, err := json.Marshal(message)
	if err != nil {
		l := log.L()
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to marshal broadcast")
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for clientID, client := range h.rooms[roomID] {
		if clientID == exclude {
			continue
		}
		if err := client.trySend(data); err != nil {
			l := log.L()
			l.Warn().Err(err).Str(log.FieldConnectionID, clientID).Str(log.FieldRoomID, roomID).Msg("dropping slow client")
			go h.Unregister(client)
			continue
		}
		delivered++
	}
	return delivered
}

// ClientCount returns the number of clients connected to roomID.
func (h *Hub) ClientCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// Participants returns the participants of roomID ordered by join time.
func (h *Hub) Participants(roomID string) []domain.ParticipantInfo {
	h.mu.RLock()
	infos := lo.MapToSlice(h.rooms[roomID], func(_ string, c *Client) domain.ParticipantInfo {
		return c.Participant.Info()
	})
	h.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].JoinedAt.Equal(infos[j].JoinedAt) {
			return infos[i].ConnectionID < infos[j].ConnectionID
		}
		return infos[i].JoinedAt.Before(infos[j].JoinedAt)
	})
	return infos
}

// Rooms returns the IDs of rooms with at least one client.
func (h *Hub) Rooms() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := lo.Keys(h.rooms)
	sort.Strings(ids)
	return ids
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID()] = client
	if _, ok := h.rooms[client.Room()]; !ok {
		h.rooms[client.Room()] = make(map[string]*Client)
	}
	h.rooms[client.Room()][client.ID()] = client
}

func (h *Hub) remove(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.clients[client.ID()]; !ok || current != client {
		return false
	}
	delete(h.clients, client.ID())
	if roomClients, ok := h.rooms[client.Room()]; ok {
		delete(roomClients, client.ID())
		if len(roomClients) == 0 {
			delete(h.rooms, client.Room())
		}
	}
	close(client.Send)
	return true
}

func (h *Hub) isRegistered(client *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[client.ID()] == client
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, client := range h.clients {
		close(client.Send)
		delete(h.clients, id)
	}
	h.rooms = make(map[string]map[string]*Client)
}
