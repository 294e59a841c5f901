package service

import (
	"context"

	"github.com/weiawesome/wes-io-live/watchparty/internal/domain"
)

//go:generate mockgen -source=interface.go -destination=../mocks/mock_service.go -package=mocks -exclude_interfaces=Connection,Fanout,WatchPartyService

// Connection is the sending side of one participant's transport.
type Connection interface {
	ID() string
	Room() string
	SendMessage(message interface{}) error
}

// Fanout delivers a message to every connection of a room but one.
type Fanout interface {
	Broadcast(roomID string, message interface{}, exclude string) int
	ClientCount(roomID string) int
	Participants(roomID string) []domain.ParticipantInfo
}

// Presence is told when a room gains its first or loses its last participant.
// Implementations must not block.
type Presence interface {
	RoomOccupied(roomID string)
	RoomEmptied(roomID string)
}

// Activity records playback and chat activity for external consumers.
// Implementations must not block.
type Activity interface {
	Record(eventType, roomID string, payload interface{})
}

type WatchPartyService interface {
	HandleConnect(ctx context.Context, conn Connection) error
	HandleDisconnect(ctx context.Context, conn Connection) error
	HandleSyncIntent(ctx context.Context, conn Connection, intent domain.SyncIntent) error
	HandleChatMessage(ctx context.Context, conn Connection, msg domain.ChatMessage) error
	// OpenRoom admits a room before its first connection. It fails with
	// store.ErrRoomLimit when no new room may be created.
	OpenRoom(roomID string) error
	Snapshot(roomID string) (domain.RoomStateResponse, bool)
}
