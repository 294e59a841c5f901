package domain

import (
	"sync"
	"time"
)

// Participant is one connected websocket client of a room.
type Participant struct {
	ConnectionID string
	RoomID       string
	JoinedAt     time.Time
	lastActiveAt time.Time
	mu           sync.RWMutex
}

func NewParticipant(connectionID, roomID string) *Participant {
	now := time.Now()
	return &Participant{
		ConnectionID: connectionID,
		RoomID:       roomID,
		JoinedAt:     now,
		lastActiveAt: now,
	}
}

func (p *Participant) UpdateActivity() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastActiveAt = time.Now()
}

func (p *Participant) LastActiveAt() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastActiveAt
}

// ParticipantInfo is a read-only view of a participant.
type ParticipantInfo struct {
	ConnectionID string    `json:"connection_id"`
	JoinedAt     time.Time `json:"joined_at"`
	LastActiveAt time.Time `json:"last_active_at"`
}

func (p *Participant) Info() ParticipantInfo {
	return ParticipantInfo{
		ConnectionID: p.ConnectionID,
		JoinedAt:     p.JoinedAt,
		LastActiveAt: p.LastActiveAt(),
	}
}

// ChatMessage is relayed verbatim and never stored.
type ChatMessage struct {
	Sender string
	Text   string
}
