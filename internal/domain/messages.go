package domain

import (
	"encoding/json"
	"errors"
)

// WebSocket message types from client.
const (
	MsgTypeSyncIntent  = "syncIntent"
	MsgTypeChatMessage = "chatMessage"
	MsgTypePing        = "ping"
)

// WebSocket message types to client.
const (
	MsgTypePong = "pong"
)

// ErrInvalidURL is returned when a sync intent carries a url that is not a string.
var ErrInvalidURL = errors.New("url must be a string")

// BaseMessage is the base structure for all WebSocket messages.
type BaseMessage struct {
	Type string `json:"type"`
}

// Client -> Server messages

// SyncIntentMessage keeps both fields raw so that absent, null and
// wrongly-typed values can be told apart.
type SyncIntentMessage struct {
	Type    string          `json:"type"`
	URL     json.RawMessage `json:"url,omitempty"`
	Playing json.RawMessage `json:"playing,omitempty"`
}

// Intent converts the wire message into a SyncIntent.
//
// An empty or null url counts as absent. A url of any other non-string type
// is an error. A playing flag that is not a boolean is ignored.
func (m *SyncIntentMessage) Intent() (SyncIntent, error) {
	var intent SyncIntent

	if len(m.URL) > 0 && string(m.URL) != "null" {
		var url string
		if err := json.Unmarshal(m.URL, &url); err != nil {
			return SyncIntent{}, ErrInvalidURL
		}
		if url != "" {
			intent.URL = &url
		}
	}

	if len(m.Playing) > 0 {
		var playing bool
		if err := json.Unmarshal(m.Playing, &playing); err == nil && string(m.Playing) != "null" {
			intent.Playing = &playing
		}
	}

	return intent, nil
}

type ChatMessageWS struct {
	Type   string `json:"type"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// Server -> Client messages

// PlaybackStateMessage pushes the full playback state of a room.
type PlaybackStateMessage struct {
	Type    string `json:"type"`
	Media   string `json:"media"`
	MediaID string `json:"media_id"`
	Playing bool   `json:"playing"`
}

func NewPlaybackStateMessage(s PlaybackState) *PlaybackStateMessage {
	return &PlaybackStateMessage{
		Type:    MsgTypeSyncIntent,
		Media:   s.Media.URL(),
		MediaID: s.Media.String(),
		Playing: s.Playing,
	}
}

func NewChatMessageWS(m ChatMessage) *ChatMessageWS {
	return &ChatMessageWS{
		Type:   MsgTypeChatMessage,
		Sender: m.Sender,
		Text:   m.Text,
	}
}

type PongMessage struct {
	Type string `json:"type"`
}

// RoomStateResponse is the body of the read-only state endpoint.
type RoomStateResponse struct {
	RoomID       string            `json:"room_id"`
	Media        string            `json:"media"`
	MediaID      string            `json:"media_id"`
	Playing      bool              `json:"playing"`
	Participants []ParticipantInfo `json:"participants"`
}
