package pubsub

import (
	"fmt"
	"strings"
)

// Channel naming conventions for watch-party activity.
const (
	// ChannelRoomActivity carries playback and chat activity of one room.
	ChannelRoomActivity = "watchparty:room:%s:activity"
)

// Event types published on the activity channel.
const (
	EventPlaybackChanged = "playback_changed"
	EventChatRelayed     = "chat_relayed"
	EventRoomOccupied    = "room_occupied"
	EventRoomEmptied     = "room_emptied"
)

// RoomActivityChannel returns the activity channel name for a room.
func RoomActivityChannel(roomID string) string {
	return fmt.Sprintf(ChannelRoomActivity, roomID)
}

// channelToTopicAndKey converts a Redis-style channel to a Kafka topic and message key.
//
//	"watchparty:room:lobby:activity" → topic: "watchparty-activity", key: "lobby"
func channelToTopicAndKey(channel string) (topic, key string, err error) {
	parts := strings.Split(channel, ":")
	if len(parts) != 4 || parts[1] != "room" || parts[2] == "" {
		return "", "", fmt.Errorf("invalid channel format: %s", channel)
	}
	return parts[0] + "-" + strings.ReplaceAll(parts[3], "_", "-"), parts[2], nil
}

// Event payloads.

// PlaybackChangedPayload is published after a sync intent was applied.
type PlaybackChangedPayload struct {
	ConnectionID string `json:"connection_id"`
	MediaID      string `json:"media_id"`
	Playing      bool   `json:"playing"`
}

// ChatRelayedPayload is published after a chat message was relayed.
// The text itself is not forwarded.
type ChatRelayedPayload struct {
	ConnectionID string `json:"connection_id"`
	Sender       string `json:"sender"`
	TextLength   int    `json:"text_length"`
	Recipients   int    `json:"recipients"`
}

// RoomPresencePayload is published when a room gains its first participant
// or loses its last one.
type RoomPresencePayload struct {
	Participants int `json:"participants"`
}
