package hub

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/weiawesome/wes-io-live/watchparty/internal/config"
	"github.com/weiawesome/wes-io-live/watchparty/internal/domain"
	"github.com/weiawesome/wes-io-live/watchparty/pkg/log"
)

// ErrSendBufferFull is returned when a client is not draining its queue.
var ErrSendBufferFull = errors.New("send buffer full")

type Client struct {
	id          string
	room        string
	Hub         *Hub
	Conn        *websocket.Conn
	Send        chan []byte
	Participant *domain.Participant
	config      config.WebSocketConfig
}

func NewClient(id, roomID string, hub *Hub, conn *websocket.Conn, cfg config.WebSocketConfig) *Client {
	buffer := cfg.SendBuffer
	if buffer <= 0 {
		buffer = 256
	}
	return &Client{
		id:          id,
		room:        roomID,
		Hub:         hub,
		Conn:        conn,
		Send:        make(chan []byte, buffer),
		Participant: domain.NewParticipant(id, roomID),
		config:      cfg,
	}
}

// ID returns the connection ID.
func (c *Client) ID() string {
	return c.id
}

// Room returns the room the client joined on connect.
func (c *Client) Room() string {
	return c.room
}

// ReadPump forwards every frame to the hub event loop and unregisters the
// client when the connection ends.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				l := log.L()
				l.Warn().Err(err).Str(log.FieldConnectionID, c.id).Msg("websocket read error")
			}
			return
		}

		c.Participant.UpdateActivity()

		if !c.Hub.Dispatch(c, message) {
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage queues message for this client without blocking.
func (c *Client) SendMessage(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return c.trySend(data)
}

func (c *Client) trySend(data []byte) error {
	select {
	case c.Send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}
