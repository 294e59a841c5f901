package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/weiawesome/wes-io-live/watchparty/internal/config"
	"github.com/weiawesome/wes-io-live/watchparty/internal/domain"
	"github.com/weiawesome/wes-io-live/watchparty/internal/hub"
	"github.com/weiawesome/wes-io-live/watchparty/internal/service"
	"github.com/weiawesome/wes-io-live/watchparty/internal/store"
	"github.com/weiawesome/wes-io-live/watchparty/pkg/log"
	"github.com/weiawesome/wes-io-live/watchparty/pkg/response"
)

const roomIDRule = "required,alphanum,max=64"

type dispatchFunc func(ctx context.Context, client *hub.Client, message []byte) error

// WSHandler is the transport gateway. It upgrades connections, hands them
// to the hub and routes inbound frames by their type.
type WSHandler struct {
	hub         *hub.Hub
	service     service.WatchPartyService
	wsCfg       config.WebSocketConfig
	defaultRoom string
	upgrader    websocket.Upgrader
	validate    *validator.Validate
	dispatch    map[string]dispatchFunc
}

func NewWSHandler(h *hub.Hub, svc service.WatchPartyService, wsCfg config.WebSocketConfig, defaultRoom string) *WSHandler {
	handler := &WSHandler{
		hub:         h,
		service:     svc,
		wsCfg:       wsCfg,
		defaultRoom: defaultRoom,
		validate:    validator.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(wsCfg.AllowedOrigin),
		},
	}
	handler.dispatch = map[string]dispatchFunc{
		domain.MsgTypeSyncIntent:  handler.handleSyncIntent,
		domain.MsgTypeChatMessage: handler.handleChatMessage,
		domain.MsgTypePing:        handler.handlePing,
	}
	return handler
}

// checkOrigin accepts requests without an Origin header (non-browser
// clients) and requests whose Origin equals allowed.
func checkOrigin(allowed string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if allowed == "*" {
			return true
		}
		origin := r.Header.Get("Origin")
		return origin == "" || origin == allowed
	}
}

func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	l := log.Ctx(c.Request.Context())

	roomID := c.Param("roomID")
	if roomID == "" {
		roomID = h.defaultRoom
	}
	if err := h.validate.Var(roomID, roomIDRule); err != nil {
		response.BadRequest(c, "invalid room id")
		return
	}
	if err := h.service.OpenRoom(roomID); err != nil {
		if errors.Is(err, store.ErrRoomLimit) {
			l.Warn().Str(log.FieldRoomID, roomID).Msg("room limit reached")
			response.ServiceUnavailable(c, "ROOM_LIMIT_REACHED", "no more rooms can be opened")
			return
		}
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to open room")
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to open room")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), roomID, h.hub, conn, h.wsCfg)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

// OnConnect runs on the hub goroutine.
func (h *WSHandler) OnConnect(client *hub.Client) {
	ctx := connectionContext(client)
	if err := h.service.HandleConnect(ctx, client); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("failed to send initial state")
	}
}

// OnDisconnect runs on the hub goroutine.
func (h *WSHandler) OnDisconnect(client *hub.Client) {
	ctx := connectionContext(client)
	if err := h.service.HandleDisconnect(ctx, client); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("disconnect handling failed")
	}
}

// OnMessage runs on the hub goroutine. Frames that are not JSON or carry an
// unknown type are ignored.
func (h *WSHandler) OnMessage(client *hub.Client, message []byte) {
	ctx := connectionContext(client)
	l := log.Ctx(ctx)

	var base domain.BaseMessage
	if err := json.Unmarshal(message, &base); err != nil {
		l.Debug().Err(err).Msg("ignoring malformed frame")
		return
	}

	fn, ok := h.dispatch[base.Type]
	if !ok {
		l.Debug().Str(log.FieldEvent, base.Type).Msg("ignoring unknown event")
		return
	}

	if err := fn(ctx, client, message); err != nil {
		l.Debug().Err(err).Str(log.FieldEvent, base.Type).Msg("event not handled")
	}
}

func (h *WSHandler) handleSyncIntent(ctx context.Context, client *hub.Client, message []byte) error {
	var msg domain.SyncIntentMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return err
	}
	intent, err := msg.Intent()
	if err != nil {
		return err
	}
	return h.service.HandleSyncIntent(ctx, client, intent)
}

func (h *WSHandler) handleChatMessage(ctx context.Context, client *hub.Client, message []byte) error {
	var msg domain.ChatMessageWS
	if err := json.Unmarshal(message, &msg); err != nil {
		return err
	}
	return h.service.HandleChatMessage(ctx, client, domain.ChatMessage{Sender: msg.Sender, Text: msg.Text})
}

func (h *WSHandler) handlePing(_ context.Context, client *hub.Client, _ []byte) error {
	return client.SendMessage(&domain.PongMessage{Type: domain.MsgTypePong})
}

func connectionContext(client *hub.Client) context.Context {
	return log.WithConnection(context.Background(), client.ID(), client.Room())
}

// RegisterRoutes mounts the websocket endpoints behind the given guards,
// e.g. the access gate.
func (h *WSHandler) RegisterRoutes(r gin.IRouter, guards ...gin.HandlerFunc) {
	ws := r.Group("/ws", guards...)
	{
		ws.GET("", h.HandleWebSocket)
		ws.GET("/:roomID", h.HandleWebSocket)
	}
}
