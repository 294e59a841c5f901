package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/weiawesome/wes-io-live/watchparty/internal/registry"
	"github.com/weiawesome/wes-io-live/watchparty/internal/service"
	"github.com/weiawesome/wes-io-live/watchparty/pkg/log"
	"github.com/weiawesome/wes-io-live/watchparty/pkg/response"
)

// RoomLister lists rooms with connected participants. *hub.Hub satisfies it.
type RoomLister interface {
	Rooms() []string
}

type HTTPHandler struct {
	service  service.WatchPartyService
	rooms    RoomLister
	registry registry.Registry
}

func NewHTTPHandler(svc service.WatchPartyService, rooms RoomLister, reg registry.Registry) *HTTPHandler {
	return &HTTPHandler{
		service:  svc,
		rooms:    rooms,
		registry: reg,
	}
}

// ActiveRoomsResponse lists the rooms served by this instance.
type ActiveRoomsResponse struct {
	Rooms []string `json:"rooms"`
}

// RoomInstanceResponse names the instance advertising a room.
type RoomInstanceResponse struct {
	RoomID  string `json:"room_id"`
	Address string `json:"address"`
}

func (h *HTTPHandler) ListRooms(c *gin.Context) {
	response.Success(c, ActiveRoomsResponse{Rooms: h.rooms.Rooms()})
}

// GetRoomState serves a read-only snapshot of a room.
func (h *HTTPHandler) GetRoomState(c *gin.Context) {
	snapshot, ok := h.service.Snapshot(c.Param("roomID"))
	if !ok {
		response.NotFound(c, "room not found")
		return
	}
	response.Success(c, snapshot)
}

// GetRoomInstance resolves which instance currently hosts a room.
func (h *HTTPHandler) GetRoomInstance(c *gin.Context) {
	ctx := c.Request.Context()
	roomID := c.Param("roomID")

	addr, err := h.registry.Lookup(ctx, roomID)
	if errors.Is(err, registry.ErrRoomNotFound) {
		response.NotFound(c, "room not registered")
		return
	}
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("room lookup failed")
		response.Error(c, http.StatusBadGateway, "REGISTRY_UNAVAILABLE", "room registry unavailable")
		return
	}
	response.Success(c, RoomInstanceResponse{RoomID: roomID, Address: addr})
}

func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HTTPHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Health)

	rooms := r.Group("/rooms")
	{
		rooms.GET("", h.ListRooms)
		rooms.GET("/:roomID/state", h.GetRoomState)
		rooms.GET("/:roomID/instance", h.GetRoomInstance)
	}
}
