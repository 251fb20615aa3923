package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/chatmind/chat-api/internal/api/metrics"
	"github.com/chatmind/chat-api/internal/realtime"
)

// PresenceRecorder marks users online and offline as their sockets come
// and go. Implemented by the Redis presence tracker; nil disables presence.
type PresenceRecorder interface {
	Heartbeat(ctx context.Context, userID string) error
	Offline(ctx context.Context, userID string) error
}

// WSHandler upgrades HTTP requests to WebSocket connections and wires each
// one into the room registry for the lifetime of the socket.
type WSHandler struct {
	registry *realtime.Registry
	presence PresenceRecorder
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWSHandler(registry *realtime.Registry, presence PresenceRecorder, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		registry: registry,
		presence: presence,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// Serve handles GET /ws/rooms/:id?user_id=.
//
// The connection is subscribed to the room for its whole lifetime; room
// membership is not authenticated here. Inbound text frames are echoed
// back to the sender only; new messages enter through POST /messages and
// reach the socket via fan-out.
func (h *WSHandler) Serve(c echo.Context) error {
	roomID := c.Param("id")
	if roomID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing room id")
	}
	userID := c.QueryParam("user_id")

	sock, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written its error response.
		h.log.Warn().Err(err).Str("room_id", roomID).Msg("websocket upgrade failed")
		return nil
	}

	conn := realtime.NewConn(sock, roomID, userID, h.log)
	h.registry.Subscribe(roomID, conn)
	metrics.ConnectionsActive.Inc()
	metrics.RoomsActive.Set(float64(h.registry.Rooms()))

	h.log.Info().
		Str("conn_id", conn.ID()).
		Str("room_id", roomID).
		Str("user_id", userID).
		Msg("connection subscribed")

	h.markOnline(userID)

	go conn.WritePump()
	conn.ReadLoop(
		func(data []byte) { h.echo(conn, data) },
		func() { h.markOnline(userID) },
	)

	// Read loop has ended: the peer is gone or errored. Unregister before
	// releasing the handle so no further deliveries target it.
	h.registry.Unsubscribe(roomID, conn.ID())
	conn.Close()
	metrics.ConnectionsActive.Dec()
	metrics.RoomsActive.Set(float64(h.registry.Rooms()))
	h.markOffline(userID)

	h.log.Info().
		Str("conn_id", conn.ID()).
		Str("room_id", roomID).
		Msg("connection closed")
	return nil
}

// echo reflects an inbound frame back to its sender, wrapped in the echo
// envelope. Delivery failure here just means the connection is going away.
func (h *WSHandler) echo(conn *realtime.Conn, data []byte) {
	payload, err := json.Marshal(realtime.NewEchoEnvelope(string(data)))
	if err != nil {
		return
	}
	_ = conn.Deliver(payload)
}

func (h *WSHandler) markOnline(userID string) {
	if h.presence == nil || userID == "" {
		return
	}
	if err := h.presence.Heartbeat(context.Background(), userID); err != nil {
		h.log.Debug().Err(err).Str("user_id", userID).Msg("presence heartbeat failed")
	}
}

func (h *WSHandler) markOffline(userID string) {
	if h.presence == nil || userID == "" {
		return
	}
	if err := h.presence.Offline(context.Background(), userID); err != nil {
		h.log.Debug().Err(err).Str("user_id", userID).Msg("presence offline failed")
	}
}
