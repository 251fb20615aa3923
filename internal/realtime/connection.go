package realtime

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/chatmind/chat-api/internal/api/metrics"
)

const (
	// writeWait bounds a single socket write. A peer that cannot accept a
	// frame within this window is treated as gone.
	writeWait = 10 * time.Second

	// pongWait is how long the read loop tolerates silence before the
	// connection is considered dead. Pings go out at a third of it.
	pongWait     = 60 * time.Second
	pingInterval = pongWait / 3

	maxFrameSize = 1 << 20

	// sendBuffer is the outbound queue depth per connection. A full buffer
	// marks the subscriber as too slow and the connection is torn down.
	sendBuffer = 64
)

// ErrConnClosed is returned by Deliver once the connection has left the
// open state or its outbound queue overflowed.
var ErrConnClosed = errors.New("connection closed")

// Connection lifecycle states. A connection moves Open → Closing → Closed
// exactly once; Closed is terminal.
const (
	stateOpen int32 = iota
	stateClosing
	stateClosed
)

// Conn wraps one live WebSocket. It owns the underlying socket exclusively:
// all writes funnel through the send queue and a single WritePump, so no
// two goroutines ever write the transport concurrently.
type Conn struct {
	id     string
	roomID string
	userID string

	sock  *websocket.Conn
	send  chan []byte
	done  chan struct{}
	state atomic.Int32

	closeOnce sync.Once
	log       zerolog.Logger
}

// NewConn wraps an accepted WebSocket in a handle subscribed to roomID.
// userID may be empty when the client did not identify itself.
func NewConn(sock *websocket.Conn, roomID, userID string, log zerolog.Logger) *Conn {
	c := &Conn{
		id:     uuid.NewString(),
		roomID: roomID,
		userID: userID,
		sock:   sock,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		log:    log,
	}
	c.state.Store(stateOpen)
	return c
}

func (c *Conn) ID() string     { return c.id }
func (c *Conn) RoomID() string { return c.roomID }
func (c *Conn) UserID() string { return c.userID }

// Done is closed when the connection begins shutting down.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Deliver enqueues payload for the write pump. It never blocks: when the
// connection is not open, or the outbound queue is full, the payload is
// discarded, the connection is torn down, and ErrConnClosed is returned.
// One broken or slow subscriber must never stall its publisher.
func (c *Conn) Deliver(payload []byte) error {
	if c.state.Load() != stateOpen {
		return ErrConnClosed
	}
	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return ErrConnClosed
	default:
		c.log.Warn().Str("conn_id", c.id).Str("room_id", c.roomID).Msg("send queue full, dropping connection")
		c.Close()
		return ErrConnClosed
	}
}

// Close tears the connection down. Idempotent and safe to call from any
// goroutine, on every exit path: it signals the pumps, sends a best-effort
// close frame, and releases the socket.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		c.state.Store(stateClosing)
		close(c.done)
		deadline := time.Now().Add(writeWait)
		_ = c.sock.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = c.sock.Close()
		c.state.Store(stateClosed)
	})
}

// WritePump drains the send queue onto the socket and keeps the peer alive
// with periodic pings. It is the sole writer of the transport and exits
// when the connection closes or a write fails. Run it in its own goroutine.
func (c *Conn) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.TextMessage, payload); err != nil {
				metrics.DeliveriesTotal.WithLabelValues("failed").Inc()
				c.log.Debug().Err(err).Str("conn_id", c.id).Str("room_id", c.roomID).Msg("socket write failed")
				return
			}
			metrics.DeliveriesTotal.WithLabelValues("ok").Inc()
		case <-ticker.C:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadLoop consumes inbound frames until the peer disconnects or times
// out. Each text frame is handed to onText; every pong refreshes the read
// deadline and fires onPong (used for presence heartbeats). Either callback
// may be nil. The loop blocks the calling goroutine and closes the
// connection on exit.
func (c *Conn) ReadLoop(onText func(data []byte), onPong func()) {
	defer c.Close()

	c.sock.SetReadLimit(maxFrameSize)
	_ = c.sock.SetReadDeadline(time.Now().Add(pongWait))
	c.sock.SetPongHandler(func(string) error {
		_ = c.sock.SetReadDeadline(time.Now().Add(pongWait))
		if onPong != nil {
			onPong()
		}
		return nil
	})

	for {
		msgType, data, err := c.sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug().Err(err).Str("conn_id", c.id).Str("room_id", c.roomID).Msg("socket read failed")
			}
			return
		}
		if msgType == websocket.TextMessage && onText != nil {
			onText(data)
		}
	}
}
