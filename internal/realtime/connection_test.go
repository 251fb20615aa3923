package realtime

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// dialTestConn spins up a WebSocket server that wraps the accepted socket
// in a Conn, and returns both ends. startPump controls whether the server
// side drains its send queue.
func dialTestConn(t *testing.T, startPump bool) (*Conn, *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	connCh := make(chan *Conn, 1)
	hold := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sock, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewConn(sock, "r1", "u1", zerolog.Nop())
		if startPump {
			go c.WritePump()
		}
		connCh <- c
		<-hold
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(hold) })

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	select {
	case c := <-connCh:
		return c, client
	case <-time.After(2 * time.Second):
		t.Fatalf("server never accepted the connection")
		return nil, nil
	}
}

func TestConn_DeliverReachesThePeer(t *testing.T) {
	conn, client := dialTestConn(t, true)

	if err := conn.Deliver([]byte(`{"type":"message"}`)); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("client read: %v", err)
	}
	if string(data) != `{"type":"message"}` {
		t.Fatalf("unexpected frame: %s", data)
	}
}

func TestConn_DeliverAfterCloseFails(t *testing.T) {
	conn, _ := dialTestConn(t, true)

	conn.Close()
	if err := conn.Deliver([]byte("x")); !errors.Is(err, ErrConnClosed) {
		t.Fatalf("expected ErrConnClosed, got %v", err)
	}
}

func TestConn_CloseIsIdempotent(t *testing.T) {
	conn, _ := dialTestConn(t, true)

	conn.Close()
	conn.Close()

	select {
	case <-conn.Done():
	default:
		t.Fatalf("done channel not closed")
	}
}

func TestConn_FullQueueDropsTheConnection(t *testing.T) {
	// no write pump: the send queue fills up and Deliver must give up
	// rather than block the caller.
	conn, _ := dialTestConn(t, false)

	var failed bool
	for i := 0; i < sendBuffer+1; i++ {
		if err := conn.Deliver([]byte("x")); err != nil {
			failed = true
			break
		}
	}
	if !failed {
		t.Fatalf("expected a delivery to fail once the queue filled")
	}

	select {
	case <-conn.Done():
	case <-time.After(time.Second):
		t.Fatalf("overflowing the queue should close the connection")
	}
}

func TestConn_PeerDisconnectEndsReadLoop(t *testing.T) {
	conn, client := dialTestConn(t, true)

	done := make(chan struct{})
	go func() {
		conn.ReadLoop(nil, nil)
		close(done)
	}()

	_ = client.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("read loop did not end on peer disconnect")
	}

	if err := conn.Deliver([]byte("x")); !errors.Is(err, ErrConnClosed) {
		t.Fatalf("expected ErrConnClosed after disconnect, got %v", err)
	}
}

func TestConn_ReadLoopHandsOverTextFrames(t *testing.T) {
	conn, client := dialTestConn(t, true)

	frames := make(chan []byte, 1)
	go conn.ReadLoop(func(data []byte) { frames <- data }, nil)

	if err := client.WriteMessage(websocket.TextMessage, []byte("ping!")); err != nil {
		t.Fatalf("client write: %v", err)
	}

	select {
	case data := <-frames:
		if string(data) != "ping!" {
			t.Fatalf("unexpected frame: %s", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("text frame never surfaced")
	}
}
