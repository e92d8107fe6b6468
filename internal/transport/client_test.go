package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu          sync.Mutex
	messages    []string
	connects    int
	disconnects []error

	connected chan struct{}
	received  chan string
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		connected: make(chan struct{}, 8),
		received:  make(chan string, 8),
	}
}

func (h *recordingHandler) OnMessage(data []byte) {
	h.mu.Lock()
	h.messages = append(h.messages, string(data))
	h.mu.Unlock()
	h.received <- string(data)
}

func (h *recordingHandler) OnConnect() {
	h.mu.Lock()
	h.connects++
	h.mu.Unlock()
	h.connected <- struct{}{}
}

func (h *recordingHandler) OnDisconnect(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disconnects = append(h.disconnects, err)
}

func (h *recordingHandler) connectCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connects
}

// echoServer echoes every text frame. When dropFirst is set the first
// connection is closed right after the upgrade.
func echoServer(t *testing.T, dropFirst bool) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var accepted atomic.Int32
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if n := accepted.Add(1); dropFirst && n == 1 {
			return
		}
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &accepted
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitConnected(t *testing.T, h *recordingHandler) {
	t.Helper()
	select {
	case <-h.connected:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for connection")
	}
}

func TestClient_SendBeforeConnect(t *testing.T) {
	c := New("ws://127.0.0.1:1/ws", newRecordingHandler(), Options{})
	assert.ErrorIs(t, c.Send([]byte("hi")), ErrNotConnected)
	assert.False(t, c.Connected())
	c.Close()
}

func TestClient_SendAndReceive(t *testing.T) {
	srv, _ := echoServer(t, false)
	h := newRecordingHandler()
	c := New(wsURL(srv), h, Options{ReconnectDelay: 10 * time.Millisecond})
	c.Start(context.Background())
	defer c.Close()

	waitConnected(t, h)
	assert.True(t, c.Connected())
	require.NoError(t, c.Send([]byte(`{"type":"MT_RequestLogin"}`)))

	select {
	case msg := <-h.received:
		assert.Equal(t, `{"type":"MT_RequestLogin"}`, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for echo")
	}
}

func TestClient_StartIsIdempotent(t *testing.T) {
	srv, accepted := echoServer(t, false)
	h := newRecordingHandler()
	c := New(wsURL(srv), h, Options{ReconnectDelay: 10 * time.Millisecond})
	c.Start(context.Background())
	c.Start(context.Background())
	defer c.Close()

	waitConnected(t, h)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), accepted.Load())
	assert.Equal(t, 1, h.connectCount())
}

func TestClient_ReconnectsAfterDrop(t *testing.T) {
	srv, accepted := echoServer(t, true)
	h := newRecordingHandler()
	c := New(wsURL(srv), h, Options{ReconnectDelay: 10 * time.Millisecond})
	c.Start(context.Background())
	defer c.Close()

	waitConnected(t, h)
	waitConnected(t, h)
	assert.GreaterOrEqual(t, accepted.Load(), int32(2))

	h.mu.Lock()
	defer h.mu.Unlock()
	require.NotEmpty(t, h.disconnects)
	assert.Error(t, h.disconnects[0])
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := wsURL(srv)
	srv.Close()

	h := newRecordingHandler()
	c := New(url, h, Options{ReconnectDelay: 5 * time.Millisecond, MaxRetries: 3})
	c.Start(context.Background())

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("client kept retrying")
	}
	assert.ErrorIs(t, c.Err(), ErrMaxRetries)

	h.mu.Lock()
	assert.Len(t, h.disconnects, 1)
	h.mu.Unlock()
	c.Close()
}

func TestClient_ReportsOutageOnce(t *testing.T) {
	conns := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	url := wsURL(srv)

	h := newRecordingHandler()
	c := New(url, h, Options{ReconnectDelay: 20 * time.Millisecond, MaxRetries: 2})
	c.Start(context.Background())
	defer c.Close()
	waitConnected(t, h)

	// Backend goes away: the live session drops and every redial fails
	srv.Close()
	(<-conns).Close()

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("client kept retrying")
	}
	assert.ErrorIs(t, c.Err(), ErrMaxRetries)

	h.mu.Lock()
	defer h.mu.Unlock()
	assert.Len(t, h.disconnects, 1)
	assert.Equal(t, 1, h.connects)
}

func TestClient_CloseStopsLoop(t *testing.T) {
	srv, _ := echoServer(t, false)
	h := newRecordingHandler()
	c := New(wsURL(srv), h, Options{ReconnectDelay: 10 * time.Millisecond})
	c.Start(context.Background())
	waitConnected(t, h)

	c.Close()
	select {
	case <-c.Done():
	default:
		t.Fatal("Done not closed after Close")
	}
	assert.False(t, c.Connected())
	assert.ErrorIs(t, c.Send([]byte("x")), ErrNotConnected)
	assert.NoError(t, c.Err())

	h.mu.Lock()
	defer h.mu.Unlock()
	require.NotEmpty(t, h.disconnects)
	assert.NoError(t, h.disconnects[len(h.disconnects)-1])
}
