package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Rorical/tunneldesk/pkg/logging"
	"github.com/gorilla/websocket"
)

const subsystem = "transport"

var (
	// ErrNotConnected is returned by Send when no live socket exists
	ErrNotConnected = errors.New("not connected to backend")
	// ErrSendBufferFull is returned by Send when the write pump is backed up
	ErrSendBufferFull = errors.New("send buffer full")
	// ErrMaxRetries is returned by Err after the client gave up reconnecting
	ErrMaxRetries = errors.New("max retries exceeded")
)

// Handler receives socket traffic and lifecycle changes. OnMessage is called
// from the read goroutine, in delivery order.
type Handler interface {
	OnMessage(data []byte)
	OnConnect()
	OnDisconnect(err error)
}

type Options struct {
	ReconnectDelay time.Duration
	MaxRetries     int // consecutive failures before giving up, 0 retries forever
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	SendBuffer     int
	Dialer         *websocket.Dialer
}

func DefaultOptions() Options {
	return Options{
		ReconnectDelay: 3 * time.Second,
		PingInterval:   30 * time.Second,
		WriteTimeout:   10 * time.Second,
		SendBuffer:     256,
		Dialer:         websocket.DefaultDialer,
	}
}

// Client keeps one WebSocket open to the backend, redialing when it drops
type Client struct {
	url     string
	handler Handler
	opts    Options

	mu      sync.Mutex
	conn    *websocket.Conn
	send    chan []byte
	started bool
	cancel  context.CancelFunc
	err     error

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a client for url. Zero option fields fall back to DefaultOptions.
func New(url string, handler Handler, opts Options) *Client {
	def := DefaultOptions()
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = def.ReconnectDelay
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = def.PingInterval
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = def.WriteTimeout
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = def.SendBuffer
	}
	if opts.Dialer == nil {
		opts.Dialer = def.Dialer
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	return &Client{
		url:     url,
		handler: handler,
		opts:    opts,
		done:    make(chan struct{}),
	}
}

// Start launches the connection loop. Later calls are no-ops.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return
	}
	c.started = true

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	go c.run(ctx)
}

// Send queues data for the write pump
func (c *Client) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.send == nil {
		return ErrNotConnected
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Connected reports whether a socket is currently open
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Done is closed once the connection loop has exited
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns why the connection loop exited, nil after Close
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close stops the connection loop and closes the socket
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		started := c.started
		c.started = true
		cancel := c.cancel
		c.mu.Unlock()

		if !started {
			close(c.done)
			return
		}
		cancel()
		<-c.done
	})
}

func (c *Client) run(ctx context.Context) {
	defer close(c.done)

	failures := 0
	// runConnection reports the drop of a live session itself
	reported := false
	for {
		connected, err := c.runConnection(ctx)
		if ctx.Err() != nil {
			logging.Info(subsystem, "Connection loop stopped")
			return
		}

		if connected {
			failures = 0
			reported = true
		} else {
			failures++
			// Only the first failure of an outage is surfaced
			if !reported {
				c.handler.OnDisconnect(err)
				reported = true
			}
		}

		if c.opts.MaxRetries > 0 && failures >= c.opts.MaxRetries {
			logging.Error(subsystem, err, "Giving up after %d failed attempts", failures)
			c.mu.Lock()
			c.err = fmt.Errorf("%w (%d): %v", ErrMaxRetries, failures, err)
			c.mu.Unlock()
			return
		}

		logging.Warn(subsystem, "Reconnecting in %v (attempt %d): %v", c.opts.ReconnectDelay, failures+1, err)
		select {
		case <-time.After(c.opts.ReconnectDelay):
		case <-ctx.Done():
			return
		}
	}
}

// runConnection dials once and pumps until the socket drops. connected
// reports whether the dial succeeded.
func (c *Client) runConnection(ctx context.Context) (connected bool, err error) {
	logging.Debug(subsystem, "Dialing %s", c.url)
	conn, _, err := c.opts.Dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to connect: %w", err)
	}

	send := make(chan []byte, c.opts.SendBuffer)
	c.mu.Lock()
	c.conn = conn
	c.send = send
	c.mu.Unlock()

	logging.Info(subsystem, "Connected to %s", c.url)
	c.handler.OnConnect()

	stop := make(chan struct{})
	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		c.writePump(ctx, conn, send, stop)
	}()

	err = c.readPump(conn)

	c.mu.Lock()
	c.conn = nil
	c.send = nil
	c.mu.Unlock()
	close(stop)
	<-pumpDone
	conn.Close()

	if ctx.Err() != nil {
		err = nil
	}
	logging.Info(subsystem, "Disconnected from %s", c.url)
	c.handler.OnDisconnect(err)
	return true, err
}

func (c *Client) readPump(conn *websocket.Conn) error {
	pongWait := 2 * c.opts.PingInterval
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Error(subsystem, err, "WebSocket read error")
			}
			return fmt.Errorf("connection lost: %w", err)
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))
		c.handler.OnMessage(message)
	}
}

func (c *Client) writePump(ctx context.Context, conn *websocket.Conn, send <-chan []byte, stop <-chan struct{}) {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case message := <-send:
			conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logging.Error(subsystem, err, "WebSocket write error")
				conn.Close()
				return
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.opts.WriteTimeout)); err != nil {
				logging.Warn(subsystem, "Ping failed: %v", err)
				conn.Close()
				return
			}

		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.opts.WriteTimeout))
			// Unblocks the read pump
			conn.Close()
			return

		case <-stop:
			return
		}
	}
}
