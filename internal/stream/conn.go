package stream

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Conn is a single WebSocket connection to the stream endpoint. The stream
// is server-push only; there is no subscription handshake to send.
type Conn interface {
	// Connect establishes the WebSocket connection.
	Connect(ctx context.Context) error

	// Close gracefully closes the connection. Safe to call more than once.
	Close() error

	// Messages returns the channel of raw inbound messages.
	Messages() <-chan Message

	// Errors returns the channel of connection errors. At most one error
	// is delivered per connection.
	Errors() <-chan error

	// IsConnected returns the current connection state.
	IsConnected() bool
}

// ConnFactory builds a fresh Conn for each connection attempt.
type ConnFactory func() Conn

// Dialer returns a ConnFactory producing gorilla/websocket-backed
// connections with the given configuration.
func Dialer(cfg ConnConfig, logger *slog.Logger) ConnFactory {
	return func() Conn {
		return NewConn(cfg, logger)
	}
}

// StreamURL derives the WebSocket endpoint from the REST base URL by scheme
// substitution plus the /ws path. Query and fragment are discarded.
func StreamURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
		// Already a stream URL.
	default:
		return "", fmt.Errorf("unsupported scheme %q in base url %q", u.Scheme, baseURL)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = ""
	u.Fragment = ""

	return u.String(), nil
}

// wsConn implements Conn over gorilla/websocket.
type wsConn struct {
	cfg    ConnConfig
	logger *slog.Logger

	conn *websocket.Conn

	messages chan Message
	errors   chan error
	done     chan struct{}

	mu         sync.RWMutex
	connected  bool
	closed     bool
	lastSeenAt time.Time
}

// NewConn creates a single-use WebSocket connection. Each Conn carries a
// connection id in its log fields for correlation across reconnects.
func NewConn(cfg ConnConfig, logger *slog.Logger) Conn {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	return &wsConn{
		cfg:      cfg,
		logger:   logger.With("conn_id", uuid.NewString()),
		messages: make(chan Message, cfg.BufferSize),
		errors:   make(chan error, 1),
		done:     make(chan struct{}),
	}
}

// Connect establishes the WebSocket connection.
func (c *wsConn) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrAlreadyClosed
	}
	c.mu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.lastSeenAt = time.Now()
	c.mu.Unlock()

	// Server pings get a pong back; both directions refresh liveness.
	conn.SetPingHandler(func(data string) error {
		c.touch()
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(data),
			time.Now().Add(c.cfg.WriteTimeout),
		)
	})
	conn.SetPongHandler(func(string) error {
		c.touch()
		return nil
	})

	go c.readLoop()
	go c.keepaliveLoop()

	c.logger.Debug("websocket connected", "url", c.cfg.URL)

	return nil
}

// Close gracefully closes the connection.
func (c *wsConn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.connected = false
	c.mu.Unlock()

	close(c.done)

	if c.conn != nil {
		c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(c.cfg.WriteTimeout),
		)
		return c.conn.Close()
	}

	return nil
}

// Messages returns the messages channel.
func (c *wsConn) Messages() <-chan Message {
	return c.messages
}

// Errors returns the errors channel.
func (c *wsConn) Errors() <-chan error {
	return c.errors
}

// IsConnected returns the current connection state.
func (c *wsConn) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *wsConn) touch() {
	c.mu.Lock()
	c.lastSeenAt = time.Now()
	c.mu.Unlock()
}

// readLoop reads frames from the WebSocket into the messages channel.
func (c *wsConn) readLoop() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
	}()

	for {
		select {
		case <-c.done:
			return
		default:
		}

		_, data, err := c.conn.ReadMessage()
		receivedAt := time.Now()

		if err != nil {
			// Errors after Close() are expected teardown noise.
			select {
			case <-c.done:
				return
			default:
				select {
				case c.errors <- err:
				default:
				}
				return
			}
		}

		msg := Message{
			Data:       data,
			ReceivedAt: receivedAt,
		}

		select {
		case c.messages <- msg:
		case <-c.done:
			return
		default:
			c.logger.Warn("message buffer full, dropping message")
		}
	}
}

// keepaliveLoop sends periodic pings and flags stale connections.
func (c *wsConn) keepaliveLoop() {
	ticker := time.NewTicker(c.cfg.KeepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.RLock()
			conn := c.conn
			lastSeen := c.lastSeenAt
			c.mu.RUnlock()

			if conn != nil {
				deadline := time.Now().Add(c.cfg.WriteTimeout)
				if err := conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
					c.logger.Debug("failed to send ping", "error", err)
				}
			}

			if time.Since(lastSeen) > c.cfg.StaleTimeout {
				c.logger.Warn("connection stale, no pong received",
					"last_seen", lastSeen,
					"timeout", c.cfg.StaleTimeout,
				)
				select {
				case c.errors <- ErrStaleConnection:
				default:
				}
				return
			}
		}
	}
}
