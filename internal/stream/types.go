package stream

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dynamolabs/oracle-alpha/internal/model"
)

// Errors
var (
	ErrAlreadyClosed     = errors.New("connection already closed")
	ErrStaleConnection   = errors.New("connection stale (no pong)")
	ErrAlreadyStarted    = errors.New("subscriber already started")
	ErrSubscriberStopped = errors.New("subscriber stopped")
)

// Message types carried in the envelope's type field.
const (
	MessageTypeSignal  = "signal"
	MessageTypeHistory = "history"
)

// Reconnect reasons, as reported to metrics.
const (
	ReasonClosed = "closed"
	ReasonError  = "error"
)

// Message wraps raw frame data with its receive timestamp.
type Message struct {
	Data       []byte    // Raw message bytes from the WebSocket
	ReceivedAt time.Time // Local timestamp when the read returned
}

// envelope is the wire frame for every stream message.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Handler receives dispatched stream events.
//
// HandleSignal is invoked once per signal message, in arrival order, from a
// single goroutine. HandleHistory receives only the batch size; historical
// entries are not dispatched individually. Unrecognized message types never
// reach the handler.
type Handler interface {
	HandleSignal(ctx context.Context, sig model.Signal)
	HandleHistory(ctx context.Context, count int)
}

// HandlerFuncs adapts plain functions to the Handler interface.
// Nil fields are no-ops.
type HandlerFuncs struct {
	OnSignal  func(ctx context.Context, sig model.Signal)
	OnHistory func(ctx context.Context, count int)
}

func (h HandlerFuncs) HandleSignal(ctx context.Context, sig model.Signal) {
	if h.OnSignal != nil {
		h.OnSignal(ctx, sig)
	}
}

func (h HandlerFuncs) HandleHistory(ctx context.Context, count int) {
	if h.OnHistory != nil {
		h.OnHistory(ctx, count)
	}
}

// StreamMetrics receives subscriber lifecycle observations.
// Implementations must be safe for concurrent use.
type StreamMetrics interface {
	RecordConnect()
	RecordReconnect(reason string)
	RecordMessage(msgType string)
	SetConnected(connected bool)
}

// ConnConfig configures a single WebSocket connection.
type ConnConfig struct {
	URL               string        // Stream URL (e.g., ws://localhost:3900/ws)
	HandshakeTimeout  time.Duration // Dial handshake deadline
	WriteTimeout      time.Duration // Deadline for control frame writes
	KeepaliveInterval time.Duration // Interval between keepalive pings
	StaleTimeout      time.Duration // Max silence before the connection is declared stale
	BufferSize        int           // Message channel buffer size
}

// DefaultConnConfig returns sensible defaults (URL must still be set).
func DefaultConnConfig() ConnConfig {
	return ConnConfig{
		HandshakeTimeout:  10 * time.Second,
		WriteTimeout:      5 * time.Second,
		KeepaliveInterval: 30 * time.Second,
		StaleTimeout:      90 * time.Second,
		BufferSize:        256,
	}
}

func (c *ConnConfig) applyDefaults() {
	def := DefaultConnConfig()
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = def.HandshakeTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.KeepaliveInterval <= 0 {
		c.KeepaliveInterval = def.KeepaliveInterval
	}
	if c.StaleTimeout <= 0 {
		c.StaleTimeout = def.StaleTimeout
	}
	if c.BufferSize <= 0 {
		c.BufferSize = def.BufferSize
	}
}

// Reconnect delay contract. The two tiers are fixed, unconditional delays:
// no backoff, no jitter, no attempt cap.
const (
	DefaultCloseRetryDelay = 2 * time.Second
	DefaultErrorRetryDelay = 5 * time.Second
)

// SubscriberConfig configures a Subscriber.
type SubscriberConfig struct {
	CloseRetryDelay time.Duration // Wait after an orderly close before redialing
	ErrorRetryDelay time.Duration // Wait after any other failure before redialing
	Metrics         StreamMetrics // Optional metrics sink
}

// DefaultSubscriberConfig returns the contract delays.
func DefaultSubscriberConfig() SubscriberConfig {
	return SubscriberConfig{
		CloseRetryDelay: DefaultCloseRetryDelay,
		ErrorRetryDelay: DefaultErrorRetryDelay,
	}
}

func (c *SubscriberConfig) applyDefaults() {
	if c.CloseRetryDelay <= 0 {
		c.CloseRetryDelay = DefaultCloseRetryDelay
	}
	if c.ErrorRetryDelay <= 0 {
		c.ErrorRetryDelay = DefaultErrorRetryDelay
	}
}

// SubscriberStats is a point-in-time snapshot of subscriber counters.
type SubscriberStats struct {
	Connects       int64 // Successful connection attempts
	ClosedRetries  int64 // Reconnects triggered by an orderly close
	ErrorRetries   int64 // Reconnects triggered by any other failure
	Signals        int64 // Signal messages dispatched to the handler
	HistoryBatches int64 // History messages reported (count only)
	HistorySignals int64 // Total entries across history batches
	Unknown        int64 // Messages with unrecognized types (ignored)
	Malformed      int64 // Messages that failed to decode (ignored)
}

// closeReason classifies why a connection attempt ended.
type closeReason int

const (
	reasonStopped closeReason = iota // Explicit stop; no reconnect
	reasonClosed                     // Orderly close frame; short delay
	reasonError                      // Anything else; longer delay
)
