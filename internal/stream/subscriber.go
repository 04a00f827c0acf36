package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dynamolabs/oracle-alpha/internal/model"
)

// Subscriber maintains a best-effort live connection to the stream and
// delivers typed events to its handler. One Subscriber runs one logical
// loop; Start spawns it and Stop tears it down.
type Subscriber struct {
	cfg     SubscriberConfig
	factory ConnFactory
	handler Handler
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	connMu  sync.Mutex
	current Conn

	started atomic.Bool
	stopped atomic.Bool

	// Counters, snapshotted by Stats.
	connects       atomic.Int64
	closedRetries  atomic.Int64
	errorRetries   atomic.Int64
	signals        atomic.Int64
	historyBatches atomic.Int64
	historySignals atomic.Int64
	unknown        atomic.Int64
	malformed      atomic.Int64
}

// NewSubscriber creates a Subscriber. The handler is required: there is no
// implicit default, so dispatch behavior is always explicit and injectable.
func NewSubscriber(cfg SubscriberConfig, factory ConnFactory, handler Handler, logger *slog.Logger) (*Subscriber, error) {
	if factory == nil {
		return nil, fmt.Errorf("conn factory is required")
	}
	if handler == nil {
		return nil, fmt.Errorf("handler is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg.applyDefaults()

	return &Subscriber{
		cfg:     cfg,
		factory: factory,
		handler: handler,
		logger:  logger,
	}, nil
}

// Start launches the subscribe loop. It returns an error if the subscriber
// is already running or was stopped; a Subscriber is single-use.
func (s *Subscriber) Start(ctx context.Context) error {
	if s.stopped.Load() {
		return ErrSubscriberStopped
	}
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run()

	s.logger.Info("stream subscriber started",
		"close_retry_delay", s.cfg.CloseRetryDelay,
		"error_retry_delay", s.cfg.ErrorRetryDelay,
	)

	return nil
}

// Stop requests disconnection and waits for the loop to exit, bounded by
// ctx. No reconnect attempt begins once the current one concludes.
func (s *Subscriber) Stop(ctx context.Context) error {
	if !s.started.Load() || !s.stopped.CompareAndSwap(false, true) {
		return nil
	}

	s.cancel()

	// Unblock a read in progress; the loop observes cancellation next.
	s.connMu.Lock()
	current := s.current
	s.connMu.Unlock()
	if current != nil {
		current.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("stream subscriber shutdown timeout")
		return ctx.Err()
	}

	s.logger.Info("stream subscriber stopped")
	return nil
}

// Stats returns a snapshot of subscriber counters.
func (s *Subscriber) Stats() SubscriberStats {
	return SubscriberStats{
		Connects:       s.connects.Load(),
		ClosedRetries:  s.closedRetries.Load(),
		ErrorRetries:   s.errorRetries.Load(),
		Signals:        s.signals.Load(),
		HistoryBatches: s.historyBatches.Load(),
		HistorySignals: s.historySignals.Load(),
		Unknown:        s.unknown.Load(),
		Malformed:      s.malformed.Load(),
	}
}

// run is the reconnect loop: connect, consume until failure, classify the
// failure, wait the tier's fixed delay, repeat. Only explicit stop exits.
func (s *Subscriber) run() {
	defer s.wg.Done()

	for {
		if s.ctx.Err() != nil {
			return
		}

		conn := s.factory()
		s.connMu.Lock()
		s.current = conn
		s.connMu.Unlock()

		if err := conn.Connect(s.ctx); err != nil {
			if s.ctx.Err() != nil {
				return
			}
			s.logger.Warn("stream connect failed", "error", err)
			s.errorRetries.Add(1)
			s.record(func(m StreamMetrics) { m.RecordReconnect(ReasonError) })
			if !s.sleep(s.cfg.ErrorRetryDelay) {
				return
			}
			continue
		}

		s.connects.Add(1)
		s.record(func(m StreamMetrics) {
			m.RecordConnect()
			m.SetConnected(true)
		})
		s.logger.Info("stream connected")

		reason := s.consume(conn)
		conn.Close()
		s.record(func(m StreamMetrics) { m.SetConnected(false) })

		switch reason {
		case reasonStopped:
			return
		case reasonClosed:
			s.closedRetries.Add(1)
			s.record(func(m StreamMetrics) { m.RecordReconnect(ReasonClosed) })
			s.logger.Info("stream closed by server, reconnecting",
				"delay", s.cfg.CloseRetryDelay,
			)
			if !s.sleep(s.cfg.CloseRetryDelay) {
				return
			}
		default:
			s.errorRetries.Add(1)
			s.record(func(m StreamMetrics) { m.RecordReconnect(ReasonError) })
			s.logger.Warn("stream error, reconnecting",
				"delay", s.cfg.ErrorRetryDelay,
			)
			if !s.sleep(s.cfg.ErrorRetryDelay) {
				return
			}
		}
	}
}

// consume dispatches messages from one connection until it dies or the
// subscriber is stopped.
func (s *Subscriber) consume(conn Conn) closeReason {
	for {
		select {
		case <-s.ctx.Done():
			return reasonStopped

		case msg, ok := <-conn.Messages():
			if !ok {
				return reasonError
			}
			s.dispatch(msg.Data)

		case err := <-conn.Errors():
			return reasonForError(err)
		}
	}
}

// reasonForError maps a connection error to a reconnect tier. Only an
// orderly close frame earns the short delay.
func reasonForError(err error) closeReason {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return reasonClosed
	}
	return reasonError
}

// dispatch decodes one envelope and routes it. Malformed and unrecognized
// messages are counted and skipped; they never fail the loop.
func (s *Subscriber) dispatch(data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.malformed.Add(1)
		s.record(func(m StreamMetrics) { m.RecordMessage("malformed") })
		s.logger.Warn("malformed stream message", "error", err)
		return
	}

	switch env.Type {
	case MessageTypeSignal:
		var sig model.Signal
		if err := json.Unmarshal(env.Data, &sig); err != nil {
			s.malformed.Add(1)
			s.record(func(m StreamMetrics) { m.RecordMessage("malformed") })
			s.logger.Warn("malformed signal payload", "error", err)
			return
		}
		s.signals.Add(1)
		s.record(func(m StreamMetrics) { m.RecordMessage(MessageTypeSignal) })
		s.handler.HandleSignal(s.ctx, sig)

	case MessageTypeHistory:
		var entries []json.RawMessage
		if err := json.Unmarshal(env.Data, &entries); err != nil {
			s.malformed.Add(1)
			s.record(func(m StreamMetrics) { m.RecordMessage("malformed") })
			s.logger.Warn("malformed history payload", "error", err)
			return
		}
		s.historyBatches.Add(1)
		s.historySignals.Add(int64(len(entries)))
		s.record(func(m StreamMetrics) { m.RecordMessage(MessageTypeHistory) })
		s.handler.HandleHistory(s.ctx, len(entries))

	default:
		s.unknown.Add(1)
		s.record(func(m StreamMetrics) { m.RecordMessage("unknown") })
		s.logger.Debug("ignoring stream message", "type", env.Type)
	}
}

// sleep waits out a retry delay, returning false if stopped meanwhile.
func (s *Subscriber) sleep(d time.Duration) bool {
	select {
	case <-s.ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func (s *Subscriber) record(fn func(StreamMetrics)) {
	if s.cfg.Metrics != nil {
		fn(s.cfg.Metrics)
	}
}
