package backfill

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dynamolabs/oracle-alpha/internal/api"
	"github.com/dynamolabs/oracle-alpha/internal/model"
)

// Lister fetches the current signal list. *api.Client satisfies it.
type Lister interface {
	ListSignals(ctx context.Context, opts api.ListSignalsOptions) (*api.SignalsResponse, error)
}

// Handler receives signals fetched by the poller.
type Handler interface {
	HandleBackfill(sig model.Signal) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(model.Signal) error

func (f HandlerFunc) HandleBackfill(sig model.Signal) error {
	return f(sig)
}

// Config holds poller configuration.
type Config struct {
	Interval time.Duration // poll interval (default: 30s)
	MinScore int           // list filter, 0 means unfiltered
	Limit    int           // max signals per poll (default: 100)
	Timeout  time.Duration // per-request timeout (default: 10s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 30 * time.Second,
		Limit:    100,
		Timeout:  10 * time.Second,
	}
}

// Stats holds poller counters.
type Stats struct {
	Polls   int64
	Skipped int64
	Signals int64
	Errors  int64
}

// Poller periodically re-fetches the signal list via REST.
type Poller struct {
	cfg     Config
	lister  Lister
	handler Handler
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	inFlight atomic.Bool

	polls   atomic.Int64
	skipped atomic.Int64
	signals atomic.Int64
	errors  atomic.Int64
}

// New creates a Poller.
func New(cfg Config, lister Lister, handler Handler, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		cfg:     cfg,
		lister:  lister,
		handler: handler,
		logger:  logger,
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("backfill poller started",
		"interval", p.cfg.Interval,
		"min_score", p.cfg.MinScore,
		"limit", p.cfg.Limit,
	)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("backfill poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns current counters.
func (p *Poller) Stats() Stats {
	return Stats{
		Polls:   p.polls.Load(),
		Skipped: p.skipped.Load(),
		Signals: p.signals.Load(),
		Errors:  p.errors.Load(),
	}
}

// run is the main polling loop. At most one poll is in flight; a tick
// that lands during a slow poll is skipped, not queued.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.dispatch()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.dispatch()
		}
	}
}

// dispatch starts a poll unless one is already running.
func (p *Poller) dispatch() {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.skipped.Add(1)
		p.logger.Debug("previous poll still running, skipping tick")
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.inFlight.Store(false)
		p.pollOnce()
	}()
}

// pollOnce fetches the signal list and hands results to the handler.
func (p *Poller) pollOnce() {
	start := time.Now()
	p.polls.Add(1)

	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.Timeout)
	defer cancel()

	resp, err := p.lister.ListSignals(ctx, api.ListSignalsOptions{
		MinScore: p.cfg.MinScore,
		Limit:    p.cfg.Limit,
	})
	if err != nil {
		p.errors.Add(1)
		p.logger.Warn("backfill poll failed", "err", err)
		return
	}

	var handled int
	for _, sig := range resp.Signals {
		if p.handler != nil {
			if err := p.handler.HandleBackfill(sig); err != nil {
				p.errors.Add(1)
				p.logger.Warn("backfill handler failed", "signal_id", sig.ID, "err", err)
				continue
			}
		}
		handled++
	}
	p.signals.Add(int64(handled))

	p.logger.Debug("backfill poll complete",
		"listed", len(resp.Signals),
		"handled", handled,
		"duration", time.Since(start),
	)
}
