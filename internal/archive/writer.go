package archive

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dynamolabs/oracle-alpha/internal/queue"
)

// flushTimeout bounds a single batch insert. Flushes run on their own
// deadline so the final drain still lands after the run context is
// canceled.
const flushTimeout = 10 * time.Second

var schema = []string{
	`CREATE TABLE IF NOT EXISTS signals (
		id              TEXT PRIMARY KEY,
		symbol          TEXT NOT NULL,
		name            TEXT NOT NULL DEFAULT '',
		token           TEXT NOT NULL DEFAULT '',
		score           DOUBLE PRECISION NOT NULL,
		risk_level      TEXT NOT NULL DEFAULT '',
		recommendation  TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ,
		received_at     TIMESTAMPTZ NOT NULL,
		source          TEXT NOT NULL,
		run_id          TEXT NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_signals_symbol ON signals (symbol);`,
	`CREATE INDEX IF NOT EXISTS idx_signals_received_at ON signals (received_at);`,
}

// EnsureSchema creates the signals table and indexes if missing.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Writer consumes Records from the queue and batch-inserts them.
type Writer struct {
	cfg    Config
	logger *slog.Logger

	input *queue.Buffer[Record]
	db    *pgxpool.Pool

	// runID tags every row written by this writer instance.
	runID string

	batch       []signalRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	metrics Metrics
}

// NewWriter creates a Writer reading from input.
func NewWriter(cfg Config, input *queue.Buffer[Record], db *pgxpool.Pool, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		cfg:    cfg,
		input:  input,
		db:     db,
		logger: logger,
		runID:  uuid.NewString(),
		batch:  make([]signalRow, 0, cfg.BatchSize),
	}
}

// RunID returns the identifier stamped on rows from this writer.
func (w *Writer) RunID() string {
	return w.runID
}

// Start begins consuming records and writing to the database.
func (w *Writer) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	w.wg.Add(1)
	go w.consumeLoop()

	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("archive writer started",
		"run_id", w.runID,
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop drains the queue, flushes the remainder, and shuts down.
func (w *Writer) Stop(ctx context.Context) error {
	w.logger.Info("stopping archive writer")

	if w.cancel != nil {
		w.cancel()
	}

	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		w.logger.Warn("archive writer stop timed out")
	}

	// Pick up whatever the consume loop left behind, then flush.
	for {
		rec, ok := w.input.TryPop()
		if !ok {
			break
		}
		w.handleRecord(rec)
	}
	w.flush()

	w.logger.Info("archive writer stopped")
	return nil
}

// Stats returns current counters.
func (w *Writer) Stats() Metrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

// consumeLoop moves records from the queue into the pending batch.
func (w *Writer) consumeLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.input.Ready():
			for {
				rec, ok := w.input.TryPop()
				if !ok {
					break
				}
				w.handleRecord(rec)
			}
		}
	}
}

// flushLoop periodically flushes the pending batch.
func (w *Writer) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			w.flush()
		}
	}
}

// handleRecord transforms and batches one record.
func (w *Writer) handleRecord(rec Record) {
	row := w.transform(rec)

	w.batchMu.Lock()
	if rec.Signal.ID == "" {
		w.metrics.Generated++
	}
	w.batch = append(w.batch, row)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush()
	}
}

// transform converts a Record to a signalRow. Signals without an id
// get a generated one; conflict dedupe only applies to server ids.
func (w *Writer) transform(rec Record) signalRow {
	row := signalRow{
		ID:             rec.Signal.ID,
		Symbol:         rec.Signal.Symbol,
		Name:           rec.Signal.Name,
		Token:          rec.Signal.Token,
		Score:          rec.Signal.Score,
		RiskLevel:      string(rec.Signal.RiskLevel),
		Recommendation: rec.Signal.Recommendation,
		ReceivedAt:     rec.ReceivedAt,
		Source:         rec.Source,
		RunID:          w.runID,
	}

	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if !rec.Signal.CreatedAt.IsZero() {
		t := rec.Signal.CreatedAt
		row.CreatedAt = &t
	}
	if row.ReceivedAt.IsZero() {
		row.ReceivedAt = time.Now()
	}

	return row
}

// flush writes the pending batch to the database.
func (w *Writer) flush() {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	batch := w.batch
	w.batch = make([]signalRow, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	conflicts, err := w.batchInsert(batch)
	if err != nil {
		w.logger.Error("batch insert failed", "error", err, "count", len(batch))
		w.batchMu.Lock()
		w.metrics.Errors++
		w.batchMu.Unlock()
		if w.cfg.Observer != nil {
			w.cfg.Observer.RecordWriteError()
		}
		return
	}

	elapsed := time.Since(start)
	inserted := len(batch) - conflicts

	w.batchMu.Lock()
	w.metrics.Inserts += int64(inserted)
	w.metrics.Conflicts += int64(conflicts)
	w.metrics.Flushes++
	w.batchMu.Unlock()

	if w.cfg.Observer != nil {
		w.cfg.Observer.ObserveFlush(inserted, conflicts, elapsed)
	}

	w.logger.Debug("flushed signals",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", elapsed,
	)
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (w *Writer) batchInsert(rows []signalRow) (conflicts int, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO signals (id, symbol, name, token, score, risk_level, recommendation, created_at, received_at, source, run_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO NOTHING
		`, r.ID, r.Symbol, r.Name, r.Token, r.Score, r.RiskLevel, r.Recommendation, r.CreatedAt, r.ReceivedAt, r.Source, r.RunID)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}
