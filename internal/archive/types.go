package archive

import (
	"time"

	"github.com/dynamolabs/oracle-alpha/internal/model"
)

// Record sources.
const (
	SourceStream   = "stream"
	SourceHistory  = "history"
	SourceBackfill = "backfill"
)

// Record is one signal observation queued for archival.
type Record struct {
	Signal model.Signal

	// Source says how the signal arrived: stream, history, or backfill.
	Source string

	// ReceivedAt is when the process first saw the signal.
	ReceivedAt time.Time
}

// Config contains configuration for the batch writer.
type Config struct {
	// BatchSize is the number of rows to accumulate before flushing.
	BatchSize int

	// FlushInterval is the maximum time between flushes.
	FlushInterval time.Duration

	// Observer receives flush outcomes. Optional.
	Observer Observer
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:     100,
		FlushInterval: 2 * time.Second,
	}
}

// Observer hooks flush outcomes into an external collector.
type Observer interface {
	ObserveFlush(inserted, conflicts int, elapsed time.Duration)
	RecordWriteError()
}

// Metrics holds counters for a writer.
type Metrics struct {
	Inserts   int64
	Conflicts int64
	Errors    int64
	Flushes   int64

	// Generated counts rows that needed a generated id.
	Generated int64
}

// signalRow is one row bound for the signals table.
type signalRow struct {
	ID             string
	Symbol         string
	Name           string
	Token          string
	Score          float64
	RiskLevel      string
	Recommendation string
	CreatedAt      *time.Time
	ReceivedAt     time.Time
	Source         string
	RunID          string
}
