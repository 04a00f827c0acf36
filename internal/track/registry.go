package track

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/dynamolabs/oracle-alpha/internal/api"
	"github.com/dynamolabs/oracle-alpha/internal/model"
)

// Lister fetches the current signal list. *api.Client satisfies it.
type Lister interface {
	ListSignals(ctx context.Context, opts api.ListSignalsOptions) (*api.SignalsResponse, error)
}

// Tracked is one signal with its observation history.
type Tracked struct {
	Signal    model.Signal
	FirstSeen time.Time
	LastSeen  time.Time

	// Updates counts re-observations after the first.
	Updates int
}

// Summary aggregates the registry for stats logging.
type Summary struct {
	Total        int
	ByRisk       map[model.RiskLevel]int
	TopSymbol    string
	TopScore     float64
	AverageScore float64
}

// entry is the mutable tracked state for one signal.
type entry struct {
	signal    model.Signal
	firstSeen time.Time
	lastSeen  time.Time
	updates   int
}

// Registry is a thread-safe in-memory cache of observed signals.
// Signals are keyed by id, falling back to symbol for feed entries
// that carry no id.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	logger  *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		entries: make(map[string]*entry),
		logger:  logger,
	}
}

// key picks the tracking key for a signal.
func key(sig model.Signal) string {
	if sig.ID != "" {
		return sig.ID
	}
	return sig.Symbol
}

// Apply upserts a signal and reports whether it was new. Signals with
// neither id nor symbol are untrackable and ignored.
func (r *Registry) Apply(sig model.Signal) bool {
	k := key(sig)
	if k == "" {
		return false
	}

	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[k]; ok {
		e.signal = sig
		e.lastSeen = now
		e.updates++
		return false
	}

	r.entries[k] = &entry{
		signal:    sig,
		firstSeen: now,
		lastSeen:  now,
	}
	return true
}

// Get returns the tracked state for a signal key.
func (r *Registry) Get(k string) (Tracked, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[k]
	if !ok {
		return Tracked{}, false
	}
	return Tracked{
		Signal:    e.signal,
		FirstSeen: e.firstSeen,
		LastSeen:  e.lastSeen,
		Updates:   e.updates,
	}, true
}

// Len returns the number of tracked signals.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Sync seeds the registry from the REST listing. Returns the number of
// signals that were new.
func (r *Registry) Sync(ctx context.Context, lister Lister, opts api.ListSignalsOptions) (int, error) {
	start := time.Now()

	resp, err := lister.ListSignals(ctx, opts)
	if err != nil {
		return 0, err
	}

	var added int
	for _, sig := range resp.Signals {
		if r.Apply(sig) {
			added++
		}
	}

	r.logger.Info("registry synced",
		"listed", len(resp.Signals),
		"new", added,
		"duration", time.Since(start),
	)

	return added, nil
}

// Stats returns an aggregate summary.
func (r *Registry) Stats() Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Summary{
		Total:  len(r.entries),
		ByRisk: make(map[model.RiskLevel]int),
	}

	var sum float64
	for _, e := range r.entries {
		s.ByRisk[e.signal.RiskLevel]++
		sum += e.signal.Score

		if e.signal.Score > s.TopScore ||
			(e.signal.Score == s.TopScore && (s.TopSymbol == "" || e.signal.Symbol < s.TopSymbol)) {
			s.TopScore = e.signal.Score
			s.TopSymbol = e.signal.Symbol
		}
	}

	if s.Total > 0 {
		s.AverageScore = sum / float64(s.Total)
	}

	return s
}

// Snapshot returns a copy of all tracked signals, highest score first.
func (r *Registry) Snapshot() []Tracked {
	r.mu.RLock()
	out := make([]Tracked, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, Tracked{
			Signal:    e.signal,
			FirstSeen: e.firstSeen,
			LastSeen:  e.lastSeen,
			Updates:   e.updates,
		})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Signal.Score != out[j].Signal.Score {
			return out[i].Signal.Score > out[j].Signal.Score
		}
		return out[i].Signal.Symbol < out[j].Signal.Symbol
	})

	return out
}
