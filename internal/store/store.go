package store

import (
	"sync"
	"time"

	"aks-health-guardian/internal/metrics"
)

// Store is a concurrency-safe, bounded in-memory history of completed runs.
//
// Runs are kept in arrival order (which is also time order, since a single
// runner serializes runs), capped at maxSize with the oldest evicted first,
// and aged out by the retention pruner via RemoveExpired.
type Store struct {
	mu        sync.RWMutex
	records   []Record
	maxSize   int
	retention time.Duration
	metrics   *metrics.Registry
}

// NewStore creates a run history holding at most maxSize records for at most
// the retention duration. A zero retention disables age-based expiry.
func NewStore(maxSize int, retention time.Duration, reg *metrics.Registry) *Store {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &Store{
		records:   make([]Record, 0, maxSize),
		maxSize:   maxSize,
		retention: retention,
		metrics:   reg,
	}
}

// Add appends a completed run, stamping its expiry and evicting the oldest
// record when the cap is reached.
func (s *Store) Add(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.retention > 0 {
		rec.ExpiresAt = rec.FinishedAt.Add(s.retention)
	}

	if len(s.records) >= s.maxSize {
		s.records = s.records[1:]
	}
	s.records = append(s.records, rec)
	s.metrics.Inc(metrics.ReportsStoredTotal)
}

// Latest returns the most recent run, if any.
func (s *Store) Latest() (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return Record{}, false
	}
	return s.records[len(s.records)-1], true
}

// Get returns the run with the given ID.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if rec.ID == id {
			return rec, true
		}
	}
	return Record{}, false
}

// List returns all non-expired runs, newest first.
func (s *Store) List() []Record {
	now := time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		if !s.records[i].IsExpired(now) {
			out = append(out, s.records[i])
		}
	}
	return out
}

// RemoveExpired drops all aged-out runs and reports how many were removed.
// Called by the retention pruner.
func (s *Store) RemoveExpired() int {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	for _, rec := range s.records {
		if !rec.IsExpired(now) {
			kept = append(kept, rec)
		}
	}
	removed := len(s.records) - len(kept)
	s.records = kept

	if removed > 0 {
		s.metrics.Add(metrics.HistoryPrunedTotal, int64(removed))
	}
	return removed
}
