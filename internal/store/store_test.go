package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aks-health-guardian/internal/analysis"
	"aks-health-guardian/internal/metrics"
)

func record(id string, finished time.Time) Record {
	return Record{
		ID:         id,
		StartedAt:  finished.Add(-time.Second),
		FinishedAt: finished,
		Source:     analysis.SourceFallback,
		Result:     analysis.Result{HealthScore: 100},
	}
}

func TestStore_AddAndLatest(t *testing.T) {
	reg := metrics.NewRegistry()
	s := NewStore(10, time.Hour, reg)

	_, ok := s.Latest()
	assert.False(t, ok)

	s.Add(record("run-1", time.Now()))
	s.Add(record("run-2", time.Now()))

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, "run-2", latest.ID)
	assert.Equal(t, int64(2), reg.Snapshot()[string(metrics.ReportsStoredTotal)])
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := NewStore(10, time.Hour, metrics.NewRegistry())
	now := time.Now()

	s.Add(record("run-1", now.Add(-2*time.Minute)))
	s.Add(record("run-2", now.Add(-time.Minute)))
	s.Add(record("run-3", now))

	out := s.List()
	require.Len(t, out, 3)
	assert.Equal(t, "run-3", out[0].ID)
	assert.Equal(t, "run-1", out[2].ID)
}

func TestStore_EvictsOldestAtCapacity(t *testing.T) {
	s := NewStore(2, time.Hour, metrics.NewRegistry())
	now := time.Now()

	s.Add(record("run-1", now))
	s.Add(record("run-2", now))
	s.Add(record("run-3", now))

	_, ok := s.Get("run-1")
	assert.False(t, ok)
	_, ok = s.Get("run-3")
	assert.True(t, ok)
}

func TestStore_RemoveExpired(t *testing.T) {
	reg := metrics.NewRegistry()
	s := NewStore(10, 50*time.Millisecond, reg)

	s.Add(record("old", time.Now().Add(-time.Minute)))
	s.Add(record("fresh", time.Now()))

	removed := s.RemoveExpired()
	assert.Equal(t, 1, removed)

	_, ok := s.Get("old")
	assert.False(t, ok)
	_, ok = s.Get("fresh")
	assert.True(t, ok)
	assert.Equal(t, int64(1), reg.Snapshot()[string(metrics.HistoryPrunedTotal)])
}

func TestStore_ZeroRetentionNeverExpires(t *testing.T) {
	s := NewStore(10, 0, metrics.NewRegistry())
	s.Add(record("run-1", time.Now().Add(-24*time.Hour)))

	assert.Equal(t, 0, s.RemoveExpired())
	assert.Len(t, s.List(), 1)
}
