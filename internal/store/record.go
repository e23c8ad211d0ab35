package store

import (
	"time"

	"aks-health-guardian/internal/analysis"
)

// Record is one completed health-check run.
//
// The snapshot itself is not retained; a run's snapshot is discarded once
// its result is produced. Only small digest counters survive for listing.
type Record struct {
	ID         string          `json:"id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Source     analysis.Source `json:"source"`

	PodsTotal     int `json:"pods_total"`
	PodsFailed    int `json:"pods_failed"`
	PodsPending   int `json:"pods_pending"`
	WarningEvents int `json:"warning_events"`

	Result analysis.Result `json:"result"`

	ExpiresAt time.Time `json:"-"`
}

// IsExpired checks whether the record has aged out at the given time.
func (r Record) IsExpired(now time.Time) bool {
	if r.ExpiresAt.IsZero() {
		return false
	}
	return now.After(r.ExpiresAt)
}
