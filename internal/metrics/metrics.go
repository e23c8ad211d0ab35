package metrics

import (
	"sync"
	"sync/atomic"
)

// MetricKey is a strongly typed metric identifier.
type MetricKey string

// Metric keys (centralized)
const (
	// Pipeline
	AnalysisRunsTotal  MetricKey = "analysis_runs_total"
	CollectErrorsTotal MetricKey = "collect_errors_total"

	// Completion service
	CompletionRequestsTotal MetricKey = "completion_requests_total"
	CompletionFailuresTotal MetricKey = "completion_failures_total"
	ExtractionFailuresTotal MetricKey = "extraction_failures_total"
	FallbackUsedTotal       MetricKey = "fallback_used_total"

	// Run history
	ReportsStoredTotal MetricKey = "reports_stored_total"
	HistoryPrunedTotal MetricKey = "history_pruned_total"

	// Delivery
	ReportEmailsSentTotal    MetricKey = "report_emails_sent_total"
	ReportEmailFailuresTotal MetricKey = "report_email_failures_total"

	// API
	APIRunsTriggeredTotal MetricKey = "api_runs_triggered_total"
)

// Registry stores all counters.
type Registry struct {
	mu       sync.RWMutex
	counters map[MetricKey]*int64
}

// NewRegistry creates a metrics registry.
func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[MetricKey]*int64),
	}
}

// Inc increments a metric by 1.
func (r *Registry) Inc(key MetricKey) {
	r.Add(key, 1)
}

// Add increments a metric by delta.
func (r *Registry) Add(key MetricKey, delta int64) {
	r.mu.RLock()
	ptr, ok := r.counters[key]
	r.mu.RUnlock()

	if ok {
		atomic.AddInt64(ptr, delta)
		return
	}

	// Slow path: counter not yet initialized
	r.mu.Lock()
	defer r.mu.Unlock()

	if ptr, ok = r.counters[key]; ok {
		atomic.AddInt64(ptr, delta)
		return
	}

	var val int64
	r.counters[key] = &val
	atomic.AddInt64(&val, delta)
}
