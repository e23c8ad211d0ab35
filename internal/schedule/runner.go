package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aks-health-guardian/internal/analysis"
	"aks-health-guardian/internal/cluster"
	"aks-health-guardian/internal/logs"
	"aks-health-guardian/internal/metrics"
	"aks-health-guardian/internal/store"
)

// Collector builds a fresh cluster snapshot.
type Collector interface {
	Collect(ctx context.Context) (*cluster.Snapshot, error)
}

// Analyzer scores a snapshot; it never fails.
type Analyzer interface {
	Analyze(ctx context.Context, snap *cluster.Snapshot) (analysis.Result, analysis.Source)
}

// Deliverer hands a completed run to the reporting side.
type Deliverer interface {
	Deliver(ctx context.Context, rec store.Record, snap *cluster.Snapshot) error
}

// Runner executes health-check runs: collect, analyze, record, deliver.
// A mutex serializes runs so a ticker run and an API-triggered run never
// overlap; each run builds its own snapshot and shares no state with prior
// runs.
type Runner struct {
	mu        sync.Mutex
	collector Collector
	analyzer  Analyzer
	history   *store.Store
	deliverer Deliverer // nil disables delivery
	interval  time.Duration
	logger    *logs.Logger
	metrics   *metrics.Registry
}

// NewRunner creates a runner ticking at the given interval.
func NewRunner(
	collector Collector,
	analyzer Analyzer,
	history *store.Store,
	deliverer Deliverer,
	interval time.Duration,
	logger *logs.Logger,
	reg *metrics.Registry,
) *Runner {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Runner{
		collector: collector,
		analyzer:  analyzer,
		history:   history,
		deliverer: deliverer,
		interval:  interval,
		logger:    logger,
		metrics:   reg,
	}
}

// Start runs one immediate health check, then one per interval, until the
// context is cancelled. It blocks and should typically be run in a separate
// goroutine.
func (r *Runner) Start(ctx context.Context) {
	if _, err := r.RunOnce(ctx); err != nil {
		r.logger.Error("initial health check run failed", zap.Error(err))
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				r.logger.Error("scheduled health check run failed", zap.Error(err))
			}
		case <-ctx.Done():
			r.logger.Debug("health check runner stopped")
			return
		}
	}
}

// RunOnce executes a single run. Snapshot collection is the only step that
// can fail; analysis always produces a result and a delivery failure does
// not fail the run.
func (r *Runner) RunOnce(ctx context.Context) (store.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runID := uuid.NewString()
	started := time.Now().UTC()

	r.metrics.Inc(metrics.AnalysisRunsTotal)
	r.logger.Info("starting health check run", zap.String("run_id", runID))

	snap, err := r.collector.Collect(ctx)
	if err != nil {
		r.metrics.Inc(metrics.CollectErrorsTotal)
		r.logger.Error("collecting cluster snapshot failed",
			zap.String("run_id", runID), zap.Error(err))
		return store.Record{}, fmt.Errorf("collect cluster snapshot: %w", err)
	}

	result, source := r.analyzer.Analyze(ctx, snap)

	rec := store.Record{
		ID:            runID,
		StartedAt:     started,
		FinishedAt:    time.Now().UTC(),
		Source:        source,
		PodsTotal:     snap.Pods.Total,
		PodsFailed:    snap.Pods.Failed,
		PodsPending:   snap.Pods.Pending,
		WarningEvents: snap.WarningEvents(),
		Result:        result,
	}
	r.history.Add(rec)

	r.logger.Info("health check run finished",
		zap.String("run_id", runID),
		zap.Int("health_score", result.HealthScore),
		zap.String("source", string(source)),
	)

	if r.deliverer != nil {
		if err := r.deliverer.Deliver(ctx, rec, snap); err != nil {
			r.logger.Error("report delivery failed",
				zap.String("run_id", runID), zap.Error(err))
		}
	}
	return rec, nil
}
