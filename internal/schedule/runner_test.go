package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aks-health-guardian/internal/analysis"
	"aks-health-guardian/internal/cluster"
	"aks-health-guardian/internal/logs"
	"aks-health-guardian/internal/metrics"
	"aks-health-guardian/internal/store"
)

/* ---------------- Mocks ---------------- */

type mockCollector struct {
	calls int32
	err   error
}

func (m *mockCollector) Collect(ctx context.Context) (*cluster.Snapshot, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.err != nil {
		return nil, m.err
	}
	return &cluster.Snapshot{
		Timestamp: time.Now(),
		Pods:      cluster.PodSummary{Total: 4, Running: 3, Failed: 1},
		Events:    []cluster.EventRecord{{Type: "Warning"}},
	}, nil
}

type mockAnalyzer struct{}

func (m *mockAnalyzer) Analyze(ctx context.Context, snap *cluster.Snapshot) (analysis.Result, analysis.Source) {
	return analysis.Result{
		HealthScore:     80,
		Summary:         "ok-ish",
		Issues:          []analysis.Issue{{Severity: analysis.SeverityCritical, Title: "1 Failed Pods"}},
		Predictions:     []analysis.Prediction{},
		Recommendations: []analysis.Recommendation{{Priority: analysis.PriorityHigh}},
	}, analysis.SourceFallback
}

type mockDeliverer struct {
	calls int32
	err   error
}

func (m *mockDeliverer) Deliver(ctx context.Context, rec store.Record, snap *cluster.Snapshot) error {
	atomic.AddInt32(&m.calls, 1)
	return m.err
}

func newTestRunner(collector *mockCollector, deliverer Deliverer, reg *metrics.Registry) (*Runner, *store.Store) {
	history := store.NewStore(10, time.Hour, reg)
	runner := NewRunner(collector, &mockAnalyzer{}, history, deliverer, 5*time.Millisecond, logs.NewNop(), reg)
	return runner, history
}

/* ---------------- Tests ---------------- */

func TestRunner_RunOnceRecordsRun(t *testing.T) {
	reg := metrics.NewRegistry()
	runner, history := newTestRunner(&mockCollector{}, nil, reg)

	rec, err := runner.RunOnce(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, 80, rec.Result.HealthScore)
	assert.Equal(t, analysis.SourceFallback, rec.Source)
	assert.Equal(t, 4, rec.PodsTotal)
	assert.Equal(t, 1, rec.PodsFailed)
	assert.Equal(t, 1, rec.WarningEvents)

	latest, ok := history.Latest()
	require.True(t, ok)
	assert.Equal(t, rec.ID, latest.ID)
	assert.Equal(t, int64(1), reg.Snapshot()[string(metrics.AnalysisRunsTotal)])
}

func TestRunner_RunOnceCollectError(t *testing.T) {
	reg := metrics.NewRegistry()
	runner, history := newTestRunner(&mockCollector{err: errors.New("api server unreachable")}, nil, reg)

	_, err := runner.RunOnce(context.Background())
	require.Error(t, err)

	_, ok := history.Latest()
	assert.False(t, ok)
	assert.Equal(t, int64(1), reg.Snapshot()[string(metrics.CollectErrorsTotal)])
}

func TestRunner_DeliveryFailureDoesNotFailRun(t *testing.T) {
	reg := metrics.NewRegistry()
	deliverer := &mockDeliverer{err: errors.New("smtp down")}
	runner, history := newTestRunner(&mockCollector{}, deliverer, reg)

	_, err := runner.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&deliverer.calls))
	_, ok := history.Latest()
	assert.True(t, ok)
}

func TestRunner_EachRunGetsAFreshID(t *testing.T) {
	runner, _ := newTestRunner(&mockCollector{}, nil, metrics.NewRegistry())

	first, err := runner.RunOnce(context.Background())
	require.NoError(t, err)
	second, err := runner.RunOnce(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestRunner_StartRunsPeriodicallyAndStops(t *testing.T) {
	reg := metrics.NewRegistry()
	collector := &mockCollector{}
	runner, _ := newTestRunner(collector, nil, reg)

	ctx, cancel := context.WithCancel(context.Background())
	go runner.Start(ctx)

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&collector.calls) >= 3
	}, 300*time.Millisecond, 5*time.Millisecond)

	cancel()
	callsAtCancel := atomic.LoadInt32(&collector.calls)

	time.Sleep(30 * time.Millisecond)
	assert.LessOrEqual(t, atomic.LoadInt32(&collector.calls), callsAtCancel+1)
}
