package retention

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"aks-health-guardian/internal/logs"
)

/* ---------------- Mock history ---------------- */

type mockHistory struct {
	calls int32
}

func (m *mockHistory) RemoveExpired() int {
	return int(atomic.AddInt32(&m.calls, 1))
}

/* ---------------- Tests ---------------- */

func TestPruner_RunOnceRemovesExpired(t *testing.T) {
	history := &mockHistory{}
	pruner := NewPruner(history, time.Second, logs.NewNop())

	pruner.runOnce()

	assert.Equal(t, int32(1), atomic.LoadInt32(&history.calls))
}

func TestPruner_StartRunsPeriodically(t *testing.T) {
	history := &mockHistory{}
	pruner := NewPruner(history, 5*time.Millisecond, logs.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go pruner.Start(ctx)

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&history.calls) >= 2
	}, 200*time.Millisecond, 5*time.Millisecond)
}

func TestPruner_StartStopsOnContextCancel(t *testing.T) {
	history := &mockHistory{}
	pruner := NewPruner(history, 5*time.Millisecond, logs.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go pruner.Start(ctx)

	time.Sleep(20 * time.Millisecond)
	cancel()

	callsAtCancel := atomic.LoadInt32(&history.calls)

	time.Sleep(30 * time.Millisecond)
	callsAfter := atomic.LoadInt32(&history.calls)

	// Allow at most one extra tick due to race with ticker
	assert.LessOrEqual(t, callsAfter, callsAtCancel+1)
}
