package retention

import (
	"context"
	"time"

	"go.uber.org/zap"

	"aks-health-guardian/internal/logs"
)

// History is the minimal contract the pruner needs from the run store.
type History interface {
	RemoveExpired() int
}

// Pruner periodically ages out old runs from the history.
type Pruner struct {
	history  History
	interval time.Duration
	logger   *logs.Logger
}

// NewPruner creates a pruner ticking at the given interval.
func NewPruner(history History, interval time.Duration, logger *logs.Logger) *Pruner {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Pruner{
		history:  history,
		interval: interval,
		logger:   logger,
	}
}

// Start runs the prune loop until the context is cancelled.
// It blocks and should typically be run in a separate goroutine.
func (p *Pruner) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.runOnce()
		case <-ctx.Done():
			p.logger.Debug("retention pruner stopped")
			return
		}
	}
}

func (p *Pruner) runOnce() {
	removed := p.history.RemoveExpired()
	if removed > 0 {
		p.logger.Info("pruned expired runs from history", zap.Int("removed", removed))
	}
}
