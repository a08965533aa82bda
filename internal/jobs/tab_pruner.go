package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultTabIdleTTL is how long a tab may go unseen before its storage
	// is deleted (24 hours)
	DefaultTabIdleTTL = 24 * time.Hour

	// PruneInterval is how often idle tabs are swept (15 minutes)
	PruneInterval = 15 * time.Minute
)

// Pruner deletes tabs idle since before and reports how many went.
type Pruner interface {
	PruneTabs(ctx context.Context, before time.Time) (int64, error)
}

type TabPruner struct {
	pruner   Pruner
	ttl      time.Duration
	interval time.Duration
	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
}

func NewTabPruner(pruner Pruner, ttl time.Duration) *TabPruner {
	if ttl <= 0 {
		ttl = DefaultTabIdleTTL
	}
	return &TabPruner{
		pruner:   pruner,
		ttl:      ttl,
		interval: PruneInterval,
		done:     make(chan struct{}),
	}
}

// Start sweeps once immediately, then on every interval until Stop.
func (p *TabPruner) Start(ctx context.Context) {
	slog.Info("starting tab pruner", "interval", p.interval, "ttl", p.ttl)

	p.RunOnce(ctx)

	p.ticker = time.NewTicker(p.interval)

	go func() {
		for {
			select {
			case <-p.ticker.C:
				p.RunOnce(ctx)
			case <-ctx.Done():
				p.ticker.Stop()
				return
			case <-p.done:
				slog.Info("tab pruner stopped")
				return
			}
		}
	}()
}

// Stop stops the background job
func (p *TabPruner) Stop() {
	p.stopOnce.Do(func() {
		if p.ticker != nil {
			p.ticker.Stop()
		}
		close(p.done)
	})
}

// RunOnce deletes the tabs idle longer than the TTL.
func (p *TabPruner) RunOnce(ctx context.Context) int64 {
	cutoff := time.Now().Add(-p.ttl)

	removed, err := p.pruner.PruneTabs(ctx, cutoff)
	if err != nil {
		slog.Error("failed to prune idle tabs", "error", err, "cutoff", cutoff)
		return 0
	}

	if removed > 0 {
		slog.Info("pruned idle tabs", "count", removed, "cutoff", cutoff)
	} else {
		slog.Debug("no idle tabs to prune")
	}
	return removed
}
