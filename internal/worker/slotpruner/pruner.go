package slotpruner

import (
	"context"
	"time"

	"github.com/wolfman30/etihasam-tickets/internal/observability/metrics"
	"github.com/wolfman30/etihasam-tickets/pkg/logging"
)

type slotPruner interface {
	PruneSlots(ctx context.Context, cutoff time.Time) (int, error)
}

// Pruner periodically drops booked-slot ids older than the retention window
// so the ledger does not grow without bound.
type Pruner struct {
	target    slotPruner
	retention int
	logger    *logging.Logger
	metrics   *metrics.BookingMetrics
	interval  time.Duration
	now       func() time.Time
}

// NewPruner keeps retentionDays full days before today. Zero keeps only today.
func NewPruner(target slotPruner, retentionDays int, logger *logging.Logger, m *metrics.BookingMetrics) *Pruner {
	if logger == nil {
		logger = logging.Default()
	}
	if retentionDays < 0 {
		retentionDays = 0
	}
	return &Pruner{
		target:    target,
		retention: retentionDays,
		logger:    logger,
		metrics:   m,
		interval:  time.Hour,
		now:       time.Now,
	}
}

func (p *Pruner) WithInterval(d time.Duration) *Pruner {
	if d > 0 {
		p.interval = d
	}
	return p
}

func (p *Pruner) WithClock(now func() time.Time) *Pruner {
	if now != nil {
		p.now = now
	}
	return p
}

func (p *Pruner) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	p.drain(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.drain(ctx)
		}
	}
}

func (p *Pruner) drain(ctx context.Context) {
	if p.target == nil {
		return
	}
	cutoff := p.now().AddDate(0, 0, -p.retention)
	removed, err := p.target.PruneSlots(ctx, cutoff)
	if err != nil {
		p.logger.Error("slot prune failed", "error", err)
		return
	}
	if removed > 0 {
		p.metrics.ObserveSlotsPruned(removed)
		p.logger.Info("pruned stale booked slots", "removed", removed, "cutoff", cutoff.Format(time.DateOnly))
	}
}
