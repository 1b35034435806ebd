// Package reconcile runs the periodic payment repair sweep.
//
// Payment reconciliation writes the receipt and the order update as two
// independent operations. When the process dies between them, an order can
// stay pending even though its payment is on record. The sweep walks recent
// receipts and re-derives each order's paymentStatus, so the gap closes
// within one interval.
package reconcile

import (
	"context"
	"time"

	"github.com/chefbazaar/backend/pkg/logger"
)

// Repairer re-applies receipts written at or after a cutoff and reports how
// many orders it fixed.
type Repairer interface {
	Repair(ctx context.Context, since time.Time) (int, error)
}

// Sweeper drives a Repairer on a fixed interval.
type Sweeper struct {
	repairer Repairer
	interval time.Duration
	lookback time.Duration
	done     chan struct{}
}

// New builds a sweeper. The lookback is three intervals so a receipt is
// seen by several consecutive sweeps even when one fails.
func New(repairer Repairer, interval time.Duration) *Sweeper {
	return &Sweeper{
		repairer: repairer,
		interval: interval,
		lookback: 3 * interval,
		done:     make(chan struct{}),
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval. Errors are
// logged and the loop carries on; the next tick retries the same window.
func (s *Sweeper) Run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Done is closed when Run has returned.
func (s *Sweeper) Done() <-chan struct{} {
	return s.done
}

func (s *Sweeper) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	fixed, err := s.repairer.Repair(sweepCtx, time.Now().Add(-s.lookback))
	if err != nil {
		logger.Error("payment repair sweep failed", "error", err)
		return
	}
	if fixed > 0 {
		logger.Info("payment repair sweep fixed orders", "count", fixed)
	}
}
