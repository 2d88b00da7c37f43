package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/reel/internal/library"
	"github.com/MrSnakeDoc/reel/internal/logger"
)

const (
	// DefaultPendingTimeout is how long a generation may stay pending.
	DefaultPendingTimeout = time.Hour

	// InterruptedMessage is recorded on generations failed by the sweeper.
	InterruptedMessage = "generation interrupted"
)

// Applier is the part of the session the sweeper mutates through.
type Applier interface {
	Apply(ctx context.Context, fn func(library.State) library.State) (library.State, error)
}

// PendingSweeper fails generations stuck in pending, e.g. after a restart
// lost the in-flight request.
type PendingSweeper struct {
	target    Applier
	logger    logger.Logger
	interval  time.Duration
	threshold time.Duration
	now       func() time.Time
	stopCh    chan struct{}
}

// NewPendingSweeper creates a sweeper.
func NewPendingSweeper(target Applier, log logger.Logger, interval, threshold time.Duration) *PendingSweeper {
	if threshold == 0 {
		threshold = DefaultPendingTimeout
	}

	return &PendingSweeper{
		target:    target,
		logger:    logger.Component(log, "pending_sweeper"),
		interval:  interval,
		threshold: threshold,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic sweep.
func (ps *PendingSweeper) Start(ctx context.Context) error {
	if _, err := ps.Sweep(ctx); err != nil {
		ps.logger.Warn("initial pending sweep failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(ps.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := ps.Sweep(ctx); err != nil {
					ps.logger.Error("pending sweep failed",
						logger.Error(err))
				}
			case <-ps.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the sweeper.
func (ps *PendingSweeper) Stop() {
	close(ps.stopCh)
}

// Sweep fails every pending generation created before now-threshold and
// returns how many were failed.
func (ps *PendingSweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := ps.now().Add(-ps.threshold)

	var failed int
	_, err := ps.target.Apply(ctx, func(st library.State) library.State {
		st, failed = st.FailStalePending(cutoff, InterruptedMessage)
		return st
	})
	if err != nil {
		return 0, err
	}

	if failed > 0 {
		ps.logger.Info("stale generations failed",
			logger.Int("count", failed),
			logger.Duration("threshold", ps.threshold))
	}
	return failed, nil
}
