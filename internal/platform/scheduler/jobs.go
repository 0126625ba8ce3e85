package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// TrialExpirer moves lapsed trial subscriptions to expired.
type TrialExpirer interface {
	ExpireLapsedTrials(ctx context.Context) (int64, error)
}

// AttemptSweeper drops limiter attempts that fell out of the window.
type AttemptSweeper interface {
	GC(ctx context.Context) (int, error)
}

// Jobs contains the logic for all scheduled tasks.
type Jobs struct {
	trials  TrialExpirer
	sweeper AttemptSweeper
	timeout time.Duration
	logger  *slog.Logger
}

// NewJobs creates a new Jobs runner. Each run is bounded by timeout.
func NewJobs(trials TrialExpirer, sweeper AttemptSweeper, timeout time.Duration, logger *slog.Logger) *Jobs {
	if timeout <= 0 {
		timeout = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Jobs{
		trials:  trials,
		sweeper: sweeper,
		timeout: timeout,
		logger:  logger,
	}
}

// ExpireTrials runs the trial expiry sweep.
func (j *Jobs) ExpireTrials() {
	j.logger.Info("starting trial expiry job")
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	count, err := j.trials.ExpireLapsedTrials(ctx)
	if err != nil {
		j.logger.Error("failed to expire lapsed trials", "error", err)
		return
	}

	j.logger.Info("trial expiry job finished", "expired", count)
}

// SweepAttempts garbage-collects stale rate limit entries.
func (j *Jobs) SweepAttempts() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	removed, err := j.sweeper.GC(ctx)
	if err != nil {
		j.logger.Error("failed to sweep rate limit attempts", "error", err)
		return
	}

	j.logger.Debug("rate limit sweep finished", "removed", removed)
}
