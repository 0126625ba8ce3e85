package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Config holds the cron specs for each job. An empty spec disables the job.
type Config struct {
	TrialSweepSchedule  string
	RateLimitGCSchedule string
}

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron   *cron.Cron
	jobs   *Jobs
	logger *slog.Logger
	config Config
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(jobs *Jobs, logger *slog.Logger, cfg Config) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)))

	return &Scheduler{
		cron:   c,
		jobs:   jobs,
		logger: logger,
		config: cfg,
	}
}

// Register adds every configured job. It fails on the first invalid spec.
func (s *Scheduler) Register() error {
	if err := s.add("trial expiry", s.config.TrialSweepSchedule, s.jobs.ExpireTrials); err != nil {
		return err
	}
	return s.add("rate limit sweep", s.config.RateLimitGCSchedule, s.jobs.SweepAttempts)
}

func (s *Scheduler) add(name, spec string, job func()) error {
	if spec == "" {
		s.logger.Info("job disabled", "job", name)
		return nil
	}
	if _, err := s.cron.AddFunc(spec, job); err != nil {
		return fmt.Errorf("failed to schedule %s job: %w", name, err)
	}
	s.logger.Info("scheduled job", "job", name, "schedule", spec)
	return nil
}

// Entries returns the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Start starts the cron scheduler in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop gracefully stops the cron scheduler. The returned context is done once
// running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
