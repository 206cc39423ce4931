// Package scheduler runs the periodic reconciliation and overdue jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

type Config struct {
	ReconcileSchedule string
	OverdueSchedule   string
}

type Scheduler struct {
	cron   *cron.Cron
	jobs   *Jobs
	logger *slog.Logger
	config Config
}

func NewScheduler(jobs *Jobs, logger *slog.Logger, cfg Config) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger),
		cron.SkipIfStillRunning(cronLogger),
	))

	return &Scheduler{
		cron:   c,
		jobs:   jobs,
		logger: logger,
		config: cfg,
	}
}

// Start registers the jobs and starts the cron scheduler. An invalid
// schedule is returned before anything runs.
func (s *Scheduler) Start() error {
	entries := []struct {
		name     string
		schedule string
		run      func()
	}{
		{"payment reconciliation", s.config.ReconcileSchedule, s.jobs.ReconcilePayments},
		{"overdue reimbursements", s.config.OverdueSchedule, s.jobs.MarkOverdueReimbursements},
	}

	for _, e := range entries {
		if e.schedule == "" {
			s.logger.Info("job disabled", "job", e.name)
			continue
		}
		if _, err := s.cron.AddFunc(e.schedule, e.run); err != nil {
			return fmt.Errorf("schedule %s job %q: %w", e.name, e.schedule, err)
		}
		s.logger.Info("scheduled job", "job", e.name, "schedule", e.schedule)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler; the returned context is done once running jobs
// have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
