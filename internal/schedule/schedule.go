// Package schedule runs a job on a cron schedule.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is the work run on each tick.
type Job func(ctx context.Context) error

// Scheduler triggers a job using standard five-field cron syntax.
// Overlapping ticks are skipped while a run is in progress.
type Scheduler struct {
	spec   string
	job    Job
	cron   *cron.Cron
	mu     sync.Mutex
	logger *slog.Logger

	running bool
}

// New validates spec and creates a scheduler.
//
// Common expressions:
//   - "*/5 * * * *" - every five minutes
//   - "0 * * * *"   - hourly
//   - "0 3 * * *"   - daily at 3 AM
func New(spec string, job Job, logger *slog.Logger) (*Scheduler, error) {
	if spec == "" {
		return nil, errors.New("cron schedule is required")
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}
	if job == nil {
		return nil, errors.New("job is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{
		spec:   spec,
		job:    job,
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger.With(slog.String("component", "schedule")),
	}, nil
}

// Start registers the job and starts ticking. Cancelling ctx stops the
// scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("scheduler already running")
	}

	if _, err := s.cron.AddFunc(s.spec, func() { s.runJob(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule job: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("scheduler started", slog.String("schedule", s.spec))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Run starts the scheduler and blocks until ctx is cancelled and the
// running job, if any, has finished.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

func (s *Scheduler) runJob(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.logger.Debug("scheduled run starting")
	if err := s.job(ctx); err != nil {
		s.logger.Error("scheduled run failed", slog.String("error", err.Error()))
	}
}

// Stop stops the scheduler and waits for any running job to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		done := s.cron.Stop()
		<-done.Done()
		s.running = false
		s.logger.Info("scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled time, or nil before Start.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
