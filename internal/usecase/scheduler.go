package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"TrendsAgent/internal/domain"
	"TrendsAgent/internal/ports"
)

// Scheduler wires the interval driver with the pipeline runner.
type Scheduler struct {
	driver ports.Scheduler
	runner *Runner
	logger *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, runner *Runner, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, runner: runner, logger: logger}
}

// Start registers the runner with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.runner == nil {
		return nil
	}

	job := func(trigger time.Time) {
		summary, err := s.runner.Run(ctx)
		if s.logger == nil {
			return
		}
		switch {
		case errors.Is(err, domain.ErrRunInProgress):
			s.logger.Info("scheduled run skipped, another run in progress", "trigger", trigger)
		case err != nil:
			s.logger.Error("scheduled run failed", "trigger", trigger, "error", err)
		default:
			s.logger.Info("scheduled run finished", "trigger", trigger, "saved", summary.Saved, "errors", summary.Errors)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
