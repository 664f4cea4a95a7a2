package usecase

import (
	"context"
	"fmt"

	"TrendsAgent/internal/domain"
	"TrendsAgent/internal/ports"
)

// Runner serialises pipeline runs across triggers through a RunLock.
type Runner struct {
	pipeline *Pipeline
	lock     ports.RunLock
}

// NewRunner pairs a pipeline with a lock; a nil lock disables serialisation.
func NewRunner(pipeline *Pipeline, lock ports.RunLock) *Runner {
	return &Runner{pipeline: pipeline, lock: lock}
}

// Run executes one pipeline run or returns domain.ErrRunInProgress.
func (r *Runner) Run(ctx context.Context) (domain.RunSummary, error) {
	if r.pipeline == nil {
		return domain.RunSummary{}, fmt.Errorf("pipeline is not configured")
	}

	if r.lock != nil {
		release, err := r.lock.Acquire(ctx)
		if err != nil {
			return domain.RunSummary{}, fmt.Errorf("acquire run lock: %w", err)
		}
		defer release()
	}

	return r.pipeline.Run(ctx)
}
