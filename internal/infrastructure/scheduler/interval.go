package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"TrendsAgent/internal/ports"
)

// IntervalScheduler fires a job on a fixed period using time.Ticker.
type IntervalScheduler struct {
	interval   time.Duration
	runOnStart bool
	loc        *time.Location

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

var _ ports.Scheduler = (*IntervalScheduler)(nil)

// NewIntervalScheduler builds a scheduler; runOnStart triggers one job immediately.
func NewIntervalScheduler(interval time.Duration, runOnStart bool, loc *time.Location) *IntervalScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &IntervalScheduler{interval: interval, runOnStart: runOnStart, loc: loc}
}

// Start begins ticking; a second Start while running is a no-op.
func (c *IntervalScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	if c.interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", c.interval)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		return nil
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	c.stop, c.done = stop, done

	go func() {
		defer close(done)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		if c.runOnStart {
			job(time.Now().In(c.loc))
		}
		for {
			select {
			case t := <-ticker.C:
				job(t.In(c.loc))
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine and waits for an in-flight job to return.
func (c *IntervalScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	stop, done := c.stop, c.done
	c.stop, c.done = nil, nil
	c.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for scheduled job: %w", ctx.Err())
	}
}
