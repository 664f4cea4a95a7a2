// Package retry runs completion calls under a bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TrendsAgent/internal/domain"
)

const (
	DefaultAttempts    = 3
	DefaultBaseDelay   = 2 * time.Second
	DefaultCallTimeout = 60 * time.Second
)

// SleepFunc waits for d or until ctx ends.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy is an immutable retry configuration.
type Policy struct {
	Attempts    int
	BaseDelay   time.Duration
	CallTimeout time.Duration
	Sleep       SleepFunc
	// Notify, when set, observes each rate-limited attempt before the backoff.
	Notify func(attempt int, delay time.Duration, err error)
}

// DefaultPolicy returns three attempts with a 2s base delay.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:    DefaultAttempts,
		BaseDelay:   DefaultBaseDelay,
		CallTimeout: DefaultCallTimeout,
	}
}

// Transient reports whether err is worth another attempt.
func Transient(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}

// Do calls fn until it succeeds, fails non-transiently or attempts run out.
// Every rate-limited attempt is followed by a delay of BaseDelay doubled per attempt.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	attempts := p.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		out, err := call(ctx, p.CallTimeout, fn)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !Transient(err) {
			return zero, err
		}

		delay := Backoff(p.BaseDelay, attempt)
		if p.Notify != nil {
			p.Notify(attempt, delay, err)
		}
		if sErr := sleep(ctx, delay); sErr != nil {
			return zero, fmt.Errorf("backoff interrupted: %w", errors.Join(lastErr, sErr))
		}
	}

	return zero, fmt.Errorf("gave up after %d attempts: %w", attempts, lastErr)
}

// Backoff returns base doubled once per previous attempt.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base << uint(attempt-1)
}

// Sleep is the default context-aware timer.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func call[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(callCtx)
}
