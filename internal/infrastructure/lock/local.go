// Package lock keeps two pipeline runs from overlapping.
package lock

import (
	"context"
	"sync"

	"TrendsAgent/internal/domain"
	"TrendsAgent/internal/ports"
)

// Local is an in-process, non-blocking run lock.
type Local struct {
	mu sync.Mutex
}

var _ ports.RunLock = (*Local)(nil)

// NewLocal builds an unlocked lock.
func NewLocal() *Local {
	return &Local{}
}

// Acquire fails fast with domain.ErrRunInProgress instead of waiting.
func (l *Local) Acquire(context.Context) (func(), error) {
	if !l.mu.TryLock() {
		return nil, domain.ErrRunInProgress
	}
	var once sync.Once
	return func() { once.Do(l.mu.Unlock) }, nil
}
