package ports

import (
	"context"
	"time"

	"TrendsAgent/internal/domain"
)

// TrendSource returns the ordered list of candidate trend strings.
type TrendSource interface {
	Trends(ctx context.Context) ([]string, error)
}

// RecordStore persists generated drafts and their approval status.
// Append reports duplicates with domain.ErrDuplicate and write problems
// with domain.ErrStoreFailure; UpdateStatus reports domain.ErrNotFound.
type RecordStore interface {
	Append(ctx context.Context, record domain.Record) error
	List(ctx context.Context) ([]domain.Record, error)
	UpdateStatus(ctx context.Context, trendText string, status domain.Status) error
}

// CompletionService is the external text-completion call.
// Errors wrap domain.ErrRateLimited or domain.ErrService.
type CompletionService interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (string, error)
}

// Classifier assigns exactly one label to a trend and never fails.
type Classifier interface {
	Classify(ctx context.Context, text string) domain.Label
}

// Synthesizer produces drafts for a trend and never fails.
type Synthesizer interface {
	Generate(ctx context.Context, text string, label domain.Label) domain.ContentBundle
}

// Notifier streams run digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when unattended runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

// RunLock keeps concurrent triggers from running the pipeline twice.
// Acquire returns domain.ErrRunInProgress when the lock is held elsewhere.
type RunLock interface {
	Acquire(ctx context.Context) (release func(), err error)
}
