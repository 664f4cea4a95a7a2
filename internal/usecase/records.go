package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"TrendsAgent/internal/domain"
	"TrendsAgent/internal/logging"
	"TrendsAgent/internal/ports"
)

const recentLimit = 5

// RecordFilter narrows a listing; zero values match everything.
type RecordFilter struct {
	Status domain.Status
	Label  domain.Label
}

// Records serves the approval workflow on top of a RecordStore.
type Records struct {
	store  ports.RecordStore
	logger *slog.Logger
}

// NewRecords builds the review use case.
func NewRecords(store ports.RecordStore, logger *slog.Logger) *Records {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Records{store: store, logger: logger}
}

// List returns stored records matching filter, newest first.
func (r *Records) List(ctx context.Context, filter RecordFilter) ([]domain.Record, error) {
	if r.store == nil {
		return nil, fmt.Errorf("record store is not configured")
	}

	all, err := r.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	out := make([]domain.Record, 0, len(all))
	for _, rec := range all {
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		if filter.Label != "" && rec.Label != filter.Label {
			continue
		}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// UpdateStatus validates status and applies it to every record with trendText.
func (r *Records) UpdateStatus(ctx context.Context, trendText, status string) (domain.Status, error) {
	if r.store == nil {
		return "", fmt.Errorf("record store is not configured")
	}

	trendText = strings.TrimSpace(trendText)
	if trendText == "" {
		return "", errors.New("trend is required")
	}

	parsed, err := domain.ParseStatus(status)
	if err != nil {
		return "", fmt.Errorf("status %q: %w", status, err)
	}

	if err := r.store.UpdateStatus(ctx, trendText, parsed); err != nil {
		return "", fmt.Errorf("update status: %w", err)
	}

	r.logger.Info("record status updated", "trend", trendText, "status", parsed)
	return parsed, nil
}

// Stats aggregates the store by status and category.
func (r *Records) Stats(ctx context.Context) (domain.Stats, error) {
	records, err := r.List(ctx, RecordFilter{})
	if err != nil {
		return domain.Stats{}, err
	}
	return ComputeStats(records), nil
}

// ComputeStats expects records sorted newest first.
func ComputeStats(records []domain.Record) domain.Stats {
	stats := domain.Stats{
		Total:         len(records),
		ByCategory:    map[domain.Label]int{},
		ByStatus:      map[domain.Status]int{},
		RecentUpdates: []domain.Record{},
	}

	for _, rec := range records {
		stats.ByStatus[rec.Status]++
		stats.ByCategory[rec.Label]++
		switch rec.Status {
		case domain.StatusPendingReview:
			stats.Pending++
		case domain.StatusApproved:
			stats.Approved++
		case domain.StatusRejected:
			stats.Rejected++
		}
	}

	n := len(records)
	if n > recentLimit {
		n = recentLimit
	}
	stats.RecentUpdates = append(stats.RecentUpdates, records[:n]...)
	return stats
}
