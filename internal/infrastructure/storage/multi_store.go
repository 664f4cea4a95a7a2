package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"TrendsAgent/internal/domain"
	"TrendsAgent/internal/ports"
)

// MultiStore fans writes out to a primary store and optional secondaries.
// A write succeeds when at least one store accepts it; reads come from the
// first store that answers.
type MultiStore struct {
	stores []ports.RecordStore
	logger *slog.Logger
}

var _ ports.RecordStore = (*MultiStore)(nil)

// NewMultiStore skips nil stores so optional backends can be passed directly.
func NewMultiStore(logger *slog.Logger, stores ...ports.RecordStore) *MultiStore {
	m := &MultiStore{logger: logger}
	for _, s := range stores {
		if s != nil {
			m.stores = append(m.stores, s)
		}
	}
	return m
}

// Append reports ErrDuplicate only when every store saw the trend already.
func (m *MultiStore) Append(ctx context.Context, record domain.Record) error {
	if len(m.stores) == 0 {
		return fmt.Errorf("multi append: no stores: %w", domain.ErrStoreFailure)
	}

	var errs []error
	for i, s := range m.stores {
		if err := s.Append(ctx, record); err != nil {
			m.warn("store append failed", "store", i, "error", err)
			errs = append(errs, err)
		}
	}
	return combine("multi append", errs, len(m.stores), domain.ErrDuplicate)
}

// List reads from the first store that succeeds.
func (m *MultiStore) List(ctx context.Context) ([]domain.Record, error) {
	var errs []error
	for i, s := range m.stores {
		records, err := s.List(ctx)
		if err == nil {
			return records, nil
		}
		m.warn("store list failed", "store", i, "error", err)
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("multi list: %w: %w", domain.ErrStoreFailure, errors.Join(errs...))
}

// UpdateStatus reports ErrNotFound only when no store holds the trend.
func (m *MultiStore) UpdateStatus(ctx context.Context, trendText string, status domain.Status) error {
	if len(m.stores) == 0 {
		return fmt.Errorf("multi update: no stores: %w", domain.ErrStoreFailure)
	}

	var errs []error
	for i, s := range m.stores {
		if err := s.UpdateStatus(ctx, trendText, status); err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				m.warn("store update failed", "store", i, "error", err)
			}
			errs = append(errs, err)
		}
	}
	return combine("multi update", errs, len(m.stores), domain.ErrNotFound)
}

// combine returns nil when any store succeeded, the shared sentinel when all
// failed with it, and ErrStoreFailure otherwise.
func combine(op string, errs []error, total int, sentinel error) error {
	if len(errs) < total {
		return nil
	}
	for _, err := range errs {
		if !errors.Is(err, sentinel) {
			return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreFailure, errors.Join(errs...))
		}
	}
	return fmt.Errorf("%s: %w", op, sentinel)
}

func (m *MultiStore) warn(msg string, args ...interface{}) {
	if m.logger != nil {
		m.logger.Warn(msg, args...)
	}
}
