package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"TrendsAgent/internal/domain"
)

type fakeSource struct {
	trends []string
	err    error
}

func (f *fakeSource) Trends(context.Context) ([]string, error) {
	return f.trends, f.err
}

type fakeClassifier struct {
	mu     sync.Mutex
	calls  []string
	panics map[string]bool
	hook   func(text string)
}

func (f *fakeClassifier) Classify(_ context.Context, text string) domain.Label {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()

	if f.hook != nil {
		f.hook(text)
	}
	if f.panics[text] {
		panic("classifier exploded")
	}
	if strings.Contains(strings.ToLower(text), "iphone") {
		return domain.LabelNotRelevant
	}
	return domain.LabelJobNotification
}

type fakeSynthesizer struct {
	calls int
}

func (f *fakeSynthesizer) Generate(_ context.Context, text string, label domain.Label) domain.ContentBundle {
	f.calls++
	return domain.ContentBundle{ShortPost: fmt.Sprintf("%s: %s", label, text)}
}

type fakeStore struct {
	mu       sync.Mutex
	records  []domain.Record
	attempts []string
	failOn   map[string]error
}

func (f *fakeStore) Append(_ context.Context, rec domain.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, rec.TrendText)
	if err, ok := f.failOn[rec.TrendText]; ok {
		return err
	}
	for _, existing := range f.records {
		if existing.TrendText == rec.TrendText {
			return domain.ErrDuplicate
		}
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeStore) List(context.Context) ([]domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Record, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, trend string, status domain.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	found := false
	for i := range f.records {
		if f.records[i].TrendText == trend {
			f.records[i].Status = status
			found = true
		}
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

type fakeNotifier struct {
	digests []string
	err     error
}

func (f *fakeNotifier) PublishDigest(_ context.Context, digest string) error {
	f.digests = append(f.digests, digest)
	return f.err
}

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

type fakeLock struct {
	held bool
}

func (f *fakeLock) Acquire(context.Context) (func(), error) {
	if f.held {
		return nil, domain.ErrRunInProgress
	}
	f.held = true
	return func() { f.held = false }, nil
}

var errDiskFull = errors.New("disk full")

func fixedClock() func() time.Time {
	base := time.Date(2025, time.November, 8, 9, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}
