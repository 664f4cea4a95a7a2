package usecase

import (
	"context"
	"testing"
	"time"
)

type captureDriver struct {
	job     func(time.Time)
	stopped bool
}

func (c *captureDriver) Start(_ context.Context, job func(time.Time)) error {
	c.job = job
	return nil
}

func (c *captureDriver) Stop(context.Context) error {
	c.stopped = true
	return nil
}

func TestSchedulerJobRunsPipeline(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	p, _ := newTestPipeline(&fakeSource{trends: numberedTrends(2)}, &fakeClassifier{}, &fakeSynthesizer{}, store, PipelineConfig{})
	lock := &fakeLock{}
	driver := &captureDriver{}
	s := NewScheduler(driver, NewRunner(p, lock), nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if driver.job == nil {
		t.Fatal("job was not registered")
	}

	driver.job(time.Now())
	if len(store.records) != 2 {
		t.Fatalf("expected 2 records after scheduled run, got %d", len(store.records))
	}

	// a held lock makes the tick a no-op
	lock.held = true
	driver.job(time.Now())
	if len(store.attempts) != 2 {
		t.Fatalf("expected no new store attempts while locked, got %d", len(store.attempts))
	}

	if err := s.Stop(context.Background()); err != nil || !driver.stopped {
		t.Fatalf("Stop did not reach driver: %v", err)
	}
}

func TestSchedulerWithoutDriver(t *testing.T) {
	t.Parallel()

	s := NewScheduler(nil, nil, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
}
