package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jobletter/jobletter/internal/acquire"
	"github.com/jobletter/jobletter/internal/budget"
	"github.com/jobletter/jobletter/internal/dedup"
	"github.com/jobletter/jobletter/internal/model"
	"github.com/jobletter/jobletter/internal/rotation"
	"github.com/jobletter/jobletter/internal/store"
)

type fakeAdapter struct {
	name  string
	jobs  []model.CandidateJob
	calls int
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Search(_ context.Context, _, _ string) ([]model.CandidateJob, error) {
	f.calls++
	return f.jobs, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestScheduler(adapters []model.ProviderAdapter, dailyLimit int, js model.JobStore) *Scheduler {
	logger := discard()
	engine := acquire.NewEngine(
		budget.NewManager(dailyLimit, dailyLimit),
		rotation.NewSelector([]rotation.Location{{Name: "Paris", Weight: 1}}),
		dedup.NewMemoryCache(time.Hour),
		acquire.NewThrottle(0),
		acquire.RetryPolicy{MaxAttempts: 1, BaseDelay: 0, Logger: logger},
		time.Second,
		logger,
	)
	plan := acquire.SearchPlan{Queries: []string{"analyst"}, Rotate: true}
	return New(engine, adapters, plan, js, dedup.NewMemoryCache(time.Hour), time.Hour, time.Hour, logger)
}

func TestRunOnce_PersistsEmittedJobs(t *testing.T) {
	js := store.NewMemoryStore()
	adapter := &fakeAdapter{name: "fake", jobs: []model.CandidateJob{
		{Title: "Analyst", Company: "Acme", Location: "Paris", Source: "fake"},
	}}

	s := newTestScheduler([]model.ProviderAdapter{adapter}, 10, js)
	s.RunOnce(context.Background())

	if adapter.calls != 1 {
		t.Errorf("adapter calls = %d, want 1", adapter.calls)
	}
	jobs, err := js.RecentJobs(context.Background(), time.Hour, 10)
	if err != nil {
		t.Fatalf("RecentJobs: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("persisted jobs = %d, want 1", len(jobs))
	}
	if jobs[0].Title != "Analyst" {
		t.Errorf("persisted title = %q", jobs[0].Title)
	}
}

func TestRunOnce_StopsProvidersOnExhaustedQuota(t *testing.T) {
	first := &fakeAdapter{name: "first", jobs: []model.CandidateJob{
		{Title: "A", Company: "Acme", Location: "Paris", Source: "first"},
	}}
	second := &fakeAdapter{name: "second"}

	// One request total: the first adapter consumes it, the second never runs.
	s := newTestScheduler([]model.ProviderAdapter{first, second}, 1, store.NewMemoryStore())
	s.RunOnce(context.Background())

	if first.calls != 1 {
		t.Errorf("first adapter calls = %d, want 1", first.calls)
	}
	if second.calls != 0 {
		t.Errorf("second adapter calls = %d, want 0 after quota stop", second.calls)
	}
}

func TestRunOnce_SkipsOverlappingCycle(t *testing.T) {
	s := newTestScheduler([]model.ProviderAdapter{&fakeAdapter{name: "fake"}}, 10, store.NewMemoryStore())

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.RunOnce(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("overlapping RunOnce did not return promptly")
	}
}
