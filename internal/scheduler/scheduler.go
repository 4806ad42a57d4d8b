// Package scheduler drives recurring acquisition cycles and dedup cache
// sweeps on a cron timer.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jobletter/jobletter/internal/acquire"
	"github.com/jobletter/jobletter/internal/dedup"
	"github.com/jobletter/jobletter/internal/model"
)

// Scheduler wraps robfig/cron and manages the acquisition loop. Each tick
// runs every enabled provider sequentially so they share one budget window.
type Scheduler struct {
	cron     *cron.Cron
	engine   *acquire.Engine
	adapters []model.ProviderAdapter
	plan     acquire.SearchPlan
	store    model.JobStore
	cache    dedup.Cache

	cycleEvery time.Duration
	sweepEvery time.Duration
	logger     *slog.Logger

	mu      sync.Mutex // one cycle at a time
	running bool
}

// New assembles a scheduler. Adapters run in the order given.
func New(
	engine *acquire.Engine,
	adapters []model.ProviderAdapter,
	plan acquire.SearchPlan,
	store model.JobStore,
	cache dedup.Cache,
	cycleEvery, sweepEvery time.Duration,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		engine:     engine,
		adapters:   adapters,
		plan:       plan,
		store:      store,
		cache:      cache,
		cycleEvery: cycleEvery,
		sweepEvery: sweepEvery,
		logger:     logger,
	}
}

// Start registers the cron entries and kicks off one cycle immediately so a
// fresh deployment has jobs before the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	cycleSpec := fmt.Sprintf("@every %s", s.cycleEvery)
	if _, err := s.cron.AddFunc(cycleSpec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("registering cycle job: %w", err)
	}

	sweepSpec := fmt.Sprintf("@every %s", s.sweepEvery)
	if _, err := s.cron.AddFunc(sweepSpec, func() {
		removed, err := s.cache.Sweep(ctx)
		if err != nil {
			s.logger.Error("dedup cache sweep failed", "error", err)
			return
		}
		if removed > 0 {
			s.logger.Info("dedup cache swept", "removed", removed)
		}
	}); err != nil {
		return fmt.Errorf("registering sweep job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "cycle_every", s.cycleEvery, "sweep_every", s.sweepEvery)

	go s.RunOnce(ctx)
	return nil
}

// Stop halts the cron timer and waits for any in-flight entry to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunOnce runs a full acquisition cycle across every adapter and persists
// the emitted jobs. Overlapping invocations are dropped, not queued.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("cycle already in progress, skipping")
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	start := time.Now()
	for _, adapter := range s.adapters {
		if ctx.Err() != nil {
			return
		}
		jobs, metrics := s.engine.RunCycle(ctx, adapter, s.plan)
		inserted := 0
		if len(jobs) > 0 {
			var err error
			inserted, err = s.store.UpsertJobs(ctx, jobs)
			if err != nil {
				s.logger.Error("persisting cycle results", "provider", adapter.Name(), "error", err)
			}
		}
		s.logger.Info("provider cycle complete",
			"provider", adapter.Name(),
			"requests", metrics.Requests,
			"rate_limited", metrics.RateLimited,
			"failures", metrics.Failures,
			"duplicates", metrics.Duplicates,
			"emitted", metrics.Emitted,
			"inserted", inserted,
			"quota_exhausted", metrics.QuotaExhausted,
		)
		if metrics.QuotaExhausted {
			// No point polling the remaining providers this tick, the
			// budget window is shared.
			break
		}
	}
	s.logger.Info("acquisition cycle finished", "took", time.Since(start).Round(time.Millisecond))
}
