// Package acquire runs quota-aware search cycles against external listing
// providers and emits deduplicated, taxonomy-tagged candidate jobs.
package acquire

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jobletter/jobletter/internal/budget"
	"github.com/jobletter/jobletter/internal/dedup"
	"github.com/jobletter/jobletter/internal/match"
	"github.com/jobletter/jobletter/internal/model"
	"github.com/jobletter/jobletter/internal/rotation"
	"github.com/jobletter/jobletter/internal/taxonomy"
)

// SearchPlan describes the units of work for one cycle. With Rotate set,
// each query draws its location from the weighted selector; otherwise the
// plan runs the full query × location cross product.
type SearchPlan struct {
	Queries   []string
	Locations []string
	Rotate    bool
}

// Metrics summarizes one acquisition cycle.
type Metrics struct {
	Units          int  // units of work attempted
	Requests       int  // provider calls issued
	RateLimited    int  // rate-limit responses observed
	Failures       int  // units skipped after errors
	Duplicates     int  // results dropped by the dedup cache
	Emitted        int  // new candidate jobs produced
	QuotaExhausted bool // cycle stopped early on the budget gate
}

// Engine owns the per-provider acquisition state: budget counters, location
// rotation, the dedup cache and throttle/backoff discipline. One engine
// instance expects a single in-flight request per provider credential.
type Engine struct {
	budget   *budget.Manager
	selector *rotation.Selector
	cache    dedup.Cache
	throttle *Throttle
	retry    RetryPolicy
	timeout  time.Duration // per provider request
	now      func() time.Time
	logger   *slog.Logger
}

// NewEngine wires an engine with all its dependencies.
func NewEngine(
	bm *budget.Manager,
	selector *rotation.Selector,
	cache dedup.Cache,
	throttle *Throttle,
	retry RetryPolicy,
	timeout time.Duration,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		budget:   bm,
		selector: selector,
		cache:    cache,
		throttle: throttle,
		retry:    retry,
		timeout:  timeout,
		now:      time.Now,
		logger:   logger,
	}
}

// RunCycle executes the search plan against one provider. It stops early
// when the budget is exhausted and always returns the partial results
// collected so far. Unit-of-work failures are logged and skipped; they never
// abort the cycle.
func (e *Engine) RunCycle(ctx context.Context, adapter model.ProviderAdapter, plan SearchPlan) ([]model.CandidateJob, Metrics) {
	var out []model.CandidateJob
	var m Metrics

	for _, unit := range e.units(plan) {
		if ctx.Err() != nil {
			break
		}
		m.Units++

		if !e.budget.CanProceed() {
			m.QuotaExhausted = true
			daily, hourly := e.budget.Snapshot()
			e.logger.Info("quota exhausted, stopping cycle early",
				"provider", adapter.Name(),
				"daily", daily,
				"hourly", hourly,
			)
			break
		}

		// Rotating plans draw the location only once the budget gate has
		// passed, so a quota stop never consumes selector usage.
		location := unit.location
		if unit.rotate {
			location = e.selector.SelectNext()
		}

		if err := e.throttle.Wait(ctx, adapter.Name()); err != nil {
			break // context cancelled while throttled
		}

		results, err := e.search(ctx, adapter, unit.query, location, &m)
		if errors.Is(err, errQuotaExhausted) {
			// The budget ran out between attempts of this unit.
			m.QuotaExhausted = true
			daily, hourly := e.budget.Snapshot()
			e.logger.Info("quota exhausted, stopping cycle early",
				"provider", adapter.Name(),
				"daily", daily,
				"hourly", hourly,
			)
			break
		}
		if err != nil {
			m.Failures++
			e.logger.Warn("unit of work failed, skipping",
				"provider", adapter.Name(),
				"query", unit.query,
				"location", location,
				"error", err,
			)
			continue
		}

		for _, job := range results {
			accepted, err := e.accept(ctx, job)
			if err != nil {
				e.logger.Warn("dedup cache error", "error", err)
				continue
			}
			if !accepted {
				m.Duplicates++
				continue
			}
			out = append(out, e.enrich(job))
			m.Emitted++
		}
	}

	e.logger.Info("acquisition cycle finished",
		"provider", adapter.Name(),
		"units", m.Units,
		"requests", m.Requests,
		"emitted", m.Emitted,
		"duplicates", m.Duplicates,
		"failures", m.Failures,
		"quota_exhausted", m.QuotaExhausted,
	)

	return out, m
}

type workUnit struct {
	query    string
	location string
	rotate   bool
}

// units expands the plan. Rotating plans get one selector-chosen location
// per query; fixed plans cross queries with every configured location.
func (e *Engine) units(plan SearchPlan) []workUnit {
	var units []workUnit
	for _, q := range plan.Queries {
		if plan.Rotate && e.selector.Len() > 0 {
			units = append(units, workUnit{query: q, rotate: true})
			continue
		}
		if len(plan.Locations) == 0 {
			units = append(units, workUnit{query: q})
			continue
		}
		for _, loc := range plan.Locations {
			units = append(units, workUnit{query: q, location: loc})
		}
	}
	return units
}

// errQuotaExhausted aborts a unit whose retry would overrun the budget.
var errQuotaExhausted = errors.New("request budget exhausted")

// search issues the provider call under the per-request timeout and the
// rate-limit retry policy. Every attempt counts against the budget, failed
// or not, so the gate is re-checked per attempt: the counters must stay
// strictly below their ceilings even across a retry.
func (e *Engine) search(ctx context.Context, adapter model.ProviderAdapter, query, location string, m *Metrics) ([]model.CandidateJob, error) {
	var results []model.CandidateJob
	err := e.retry.Do(ctx, adapter.Name(), func() error {
		if !e.budget.CanProceed() {
			return errQuotaExhausted
		}

		reqCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		m.Requests++
		e.budget.RecordRequest()
		var err error
		results, err = adapter.Search(reqCtx, query, location)
		if model.IsRateLimited(err) {
			m.RateLimited++
		}
		return err
	})
	return results, err
}

// accept checks the dedup cache and records the fingerprint on first sight.
func (e *Engine) accept(ctx context.Context, job model.CandidateJob) (bool, error) {
	fp := job.Fingerprint()
	seen, err := e.cache.Has(ctx, fp)
	if err != nil {
		return false, err
	}
	if seen {
		return false, nil
	}
	if err := e.cache.Record(ctx, fp); err != nil {
		return false, err
	}
	return true, nil
}

// enrich canonicalizes the career path and fills in the derived signals the
// matcher relies on.
func (e *Engine) enrich(job model.CandidateJob) model.CandidateJob {
	tag, diag := taxonomy.Normalize(job.CareerPath, job.Title)
	if diag != nil {
		e.logger.Debug("ambiguous career path",
			"inputs", diag.Inputs,
			"candidates", diag.Candidates,
			"winner", diag.Winner,
		)
	}
	job.CareerPath = string(tag)
	job.ExperienceLevel = match.ExtractExperience(job.Title, job.Description)
	job.Languages = match.DetectLanguages(job.Title + " " + job.Description)
	job.FirstSeen = e.now()
	return job
}
