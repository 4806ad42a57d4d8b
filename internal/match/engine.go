// Package match narrows a pool of candidate jobs to a ranked, source-diverse
// shortlist for one subscriber: tiered location matching, language and
// quality filters, weighted scoring, then a per-source diversity cap.
package match

import (
	"sort"
	"strings"
	"time"

	"github.com/jobletter/jobletter/internal/model"
)

// Options tune the shortlist pipeline. Zero values fall back to the defaults
// documented on each field.
type Options struct {
	MinExact     int           // exact tier threshold (default 10)
	MinNearby    int           // nearby tier threshold (default 5)
	BroadLimit   int           // pool prefix used by the broad tier (default 50)
	MaxPerSource int           // diversity cap per source (default 3)
	MaxTotal     int           // shortlist size cap (default 100)
	FreeMaxAge   time.Duration // max posting age for free-tier subscribers (default 30d)
	UltraFresh   time.Duration // ultra-fresh tier window (default 24h)
	Fresh        time.Duration // fresh tier window (default 72h)

	// ReputableEmployers is the fixed allow-list granting a scoring bonus.
	ReputableEmployers []string
}

func (o Options) withDefaults() Options {
	if o.MinExact == 0 {
		o.MinExact = 10
	}
	if o.MinNearby == 0 {
		o.MinNearby = 5
	}
	if o.BroadLimit == 0 {
		o.BroadLimit = 50
	}
	if o.MaxPerSource == 0 {
		o.MaxPerSource = 3
	}
	if o.MaxTotal == 0 {
		o.MaxTotal = 100
	}
	if o.FreeMaxAge == 0 {
		o.FreeMaxAge = 30 * 24 * time.Hour
	}
	if o.UltraFresh == 0 {
		o.UltraFresh = 24 * time.Hour
	}
	if o.Fresh == 0 {
		o.Fresh = 72 * time.Hour
	}
	return o
}

// Engine computes shortlists. It holds no mutable state and is safe for
// concurrent use across subscribers.
type Engine struct {
	opts      Options
	reputable map[string]bool
	now       func() time.Time
}

// NewEngine creates a matcher with the given options.
func NewEngine(opts Options) *Engine {
	opts = opts.withDefaults()
	reputable := make(map[string]bool, len(opts.ReputableEmployers))
	for _, r := range opts.ReputableEmployers {
		reputable[strings.ToLower(strings.TrimSpace(r))] = true
	}
	return &Engine{opts: opts, reputable: reputable, now: time.Now}
}

// Shortlist runs the full pipeline over the pool and returns the ranked,
// source-diverse shortlist together with the location tier it was produced
// under.
func (e *Engine) Shortlist(jobs []model.CandidateJob, profile model.SubscriberProfile) ([]model.ScoredJob, model.MatchLevel) {
	pool, level := e.locationTier(jobs, profile)
	pool = e.languageFilter(pool, profile)
	pool = e.qualityFilter(pool, profile)

	scored := make([]model.ScoredJob, 0, len(pool))
	for _, j := range pool {
		scored = append(scored, model.ScoredJob{
			CandidateJob: j,
			Score:        e.score(j, profile, level),
			MatchLevel:   level,
		})
	}

	sort.SliceStable(scored, func(i, k int) bool {
		return scored[i].Score > scored[k].Score
	})

	return e.diversify(scored), level
}

// locationTier attempts exact, nearby and broad matching in order, falling
// through only when a tier does not yield enough candidates.
func (e *Engine) locationTier(jobs []model.CandidateJob, profile model.SubscriberProfile) ([]model.CandidateJob, model.MatchLevel) {
	if len(profile.TargetCities) == 0 {
		return firstN(jobs, e.opts.BroadLimit), model.MatchBroad
	}

	exact := make([]model.CandidateJob, 0, len(jobs))
	for _, j := range jobs {
		if matchesExact(j, profile.TargetCities) {
			exact = append(exact, j)
		}
	}
	if len(exact) >= e.opts.MinExact {
		return exact, model.MatchExact
	}

	// Nearby keeps the exact hits and widens to same-region and fuzzy city
	// matches.
	nearby := append([]model.CandidateJob{}, exact...)
	for _, j := range jobs {
		if matchesExact(j, profile.TargetCities) {
			continue
		}
		if matchesNearby(j, profile.TargetCities) {
			nearby = append(nearby, j)
		}
	}
	if len(nearby) >= e.opts.MinNearby {
		return nearby, model.MatchNearby
	}

	return firstN(jobs, e.opts.BroadLimit), model.MatchBroad
}

func matchesExact(j model.CandidateJob, cities []string) bool {
	city := strings.ToLower(strings.TrimSpace(j.City))
	location := strings.ToLower(j.Location)
	for _, target := range cities {
		t := strings.ToLower(strings.TrimSpace(target))
		if t == "" {
			continue
		}
		if city == t || strings.Contains(location, t) {
			return true
		}
	}
	return false
}

func matchesNearby(j model.CandidateJob, cities []string) bool {
	city := strings.ToLower(j.City)
	for _, target := range cities {
		t := strings.TrimSpace(target)
		if t == "" {
			continue
		}
		if sameRegion(j.Country, t) {
			return true
		}
		// Fuzzy: the job city contains the target's first word
		// ("Frankfurt am Main" vs "Frankfurt").
		first := strings.ToLower(strings.Fields(t)[0])
		if strings.Contains(city, first) {
			return true
		}
	}
	return false
}

// languageFilter keeps jobs whose language signals intersect the profile's
// spoken languages. Profiles without languages skip the filter entirely.
func (e *Engine) languageFilter(jobs []model.CandidateJob, profile model.SubscriberProfile) []model.CandidateJob {
	if len(profile.Languages) == 0 {
		return jobs
	}
	spoken := make(map[string]bool, len(profile.Languages))
	for _, l := range profile.Languages {
		spoken[strings.ToLower(strings.TrimSpace(l))] = true
	}

	out := jobs[:0:0]
	for _, j := range jobs {
		for _, l := range j.Languages {
			if spoken[strings.ToLower(l)] {
				out = append(out, j)
				break
			}
		}
	}
	return out
}

// qualityFilter drops malformed candidates, stale postings for free-tier
// subscribers, and experience mismatches.
func (e *Engine) qualityFilter(jobs []model.CandidateJob, profile model.SubscriberProfile) []model.CandidateJob {
	now := e.now()
	out := jobs[:0:0]
	for _, j := range jobs {
		if j.Title == "" || j.Company == "" || j.Description == "" {
			continue
		}
		if profile.Tier == model.TierFree && j.PostedAt != nil && now.Sub(*j.PostedAt) > e.opts.FreeMaxAge {
			continue
		}
		if !experienceCompatible(profile.ExperienceLevel, j.ExperienceLevel) {
			continue
		}
		out = append(out, j)
	}
	return out
}

// experienceCompatible applies the preference groups: entry-level profiles
// accept entry/junior/graduate signals, senior profiles accept
// senior/lead/principal, anything else requires literal equality. An absent
// signal on either side is compatible with everything.
func experienceCompatible(preference, signal string) bool {
	if preference == "" || signal == "" {
		return true
	}
	switch preference {
	case ExpEntry:
		return signal == ExpEntry || signal == ExpJunior || signal == ExpGraduate
	case ExpSenior:
		return signal == ExpSenior || signal == ExpLead || signal == ExpPrincipal
	default:
		return preference == signal
	}
}

// score computes the prefilter score for one job: base 50 plus the weighted
// bonuses, clamped to 100.
func (e *Engine) score(j model.CandidateJob, profile model.SubscriberProfile, level model.MatchLevel) int {
	score := 50

	switch level {
	case model.MatchExact:
		score += 20
	case model.MatchNearby:
		score += 10
	}

	switch j.Freshness(e.now(), e.opts.UltraFresh, e.opts.Fresh) {
	case model.TierUltraFresh:
		score += 15
	case model.TierFresh:
		score += 10
	}

	if e.reputable[strings.ToLower(strings.TrimSpace(j.Company))] {
		score += 10
	}

	if profile.ExperienceLevel != "" && j.ExperienceLevel != "" &&
		experienceCompatible(profile.ExperienceLevel, j.ExperienceLevel) {
		score += 15
	}

	description := strings.ToLower(j.Description)
	for _, kw := range distinctLower(profile.Keywords) {
		if kw != "" && strings.Contains(description, kw) {
			score += 5
		}
	}

	if score > 100 {
		score = 100
	}
	return score
}

// diversify admits jobs in rank order, at most MaxPerSource per source and
// MaxTotal overall.
func (e *Engine) diversify(scored []model.ScoredJob) []model.ScoredJob {
	perSource := make(map[string]int)
	out := make([]model.ScoredJob, 0, min(len(scored), e.opts.MaxTotal))
	for _, s := range scored {
		if len(out) >= e.opts.MaxTotal {
			break
		}
		if perSource[s.Source] >= e.opts.MaxPerSource {
			continue
		}
		perSource[s.Source]++
		out = append(out, s)
	}
	return out
}

func firstN(jobs []model.CandidateJob, n int) []model.CandidateJob {
	if len(jobs) <= n {
		return jobs
	}
	return jobs[:n]
}

func distinctLower(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		lowered := strings.ToLower(strings.TrimSpace(v))
		if lowered == "" || seen[lowered] {
			continue
		}
		seen[lowered] = true
		out = append(out, lowered)
	}
	return out
}
