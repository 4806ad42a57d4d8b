package model

import (
	"context"
	"crypto/md5"
	"fmt"
	"strings"
	"time"
)

// FreshnessTier buckets a posting by age. Tiers feed both the quality filter
// and the prefilter score.
type FreshnessTier string

const (
	TierUltraFresh    FreshnessTier = "ultra-fresh"
	TierFresh         FreshnessTier = "fresh"
	TierComprehensive FreshnessTier = "comprehensive"
)

// MatchLevel is the location-matching tier under which a shortlist was produced.
type MatchLevel string

const (
	MatchExact  MatchLevel = "exact"
	MatchNearby MatchLevel = "nearby"
	MatchBroad  MatchLevel = "broad"
)

// SubscriptionTier distinguishes free and premium subscribers.
type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierPremium SubscriptionTier = "premium"
)

// CandidateJob is the unified representation of a job listing from any
// provider, after adapter normalization.
type CandidateJob struct {
	Title           string
	Company         string
	Location        string // raw location string as reported by the provider
	City            string
	Country         string
	Description     string
	URL             string
	Source          string     // provider identifier
	PostedAt        *time.Time // nullable (not all providers report it)
	FirstSeen       time.Time  // our clock (set on first encounter)
	CareerPath      string     // canonical taxonomy tag
	ExperienceLevel string     // entry, junior, graduate, mid, senior, lead, principal
	Languages       []string   // language signals extracted from the posting
}

// Fingerprint returns the stable dedup hash for the job: an md5 of the
// normalized title, company and raw location. Case and surrounding whitespace
// do not affect it, so equal fingerprints mean duplicates across sources.
func (j CandidateJob) Fingerprint() string {
	key := fmt.Sprintf("%s|%s|%s",
		strings.ToLower(strings.TrimSpace(j.Title)),
		strings.ToLower(strings.TrimSpace(j.Company)),
		strings.ToLower(strings.TrimSpace(j.Location)),
	)
	return fmt.Sprintf("%x", md5.Sum([]byte(key)))
}

// Freshness derives the freshness tier from posting age at the given instant.
// ultraFresh and fresh are the window upper bounds (e.g. 24h and 72h).
// Jobs without a posted timestamp land in the comprehensive tier.
func (j CandidateJob) Freshness(now time.Time, ultraFresh, fresh time.Duration) FreshnessTier {
	if j.PostedAt == nil {
		return TierComprehensive
	}
	age := now.Sub(*j.PostedAt)
	switch {
	case age <= ultraFresh:
		return TierUltraFresh
	case age <= fresh:
		return TierFresh
	default:
		return TierComprehensive
	}
}

// ScoredJob is a CandidateJob plus its prefilter score and the match level
// under which it was selected.
type ScoredJob struct {
	CandidateJob
	Score      int
	MatchLevel MatchLevel
}

// SubscriberProfile holds the preference profile a shortlist is matched against.
type SubscriberProfile struct {
	ID              string
	TargetCities    []string // ordered by preference, may be empty
	Languages       []string // spoken languages; empty disables the language filter
	ExperienceLevel string   // preferred experience signal; empty disables the check
	Keywords        []string // career keywords boosted in scoring
	Tier            SubscriptionTier
	CareerPath      string // canonical taxonomy tag
}

// ProviderAdapter is implemented once per external listing source. Search runs
// one provider query for a term at a location and returns normalized jobs.
// Rate-limit responses must be signalled with an HTTPError (status 429 or a
// Retry-After) so the acquisition engine applies backoff instead of giving up.
type ProviderAdapter interface {
	Name() string
	Search(ctx context.Context, query, location string) ([]CandidateJob, error)
}

// JobStore persists acquired jobs. Upsert conflicts on fingerprint must update
// last-seen metadata only, never create a duplicate row.
type JobStore interface {
	UpsertJobs(ctx context.Context, jobs []CandidateJob) (inserted int, err error)
	RecentJobs(ctx context.Context, window time.Duration, limit int) ([]CandidateJob, error)
	Close() error
}

// ProfileStore reads and writes subscriber preference profiles.
type ProfileStore interface {
	GetProfile(ctx context.Context, subscriberID string) (SubscriberProfile, error)
	SaveProfile(ctx context.Context, profile SubscriberProfile) error
	ListProfiles(ctx context.Context) ([]SubscriberProfile, error)
}
