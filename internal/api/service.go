// Package api exposes the shortlist and profile surface over HTTP.
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/jobletter/jobletter/internal/match"
	"github.com/jobletter/jobletter/internal/model"
)

// Service answers API queries from the job store and the matching engine.
type Service struct {
	jobs       model.JobStore
	profiles   model.ProfileStore
	matcher    *match.Engine
	poolWindow time.Duration // how far back the candidate pool reaches
	poolLimit  int
}

// NewService wires the query service.
func NewService(jobs model.JobStore, profiles model.ProfileStore, matcher *match.Engine, poolWindow time.Duration, poolLimit int) *Service {
	return &Service{
		jobs:       jobs,
		profiles:   profiles,
		matcher:    matcher,
		poolWindow: poolWindow,
		poolLimit:  poolLimit,
	}
}

// RecentJobs returns the raw candidate pool, newest postings first. A
// non-positive window falls back to the configured pool window.
func (s *Service) RecentJobs(ctx context.Context, window time.Duration) ([]model.CandidateJob, error) {
	if window <= 0 {
		window = s.poolWindow
	}
	return s.jobs.RecentJobs(ctx, window, s.poolLimit)
}

// Shortlist loads the subscriber's profile and runs the matching pipeline
// over the current pool.
func (s *Service) Shortlist(ctx context.Context, subscriberID string) ([]model.ScoredJob, model.MatchLevel, error) {
	profile, err := s.profiles.GetProfile(ctx, subscriberID)
	if err != nil {
		return nil, "", err
	}
	pool, err := s.jobs.RecentJobs(ctx, s.poolWindow, s.poolLimit)
	if err != nil {
		return nil, "", fmt.Errorf("loading candidate pool: %w", err)
	}
	shortlist, level := s.matcher.Shortlist(pool, profile)
	return shortlist, level, nil
}

// GetProfile returns one subscriber profile.
func (s *Service) GetProfile(ctx context.Context, subscriberID string) (model.SubscriberProfile, error) {
	return s.profiles.GetProfile(ctx, subscriberID)
}

// SaveProfile validates and stores a subscriber profile.
func (s *Service) SaveProfile(ctx context.Context, p model.SubscriberProfile) error {
	if p.ID == "" {
		return fmt.Errorf("profile id must not be empty")
	}
	switch p.Tier {
	case model.TierFree, model.TierPremium:
	case "":
		p.Tier = model.TierFree
	default:
		return fmt.Errorf("unknown tier %q", p.Tier)
	}
	return s.profiles.SaveProfile(ctx, p)
}

// ListProfiles returns every stored subscriber profile.
func (s *Service) ListProfiles(ctx context.Context) ([]model.SubscriberProfile, error) {
	return s.profiles.ListProfiles(ctx)
}
