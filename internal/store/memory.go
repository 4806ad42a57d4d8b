package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jobletter/jobletter/internal/model"
)

// MemoryStore is an in-process store used in dry-run mode and tests.
// Nothing survives a restart.
type MemoryStore struct {
	mu       sync.Mutex
	jobs     map[string]model.CandidateJob // key: fingerprint
	profiles map[string]model.SubscriberProfile
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:     make(map[string]model.CandidateJob),
		profiles: make(map[string]model.SubscriberProfile),
		now:      time.Now,
	}
}

func (s *MemoryStore) UpsertJobs(_ context.Context, jobs []model.CandidateJob) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inserted := 0
	for _, j := range jobs {
		fp := j.Fingerprint()
		if _, ok := s.jobs[fp]; ok {
			continue
		}
		if j.FirstSeen.IsZero() {
			j.FirstSeen = s.now()
		}
		s.jobs[fp] = j
		inserted++
	}
	return inserted, nil
}

func (s *MemoryStore) RecentJobs(_ context.Context, window time.Duration, limit int) ([]model.CandidateJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-window)
	var jobs []model.CandidateJob
	for _, j := range s.jobs {
		if !j.FirstSeen.Before(cutoff) {
			jobs = append(jobs, j)
		}
	}
	sort.Slice(jobs, func(i, k int) bool {
		pi, pk := jobs[i].PostedAt, jobs[k].PostedAt
		switch {
		case pi == nil:
			return false
		case pk == nil:
			return true
		default:
			return pi.After(*pk)
		}
	})
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

func (s *MemoryStore) GetProfile(_ context.Context, subscriberID string) (model.SubscriberProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[subscriberID]
	if !ok {
		return model.SubscriberProfile{}, fmt.Errorf("subscriber %s: %w", subscriberID, model.ErrProfileNotFound)
	}
	return p, nil
}

func (s *MemoryStore) SaveProfile(_ context.Context, p model.SubscriberProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
	return nil
}

func (s *MemoryStore) ListProfiles(_ context.Context) ([]model.SubscriberProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profiles := make([]model.SubscriberProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, k int) bool { return profiles[i].ID < profiles[k].ID })
	return profiles, nil
}

func (s *MemoryStore) Close() error { return nil }
