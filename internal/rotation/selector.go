// Package rotation picks search locations by usage-inverse weighted scoring:
// high-weight locations are preferred, but every location with positive
// weight eventually surfaces because selections shrink future scores.
package rotation

import "sync"

// Location pairs a search location with its static priority weight and a
// running usage counter. The counter only resets via Reset or restart.
type Location struct {
	Name   string
	Weight float64
	usage  int
}

// Usage returns how often the location has been selected.
func (l *Location) Usage() int { return l.usage }

// Selector owns the rotation state. Safe for concurrent use; the score read
// and the usage increment happen under one lock.
type Selector struct {
	mu        sync.Mutex
	locations []*Location
}

// NewSelector builds a selector over the given weighted locations, preserving
// input order for tie-breaking.
func NewSelector(locations []Location) *Selector {
	s := &Selector{locations: make([]*Location, len(locations))}
	for i := range locations {
		loc := locations[i]
		s.locations[i] = &loc
	}
	return s
}

// SelectNext returns the location with the highest weight/(usage+1) score,
// breaking ties by input order, and increments its usage counter. Returns ""
// when no locations are configured.
func (s *Selector) SelectNext() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *Location
	var bestScore float64
	for _, loc := range s.locations {
		score := loc.Weight / float64(loc.usage+1)
		if best == nil || score > bestScore {
			best = loc
			bestScore = score
		}
	}
	if best == nil {
		return ""
	}
	best.usage++
	return best.Name
}

// Reset zeroes every usage counter.
func (s *Selector) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, loc := range s.locations {
		loc.usage = 0
	}
}

// Usage returns a snapshot of usage counts keyed by location name.
func (s *Selector) Usage() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.locations))
	for _, loc := range s.locations {
		out[loc.Name] = loc.usage
	}
	return out
}

// Len returns the number of configured locations.
func (s *Selector) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locations)
}
