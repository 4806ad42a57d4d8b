package dedup

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is the default in-process Cache: a fingerprint -> first-seen
// map guarded by a mutex, periodically swept by the scheduler.
type MemoryCache struct {
	mu        sync.Mutex
	seen      map[string]time.Time
	retention time.Duration
	now       func() time.Time
}

// NewMemoryCache creates a cache that forgets fingerprints older than
// retention.
func NewMemoryCache(retention time.Duration) *MemoryCache {
	return NewMemoryCacheWithClock(retention, time.Now)
}

// NewMemoryCacheWithClock injects the clock, for tests.
func NewMemoryCacheWithClock(retention time.Duration, now func() time.Time) *MemoryCache {
	return &MemoryCache{
		seen:      make(map[string]time.Time),
		retention: retention,
		now:       now,
	}
}

func (c *MemoryCache) Has(_ context.Context, fingerprint string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	first, ok := c.seen[fingerprint]
	if !ok {
		return false, nil
	}
	// An expired entry that has not been swept yet still counts as unseen.
	if c.now().Sub(first) > c.retention {
		return false, nil
	}
	return true, nil
}

func (c *MemoryCache) Record(_ context.Context, fingerprint string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	// A live entry keeps its original first-seen. An expired entry that has
	// not been swept yet is unseen to Has, so it must be re-recorded as new
	// or the same listing would be emitted again every cycle until a sweep.
	if first, ok := c.seen[fingerprint]; ok && c.now().Sub(first) <= c.retention {
		return nil
	}
	c.seen[fingerprint] = c.now()
	return nil
}

func (c *MemoryCache) Sweep(_ context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cutoff := c.now().Add(-c.retention)
	removed := 0
	for fp, first := range c.seen {
		if first.Before(cutoff) {
			delete(c.seen, fp)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of live entries, swept or not.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}
