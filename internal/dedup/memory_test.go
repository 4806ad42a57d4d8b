package dedup

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newCache(retention time.Duration) (*MemoryCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)}
	return NewMemoryCacheWithClock(retention, clock.now), clock
}

func TestRecordThenHas(t *testing.T) {
	c, _ := newCache(7 * 24 * time.Hour)
	ctx := context.Background()

	if err := c.Record(ctx, "fp-1"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	seen, err := c.Has(ctx, "fp-1")
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if !seen {
		t.Error("expected Has to return true after Record")
	}
}

func TestHasUnknownReturnsFalse(t *testing.T) {
	c, _ := newCache(time.Hour)
	seen, err := c.Has(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if seen {
		t.Error("expected Has to return false for unknown fingerprint")
	}
}

func TestRecordDoesNotRefreshFirstSeen(t *testing.T) {
	c, clock := newCache(time.Hour)
	ctx := context.Background()

	c.Record(ctx, "fp-1")
	clock.advance(50 * time.Minute)
	// Re-recording must not extend the entry's life.
	c.Record(ctx, "fp-1")
	clock.advance(20 * time.Minute)

	seen, _ := c.Has(ctx, "fp-1")
	if seen {
		t.Error("entry past retention should not be reported as seen, even after re-record")
	}
}

func TestRecordRefreshesExpiredEntry(t *testing.T) {
	c, clock := newCache(7 * 24 * time.Hour)
	ctx := context.Background()

	c.Record(ctx, "fp-1")
	clock.advance(8 * 24 * time.Hour)

	seen, _ := c.Has(ctx, "fp-1")
	if seen {
		t.Fatal("expired entry should read as unseen")
	}
	// Accepting the listing again must start a fresh retention window even
	// though the stale entry has not been swept.
	c.Record(ctx, "fp-1")
	seen, _ = c.Has(ctx, "fp-1")
	if !seen {
		t.Error("re-recorded fingerprint should read as seen")
	}
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	c, clock := newCache(time.Hour)
	ctx := context.Background()

	c.Record(ctx, "old")
	clock.advance(2 * time.Hour)
	c.Record(ctx, "fresh")

	removed, err := c.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}

	seen, _ := c.Has(ctx, "fresh")
	if !seen {
		t.Error("fresh entry should survive the sweep")
	}
}
