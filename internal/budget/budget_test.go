package budget

import (
	"testing"
	"time"
)

// fakeClock lets tests move wall-clock time explicitly.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)}
}

func TestCanProceed_UnderBothLimits(t *testing.T) {
	clock := newClock()
	m := NewManagerWithClock(10, 3, clock.now)

	if !m.CanProceed() {
		t.Fatal("fresh manager should allow requests")
	}
}

func TestHourlyLimitBlocks(t *testing.T) {
	clock := newClock()
	m := NewManagerWithClock(10, 2, clock.now)

	for i := 0; i < 2; i++ {
		if !m.CanProceed() {
			t.Fatalf("request %d should be allowed", i)
		}
		m.RecordRequest()
	}

	if m.CanProceed() {
		t.Error("hourly limit reached, CanProceed should be false")
	}
}

func TestHourBoundaryResetsHourlyOnly(t *testing.T) {
	clock := newClock()
	m := NewManagerWithClock(5, 2, clock.now)

	m.RecordRequest()
	m.RecordRequest()
	if m.CanProceed() {
		t.Fatal("hourly limit should block")
	}

	clock.advance(time.Hour)

	if !m.CanProceed() {
		t.Error("new hour bucket should reset the hourly counter")
	}
	daily, hourly := m.Snapshot()
	if hourly != 0 {
		t.Errorf("hourly = %d, want 0 after boundary", hourly)
	}
	if daily != 2 {
		t.Errorf("daily = %d, want 2 (unchanged across hour boundary)", daily)
	}
}

func TestDayBoundaryResetsBoth(t *testing.T) {
	clock := newClock()
	m := NewManagerWithClock(3, 3, clock.now)

	for i := 0; i < 3; i++ {
		m.RecordRequest()
	}
	if m.CanProceed() {
		t.Fatal("daily limit should block")
	}

	clock.advance(24 * time.Hour)

	if !m.CanProceed() {
		t.Error("new day should reset the daily counter")
	}
	daily, hourly := m.Snapshot()
	if daily != 0 || hourly != 0 {
		t.Errorf("counters = (%d, %d), want (0, 0) after day boundary", daily, hourly)
	}
}

func TestGatedSequenceNeverExceedsLimits(t *testing.T) {
	clock := newClock()
	const dailyLimit, hourlyLimit = 7, 3
	m := NewManagerWithClock(dailyLimit, hourlyLimit, clock.now)

	// Hammer the manager across several hour boundaries, always gating on
	// CanProceed the way the acquisition engine does.
	for step := 0; step < 200; step++ {
		if m.CanProceed() {
			m.RecordRequest()
		}
		daily, hourly := m.Snapshot()
		if daily > dailyLimit {
			t.Fatalf("daily count %d exceeded limit %d", daily, dailyLimit)
		}
		if hourly > hourlyLimit {
			t.Fatalf("hourly count %d exceeded limit %d", hourly, hourlyLimit)
		}
		if step%20 == 19 {
			clock.advance(time.Hour)
		}
	}
}

func TestRemaining(t *testing.T) {
	clock := newClock()
	m := NewManagerWithClock(10, 3, clock.now)

	m.RecordRequest()
	if got := m.Remaining(); got != 2 {
		t.Errorf("Remaining() = %d, want 2 (hourly is the tighter window)", got)
	}
}
