// Package budget enforces per-hour and per-day request ceilings against an
// external provider. Resets are boundary-triggered and computed lazily on
// every call, so no background scheduler is needed.
package budget

import (
	"sync"
	"time"
)

// Manager tracks daily and hourly request counters with lazy boundary resets.
// Safe for concurrent use; all mutations run under a single lock.
type Manager struct {
	mu          sync.Mutex
	dailyLimit  int
	hourlyLimit int
	dailyCount  int
	hourlyCount int
	lastDay     string // YYYY-MM-DD of the last daily reset
	lastHour    int    // wall-clock hour bucket of the last hourly reset
	now         func() time.Time
}

// NewManager creates a budget manager with the given ceilings.
func NewManager(dailyLimit, hourlyLimit int) *Manager {
	return NewManagerWithClock(dailyLimit, hourlyLimit, time.Now)
}

// NewManagerWithClock injects the clock, for tests.
func NewManagerWithClock(dailyLimit, hourlyLimit int, now func() time.Time) *Manager {
	t := now()
	return &Manager{
		dailyLimit:  dailyLimit,
		hourlyLimit: hourlyLimit,
		lastDay:     t.Format("2006-01-02"),
		lastHour:    t.Hour(),
		now:         now,
	}
}

// resetIfBoundaryCrossed zeroes a counter when its wall-clock boundary has
// been crossed since the last reset. Caller must hold the lock.
func (m *Manager) resetIfBoundaryCrossed() {
	t := m.now()
	day := t.Format("2006-01-02")
	dayChanged := day != m.lastDay
	if dayChanged {
		m.dailyCount = 0
		m.lastDay = day
	}
	// A day change resets the hour bucket even when the hour number matches.
	if t.Hour() != m.lastHour || dayChanged {
		m.hourlyCount = 0
		m.lastHour = t.Hour()
	}
}

// CanProceed reports whether a new provider request may be issued. Both
// counters must be strictly below their ceilings.
func (m *Manager) CanProceed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetIfBoundaryCrossed()
	return m.dailyCount < m.dailyLimit && m.hourlyCount < m.hourlyLimit
}

// RecordRequest increments both counters unconditionally. Callers must gate
// on CanProceed first.
func (m *Manager) RecordRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetIfBoundaryCrossed()
	m.dailyCount++
	m.hourlyCount++
}

// Snapshot reports the current counters, for cycle metrics and logging.
func (m *Manager) Snapshot() (daily, hourly int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetIfBoundaryCrossed()
	return m.dailyCount, m.hourlyCount
}

// Remaining reports how many requests are left in the tighter of the two
// windows.
func (m *Manager) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetIfBoundaryCrossed()
	d := m.dailyLimit - m.dailyCount
	h := m.hourlyLimit - m.hourlyCount
	if h < d {
		return h
	}
	return d
}
