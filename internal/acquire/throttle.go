package acquire

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Throttle enforces a minimum delay between requests to the same provider,
// measured from the previous request's start time. Providers are independent:
// waiting on one never blocks another.
type Throttle struct {
	mu        sync.Mutex
	lastStart map[string]time.Time // key: provider name
	minDelay  time.Duration
}

// NewThrottle creates a throttle enforcing minDelay between consecutive
// requests to the same provider.
func NewThrottle(minDelay time.Duration) *Throttle {
	return &Throttle{
		lastStart: make(map[string]time.Time),
		minDelay:  minDelay,
	}
}

// MinDelay returns the configured inter-request delay.
func (t *Throttle) MinDelay() time.Duration { return t.minDelay }

// Wait blocks until enough time has passed since the last request to the
// given provider. Returns an error if the context is cancelled while waiting.
func (t *Throttle) Wait(ctx context.Context, provider string) error {
	t.mu.Lock()
	last, ok := t.lastStart[provider]
	now := time.Now()

	if !ok {
		// First request for this provider, no wait needed.
		t.lastStart[provider] = now
		t.mu.Unlock()
		return nil
	}

	elapsed := now.Sub(last)
	if elapsed >= t.minDelay {
		t.lastStart[provider] = now
		t.mu.Unlock()
		return nil
	}

	remaining := t.minDelay - elapsed
	t.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("throttle wait for %s: %w", provider, ctx.Err())
	case <-time.After(remaining):
	}

	t.mu.Lock()
	t.lastStart[provider] = time.Now()
	t.mu.Unlock()

	return nil
}
