package acquire

import (
	"context"
	"testing"
	"time"
)

func TestThrottle_SameProviderEnforcesMinDelay(t *testing.T) {
	th := NewThrottle(100 * time.Millisecond)
	ctx := context.Background()

	if err := th.Wait(ctx, "adzuna"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := th.Wait(ctx, "adzuna"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)

	// Allow 20ms of timer jitter.
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestThrottle_IndependentProvidersDoNotBlock(t *testing.T) {
	th := NewThrottle(200 * time.Millisecond)
	ctx := context.Background()

	if err := th.Wait(ctx, "adzuna"); err != nil {
		t.Fatalf("adzuna wait: %v", err)
	}

	start := time.Now()
	if err := th.Wait(ctx, "remotive"); err != nil {
		t.Fatalf("remotive wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected near-instant wait for other provider, got %v", elapsed)
	}
}

func TestThrottle_ContextCancellation(t *testing.T) {
	th := NewThrottle(5 * time.Second)
	if err := th.Wait(context.Background(), "adzuna"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := th.Wait(ctx, "adzuna"); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
}
