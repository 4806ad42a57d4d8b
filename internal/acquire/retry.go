package acquire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jobletter/jobletter/internal/model"
)

// RetryPolicy governs how a rate-limited provider call is retried: wait
// BaseDelay (or the server's Retry-After when longer), call again, and give
// up after MaxAttempts total attempts. Only rate-limit responses are
// retried; other failures are the caller's to skip.
type RetryPolicy struct {
	MaxAttempts int           // total attempts, including the first
	BaseDelay   time.Duration // backoff before a retry, at least 2x the throttle delay
	Multiplier  float64       // backoff growth between retries
	Logger      *slog.Logger
}

// Do runs fn under the policy and returns its last error.
func (p RetryPolicy) Do(ctx context.Context, op string, fn func() error) error {
	delay := p.BaseDelay
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if attempt >= p.MaxAttempts || !model.IsRateLimited(err) {
			return err
		}

		wait := delay
		var httpErr *model.HTTPError
		if errors.As(err, &httpErr) && httpErr.RetryAfter > wait {
			wait = httpErr.RetryAfter
		}

		p.Logger.Warn("rate limited, backing off",
			"op", op,
			"attempt", attempt,
			"max_attempts", p.MaxAttempts,
			"delay", wait,
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: backoff cancelled: %w", op, ctx.Err())
		case <-time.After(wait):
		}

		if p.Multiplier > 1 {
			delay = time.Duration(float64(delay) * p.Multiplier)
		}
	}
}
