// Package dedup tracks previously seen job fingerprints inside a retention
// window so the acquisition engine never emits the same posting twice.
package dedup

import "context"

// Cache is a time-bounded set of job fingerprints.
type Cache interface {
	// Has reports whether the fingerprint was recorded within the retention
	// window.
	Has(ctx context.Context, fingerprint string) (bool, error)
	// Record marks a fingerprint as seen. Recording an already-present
	// fingerprint is a no-op; the first-seen timestamp is never refreshed.
	Record(ctx context.Context, fingerprint string) error
	// Sweep evicts entries older than the retention window and returns how
	// many were removed.
	Sweep(ctx context.Context) (removed int, err error)
}
