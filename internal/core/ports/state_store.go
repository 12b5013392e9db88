package ports

import (
	"context"
	"time"
)

// WindowStore keeps per-key timestamp lists for sliding-window counters and
// an optional lock marker per key. Implementations must be safe for
// concurrent use.
type WindowStore interface {
	// Get returns the timestamps recorded for key, oldest first.
	Get(ctx context.Context, key string) ([]time.Time, error)
	// Append records t for key. ttl bounds how long the key may live.
	Append(ctx context.Context, key string, t time.Time, ttl time.Duration) error
	// Prune drops every timestamp strictly before cutoff.
	Prune(ctx context.Context, key string, cutoff time.Time) error
	// Delete removes all timestamps for key.
	Delete(ctx context.Context, key string) error

	// SetLock marks key as locked at the given time until ttl elapses.
	SetLock(ctx context.Context, key string, lockedAt time.Time, ttl time.Duration) error
	// GetLock returns the lock time, or ok=false when key is not locked.
	GetLock(ctx context.Context, key string) (lockedAt time.Time, ok bool, err error)
	ClearLock(ctx context.Context, key string) error
}

// TokenStore keeps opaque single-value tokens with an expiry.
type TokenStore interface {
	Put(ctx context.Context, token string, ttl time.Duration) error
	Exists(ctx context.Context, token string) (bool, error)
	Delete(ctx context.Context, token string) error
}
