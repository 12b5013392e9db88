package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
)

// RateLimitPolicy allows Limit attempts per sliding Window.
type RateLimitPolicy struct {
	Limit  int
	Window time.Duration
}

// LoginRateLimit is applied per client to the login endpoint. It is looser
// than DefaultLockoutPolicy so a single client sees the account lock before
// its own quota runs out.
func LoginRateLimit() RateLimitPolicy {
	return RateLimitPolicy{Limit: 20, Window: 15 * time.Minute}
}

// SubmissionRateLimit is applied per client to public form submissions.
func SubmissionRateLimit() RateLimitPolicy {
	return RateLimitPolicy{Limit: 10, Window: time.Hour}
}

// Decision describes the quota after a call to Allow.
type Decision struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimiter is a sliding-window limiter keyed by client identifier. Like
// LockoutGuard it fails open when the store is unavailable.
type RateLimiter struct {
	scope  string
	store  ports.WindowStore
	policy RateLimitPolicy
	now    func() time.Time
	log    zerolog.Logger
}

func NewRateLimiter(scope string, store ports.WindowStore, policy RateLimitPolicy, log zerolog.Logger) *RateLimiter {
	if policy.Limit <= 0 {
		policy.Limit = LoginRateLimit().Limit
	}
	if policy.Window <= 0 {
		policy.Window = LoginRateLimit().Window
	}
	return &RateLimiter{scope: scope, store: store, policy: policy, now: time.Now, log: log}
}

// WithClock replaces the time source.
func (r *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	r.now = now
	return r
}

func (r *RateLimiter) Scope() string           { return r.scope }
func (r *RateLimiter) Policy() RateLimitPolicy { return r.policy }

func (r *RateLimiter) key(id string) string {
	return "ratelimit:" + r.scope + ":" + id
}

// current prunes expired attempts and returns the ones left, oldest first.
func (r *RateLimiter) current(ctx context.Context, id string) []time.Time {
	key := r.key(id)
	if err := r.store.Prune(ctx, key, r.now().Add(-r.policy.Window)); err != nil {
		r.log.Warn().Err(err).Str("scope", r.scope).Msg("rate limit prune failed")
	}
	stamps, err := r.store.Get(ctx, key)
	if err != nil {
		r.log.Warn().Err(err).Str("scope", r.scope).Msg("rate limit read failed")
		return nil
	}
	cutoff := r.now().Add(-r.policy.Window)
	out := stamps[:0:0]
	for _, t := range stamps {
		if t.After(cutoff) {
			out = append(out, t)
		}
	}
	return out
}

// IsLimited reports whether id has used up its quota.
func (r *RateLimiter) IsLimited(ctx context.Context, id string) bool {
	return len(r.current(ctx, id)) >= r.policy.Limit
}

// RecordAttempt counts one request for id.
func (r *RateLimiter) RecordAttempt(ctx context.Context, id string) {
	if err := r.store.Append(ctx, r.key(id), r.now(), r.policy.Window); err != nil {
		r.log.Warn().Err(err).Str("scope", r.scope).Msg("rate limit record failed")
	}
}

// Remaining returns how many requests id may still make in the window.
func (r *RateLimiter) Remaining(ctx context.Context, id string) int {
	return max(0, r.policy.Limit-len(r.current(ctx, id)))
}

// ResetTime returns when the oldest counted attempt leaves the window.
func (r *RateLimiter) ResetTime(ctx context.Context, id string) (time.Time, bool) {
	stamps := r.current(ctx, id)
	if len(stamps) == 0 {
		return time.Time{}, false
	}
	return stamps[0].Add(r.policy.Window), true
}

// Allow checks the quota and records the attempt when it is within it. A
// rejected request is not counted and returns *domain.RateLimitedError.
func (r *RateLimiter) Allow(ctx context.Context, id string) (Decision, error) {
	stamps := r.current(ctx, id)
	d := Decision{Limit: r.policy.Limit}

	if len(stamps) >= r.policy.Limit {
		d.ResetAt = stamps[0].Add(r.policy.Window)
		return d, &domain.RateLimitedError{Limit: r.policy.Limit, RetryAfter: d.ResetAt.Sub(r.now())}
	}

	r.RecordAttempt(ctx, id)
	d.Remaining = r.policy.Limit - len(stamps) - 1
	if len(stamps) > 0 {
		d.ResetAt = stamps[0].Add(r.policy.Window)
	} else {
		d.ResetAt = r.now().Add(r.policy.Window)
	}
	return d, nil
}
