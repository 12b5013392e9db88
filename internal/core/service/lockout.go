package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
)

// LockoutPolicy bounds failed logins per username.
type LockoutPolicy struct {
	MaxAttempts int
	Window      time.Duration
	Duration    time.Duration
}

// DefaultLockoutPolicy locks an account for 15 minutes after 5 failures
// within 15 minutes.
func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{MaxAttempts: 5, Window: 15 * time.Minute, Duration: 15 * time.Minute}
}

// LockoutGuard tracks failed logins per username in a WindowStore. Store
// errors are logged and the guard fails open, so a broken cache never locks
// everybody out.
type LockoutGuard struct {
	store  ports.WindowStore
	policy LockoutPolicy
	now    func() time.Time
	log    zerolog.Logger
}

func NewLockoutGuard(store ports.WindowStore, policy LockoutPolicy, log zerolog.Logger) *LockoutGuard {
	def := DefaultLockoutPolicy()
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = def.MaxAttempts
	}
	if policy.Window <= 0 {
		policy.Window = def.Window
	}
	if policy.Duration <= 0 {
		policy.Duration = def.Duration
	}
	return &LockoutGuard{store: store, policy: policy, now: time.Now, log: log}
}

// WithClock replaces the time source.
func (g *LockoutGuard) WithClock(now func() time.Time) *LockoutGuard {
	g.now = now
	return g
}

func (g *LockoutGuard) key(username string) string {
	return "lockout:" + strings.ToLower(strings.TrimSpace(username))
}

// RecordFailure adds a failed attempt and reports whether the account is now
// locked.
func (g *LockoutGuard) RecordFailure(ctx context.Context, username string) bool {
	now := g.now()
	key := g.key(username)

	if err := g.store.Prune(ctx, key, now.Add(-g.policy.Window)); err != nil {
		g.log.Warn().Err(err).Str("username", username).Msg("lockout prune failed")
	}
	if err := g.store.Append(ctx, key, now, g.policy.Window); err != nil {
		g.log.Warn().Err(err).Str("username", username).Msg("lockout record failed")
		return false
	}

	attempts, err := g.store.Get(ctx, key)
	if err != nil {
		g.log.Warn().Err(err).Str("username", username).Msg("lockout read failed")
		return false
	}
	if len(g.inWindow(attempts, now)) < g.policy.MaxAttempts {
		return false
	}

	// The store keeps the marker past the unlock time so that LockInfo sees
	// the expired lock and clears the failure history with it.
	if err := g.store.SetLock(ctx, key, now, g.policy.Duration+g.policy.Window); err != nil {
		g.log.Warn().Err(err).Str("username", username).Msg("lockout set failed")
		return false
	}
	g.log.Warn().Str("username", username).Int("attempts", len(attempts)).Msg("account locked")
	return true
}

// RecordSuccess clears the failure history and any lock.
func (g *LockoutGuard) RecordSuccess(ctx context.Context, username string) {
	key := g.key(username)
	if err := g.store.Delete(ctx, key); err != nil {
		g.log.Warn().Err(err).Str("username", username).Msg("lockout reset failed")
	}
	if err := g.store.ClearLock(ctx, key); err != nil {
		g.log.Warn().Err(err).Str("username", username).Msg("lockout unlock failed")
	}
}

// IsLocked reports whether username is currently locked. An expired lock is
// cleared together with the failure history.
func (g *LockoutGuard) IsLocked(ctx context.Context, username string) bool {
	return g.LockInfo(ctx, username) != nil
}

// LockInfo returns the active lock for username, or nil.
func (g *LockoutGuard) LockInfo(ctx context.Context, username string) *domain.LockInfo {
	key := g.key(username)
	lockedAt, ok, err := g.store.GetLock(ctx, key)
	if err != nil {
		g.log.Warn().Err(err).Str("username", username).Msg("lockout lookup failed")
		return nil
	}
	if !ok {
		return nil
	}

	now := g.now()
	unlock := lockedAt.Add(g.policy.Duration)
	if !now.Before(unlock) {
		g.RecordSuccess(ctx, username)
		return nil
	}

	return &domain.LockInfo{
		Locked:           true,
		LockedAt:         lockedAt.UTC(),
		UnlockTime:       unlock.UTC(),
		MinutesRemaining: max(0, int(unlock.Sub(now)/time.Minute)),
	}
}

// RemainingAttempts returns how many failures are left before a lock.
func (g *LockoutGuard) RemainingAttempts(ctx context.Context, username string) int {
	attempts, err := g.store.Get(ctx, g.key(username))
	if err != nil {
		g.log.Warn().Err(err).Str("username", username).Msg("lockout read failed")
		return g.policy.MaxAttempts
	}
	return max(0, g.policy.MaxAttempts-len(g.inWindow(attempts, g.now())))
}

func (g *LockoutGuard) inWindow(attempts []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-g.policy.Window)
	out := attempts[:0:0]
	for _, t := range attempts {
		if t.After(cutoff) {
			out = append(out, t)
		}
	}
	return out
}
