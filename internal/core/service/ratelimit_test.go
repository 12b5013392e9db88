package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/infrastructure/memory"
)

func newTestLimiter(clock *testClock, policy RateLimitPolicy) *RateLimiter {
	store := memory.NewWindowStore().WithClock(clock.Now)
	return NewRateLimiter("login", store, policy, zerolog.Nop()).WithClock(clock.Now)
}

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	rl := newTestLimiter(clock, RateLimitPolicy{Limit: 5, Window: 15 * time.Minute})

	for i := 0; i < 5; i++ {
		d, err := rl.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatalf("attempt %d rejected: %v", i+1, err)
		}
		if d.Remaining != 4-i {
			t.Fatalf("remaining after %d = %d", i+1, d.Remaining)
		}
		clock.Advance(time.Minute)
	}

	_, err := rl.Allow(ctx, "1.2.3.4")
	var limited *domain.RateLimitedError
	if !errors.As(err, &limited) {
		t.Fatalf("expected RateLimitedError, got %v", err)
	}
	// oldest attempt was 5 minutes ago, so the window frees up in 10 minutes
	if limited.RetryAfter != 10*time.Minute {
		t.Fatalf("retry after = %v", limited.RetryAfter)
	}
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited in chain")
	}

	if _, err := rl.Allow(ctx, "5.6.7.8"); err != nil {
		t.Fatalf("other clients must not be limited: %v", err)
	}
}

func TestLoginRateLimit_LooserThanLockout(t *testing.T) {
	login, lock := LoginRateLimit(), DefaultLockoutPolicy()
	if login.Limit <= lock.MaxAttempts {
		t.Fatalf("login quota %d must exceed lockout threshold %d", login.Limit, lock.MaxAttempts)
	}
	if login.Limit != 20 || login.Window != 15*time.Minute {
		t.Fatalf("unexpected login policy %+v", login)
	}
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	rl := newTestLimiter(clock, RateLimitPolicy{Limit: 2, Window: time.Minute})

	rl.RecordAttempt(ctx, "c")
	clock.Advance(30 * time.Second)
	rl.RecordAttempt(ctx, "c")
	if !rl.IsLimited(ctx, "c") {
		t.Fatalf("expected limited")
	}

	reset, ok := rl.ResetTime(ctx, "c")
	if !ok || !reset.Equal(clock.Now().Add(30*time.Second)) {
		t.Fatalf("reset = %v ok=%v", reset, ok)
	}

	clock.Advance(30 * time.Second)
	if rl.IsLimited(ctx, "c") {
		t.Fatalf("oldest attempt should have left the window")
	}
	if got := rl.Remaining(ctx, "c"); got != 1 {
		t.Fatalf("remaining = %d, want 1", got)
	}
}

func TestRateLimiter_RejectedRequestsAreNotCounted(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	rl := newTestLimiter(clock, RateLimitPolicy{Limit: 1, Window: time.Minute})

	if _, err := rl.Allow(ctx, "c"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := rl.Allow(ctx, "c"); err == nil {
			t.Fatalf("expected rejection")
		}
	}
	clock.Advance(time.Minute)
	if _, err := rl.Allow(ctx, "c"); err != nil {
		t.Fatalf("expected quota to reset, got %v", err)
	}
}

func TestRateLimiter_RetryAfterSecondsRoundsUp(t *testing.T) {
	e := &domain.RateLimitedError{RetryAfter: 1500 * time.Millisecond}
	if got := e.RetryAfterSeconds(); got != 2 {
		t.Fatalf("RetryAfterSeconds = %d, want 2", got)
	}
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	rl := NewRateLimiter("login", &failingWindowStore{}, LoginRateLimit(), zerolog.Nop())
	for i := 0; i < 10; i++ {
		if _, err := rl.Allow(context.Background(), "c"); err != nil {
			t.Fatalf("expected fail-open, got %v", err)
		}
	}
}
