package domain

import (
	"errors"
	"testing"
	"time"
)

func TestCanAccess(t *testing.T) {
	cases := []struct {
		name     string
		p        Principal
		homeID   string
		expected bool
	}{
		{"superadmin any home", Superadmin{}, "home-a", true},
		{"superadmin global resource", Superadmin{}, "", true},
		{"home admin own home", HomeAdmin{HomeID: "home-a"}, "home-a", true},
		{"home admin other home", HomeAdmin{HomeID: "home-a"}, "home-b", false},
		{"home admin global resource", HomeAdmin{HomeID: "home-a"}, "", false},
		{"nil principal", nil, "home-a", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanAccess(tc.p, tc.homeID); got != tc.expected {
				t.Fatalf("CanAccess(%#v, %q) = %v, want %v", tc.p, tc.homeID, got, tc.expected)
			}
		})
	}
}

func TestNewPrincipal(t *testing.T) {
	p, err := NewPrincipal(RoleSuperadmin, "")
	if err != nil || !IsSuperadmin(p) {
		t.Fatalf("expected superadmin, got %#v (%v)", p, err)
	}

	p, err = NewPrincipal(RoleHomeAdmin, "home-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ha, ok := p.(HomeAdmin); !ok || ha.HomeID != "home-a" {
		t.Fatalf("expected HomeAdmin{home-a}, got %#v", p)
	}

	if _, err := NewPrincipal(RoleHomeAdmin, ""); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for unscoped home admin, got %v", err)
	}
	if _, err := NewPrincipal("editor", ""); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for unknown role, got %v", err)
	}
}

func TestErrorsUnwrapToSentinels(t *testing.T) {
	if !errors.Is(ErrHomeNotFound, ErrNotFound) {
		t.Fatalf("ErrHomeNotFound should wrap ErrNotFound")
	}
	if !errors.Is(&LockedError{}, ErrAccountLocked) {
		t.Fatalf("LockedError should unwrap to ErrAccountLocked")
	}
	if !errors.Is(&InvalidCredentialsError{AttemptsRemaining: 2}, ErrInvalidCredentials) {
		t.Fatalf("InvalidCredentialsError should unwrap to ErrInvalidCredentials")
	}

	rl := &RateLimitedError{RetryAfter: 1500 * time.Millisecond}
	if !errors.Is(rl, ErrRateLimited) {
		t.Fatalf("RateLimitedError should unwrap to ErrRateLimited")
	}
	if got := rl.RetryAfterSeconds(); got != 2 {
		t.Fatalf("expected retry_after rounded up to 2, got %d", got)
	}
	if got := (&RateLimitedError{}).RetryAfterSeconds(); got != 1 {
		t.Fatalf("expected minimum retry_after of 1, got %d", got)
	}
}

func TestValidationErrorOrNil(t *testing.T) {
	v := &ValidationError{}
	if v.OrNil() != nil {
		t.Fatalf("empty ValidationError should be nil")
	}
	v.Add("title", "is required")
	err := v.OrNil()
	var ve *ValidationError
	if !errors.As(err, &ve) || len(ve.Fields) != 1 {
		t.Fatalf("expected one field error, got %v", err)
	}
}
