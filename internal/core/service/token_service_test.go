package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bellavista/carehome-cms/internal/core/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func strPtr(s string) *string { return &s }

func TestTokenService_IssueAndVerify(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewTokenService("secret", time.Hour).WithClock(fixedClock(issued))

	user := &domain.User{ID: "u1", Username: "alice", Role: domain.RoleHomeAdmin, HomeID: strPtr("home-a")}
	token, exp, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !exp.Equal(issued.Add(time.Hour)) {
		t.Fatalf("exp = %v", exp)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "alice" || claims.Role != domain.RoleHomeAdmin || claims.HomeID != "home-a" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.IssuedAt.Equal(issued) {
		t.Fatalf("issued_at = %v", claims.IssuedAt)
	}
}

func TestTokenService_ExpiryBoundary(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ttl := time.Hour
	svc := NewTokenService("secret", ttl).WithClock(fixedClock(issued))
	token, _, err := svc.Issue(&domain.User{ID: "u1", Username: "root", Role: domain.RoleSuperadmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	svc.WithClock(fixedClock(issued.Add(ttl - time.Second)))
	if _, err := svc.Verify(token); err != nil {
		t.Fatalf("token should be valid just before expiry: %v", err)
	}

	svc.WithClock(fixedClock(issued.Add(ttl + time.Second)))
	if _, err := svc.Verify(token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenService("other", time.Hour).Issue(&domain.User{ID: "u1", Username: "root", Role: domain.RoleSuperadmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := NewTokenService("secret", time.Hour).Verify(token); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.MapClaims{
		"user_id":  "u1",
		"username": "root",
		"role":     "superadmin",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewTokenService("secret", time.Hour).Verify(token); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for HS512, got %v", err)
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := NewTokenService("secret", time.Hour).Verify(none); err == nil {
		t.Fatalf("expected alg=none to be rejected")
	}
}

func TestTokenService_Malformed(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	for _, raw := range []string{"", "abc", "a.b", strings.Repeat("x", 40)} {
		if _, err := svc.Verify(raw); !errors.Is(err, domain.ErrTokenMalformed) {
			t.Fatalf("Verify(%q) = %v, want ErrTokenMalformed", raw, err)
		}
	}
}

func TestTokenService_RejectsUnscopedHomeAdmin(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	token, _, err := svc.Issue(&domain.User{ID: "u1", Username: "bob", Role: domain.RoleHomeAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Verify(token); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
