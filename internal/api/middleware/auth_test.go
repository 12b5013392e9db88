package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newContext(method, target string, header map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func issue(t *testing.T, tokens *service.TokenService, role domain.Role, homeID string) string {
	t.Helper()
	user := &domain.User{ID: "u-1", Username: "alice", Role: role}
	if homeID != "" {
		user.HomeID = &homeID
	}
	token, _, err := tokens.Issue(user)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestAuthenticate_ValidToken(t *testing.T) {
	tokens := service.NewTokenService(testSecret, time.Hour)
	c, rec := newContext(http.MethodGet, "/", map[string]string{
		"Authorization": "Bearer " + issue(t, tokens, domain.RoleHomeAdmin, "barry"),
	})

	called := false
	h := Authenticate(tokens)(func(c echo.Context) error {
		called = true
		claims, ok := ClaimsFrom(c)
		if !ok || claims.Username != "alice" || claims.HomeID != "barry" {
			t.Fatalf("claims not set: %+v", claims)
		}
		if actor := domain.RequestMetaFrom(c.Request().Context()).Actor; actor != "alice" {
			t.Fatalf("actor = %q", actor)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("next not called, code %d", rec.Code)
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	tokens := service.NewTokenService(testSecret, time.Hour)
	expired := service.NewTokenService(testSecret, time.Hour).WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })

	cases := []struct {
		name   string
		header string
		want   error
	}{
		{"missing header", "", domain.ErrUnauthenticated},
		{"wrong scheme", "Token abc", domain.ErrUnauthenticated},
		{"malformed", "Bearer not-a-token", domain.ErrTokenMalformed},
		{"foreign signature", "Bearer " + issue(t, service.NewTokenService("another-secret-another-secret-xx", time.Hour), domain.RoleSuperadmin, ""), domain.ErrTokenInvalid},
		{"expired", "Bearer " + issue(t, expired, domain.RoleSuperadmin, ""), domain.ErrTokenExpired},
	}
	for _, tc := range cases {
		header := map[string]string{}
		if tc.header != "" {
			header["Authorization"] = tc.header
		}
		c, _ := newContext(http.MethodGet, "/", header)
		err := Authenticate(tokens)(func(echo.Context) error {
			t.Fatalf("%s: should not reach next", tc.name)
			return nil
		})(c)
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestRequestMetaAndClientIdentifier(t *testing.T) {
	cases := []struct {
		header map[string]string
		want   string
	}{
		{map[string]string{"X-Forwarded-For": " 203.0.113.9 , 10.0.0.1"}, "203.0.113.9"},
		{map[string]string{"X-Real-IP": "198.51.100.4"}, "198.51.100.4"},
		{map[string]string{}, "192.0.2.1"},
	}
	for _, tc := range cases {
		c, _ := newContext(http.MethodGet, "/", tc.header)
		var got domain.RequestMeta
		err := RequestMeta()(func(c echo.Context) error {
			got = domain.RequestMetaFrom(c.Request().Context())
			return nil
		})(c)
		if err != nil {
			t.Fatalf("RequestMeta: %v", err)
		}
		if got.IP != tc.want || got.Actor != domain.UnknownActor {
			t.Errorf("meta = %+v, want ip %s", got, tc.want)
		}
	}
}

type recordingAuditor struct{ denied []string }

func (a *recordingAuditor) LogUnauthorizedAccess(_ context.Context, resourceType, resourceID, reason string) {
	a.denied = append(a.denied, resourceType+":"+resourceID+":"+reason)
}
