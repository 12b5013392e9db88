package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/service"
	"github.com/bellavista/carehome-cms/internal/infrastructure/memory"
)

func TestCSRF(t *testing.T) {
	manager := service.NewCSRFManager(memory.NewTokenStore(), time.Hour, zerolog.Nop())
	token, err := manager.Issue(context.Background())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	mw := CSRF(manager, zerolog.Nop())(ok)

	cases := []struct {
		name    string
		method  string
		header  map[string]string
		wantErr bool
	}{
		{"safe method", http.MethodGet, nil, false},
		{"missing token", http.MethodPost, nil, true},
		{"wrong token", http.MethodPost, map[string]string{"X-CSRF-Token": "forged"}, true},
		{"valid header", http.MethodDelete, map[string]string{"X-CSRF-Token": token}, false},
		{"bearer exempt", http.MethodPut, map[string]string{"Authorization": "Bearer abc"}, false},
	}
	for _, tc := range cases {
		c, _ := newContext(tc.method, "/api/news", tc.header)
		err := mw(c)
		if tc.wantErr != (err != nil) {
			t.Errorf("%s: err = %v", tc.name, err)
		}
		if err != nil && !errors.Is(err, domain.ErrCSRFInvalid) {
			t.Errorf("%s: expected ErrCSRFInvalid, got %v", tc.name, err)
		}
	}

	form := url.Values{"_csrf_token": {token}}
	req := httptest.NewRequest(http.MethodPost, "/api/reviews", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	c := echo.New().NewContext(req, httptest.NewRecorder())
	if err := mw(c); err != nil {
		t.Fatalf("form field token should be accepted: %v", err)
	}
}

func TestSecurityHeaders(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/", nil)
	if err := SecurityHeaders(true)(ok)(c); err != nil {
		t.Fatalf("SecurityHeaders: %v", err)
	}
	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "SAMEORIGIN",
		"X-XSS-Protection":       "1; mode=block",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for k, v := range want {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Security-Policy"), "default-src 'self'") {
		t.Errorf("missing CSP")
	}
	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Errorf("missing HSTS")
	}

	c, rec = newContext(http.MethodGet, "/", nil)
	_ = SecurityHeaders(false)(ok)(c)
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Errorf("HSTS must be off outside production")
	}
}
