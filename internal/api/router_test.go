package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellavista/carehome-cms/internal/api/handler"
	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
	"github.com/bellavista/carehome-cms/internal/core/service"
	"github.com/bellavista/carehome-cms/internal/infrastructure/db/postgres"
	"github.com/bellavista/carehome-cms/internal/infrastructure/memory"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testServer struct {
	e      *echo.Echo
	tokens *service.TokenService
	homes  *postgres.HomeRepository
	meals  *service.MealPlanService
	sink   *memory.AuditSink
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	log := zerolog.Nop()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := postgres.Open(ctx, postgres.Config{
		Driver: postgres.DriverSqlite,
		URL:    fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	}, log)
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(ctx, db))
	t.Cleanup(func() { _ = postgres.Close(db) })

	sink := memory.NewAuditSink(100)
	audit := service.NewAuditLog(sink, log)
	windows := memory.NewWindowStore()
	tokens := service.NewTokenService(testSecret, time.Hour)
	users := postgres.NewUserRepository(db)
	homes := postgres.NewHomeRepository(db)
	creds := service.NewCredentialService(users, homes, audit, log)
	meals := service.NewMealPlanService(postgres.NewMealPlanRepository(db), homes, audit, log)

	require.NoError(t, homes.Create(ctx, &domain.Home{ID: "barry", Name: "Bellavista Barry", Location: "Barry"}))
	require.NoError(t, homes.Create(ctx, &domain.Home{ID: "cardiff", Name: "Bellavista Cardiff", Location: "Cardiff"}))
	_, err = creds.Create(ctx, ports.CreateUserInput{Username: "barry-admin", Password: "barry-password", Role: domain.RoleHomeAdmin, HomeID: "barry"})
	require.NoError(t, err)

	e := NewRouter(Deps{
		Log:           log,
		Options:       Options{AllowedOrigins: []string{"https://admin.example.com"}, MaxUploadMB: 1},
		Tokens:        tokens,
		Auth:          service.NewAuthService(users, tokens, service.NewLockoutGuard(windows, service.DefaultLockoutPolicy(), log), audit, log),
		Users:         creds,
		CSRF:          service.NewCSRFManager(memory.NewTokenStore(), time.Hour, log),
		Audit:         audit,
		Homes:         service.NewHomeService(homes, nil, audit, log),
		Meals:         meals,
		LoginLimiter:  service.NewRateLimiter("login", windows, service.LoginRateLimit(), log),
		SubmitLimiter: service.NewRateLimiter("public_submit", windows, service.SubmissionRateLimit(), log),
		ImportReviews: func() bool { return false },
	})
	return &testServer{e: e, tokens: tokens, homes: homes, meals: meals, sink: sink}
}

func (s *testServer) do(method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) bearer(t *testing.T, user *domain.User) map[string]string {
	t.Helper()
	token, _, err := s.tokens.Issue(user)
	require.NoError(t, err)
	return map[string]string{echo.HeaderAuthorization: "Bearer " + token}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestLogin_LocksAccountAfterRepeatedFailures(t *testing.T) {
	s := newTestServer(t)
	creds := `{"username":"barry-admin","password":"wrong-password"}`

	for i := 1; i <= 5; i++ {
		// The lock follows the account whatever address the attempts use.
		rec := s.do(http.MethodPost, "/api/auth/login", creds, map[string]string{"X-Forwarded-For": fmt.Sprintf("10.0.0.%d", i)})
		require.Equal(t, http.StatusUnauthorized, rec.Code, "attempt %d", i)
		body := decodeError(t, rec)
		require.NotNil(t, body.AttemptsRemaining)
		assert.Equal(t, 5-i, *body.AttemptsRemaining)
	}

	rec := s.do(http.MethodPost, "/api/auth/login", `{"username":"barry-admin","password":"barry-password"}`,
		map[string]string{"X-Forwarded-For": "10.0.1.1"})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, CodeAccountLocked, body.Code)
	require.NotNil(t, body.LockoutInfo)
	assert.True(t, body.LockoutInfo.Locked)
	assert.Equal(t, 14, body.LockoutInfo.MinutesRemaining)
}

func TestLogin_LocksAccountFromSingleClient(t *testing.T) {
	s := newTestServer(t)
	creds := `{"username":"barry-admin","password":"wrong-password"}`

	for i := 1; i <= 5; i++ {
		rec := s.do(http.MethodPost, "/api/auth/login", creds, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "attempt %d", i)
		body := decodeError(t, rec)
		require.NotNil(t, body.AttemptsRemaining)
		assert.Equal(t, 5-i, *body.AttemptsRemaining)
	}

	rec := s.do(http.MethodPost, "/api/auth/login", creds, nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, CodeAccountLocked, body.Code)
	require.NotNil(t, body.LockoutInfo)
	assert.Equal(t, 14, body.LockoutInfo.MinutesRemaining)
}

func TestLogin_RateLimitedPerClient(t *testing.T) {
	s := newTestServer(t)
	header := map[string]string{"X-Forwarded-For": "192.0.2.7"}
	quota := service.LoginRateLimit().Limit

	// Distinct usernames keep the per-account lock out of the way.
	for i := 0; i < quota; i++ {
		rec := s.do(http.MethodPost, "/api/auth/login", fmt.Sprintf(`{"username":"user-%d","password":"x"}`, i), header)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "attempt %d", i+1)
	}
	rec := s.do(http.MethodPost, "/api/auth/login", `{"username":"user-99","password":"x"}`, header)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, CodeRateLimited, decodeError(t, rec).Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	entries, err := s.sink.Recent(context.Background(), domain.AuditFilter{Action: domain.ActionLoginAttempt, Limit: 100})
	require.NoError(t, err)
	assert.Len(t, entries, quota+1, "every login decision is audited once")
	var limited []domain.AuditEntry
	for _, e := range entries {
		if e.Reason == domain.LoginReasonRateLimited {
			limited = append(limited, e)
		}
	}
	require.Len(t, limited, 1)
	assert.Equal(t, "user-99", limited[0].Actor)
	assert.False(t, limited[0].Success)
}

func TestLogin_InvalidRequestIsAudited(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/auth/login", `{"username":"barry-admin","password":""}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeValidationFailed, decodeError(t, rec).Code)

	entries, err := s.sink.Recent(context.Background(), domain.AuditFilter{Action: domain.ActionLoginAttempt, Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "barry-admin", entries[0].Actor)
	assert.Equal(t, domain.LoginReasonInvalidRequest, entries[0].Reason)
	assert.False(t, entries[0].Success)
}

func TestLogin_Success(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodPost, "/api/auth/login", `{"username":"barry-admin","password":"barry-password"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	me := s.do(http.MethodGet, "/api/auth/me", "", map[string]string{echo.HeaderAuthorization: "Bearer " + token})
	require.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), `"homeId":"barry"`)
}

func TestHomeUpdate_IsScopedToOwnHome(t *testing.T) {
	s := newTestServer(t)
	barry := "barry"
	auth := s.bearer(t, &domain.User{ID: "u-1", Username: "barry-admin", Role: domain.RoleHomeAdmin, HomeID: &barry})

	rec := s.do(http.MethodPut, "/api/homes/cardiff", `{"homeName":"Hijacked"}`, auth)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, CodeForbidden, decodeError(t, rec).Code)

	unchanged, err := s.homes.FindByID(context.Background(), "cardiff")
	require.NoError(t, err)
	assert.Equal(t, "Bellavista Cardiff", unchanged.Name)

	entries, err := s.sink.Recent(context.Background(), domain.AuditFilter{Limit: 10})
	require.NoError(t, err)
	var denied bool
	for _, e := range entries {
		if e.ResourceID == "cardiff" && !e.Success {
			denied = true
		}
	}
	assert.True(t, denied, "denial must be audited")

	rec = s.do(http.MethodPut, "/api/homes/barry", `{"homeName":"Bellavista Barry Island"}`, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	updated, err := s.homes.FindByID(context.Background(), "barry")
	require.NoError(t, err)
	assert.Equal(t, "Bellavista Barry Island", updated.Name)
}

func TestMealPlanWrites_DuplicateHomeKeyStaysInScope(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	barry := "barry"
	auth := s.bearer(t, &domain.User{ID: "u-1", Username: "barry-admin", Role: domain.RoleHomeAdmin, HomeID: &barry})

	day, kind, name := "Monday", "Lunch", "Leek soup"
	existing, err := s.meals.Create(ctx, ports.MealPlanInput{HomeID: &barry, DayOfWeek: &day, MealType: &kind, MealName: &name})
	require.NoError(t, err)

	cases := []struct {
		name, method, path, body string
	}{
		{"create", http.MethodPost, "/api/meal-plans",
			`{"homeId":"barry","HomeId":"cardiff","dayOfWeek":"Monday","mealType":"Lunch","mealName":"Soup"}`},
		{"bulk", http.MethodPost, "/api/meal-plans/bulk",
			`{"homeId":"barry","HOMEID":"cardiff","meals":[{"dayOfWeek":"Monday","mealType":"Lunch","mealName":"Soup"}]}`},
		{"copy week", http.MethodPost, "/api/meal-plans/copy-week",
			`{"homeId":"barry","homeid":"cardiff","sourceWeekStart":"2026-05-04"}`},
		{"move", http.MethodPut, "/api/meal-plans/" + existing.ID,
			`{"homeId":"barry","HomeId":"cardiff"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(tc.method, tc.path, tc.body, auth)
			require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
			assert.Equal(t, CodeForbidden, decodeError(t, rec).Code)
		})
	}

	cardiff, err := s.meals.List(ctx, domain.MealPlanFilter{HomeID: "cardiff"})
	require.NoError(t, err)
	assert.Empty(t, cardiff)
	unchanged, err := s.meals.Get(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "barry", unchanged.HomeID)

	// The last key wins for authorization exactly as it does for binding.
	rec := s.do(http.MethodPost, "/api/meal-plans",
		`{"homeId":"cardiff","HomeId":"barry","dayOfWeek":"Tuesday","mealType":"Dinner","mealName":"Stew"}`, auth)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"homeId":"barry"`)
}

func TestSuperadminRoutesRejectHomeAdmins(t *testing.T) {
	s := newTestServer(t)
	barry := "barry"
	auth := s.bearer(t, &domain.User{ID: "u-1", Username: "barry-admin", Role: domain.RoleHomeAdmin, HomeID: &barry})

	rec := s.do(http.MethodDelete, "/api/homes/cardiff", "", auth)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodDelete, "/api/homes/cardiff", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, CodeUnauthenticated, decodeError(t, rec).Code)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	s := newTestServer(t)
	past := service.NewTokenService(testSecret, time.Hour).WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	token, _, err := past.Issue(&domain.User{ID: "u-1", Username: "root", Role: domain.RoleSuperadmin})
	require.NoError(t, err)

	rec := s.do(http.MethodGet, "/api/auth/session", "", map[string]string{echo.HeaderAuthorization: "Bearer " + token})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "token expired", decodeError(t, rec).Message)
}

func TestReviewImportUnavailable(t *testing.T) {
	s := newTestServer(t)
	auth := s.bearer(t, &domain.User{ID: "u-0", Username: "root", Role: domain.RoleSuperadmin})

	rec := s.do(http.MethodPost, "/api/reviews/import", "", auth)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, CodeUnavailable, decodeError(t, rec).Code)
}

func TestSecurityHeadersAndCORS(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/homes", "", map[string]string{echo.HeaderOrigin: "https://admin.example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://admin.example.com", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	rec = s.do(http.MethodGet, "/api/homes", "", map[string]string{echo.HeaderOrigin: "https://evil.example.com"})
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestErrorHandler(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", domain.NewValidationError("email", "is invalid"), http.StatusBadRequest, CodeValidationFailed},
		{"not found", domain.ErrHomeNotFound, http.StatusNotFound, CodeNotFound},
		{"conflict", domain.ErrUserExists, http.StatusConflict, CodeConflict},
		{"csrf", domain.ErrCSRFInvalid, http.StatusForbidden, CodeCSRFInvalid},
		{"rate limited", &domain.RateLimitedError{Limit: 5, RetryAfter: 1500 * time.Millisecond}, http.StatusTooManyRequests, CodeRateLimited},
		{"body too large", echo.ErrStatusRequestEntityTooLarge, http.StatusRequestEntityTooLarge, CodeTooLarge},
		{"unknown route", echo.ErrNotFound, http.StatusNotFound, CodeNotFound},
		{"internal", errors.New("pq: connection refused"), http.StatusInternalServerError, CodeInternal},
	}

	e := echo.New()
	h := NewHTTPErrorHandler(zerolog.Nop())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			h(tc.err, c)

			require.Equal(t, tc.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tc.code, body.Code)
			assert.NotContains(t, body.Message, "pq:")
		})
	}
}

func TestErrorHandler_RetryAfterHeader(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
	NewHTTPErrorHandler(zerolog.Nop())(&domain.RateLimitedError{Limit: 5, RetryAfter: 1500 * time.Millisecond}, c)

	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Equal(t, 2, decodeError(t, rec).RetryAfter)
}
