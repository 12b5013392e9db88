package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bellavista/carehome-cms/internal/api/metrics"
	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
)

// sessionWarning is how long before expiry the session endpoint starts
// telling the admin console to warn the user.
const sessionWarning = 5 * time.Minute

// CSRFIssuer hands out anti-forgery tokens.
type CSRFIssuer interface {
	Issue(ctx context.Context) (string, error)
	TTL() time.Duration
}

type AuthHandler struct {
	auth  ports.AuthService
	users ports.UserService
	csrf  CSRFIssuer
	now   func() time.Time
}

func NewAuthHandler(auth ports.AuthService, users ports.UserService, csrf CSRFIssuer) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, csrf: csrf, now: time.Now}
}

// WithClock replaces the time source used for session timing.
func (h *AuthHandler) WithClock(now func() time.Time) *AuthHandler {
	h.now = now
	return h
}

// Login authenticates an administrator and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse  "invalid credentials, includes attempts_remaining"
// @Failure      429   {object}  ErrorResponse  "ACCOUNT_LOCKED or RATE_LIMITED"
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(domain.LoginReasonInvalidRequest).Inc()
		h.auth.RejectLogin(c.Request().Context(), req.Username, domain.LoginReasonInvalidRequest)
		return err
	}

	res, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		var locked *domain.LockedError
		switch {
		case errors.As(err, &locked):
			metrics.LoginAttemptsTotal.WithLabelValues("locked").Inc()
			metrics.AccountLockoutsTotal.Inc()
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		default:
			metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, loginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      toUserView(res.User),
	})
}

// Logout acknowledges a logout. Tokens are stateless, so the client drops it.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  okResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	h.auth.Logout(c.Request().Context(), claims)
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

// Me returns the caller's identity and session timing.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, meResponse{
		UserID:          claims.UserID,
		Username:        claims.Username,
		Role:            claims.Role,
		HomeID:          claims.HomeID,
		IssuedAt:        claims.IssuedAt,
		sessionResponse: h.session(claims),
	})
}

// Session reports how long the caller's token stays valid.
//
// @Summary      Session timing
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /api/auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.session(claims))
}

func (h *AuthHandler) session(claims *domain.Claims) sessionResponse {
	remaining := max(0, claims.ExpiresAt.Sub(h.now()))
	return sessionResponse{
		ExpiresAt:        claims.ExpiresAt,
		SecondsRemaining: int(remaining / time.Second),
		Warn:             remaining <= sessionWarning,
	}
}

// CreateUser adds an administrator account.
//
// @Summary      Create user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      ports.CreateUserInput  true  "New user"
// @Success      201   {object}  userView
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /api/auth/users [post]
func (h *AuthHandler) CreateUser(c echo.Context) error {
	var in ports.CreateUserInput
	if err := bind(c, &in); err != nil {
		return err
	}
	user, err := h.users.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserView(user))
}

// CSRFToken issues an anti-forgery token for browser form posts.
//
// @Summary      Issue CSRF token
// @Tags         auth
// @Produce      json
// @Success      200  {object}  csrfResponse
// @Router       /api/csrf-token [get]
func (h *AuthHandler) CSRFToken(c echo.Context) error {
	token, err := h.csrf.Issue(c.Request().Context())
	if err != nil {
		return err
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.JSON(http.StatusOK, csrfResponse{Token: token, ExpiresIn: int(h.csrf.TTL() / time.Second)})
}

func toUserView(u *domain.User) userView {
	v := userView{Username: u.Username, Role: u.Role}
	if u.HomeID != nil {
		v.HomeID = *u.HomeID
	}
	return v
}
