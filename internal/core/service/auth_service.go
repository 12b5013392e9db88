package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
)

// Login audit reasons.
const (
	ReasonInvalidCredentials = "invalid_credentials"
	ReasonAccountLocked      = "ACCOUNT_LOCKED"
)

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// timingHash returns a bcrypt hash that unknown usernames are compared
// against, so they take as long as a wrong password.
func timingHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("timing-equalizer"), bcrypt.DefaultCost)
	})
	return dummyHash
}

// AuthService implements login and logout.
type AuthService struct {
	users   ports.UserRepository
	tokens  *TokenService
	lockout *LockoutGuard
	audit   *AuditLog
	log     zerolog.Logger
}

func NewAuthService(users ports.UserRepository, tokens *TokenService, lockout *LockoutGuard, audit *AuditLog, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, lockout: lockout, audit: audit, log: log}
}

// Login checks the lockout first, then the credentials. Unknown usernames and
// wrong passwords are indistinguishable to the caller and both count towards
// the lockout.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		v := &domain.ValidationError{}
		if username == "" {
			v.Add("username", "is required")
		}
		if password == "" {
			v.Add("password", "is required")
		}
		s.audit.LogLoginAttempt(ctx, username, false, domain.LoginReasonInvalidRequest)
		return nil, v
	}

	if info := s.lockout.LockInfo(ctx, username); info != nil {
		s.audit.LogLoginAttempt(ctx, username, false, ReasonAccountLocked)
		return nil, &domain.LockedError{Info: *info}
	}

	user, err := s.users.FindByUsername(ctx, username)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		_ = bcrypt.CompareHashAndPassword(timingHash(), []byte(password))
		return nil, s.fail(ctx, username)
	case err != nil:
		s.log.Error().Err(err).Str("username", username).Msg("user lookup failed")
		s.audit.LogError(ctx, "login", err)
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, s.fail(ctx, username)
	}

	token, exp, err := s.tokens.Issue(user)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("token issue failed")
		return nil, err
	}

	s.lockout.RecordSuccess(ctx, username)
	s.audit.LogLoginAttempt(ctx, username, true, "")
	s.log.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("login succeeded")

	return &ports.LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

func (s *AuthService) fail(ctx context.Context, username string) error {
	s.lockout.RecordFailure(ctx, username)
	s.audit.LogLoginAttempt(ctx, username, false, ReasonInvalidCredentials)
	return &domain.InvalidCredentialsError{AttemptsRemaining: s.lockout.RemainingAttempts(ctx, username)}
}

// Logout only records the event; tokens are stateless and expire on their
// own.
// RejectLogin records a failed attempt that was refused before the
// credentials were checked, for example by the per-client limiter.
func (s *AuthService) RejectLogin(ctx context.Context, username, reason string) {
	s.audit.LogLoginAttempt(ctx, strings.TrimSpace(username), false, reason)
}

func (s *AuthService) Logout(ctx context.Context, claims *domain.Claims) {
	id := ""
	if claims != nil {
		id = claims.UserID
	}
	s.audit.LogAction(ctx, domain.ActionLogout, "auth", id, nil, true)
}
