package ports

import (
	"context"
	"time"

	"github.com/bellavista/carehome-cms/internal/core/domain"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// AuthService authenticates administrators.
type AuthService interface {
	// Login returns *domain.LockedError while the account is locked and
	// *domain.InvalidCredentialsError for a wrong username or password.
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	// RejectLogin audits an attempt refused before it reached Login.
	RejectLogin(ctx context.Context, username, reason string)
	Logout(ctx context.Context, claims *domain.Claims)
}

// TokenVerifier validates session tokens.
type TokenVerifier interface {
	Verify(token string) (*domain.Claims, error)
}

// CreateUserInput carries the fields for a new administrator.
type CreateUserInput struct {
	Username string      `json:"username" validate:"required,min=3,max=80"`
	Password string      `json:"password" validate:"required,min=8,max=128"`
	Role     domain.Role `json:"role" validate:"required,oneof=superadmin home_admin"`
	HomeID   string      `json:"homeId" validate:"omitempty,max=64"`
}

// UserService manages administrator accounts.
type UserService interface {
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
}
