package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
)

// ErrDefaultCredentials is returned by Bootstrap when production startup is
// attempted with well-known admin credentials.
var ErrDefaultCredentials = errors.New("bootstrap admin uses default credentials")

var defaultCredentials = map[string][]string{
	"admin": {"admin123", "admin", "password", "changeme"},
}

// IsDefaultCredential reports whether password is one of the known default
// passwords. The username is ignored, so any account with such a password
// is rejected.
func IsDefaultCredential(_, password string) bool {
	for _, list := range defaultCredentials {
		for _, p := range list {
			if p == password {
				return true
			}
		}
	}
	return false
}

// CredentialService creates administrator accounts.
type CredentialService struct {
	users ports.UserRepository
	homes ports.HomeRepository
	audit *AuditLog
	log   zerolog.Logger
}

func NewCredentialService(users ports.UserRepository, homes ports.HomeRepository, audit *AuditLog, log zerolog.Logger) *CredentialService {
	return &CredentialService{users: users, homes: homes, audit: audit, log: log}
}

// Create stores a new user with a bcrypt hash of the password.
func (s *CredentialService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	user, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		s.audit.LogAction(ctx, "create", "user", user.Username, nil, false)
		return nil, err
	}

	s.audit.LogAction(ctx, "create", "user", created.ID, map[string]any{
		"username": created.Username,
		"role":     string(created.Role),
		"homeId":   in.HomeID,
	}, true)
	s.log.Info().Str("username", created.Username).Str("role", string(created.Role)).Msg("user created")
	return created, nil
}

func (s *CredentialService) build(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	homeID := strings.TrimSpace(in.HomeID)

	v := &domain.ValidationError{}
	if username == "" {
		v.Add("username", "is required")
	}
	if in.Password == "" {
		v.Add("password", "is required")
	}
	switch {
	case !in.Role.Valid():
		v.Add("role", "must be superadmin or home_admin")
	case in.Role == domain.RoleHomeAdmin && homeID == "":
		v.Add("homeId", "is required for home_admin")
	case in.Role == domain.RoleSuperadmin && homeID != "":
		v.Add("homeId", "must be empty for superadmin")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if homeID != "" {
		ok, err := s.homes.Exists(ctx, homeID)
		if err != nil {
			return nil, fmt.Errorf("check home: %w", err)
		}
		if !ok {
			return nil, domain.ErrHomeNotFound
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         in.Role,
		CreatedAt:    time.Now().UTC(),
	}
	if homeID != "" {
		user.HomeID = &homeID
	}
	return user, nil
}

// Bootstrap provisions the first superadmin when no user exists. Known
// default credentials are logged at ERROR level, and refused outright when
// production is true.
func (s *CredentialService) Bootstrap(ctx context.Context, username, password string, production bool) error {
	n, err := s.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return nil
	}

	if strings.TrimSpace(username) == "" || password == "" {
		s.log.Warn().Msg("no users exist and no bootstrap credentials were supplied; skipping admin bootstrap")
		return nil
	}

	if IsDefaultCredential(username, password) {
		if production {
			s.log.Error().Str("username", username).Msg("refusing to bootstrap admin with default credentials in production")
			return ErrDefaultCredentials
		}
		s.log.Error().Str("username", username).Msg("bootstrap admin uses default credentials; change ADMIN_PASSWORD immediately")
	}

	created, err := s.Create(ctx, ports.CreateUserInput{
		Username: username,
		Password: password,
		Role:     domain.RoleSuperadmin,
	})
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	s.log.Warn().Str("username", created.Username).Msg("bootstrap superadmin created")
	return nil
}
