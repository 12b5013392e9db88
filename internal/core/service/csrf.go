package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
)

const (
	csrfTokenBytes  = 32
	defaultCSRFTTL  = time.Hour
	csrfStorePrefix = "csrf:"
)

// CSRFManager issues and checks anti-forgery tokens for cookie-less admin
// browsers.
type CSRFManager struct {
	store ports.TokenStore
	ttl   time.Duration
	log   zerolog.Logger
}

func NewCSRFManager(store ports.TokenStore, ttl time.Duration, log zerolog.Logger) *CSRFManager {
	if ttl <= 0 {
		ttl = defaultCSRFTTL
	}
	return &CSRFManager{store: store, ttl: ttl, log: log}
}

// TTL returns how long an issued token stays valid.
func (m *CSRFManager) TTL() time.Duration { return m.ttl }

// Issue creates a new url-safe token.
func (m *CSRFManager) Issue(ctx context.Context) (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("csrf token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(b)
	if err := m.store.Put(ctx, csrfStorePrefix+token, m.ttl); err != nil {
		return "", fmt.Errorf("store csrf token: %w", err)
	}
	return token, nil
}

// Validate returns domain.ErrCSRFInvalid unless token was issued and has not
// expired. Tokens stay valid until they expire so that an admin can submit
// several forms from one page.
func (m *CSRFManager) Validate(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrCSRFInvalid
	}
	ok, err := m.store.Exists(ctx, csrfStorePrefix+token)
	if err != nil {
		m.log.Error().Err(err).Msg("csrf token lookup failed")
		return domain.ErrCSRFInvalid
	}
	if !ok {
		return domain.ErrCSRFInvalid
	}
	return nil
}

// Revoke invalidates token.
func (m *CSRFManager) Revoke(ctx context.Context, token string) {
	if err := m.store.Delete(ctx, csrfStorePrefix+token); err != nil {
		m.log.Warn().Err(err).Msg("csrf token revoke failed")
	}
}
