package middleware

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
)

// Authenticate verifies the bearer token and stores its claims in the echo
// context. Missing, malformed, invalid and expired tokens are rejected with
// a domain error the central error handler renders as 401.
func Authenticate(tokens ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c)
			if err != nil {
				return err
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				return err
			}
			if _, err := claims.Principal(); err != nil {
				return err
			}

			SetClaims(c, claims)
			updateMeta(c, func(m *domain.RequestMeta) { m.Actor = claims.Username })
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", fmt.Errorf("%w: missing authorization header", domain.ErrUnauthenticated)
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("%w: invalid authorization header", domain.ErrUnauthenticated)
	}
	return strings.TrimSpace(token), nil
}

// hasBearer reports whether the request authenticates with a token rather
// than ambient browser state.
func hasBearer(c echo.Context) bool {
	_, err := bearerToken(c)
	return err == nil
}
