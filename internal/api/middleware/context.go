package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/bellavista/carehome-cms/internal/core/domain"
)

const claimsKey = "claims"

// ClaimsFrom returns the verified claims stored by Authenticate.
func ClaimsFrom(c echo.Context) (*domain.Claims, bool) {
	claims, ok := c.Get(claimsKey).(*domain.Claims)
	return claims, ok && claims != nil
}

// SetClaims stores verified claims on the request.
func SetClaims(c echo.Context, claims *domain.Claims) {
	c.Set(claimsKey, claims)
}

// PrincipalFrom returns the authorization identity of the caller. It fails
// with domain.ErrUnauthenticated when Authenticate did not run.
func PrincipalFrom(c echo.Context) (domain.Principal, error) {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return claims.Principal()
}

// updateMeta rewrites the request meta in the request context.
func updateMeta(c echo.Context, fn func(*domain.RequestMeta)) {
	req := c.Request()
	meta := domain.RequestMetaFrom(req.Context())
	fn(&meta)
	c.SetRequest(req.WithContext(domain.WithRequestMeta(req.Context(), meta)))
}
