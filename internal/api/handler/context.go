package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/bellavista/carehome-cms/internal/api/middleware"
	"github.com/bellavista/carehome-cms/internal/core/domain"
)

// bind decodes the request into dst and validates it. Decoding failures are
// reported as a validation error on the body.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return domain.NewValidationError("body", "invalid request payload")
	}
	return c.Validate(dst)
}

// ctxClaims returns the verified claims injected by Authenticate and fails
// fast when the route was registered without it.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return claims, nil
}
