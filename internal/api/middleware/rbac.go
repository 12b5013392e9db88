package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/bellavista/carehome-cms/internal/api/metrics"
	"github.com/bellavista/carehome-cms/internal/core/domain"
)

const maxPeekBytes = 1 << 20

// Auditor records denied requests.
type Auditor interface {
	LogUnauthorizedAccess(ctx context.Context, resourceType, resourceID, reason string)
}

// HomeResolver finds the home that owns the resource a request targets. An
// empty result denotes a global resource.
type HomeResolver func(c echo.Context) (string, error)

// RequireSuperadmin rejects every caller that is not a superadmin. It must
// run after Authenticate.
func RequireSuperadmin(audit Auditor, resourceType string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, err := PrincipalFrom(c)
			if err != nil {
				return err
			}
			if !domain.IsSuperadmin(p) {
				deny(c, audit, resourceType, c.Param("id"), "superadmin_required")
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// AuthorizeHome lets the request through only when the caller may act on
// the home resolve returns. It must run after Authenticate.
func AuthorizeHome(resolve HomeResolver, audit Auditor, resourceType string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, err := PrincipalFrom(c)
			if err != nil {
				return err
			}
			homeID, err := resolve(c)
			if err != nil {
				return err
			}
			if !domain.CanAccess(p, homeID) {
				resourceID := c.Param("id")
				if resourceID == "" {
					resourceID = homeID
				}
				deny(c, audit, resourceType, resourceID, "home_scope")
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

func deny(c echo.Context, audit Auditor, resourceType, resourceID, reason string) {
	metrics.AuthzDeniedTotal.WithLabelValues(reason).Inc()
	audit.LogUnauthorizedAccess(c.Request().Context(), resourceType, resourceID, reason)
}

// HomeFromParam reads the home id from a path parameter.
func HomeFromParam(name string) HomeResolver {
	return func(c echo.Context) (string, error) {
		return c.Param(name), nil
	}
}

// homeBody decodes the home id the same way the handlers bind it, so key
// matching is case-insensitive and the last duplicate key wins.
type homeBody struct {
	HomeID string `json:"homeId"`
}

// HomeFromBody peeks at the homeId field of the JSON body and restores the
// body for the handler.
func HomeFromBody() HomeResolver {
	return func(c echo.Context) (string, error) {
		var body homeBody
		if ok, err := peekJSON(c, &body); err != nil || !ok {
			// The handler reports malformed JSON.
			return "", err
		}
		return body.HomeID, nil
	}
}

// peekJSON decodes the JSON body into dst and puts the bytes back for the
// next reader. It reports false when the body is absent or malformed.
func peekJSON(c echo.Context, dst any) (bool, error) {
	req := c.Request()
	if req.Body == nil {
		return false, nil
	}
	data, err := io.ReadAll(io.LimitReader(req.Body, maxPeekBytes))
	if err != nil {
		return false, domain.NewValidationError("body", "could not read request body")
	}
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(data))
	return json.Unmarshal(data, dst) == nil, nil
}

// HomeFromBodyOr prefers the home named in the JSON body and falls back to
// another resolver when the body does not name one. Updates that move an
// entity to a different home are checked against the destination.
func HomeFromBodyOr(fallback HomeResolver) HomeResolver {
	fromBody := HomeFromBody()
	return func(c echo.Context) (string, error) {
		homeID, err := fromBody(c)
		if err != nil || homeID != "" {
			return homeID, err
		}
		return fallback(c)
	}
}

// HomeFromLookup loads the entity named by a path parameter and returns its
// owning home.
func HomeFromLookup(param string, lookup func(ctx context.Context, id string) (string, error)) HomeResolver {
	return func(c echo.Context) (string, error) {
		return lookup(c.Request().Context(), c.Param(param))
	}
}
