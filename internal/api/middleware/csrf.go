package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	csrfHeader    = "X-CSRF-Token"
	csrfFormField = "_csrf_token"
)

// CSRFValidator checks an anti-forgery token.
type CSRFValidator interface {
	Validate(ctx context.Context, token string) error
}

// CSRF requires a valid token on state-changing requests. Requests carrying
// a bearer token are exempt since browsers never attach one on their own.
func CSRF(v CSRFValidator, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if isSafeMethod(req.Method) || hasBearer(c) {
				return next(c)
			}

			token := req.Header.Get(csrfHeader)
			if token == "" {
				token = c.FormValue(csrfFormField)
			}
			if err := v.Validate(req.Context(), token); err != nil {
				log.Warn().
					Str("method", req.Method).
					Str("path", req.URL.Path).
					Str("ip", ClientIdentifier(req)).
					Msg("csrf validation failed")
				return err
			}
			return next(c)
		}
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
