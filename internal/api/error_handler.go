package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bellavista/carehome-cms/internal/api/handler"
	"github.com/bellavista/carehome-cms/internal/core/domain"
)

// Error codes returned in the "code" field of every error response.
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeForbidden        = "FORBIDDEN"
	CodeCSRFInvalid      = "CSRF_INVALID"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeAccountLocked    = "ACCOUNT_LOCKED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeTooLarge         = "PAYLOAD_TOO_LARGE"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeUnavailable      = "UNAVAILABLE"
	CodeInternal         = "INTERNAL"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to the status and code of the error taxonomy.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"code": "...", "message": "..."}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		if body.RetryAfter > 0 {
			c.Response().Header().Set("Retry-After", strconv.Itoa(body.RetryAfter))
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	var (
		validation *domain.ValidationError
		creds      *domain.InvalidCredentialsError
		locked     *domain.LockedError
		limited    *domain.RateLimitedError
		he         *echo.HTTPError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, handler.ErrorResponse{
			Code: CodeValidationFailed, Message: "validation failed", Errors: validation.Fields,
		}
	case errors.As(err, &creds):
		remaining := creds.AttemptsRemaining
		return http.StatusUnauthorized, handler.ErrorResponse{
			Code: CodeUnauthenticated, Message: "invalid username or password", AttemptsRemaining: &remaining,
		}
	case errors.As(err, &locked):
		info := locked.Info
		return http.StatusTooManyRequests, handler.ErrorResponse{
			Code: CodeAccountLocked, Message: locked.Error(), LockoutInfo: &info,
		}
	case errors.As(err, &limited):
		return http.StatusTooManyRequests, handler.ErrorResponse{
			Code: CodeRateLimited, Message: "too many requests, please try again later", RetryAfter: limited.RetryAfterSeconds(),
		}
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, handler.ErrorResponse{Code: CodeUnauthenticated, Message: "token expired"}
	case errors.Is(err, domain.ErrTokenInvalid), errors.Is(err, domain.ErrTokenMalformed):
		return http.StatusUnauthorized, handler.ErrorResponse{Code: CodeUnauthenticated, Message: "invalid token"}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, handler.ErrorResponse{Code: CodeUnauthenticated, Message: "authentication required"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, handler.ErrorResponse{Code: CodeForbidden, Message: "access forbidden"}
	case errors.Is(err, domain.ErrCSRFInvalid):
		return http.StatusForbidden, handler.ErrorResponse{Code: CodeCSRFInvalid, Message: "csrf token missing or invalid"}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, handler.ErrorResponse{Code: CodeNotFound, Message: err.Error()}
	case errors.Is(err, domain.ErrUserExists), errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, handler.ErrorResponse{Code: CodeConflict, Message: err.Error()}
	case errors.Is(err, handler.ErrImportBusy):
		return http.StatusServiceUnavailable, handler.ErrorResponse{Code: CodeUnavailable, Message: err.Error()}
	case errors.As(err, &he):
		return fromHTTPError(he, err, log, c)
	}

	logUnhandled(log, c, err)
	return http.StatusInternalServerError, handler.ErrorResponse{Code: CodeInternal, Message: "internal server error"}
}

// fromHTTPError covers echo's own errors: bind failures, unknown routes,
// body limits.
func fromHTTPError(he *echo.HTTPError, err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	msg := fmt.Sprintf("%v", he.Message)
	switch {
	case he.Code == http.StatusNotFound:
		return he.Code, handler.ErrorResponse{Code: CodeNotFound, Message: msg}
	case he.Code == http.StatusUnauthorized:
		return he.Code, handler.ErrorResponse{Code: CodeUnauthenticated, Message: msg}
	case he.Code == http.StatusForbidden:
		return he.Code, handler.ErrorResponse{Code: CodeForbidden, Message: msg}
	case he.Code == http.StatusMethodNotAllowed:
		return he.Code, handler.ErrorResponse{Code: CodeMethodNotAllowed, Message: msg}
	case he.Code == http.StatusRequestEntityTooLarge:
		return he.Code, handler.ErrorResponse{Code: CodeTooLarge, Message: "file too large"}
	case he.Code == http.StatusTooManyRequests:
		return he.Code, handler.ErrorResponse{Code: CodeRateLimited, Message: msg}
	case he.Code >= 400 && he.Code < 500:
		return he.Code, handler.ErrorResponse{Code: CodeValidationFailed, Message: msg}
	}
	logUnhandled(log, c, err)
	return http.StatusInternalServerError, handler.ErrorResponse{Code: CodeInternal, Message: "internal server error"}
}

func logUnhandled(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
}
