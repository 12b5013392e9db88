package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
	"github.com/labstack/echo/v4"

	"github.com/bellavista/carehome-cms/internal/api/metrics"
	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/service"
)

// RateLimit applies a sliding-window limiter keyed by client identifier and
// reports the quota in X-RateLimit-* headers.
func RateLimit(limiter *service.RateLimiter) echo.MiddlewareFunc {
	return rateLimit(limiter, nil)
}

// LoginRejecter audits login attempts refused before the credentials are
// checked.
type LoginRejecter interface {
	RejectLogin(ctx context.Context, username, reason string)
}

// LoginRateLimit is RateLimit for the login endpoint. A rejected attempt is
// still a login decision, so it is counted and audited against the
// submitted username.
func LoginRateLimit(limiter *service.RateLimiter, auth LoginRejecter) echo.MiddlewareFunc {
	return rateLimit(limiter, func(c echo.Context) {
		var body struct {
			Username string `json:"username"`
		}
		_, _ = peekJSON(c, &body)
		metrics.LoginAttemptsTotal.WithLabelValues(domain.LoginReasonRateLimited).Inc()
		auth.RejectLogin(c.Request().Context(), body.Username, domain.LoginReasonRateLimited)
	})
}

func rateLimit(limiter *service.RateLimiter, onLimited func(c echo.Context)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d, err := limiter.Allow(c.Request().Context(), ClientIdentifier(c.Request()))

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if !d.ResetAt.IsZero() {
				h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
			}

			if err != nil {
				var limited *domain.RateLimitedError
				if errors.As(err, &limited) {
					metrics.RateLimitedTotal.WithLabelValues(limiter.Scope()).Inc()
					if onLimited != nil {
						onLimited(c)
					}
				}
				return err
			}
			return next(c)
		}
	}
}

// GlobalRateLimit caps the request rate of every client across the whole
// API. It guards against floods; the per-endpoint limiters above handle
// abuse of individual forms.
func GlobalRateLimit(limit int, window time.Duration) echo.MiddlewareFunc {
	return echo.WrapMiddleware(httprate.Limit(limit, window,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return ClientIdentifier(r), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			metrics.RateLimitedTotal.WithLabelValues("global").Inc()
			w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"code":"RATE_LIMITED","message":"too many requests, please try again later"}`))
		}),
	))
}
