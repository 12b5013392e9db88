package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bellavista/carehome-cms/internal/core/domain"
)

// RequestMeta stores the client address and request id in the request
// context so services can attribute audit entries. It must run after echo's
// RequestID middleware.
func RequestMeta() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			updateMeta(c, func(m *domain.RequestMeta) {
				m.Actor = ""
				m.IP = ClientIdentifier(c.Request())
				m.RequestID = c.Response().Header().Get(echo.HeaderXRequestID)
			})
			return next(c)
		}
	}
}

// ClientIdentifier returns the first X-Forwarded-For entry, else X-Real-IP,
// else the peer address without its port.
func ClientIdentifier(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
