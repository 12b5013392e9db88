package http

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/bellavista/carehome-cms/internal/infrastructure/http/handlers"
)

// RegisterOps mounts the operational endpoints: health probes, Prometheus
// metrics and the Swagger UI. None of them require authentication.
func RegisterOps(e *echo.Echo, health *handlers.HealthHandler) {
	e.GET("/health", health.Liveness)        // liveness: is the process alive?
	e.GET("/health/ready", health.Readiness) // readiness: are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
