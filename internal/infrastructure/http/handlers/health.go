package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/bellavista/carehome-cms/internal/infrastructure/db/postgres"
)

const (
	statusOK        = "ok"
	statusUnhealthy = "unhealthy"
	statusDisabled  = "disabled"

	probeTimeout = 3 * time.Second
)

// Check probes one dependency. A nil Ping marks the dependency as not
// configured for this deployment.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// PostgresCheck pings the content database.
func PostgresCheck(db *gorm.DB) Check {
	c := Check{Name: "postgres"}
	if db != nil {
		c.Ping = func(ctx context.Context) error { return postgres.Ping(ctx, db) }
	}
	return c
}

// MongoCheck runs a ping command against the audit database.
func MongoCheck(db *mongo.Database) Check {
	c := Check{Name: "mongo"}
	if db != nil {
		c.Ping = func(ctx context.Context) error {
			return db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
		}
	}
	return c
}

// RedisCheck pings the shared state store.
func RedisCheck(rdb *redis.Client) Check {
	c := Check{Name: "redis"}
	if rdb != nil {
		c.Ping = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return c
}

// HealthHandler serves GET /health (liveness) and GET /health/ready
// (readiness).
type HealthHandler struct {
	checks []Check
}

func NewHealthHandler(checks ...Check) *HealthHandler {
	sorted := append([]Check(nil), checks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &HealthHandler{checks: sorted}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type healthResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Liveness always answers 200 while the process is up and reports the
// state of each dependency for operators.
//
// @Summary  Liveness probe
// @Tags     health
// @Produce  json
// @Success  200 {object} healthResponse
// @Router   /health [get]
func (h *HealthHandler) Liveness(c echo.Context) error {
	deps, _ := h.probe(c.Request().Context())
	return c.JSON(http.StatusOK, healthResponse{Status: statusOK, Dependencies: deps})
}

// Readiness answers 503 when a configured dependency is down.
//
// @Summary  Readiness probe
// @Tags     health
// @Produce  json
// @Success  200 {object} healthResponse
// @Failure  503 {object} healthResponse
// @Router   /health/ready [get]
func (h *HealthHandler) Readiness(c echo.Context) error {
	deps, healthy := h.probe(c.Request().Context())
	if !healthy {
		return c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "degraded", Dependencies: deps})
	}
	return c.JSON(http.StatusOK, healthResponse{Status: statusOK, Dependencies: deps})
}

func (h *HealthHandler) probe(ctx context.Context) (map[string]dependencyStatus, bool) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	deps := make(map[string]dependencyStatus, len(h.checks))
	healthy := true
	for _, check := range h.checks {
		if check.Ping == nil {
			deps[check.Name] = dependencyStatus{Status: statusDisabled}
			continue
		}
		if err := check.Ping(ctx); err != nil {
			deps[check.Name] = dependencyStatus{Status: statusUnhealthy, Error: err.Error()}
			healthy = false
			continue
		}
		deps[check.Name] = dependencyStatus{Status: statusOK}
	}
	return deps, healthy
}
