package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h echo.HandlerFunc) (*httptest.ResponseRecorder, healthResponse) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)
	require.NoError(t, h(c))

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHealth_ReportsEachDependency(t *testing.T) {
	h := NewHealthHandler(
		Check{Name: "postgres", Ping: func(context.Context) error { return nil }},
		Check{Name: "mongo"},
		Check{Name: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }},
	)

	rec, body := serve(t, h.Liveness)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, statusOK, body.Dependencies["postgres"].Status)
	assert.Equal(t, statusDisabled, body.Dependencies["mongo"].Status)
	assert.Equal(t, statusUnhealthy, body.Dependencies["redis"].Status)
	assert.Equal(t, "connection refused", body.Dependencies["redis"].Error)

	rec, body = serve(t, h.Readiness)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", body.Status)
}

func TestReadiness_DisabledDependenciesDoNotFail(t *testing.T) {
	h := NewHealthHandler(PostgresCheck(nil), MongoCheck(nil), RedisCheck(nil))
	rec, body := serve(t, h.Readiness)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body.Dependencies, 3)
	for name, dep := range body.Dependencies {
		assert.Equal(t, statusDisabled, dep.Status, name)
	}
}

func TestRedisCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	check := RedisCheck(rdb)
	require.NotNil(t, check.Ping)
	assert.NoError(t, check.Ping(context.Background()))

	mr.Close()
	assert.Error(t, check.Ping(context.Background()))
}
