package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestNewHealthHandler(t *testing.T) {
	t.Run("creates handler with correct initialization", func(t *testing.T) {
		handler := NewHealthHandler(stubPinger{}, nil, "1.2.3")

		require.NotNil(t, handler)
		assert.Equal(t, "1.2.3", handler.version)
		assert.False(t, handler.startTime.IsZero())
	})

	t.Run("redis is optional", func(t *testing.T) {
		handler := NewHealthHandler(stubPinger{}, nil, "1.0.0")
		assert.Len(t, handler.dependencies(), 1)

		handler = NewHealthHandler(stubPinger{}, stubPinger{}, "1.0.0")
		assert.Len(t, handler.dependencies(), 2)
	})
}

func TestHealthHandler_Health(t *testing.T) {
	t.Run("healthy when every dependency answers", func(t *testing.T) {
		app := fiber.New()
		handler := NewHealthHandler(stubPinger{}, stubPinger{}, "1.0.0")
		app.Get("/health", handler.Health)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var status HealthStatus
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
		assert.Equal(t, "healthy", status.Status)
		assert.Equal(t, "healthy", status.Checks["mongo"])
		assert.Equal(t, "healthy", status.Checks["redis"])
	})

	t.Run("unhealthy when mongo is down", func(t *testing.T) {
		app := fiber.New()
		handler := NewHealthHandler(stubPinger{err: errors.New("connection refused")}, nil, "1.0.0")
		app.Get("/health", handler.Health)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var status HealthStatus
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
		assert.Equal(t, "unhealthy", status.Status)
		assert.Equal(t, "unhealthy: connection refused", status.Checks["mongo"])
		assert.NotContains(t, status.Checks, "redis")
	})
}

func TestHealthHandler_Liveness(t *testing.T) {
	t.Run("returns alive status", func(t *testing.T) {
		app := fiber.New()
		handler := NewHealthHandler(stubPinger{}, nil, "1.0.0")

		app.Get("/livez", handler.Liveness)

		req := httptest.NewRequest(http.MethodGet, "/livez", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result map[string]string
		err = json.NewDecoder(resp.Body).Decode(&result)
		require.NoError(t, err)
		assert.Equal(t, "alive", result["status"])
	})
}

func TestHealthHandler_Readiness(t *testing.T) {
	app := fiber.New()
	handler := NewHealthHandler(stubPinger{}, stubPinger{err: errors.New("timeout")}, "1.0.0")
	app.Get("/readyz", handler.Readiness)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var result map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "not ready", result["status"])
	assert.Equal(t, "redis unavailable", result["reason"])
}

func TestHealthHandler_Version(t *testing.T) {
	t.Run("returns version and uptime", func(t *testing.T) {
		app := fiber.New()
		handler := NewHealthHandler(stubPinger{}, nil, "2.1.0")

		// Wait a bit to have measurable uptime
		time.Sleep(10 * time.Millisecond)

		app.Get("/version", handler.Version)

		req := httptest.NewRequest(http.MethodGet, "/version", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result map[string]interface{}
		err = json.NewDecoder(resp.Body).Decode(&result)
		require.NoError(t, err)

		assert.Equal(t, "2.1.0", result["version"])
		assert.NotEmpty(t, result["uptime"])
	})
}

func TestHealthHandler_RegisterRoutes(t *testing.T) {
	t.Run("registers all health routes", func(t *testing.T) {
		app := fiber.New()
		handler := NewHealthHandler(stubPinger{}, nil, "1.0.0")

		handler.RegisterRoutes(app)

		routes := app.GetRoutes()
		routePaths := make(map[string]bool)
		for _, route := range routes {
			if route.Method == "GET" {
				routePaths[route.Path] = true
			}
		}

		expectedRoutes := []string{
			"/health",
			"/healthz",
			"/livez",
			"/live",
			"/readyz",
			"/ready",
			"/version",
		}

		for _, path := range expectedRoutes {
			assert.True(t, routePaths[path], "Route %s should be registered", path)
		}
	})
}
