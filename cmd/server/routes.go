package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes registers all HTTP routes
func registerRoutes(app *fiber.App, deps *Dependencies) {
	h := deps.Handlers

	// Health check and metrics routes
	h.Health.RegisterRoutes(app)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API Documentation routes
	h.Docs.RegisterRoutes(app)

	v1 := app.Group("/v1")
	if deps.RateLimitMiddleware != nil {
		v1.Use(deps.RateLimitMiddleware.Handler())
	}
	h.Documents.RegisterRoutes(v1)
}
