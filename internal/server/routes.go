package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/ai-travel-planner/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	healthHandler *handlers.HealthHandler,
	sessionHandler *handlers.SessionHandler,
	planHandler *handlers.PlanHandler,
	generationHandler *handlers.GenerationHandler,
	notificationHandler *handlers.NotificationHandler,
	sessionMiddleware echo.MiddlewareFunc,
	sessionRateLimiter echo.MiddlewareFunc,
	aiRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", healthHandler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	api.POST("/sessions", sessionHandler.Create, sessionRateLimiter)

	plans := api.Group("/plans", sessionMiddleware)
	plans.POST("/generate", planHandler.Generate, aiRateLimiter)
	plans.GET("/last", planHandler.Last)
	plans.DELETE("/last", planHandler.ClearLast)
	plans.GET("", planHandler.List)
	plans.GET("/:id", planHandler.Get)
	plans.GET("/:id/export/csv", planHandler.ExportCSV)

	generations := api.Group("/generations", sessionMiddleware)
	generations.GET("", generationHandler.List)

	events := api.Group("/events", sessionMiddleware)
	events.GET("/stream", notificationHandler.Stream)
}
