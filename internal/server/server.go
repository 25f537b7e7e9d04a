package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"example.com/ai-travel-planner/internal/ai"
	"example.com/ai-travel-planner/internal/auth"
	"example.com/ai-travel-planner/internal/cache"
	"example.com/ai-travel-planner/internal/config"
	"example.com/ai-travel-planner/internal/handlers"
	"example.com/ai-travel-planner/internal/notifications"
	"example.com/ai-travel-planner/internal/repository"
)

type Dependencies struct {
	DB       *pgxpool.Pool
	Redis    *redis.Client
	AIClient ai.Client
}

// New собирает HTTP-сервер Echo с роутами и зависимостями.
func New(cfg config.Config, logger *slog.Logger, deps Dependencies) *echo.Echo {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	tokenManager := auth.NewTokenManager(cfg.Session.Secret, cfg.Session.Issuer, cfg.Session.TTL)
	planRepo := repository.NewPlanRepository(deps.DB)
	generationRepo := repository.NewGenerationRepository(deps.DB)
	lastPlans := cache.NewLastPlanStore(deps.Redis, cfg.Redis.LastPlanTTL)
	notificationHub := notifications.NewHub()
	aiService := ai.NewService(deps.AIClient, cfg.AI.Provider, logger)

	sessionHandler := handlers.NewSessionHandler(tokenManager)
	planHandler := handlers.NewPlanHandler(aiService, lastPlans, planRepo, generationRepo, notificationHub, cfg.AI.Provider, cfg.AI.Model)
	generationHandler := handlers.NewGenerationHandler(generationRepo)
	notificationHandler := handlers.NewNotificationHandler(notificationHub)
	healthHandler := handlers.NewHealthHandler(map[string]handlers.Pinger{
		"postgres": deps.DB.Ping,
		"redis": func(ctx context.Context) error {
			return deps.Redis.Ping(ctx).Err()
		},
	})

	registerRoutes(
		e,
		healthHandler,
		sessionHandler,
		planHandler,
		generationHandler,
		notificationHandler,
		auth.SessionMiddleware(tokenManager),
		rateLimiter(cfg.Session.RateLimitPerMinute, cfg.Session.RateLimitBurst),
		rateLimiter(cfg.AI.RateLimitPerMinute, cfg.AI.RateLimitBurst),
	)

	return e
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

// rateLimiter ограничивает частоту запросов с одного IP.
func rateLimiter(perMinute, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60.0),
		Burst:     burst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}
