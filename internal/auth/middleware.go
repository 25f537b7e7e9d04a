package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const ContextSessionIDKey = "session_id"

// SessionMiddleware проверяет токен сессии и сохраняет session_id в контексте.
func SessionMiddleware(manager *TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			tokenString := strings.TrimSpace(parts[1])
			if tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			sessionID, err := manager.ParseSession(tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid session token")
			}

			c.Set(ContextSessionIDKey, sessionID)
			return next(c)
		}
	}
}

// SessionIDFromContext извлекает идентификатор сессии из контекста.
func SessionIDFromContext(c echo.Context) (uuid.UUID, bool) {
	value := c.Get(ContextSessionIDKey)
	sessionID, ok := value.(uuid.UUID)
	return sessionID, ok
}
