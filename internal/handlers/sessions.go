package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/ai-travel-planner/internal/auth"
)

type SessionHandler struct {
	TokenManager *auth.TokenManager
}

// NewSessionHandler создает обработчик анонимных сессий.
func NewSessionHandler(manager *auth.TokenManager) *SessionHandler {
	return &SessionHandler{TokenManager: manager}
}

type SessionResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Create выдает новую анонимную сессию.
func (h *SessionHandler) Create(c echo.Context) error {
	session, err := h.TokenManager.NewSession()
	if err != nil {
		slog.ErrorContext(c.Request().Context(), "failed to issue session", slog.String("error", err.Error()))
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, SessionResponse{
		SessionID: session.ID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}
