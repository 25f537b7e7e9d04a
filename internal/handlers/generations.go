package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/ai-travel-planner/internal/auth"
	"example.com/ai-travel-planner/internal/models"
)

type GenerationLister interface {
	ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.GenerationRequest, error)
}

type GenerationHandler struct {
	Requests GenerationLister
}

// NewGenerationHandler создает обработчик журнала генераций.
func NewGenerationHandler(requests GenerationLister) *GenerationHandler {
	return &GenerationHandler{Requests: requests}
}

// List возвращает последние попытки генерации сессии, включая неудачные.
func (h *GenerationHandler) List(c echo.Context) error {
	sessionID, ok := auth.SessionIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	requests, err := h.Requests.ListBySession(c.Request().Context(), sessionID, limit)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, requests)
}
