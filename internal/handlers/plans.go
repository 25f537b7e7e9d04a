package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/ai-travel-planner/internal/ai"
	"example.com/ai-travel-planner/internal/auth"
	"example.com/ai-travel-planner/internal/models"
	"example.com/ai-travel-planner/internal/notifications"
	"example.com/ai-travel-planner/internal/repository"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type PlanGenerator interface {
	GeneratePlan(ctx context.Context, input models.UserInput) (models.TravelPlan, string, []byte, error)
}

type LastPlanCache interface {
	Save(ctx context.Context, sessionID uuid.UUID, plan models.TravelPlan) error
	Load(ctx context.Context, sessionID uuid.UUID) (models.TravelPlan, bool, error)
	Clear(ctx context.Context, sessionID uuid.UUID) error
}

type PlanHistory interface {
	Create(ctx context.Context, sessionID uuid.UUID, input models.UserInput, plan models.TravelPlan) (models.StoredPlan, error)
	GetByID(ctx context.Context, sessionID, planID uuid.UUID) (models.StoredPlan, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.StoredPlan, error)
}

type GenerationLogger interface {
	LogRequest(ctx context.Context, log repository.GenerationLog) error
}

type PlanHandler struct {
	Generator   PlanGenerator
	LastPlans   LastPlanCache
	History     PlanHistory
	Generations GenerationLogger
	Notifier    *notifications.Hub
	Provider    string
	Model       string
}

// NewPlanHandler создает обработчик генерации и истории маршрутов.
func NewPlanHandler(generator PlanGenerator, lastPlans LastPlanCache, history PlanHistory, generations GenerationLogger, notifier *notifications.Hub, provider, model string) *PlanHandler {
	return &PlanHandler{
		Generator:   generator,
		LastPlans:   lastPlans,
		History:     history,
		Generations: generations,
		Notifier:    notifier,
		Provider:    provider,
		Model:       model,
	}
}

type GeneratedPlanResponse struct {
	ID        *uuid.UUID        `json:"id,omitempty"`
	Plan      models.TravelPlan `json:"plan"`
	CreatedAt *time.Time        `json:"created_at,omitempty"`
}

type PlanSummaryResponse struct {
	ID        uuid.UUID      `json:"id"`
	FromCity  string         `json:"fromCity"`
	ToCity    string         `json:"toCity"`
	TripType  models.Persona `json:"tripType"`
	Duration  int            `json:"duration"`
	Budget    int64          `json:"budget"`
	Summary   string         `json:"summary"`
	Total     float64        `json:"total"`
	CreatedAt time.Time      `json:"created_at"`
}

// Generate запрашивает новый маршрут и сохраняет его как последний план сессии.
func (h *PlanHandler) Generate(c echo.Context) error {
	sessionID, ok := auth.SessionIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var input models.UserInput
	if err := c.Bind(&input); err != nil {
		return badRequest(c, "invalid payload")
	}
	input.FromCity = strings.TrimSpace(input.FromCity)
	input.ToCity = strings.TrimSpace(input.ToCity)
	if err := c.Validate(&input); err != nil {
		return badRequest(c, validationMessage(err))
	}

	ctx := c.Request().Context()
	plan, prompt, raw, err := h.Generator.GeneratePlan(ctx, input)
	h.logGeneration(ctx, sessionID, input, plan, prompt, raw, err)

	if err != nil {
		kind := ai.ErrorKind(err)
		slog.WarnContext(ctx, "plan generation failed",
			slog.String("session_id", sessionID.String()),
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
		publishPlanFailed(h.Notifier, sessionID, kind)
		return badGateway(c, generationErrorMessage(kind), kind)
	}

	if err := h.LastPlans.Save(ctx, sessionID, plan); err != nil {
		slog.WarnContext(ctx, "failed to cache last plan", slog.String("session_id", sessionID.String()), slog.String("error", err.Error()))
	}

	response := GeneratedPlanResponse{Plan: plan}
	stored, err := h.History.Create(ctx, sessionID, input, plan)
	if err != nil {
		slog.WarnContext(ctx, "failed to store plan history", slog.String("session_id", sessionID.String()), slog.String("error", err.Error()))
	} else {
		response.ID = &stored.ID
		response.CreatedAt = &stored.CreatedAt
	}

	slog.InfoContext(ctx, "plan generated",
		slog.String("session_id", sessionID.String()),
		slog.Int("days", len(plan.Itinerary)),
		slog.Int("sources", len(plan.Sources)),
	)
	publishPlanGenerated(h.Notifier, sessionID, response.ID, plan.CostBreakdown.Total)

	return c.JSON(http.StatusCreated, response)
}

// Last возвращает последний сгенерированный план сессии.
func (h *PlanHandler) Last(c echo.Context) error {
	sessionID, ok := auth.SessionIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	plan, found, err := h.LastPlans.Load(c.Request().Context(), sessionID)
	if err != nil {
		slog.ErrorContext(c.Request().Context(), "failed to load last plan", slog.String("error", err.Error()))
		return serverError(c)
	}
	if !found {
		return notFound(c, "no saved plan")
	}

	return c.JSON(http.StatusOK, plan)
}

// ClearLast удаляет последний план сессии.
func (h *PlanHandler) ClearLast(c echo.Context) error {
	sessionID, ok := auth.SessionIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.LastPlans.Clear(c.Request().Context(), sessionID); err != nil {
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

// List возвращает историю планов сессии.
func (h *PlanHandler) List(c echo.Context) error {
	sessionID, ok := auth.SessionIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	plans, err := h.History.ListBySession(c.Request().Context(), sessionID, limit)
	if err != nil {
		return serverError(c)
	}

	response := make([]PlanSummaryResponse, 0, len(plans))
	for _, stored := range plans {
		response = append(response, toPlanSummary(stored))
	}

	return c.JSON(http.StatusOK, response)
}

// Get возвращает сохраненный план по идентификатору.
func (h *PlanHandler) Get(c echo.Context) error {
	stored, ok, err := h.loadStoredPlan(c)
	if !ok {
		return err
	}

	return c.JSON(http.StatusOK, stored)
}

// loadStoredPlan при неудаче сам пишет ответ и возвращает ok=false.
func (h *PlanHandler) loadStoredPlan(c echo.Context) (models.StoredPlan, bool, error) {
	sessionID, ok := auth.SessionIDFromContext(c)
	if !ok {
		return models.StoredPlan{}, false, unauthorized(c)
	}

	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return models.StoredPlan{}, false, badRequest(c, "invalid plan id")
	}

	stored, err := h.History.GetByID(c.Request().Context(), sessionID, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return stored, false, notFound(c, "plan not found")
		}
		return stored, false, serverError(c)
	}

	return stored, true, nil
}

func (h *PlanHandler) logGeneration(ctx context.Context, sessionID uuid.UUID, input models.UserInput, plan models.TravelPlan, prompt string, raw []byte, err error) {
	if h.Generations == nil {
		return
	}

	requestPayload, _ := json.Marshal(input)
	var responsePayload []byte
	if err == nil {
		responsePayload, _ = json.Marshal(plan)
	}

	log := repository.GenerationLog{
		SessionID:       sessionID,
		Provider:        h.Provider,
		Model:           h.Model,
		Prompt:          prompt,
		RequestPayload:  requestPayload,
		ResponsePayload: responsePayload,
		RawResponse:     string(raw),
		Success:         err == nil,
	}
	if err != nil {
		errMsg := err.Error()
		log.ErrorMessage = &errMsg
	}

	if logErr := h.Generations.LogRequest(ctx, log); logErr != nil {
		slog.WarnContext(ctx, "failed to log generation request", slog.String("error", logErr.Error()))
	}
}

func generationErrorMessage(kind string) string {
	switch kind {
	case ai.KindEmptyResponse:
		return "no response from ai"
	case ai.KindMalformedJSON:
		return "ai response has invalid format"
	case ai.KindIncompleteItinerary:
		return "incomplete itinerary generated"
	default:
		return "failed to generate itinerary"
	}
}

func parseLimit(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultListLimit, nil
	}

	limit, err := strconv.Atoi(value)
	if err != nil || limit <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	return limit, nil
}

func toPlanSummary(stored models.StoredPlan) PlanSummaryResponse {
	return PlanSummaryResponse{
		ID:        stored.ID,
		FromCity:  stored.Input.FromCity,
		ToCity:    stored.Input.ToCity,
		TripType:  stored.Input.TripType,
		Duration:  stored.Input.Duration,
		Budget:    stored.Input.Budget,
		Summary:   stored.Plan.Summary,
		Total:     stored.Plan.CostBreakdown.Total,
		CreatedAt: stored.CreatedAt,
	}
}
