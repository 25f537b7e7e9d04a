package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/ai-travel-planner/internal/auth"
	"example.com/ai-travel-planner/internal/notifications"
)

const (
	eventPlanGenerated = "plan.generated"
	eventPlanFailed    = "plan.failed"
)

type NotificationHandler struct {
	Hub *notifications.Hub
}

// NewNotificationHandler создает SSE-обработчик событий генерации.
func NewNotificationHandler(hub *notifications.Hub) *NotificationHandler {
	return &NotificationHandler{Hub: hub}
}

// Stream открывает SSE-поток событий для сессии.
func (h *NotificationHandler) Stream(c echo.Context) error {
	sessionID, ok := auth.SessionIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return serverError(c)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	ch, unsubscribe := h.Hub.Subscribe(sessionID)
	defer unsubscribe()

	_ = writeSSE(c, notifications.Event{Type: "connected", Data: map[string]string{"session_id": sessionID.String()}})
	flusher.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if err := writeSSE(c, event); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

func writeSSE(c echo.Context, event notifications.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := c.Response().Write([]byte("event: " + event.Type + "\n")); err != nil {
		return err
	}
	if _, err := c.Response().Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
		return err
	}

	return nil
}

func publishPlanGenerated(hub *notifications.Hub, sessionID uuid.UUID, planID *uuid.UUID, total float64) {
	if hub == nil {
		return
	}

	data := map[string]interface{}{"total": total}
	if planID != nil {
		data["plan_id"] = planID.String()
	}

	hub.Publish(sessionID, notifications.Event{Type: eventPlanGenerated, Data: data})
}

func publishPlanFailed(hub *notifications.Hub, sessionID uuid.UUID, kind string) {
	if hub == nil {
		return
	}

	hub.Publish(sessionID, notifications.Event{
		Type: eventPlanFailed,
		Data: map[string]string{"kind": kind},
	})
}
