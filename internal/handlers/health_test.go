package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/ai-travel-planner/internal/auth"
)

// TestHealthDegraded проверяет статус 503 при недоступной зависимости.
func TestHealthDegraded(t *testing.T) {
	handler := NewHealthHandler(map[string]Pinger{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)
	_ = handler.Health(c)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var response HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Status != "degraded" || response.Checks["postgres"] != "ok" {
		t.Fatalf("unexpected response %+v", response)
	}
}

// TestSessionCreate проверяет выдачу токена, который принимает менеджер.
func TestSessionCreate(t *testing.T) {
	manager := auth.NewTokenManager("secret", "travel-planner", time.Hour)
	handler := NewSessionHandler(manager)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil), rec)
	if err := handler.Create(c); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var response SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	sessionID, err := manager.ParseSession(response.Token)
	if err != nil || sessionID != response.SessionID {
		t.Fatalf("expected token for session %s, got %s (%v)", response.SessionID, sessionID, err)
	}
}
