package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestGeminiChatGrounding проверяет запрос с поиском и разбор ссылок grounding.
func TestGeminiChatGrounding(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/test-model:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"parts": [{"text": "{\"itinerary\":"}, {"text": "[]}"}]},
				"groundingMetadata": {"groundingChunks": [
					{"web": {"uri": "https://a.example", "title": "A"}},
					{"retrievedContext": {}},
					{"web": {"uri": "https://b.example", "title": ""}}
				]}
			}]
		}`))
	}))
	defer server.Close()

	client := NewGeminiClient("key", server.URL, "test-model", time.Second, 0)
	completion, err := client.Chat(context.Background(), []Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "plan"},
	}, ChatOptions{SearchGrounding: true})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if completion.Text != `{"itinerary":[]}` {
		t.Fatalf("unexpected text %s", completion.Text)
	}
	if len(completion.Citations) != 2 || completion.Citations[1].URI != "https://b.example" {
		t.Fatalf("unexpected citations %+v", completion.Citations)
	}

	if _, ok := captured["tools"]; !ok {
		t.Fatal("expected search tool in request")
	}
	config, _ := captured["generationConfig"].(map[string]interface{})
	if _, ok := config["responseMimeType"]; ok {
		t.Fatal("expected no json mime type with search tool")
	}
}

// TestGeminiChatAPIError проверяет возврат сообщения об ошибке API.
func TestGeminiChatAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "quota exceeded"}}`))
	}))
	defer server.Close()

	client := NewGeminiClient("key", server.URL, "m", time.Second, 0)
	completion, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "plan"}}, ChatOptions{})
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected quota error, got %v", err)
	}
	if len(completion.Raw) == 0 {
		t.Fatal("expected raw body on error")
	}
}

// TestGeminiChatMissingKey проверяет отказ без API-ключа.
func TestGeminiChatMissingKey(t *testing.T) {
	client := NewGeminiClient(" ", "http://localhost", "m", time.Second, 0)
	if _, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "x"}}, ChatOptions{}); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
