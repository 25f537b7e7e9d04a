package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestGroqChatJSONMode проверяет запрос в режиме JSON и разбор ответа.
func TestGroqChatJSONMode(t *testing.T) {
	var captured groqChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("unexpected authorization %q", r.Header.Get("Authorization"))
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)

		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "{\"summary\":\"ok\"}"}}]}`))
	}))
	defer server.Close()

	client := NewGroqClient("key", server.URL+"/", "llama", time.Second, 0)
	completion, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "plan"}}, ChatOptions{SearchGrounding: true})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if completion.Text != `{"summary":"ok"}` || len(completion.Citations) != 0 {
		t.Fatalf("unexpected completion %+v", completion)
	}
	if captured.ResponseFormat == nil || captured.ResponseFormat.Type != "json_object" {
		t.Fatalf("expected json_object response format, got %+v", captured.ResponseFormat)
	}
	if captured.MaxTokens != defaultMaxTokens {
		t.Fatalf("expected default max tokens, got %d", captured.MaxTokens)
	}
}

// TestGroqChatNoChoices проверяет, что пустой ответ не считается ошибкой транспорта.
func TestGroqChatNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	completion, err := NewGroqClient("key", server.URL, "llama", time.Second, 0).Chat(context.Background(), []Message{{Role: "user", Content: "plan"}}, ChatOptions{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if completion.Text != "" {
		t.Fatalf("expected empty text, got %q", completion.Text)
	}
}
