package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"example.com/ai-travel-planner/internal/config"
)

const (
	ProviderGemini    = "gemini"
	ProviderGeminiSDK = "gemini-sdk"
	ProviderGroq      = "groq"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatOptions struct {
	SearchGrounding bool
}

// Citation is a grounding reference reported by the model provider.
type Citation struct {
	Title string
	URI   string
}

type Completion struct {
	Text      string
	Raw       []byte
	Citations []Citation
}

type Client interface {
	Chat(ctx context.Context, messages []Message, opts ChatOptions) (Completion, error)
}

// NewClient создает клиента выбранного AI-провайдера.
func NewClient(ctx context.Context, cfg config.AIConfig) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderGemini:
		return NewGeminiClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout, cfg.MaxOutputTokens), nil
	case ProviderGeminiSDK:
		return NewGenAIClient(ctx, cfg.APIKey, cfg.Model, cfg.MaxOutputTokens)
	case ProviderGroq:
		return NewGroqClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout, cfg.MaxOutputTokens), nil
	default:
		return nil, fmt.Errorf("unknown ai provider: %s", cfg.Provider)
	}
}

func resolveMaxTokens(value int) int {
	if value > 0 {
		return value
	}

	return defaultMaxTokens
}

func resolveTimeout(value time.Duration) time.Duration {
	if value > 0 {
		return value
	}

	return defaultTimeout
}
