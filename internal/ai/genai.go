package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GenAIClient talks to Gemini through the official Go SDK. The SDK exposes
// no search tool, so completions never carry citations.
type GenAIClient struct {
	client    *genai.Client
	model     string
	maxTokens int
}

// NewGenAIClient создает клиента Gemini SDK.
func NewGenAIClient(ctx context.Context, apiKey, model string, maxTokens int) (*GenAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is missing")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini sdk client: %w", err)
	}

	return &GenAIClient{client: client, model: model, maxTokens: maxTokens}, nil
}

// Close освобождает ресурсы SDK.
func (c *GenAIClient) Close() error {
	return c.client.Close()
}

// Chat отправляет сообщения через SDK и возвращает текст ответа.
func (c *GenAIClient) Chat(ctx context.Context, messages []Message, _ ChatOptions) (Completion, error) {
	model := c.client.GenerativeModel(c.model)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.4)
	model.SetMaxOutputTokens(int32(resolveMaxTokens(c.maxTokens)))

	systemParts := make([]genai.Part, 0)
	userParts := make([]genai.Part, 0)
	for _, message := range messages {
		text := strings.TrimSpace(message.Content)
		if text == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(message.Role), "system") {
			systemParts = append(systemParts, genai.Text(text))
			continue
		}
		userParts = append(userParts, genai.Text(text))
	}

	if len(userParts) == 0 {
		return Completion{}, errors.New("gemini request has no user content")
	}
	if len(systemParts) > 0 {
		model.SystemInstruction = &genai.Content{Parts: systemParts}
	}

	resp, err := model.GenerateContent(ctx, userParts...)
	if err != nil {
		return Completion{}, fmt.Errorf("gemini sdk generation error: %w", err)
	}

	raw, _ := json.Marshal(resp)

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Completion{Raw: raw}, nil
	}

	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}

	return Completion{Text: builder.String(), Raw: raw}, nil
}
