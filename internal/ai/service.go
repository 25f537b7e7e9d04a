package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"example.com/ai-travel-planner/internal/itinerary"
	"example.com/ai-travel-planner/internal/metrics"
	"example.com/ai-travel-planner/internal/models"
)

var (
	ErrEmptyResponse       = errors.New("no response from ai")
	ErrMalformedJSON       = errors.New("ai response has invalid format")
	ErrIncompleteItinerary = itinerary.ErrIncompleteItinerary
)

const (
	KindEmptyResponse       = "empty_response"
	KindMalformedJSON       = "malformed_json"
	KindIncompleteItinerary = "incomplete_itinerary"
	KindGenerationFailed    = "generation_failed"
)

type Service struct {
	client   Client
	provider string
	logger   *slog.Logger
}

// NewService создает сервис генерации маршрутов.
func NewService(client Client, provider string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{client: client, provider: provider, logger: logger}
}

// GeneratePlan запрашивает у AI маршрут, нормализует и валидирует ответ.
func (s *Service) GeneratePlan(ctx context.Context, input models.UserInput) (models.TravelPlan, string, []byte, error) {
	started := time.Now()

	prompt, err := buildPlanPrompt(input)
	if err != nil {
		return models.TravelPlan{}, "", nil, err
	}
	s.logger.DebugContext(ctx, "plan request built",
		slog.String("from", input.FromCity),
		slog.String("to", input.ToCity),
		slog.Int("prompt_length", len(prompt)),
	)

	messages := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}

	completion, err := s.client.Chat(ctx, messages, ChatOptions{SearchGrounding: true})
	if err != nil {
		s.observe(started, err)
		return models.TravelPlan{}, prompt, completion.Raw, err
	}
	s.logger.DebugContext(ctx, "raw response received",
		slog.Int("length", len(completion.Text)),
		slog.Int("citations", len(completion.Citations)),
	)

	plan, err := parsePlan(ctx, s.logger, completion.Text)
	if err != nil {
		s.observe(started, err)
		return models.TravelPlan{}, prompt, completion.Raw, err
	}

	plan.Sources = DedupeSources(completion.Citations)
	s.observe(started, nil)

	return plan, prompt, completion.Raw, nil
}

func (s *Service) observe(started time.Time, err error) {
	status := "success"
	if err != nil {
		status = ErrorKind(err)
	}
	metrics.ObserveGeneration(s.provider, status, time.Since(started))
}

// ParsePlan превращает сырой текст модели в канонический план.
func ParsePlan(text string) (models.TravelPlan, error) {
	return parsePlan(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)), text)
}

func parsePlan(ctx context.Context, logger *slog.Logger, text string) (models.TravelPlan, error) {
	if strings.TrimSpace(text) == "" {
		return models.TravelPlan{}, ErrEmptyResponse
	}

	block := itinerary.ExtractJSON(text)
	logger.DebugContext(ctx, "json block extracted", slog.Int("length", len(block)))

	var raw interface{}
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		return models.TravelPlan{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	plan := itinerary.Normalize(raw)
	logger.DebugContext(ctx, "plan normalized",
		slog.Int("travel_options", len(plan.TravelOptions)),
		slog.Int("stay_options", len(plan.Accommodation.Options)),
		slog.Int("days", len(plan.Itinerary)),
		slog.Float64("total", plan.CostBreakdown.Total),
	)

	if err := itinerary.Validate(plan); err != nil {
		logger.DebugContext(ctx, "plan validation failed", slog.String("error", err.Error()))
		return models.TravelPlan{}, err
	}
	logger.DebugContext(ctx, "plan validation passed")

	return plan, nil
}

// DedupeSources оставляет первую ссылку для каждого URI; без ссылок возвращает nil.
func DedupeSources(citations []Citation) []models.Source {
	if len(citations) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(citations))
	sources := make([]models.Source, 0, len(citations))
	for _, citation := range citations {
		uri := strings.TrimSpace(citation.URI)
		if uri == "" {
			continue
		}
		if _, ok := seen[uri]; ok {
			continue
		}
		seen[uri] = struct{}{}

		title := strings.TrimSpace(citation.Title)
		if title == "" {
			title = models.DefaultSourceTitle
		}
		sources = append(sources, models.Source{Title: title, URI: uri})
	}

	return sources
}

// ErrorKind возвращает код ошибки генерации для ответа клиенту и метрик.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrEmptyResponse):
		return KindEmptyResponse
	case errors.Is(err, ErrMalformedJSON):
		return KindMalformedJSON
	case errors.Is(err, ErrIncompleteItinerary):
		return KindIncompleteItinerary
	default:
		return KindGenerationFailed
	}
}
