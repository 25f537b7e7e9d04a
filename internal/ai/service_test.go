package ai

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"example.com/ai-travel-planner/internal/models"
)

type fakeClient struct {
	completion Completion
	err        error
	messages   []Message
	opts       ChatOptions
}

func (f *fakeClient) Chat(_ context.Context, messages []Message, opts ChatOptions) (Completion, error) {
	f.messages = messages
	f.opts = opts
	return f.completion, f.err
}

func testInput() models.UserInput {
	return models.UserInput{
		FromCity:  "Delhi",
		ToCity:    "Goa",
		TripType:  models.PersonaFriends,
		Budget:    15000,
		Duration:  3,
		Interests: []models.Interest{models.InterestBeaches, models.InterestNightlife, models.InterestBeaches},
	}
}

const fencedPlan = "Here is your plan:\n```json\n" + `{
  "summary": "Beach hopping on a budget",
  "travelOptions": [{"mode": "Sleeper Train", "type": "SL", "estimatedCost": "₹850", "description": "Goa Express"}],
  "accommodation": {"area": "Anjuna", "whyThisArea": "Parties", "options": [{"name": "Zostel", "price": 650, "rating": 4.4, "reviewCount": "2k+", "highlight": "Pool"}]},
  "itinerary": [{"day": 1, "title": "Arrive", "activities": ["Check in"], "estimatedCost": 500}],
  "costBreakdown": {"travel": 1700, "stay": 1950, "food": 1500, "activities": 1000},
  "localTips": ["Rent a scooty"]
}` + "\n```\nEnjoy {your} trip!"

// TestGeneratePlanSuccess проверяет полный цикл генерации и прикрепление источников.
func TestGeneratePlanSuccess(t *testing.T) {
	client := &fakeClient{completion: Completion{
		Text: fencedPlan,
		Raw:  []byte(`{"candidates":[]}`),
		Citations: []Citation{
			{Title: "IRCTC", URI: "https://irctc.co.in"},
			{Title: "IRCTC duplicate", URI: "https://irctc.co.in"},
			{Title: "", URI: "https://zostel.com"},
		},
	}}
	service := NewService(client, "fake", nil)

	plan, prompt, raw, err := service.GeneratePlan(context.Background(), testInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !client.opts.SearchGrounding {
		t.Fatal("expected search grounding to be requested")
	}
	if len(client.messages) != 2 || client.messages[1].Content != prompt {
		t.Fatalf("unexpected messages %+v", client.messages)
	}
	if !strings.Contains(prompt, `"Beaches",`) || strings.Count(prompt, `"Beaches"`) != 1 {
		t.Fatalf("expected deduplicated interests in prompt, got %s", prompt)
	}
	if string(raw) != `{"candidates":[]}` {
		t.Fatalf("unexpected raw %s", raw)
	}

	if plan.CostBreakdown.Total != 6150 {
		t.Fatalf("expected recomputed total 6150, got %v", plan.CostBreakdown.Total)
	}
	if plan.TravelOptions[0].EstimatedCost != 850 {
		t.Fatalf("expected coerced cost 850, got %v", plan.TravelOptions[0].EstimatedCost)
	}
	if plan.LocalTips[0] != (models.LocalTip{Category: "Tip", Text: "Rent a scooty"}) {
		t.Fatalf("unexpected tip %+v", plan.LocalTips[0])
	}

	wantSources := []models.Source{
		{Title: "IRCTC", URI: "https://irctc.co.in"},
		{Title: "Travel Source", URI: "https://zostel.com"},
	}
	if !reflect.DeepEqual(plan.Sources, wantSources) {
		t.Fatalf("unexpected sources %+v", plan.Sources)
	}
}

// TestGeneratePlanWithoutCitations проверяет, что источники не задаются без ссылок.
func TestGeneratePlanWithoutCitations(t *testing.T) {
	client := &fakeClient{completion: Completion{Text: `{"itinerary": ["Arrive"]}`}}

	plan, _, _, err := NewService(client, "fake", nil).GeneratePlan(context.Background(), testInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if plan.Sources != nil {
		t.Fatalf("expected nil sources, got %v", plan.Sources)
	}
}

// TestGeneratePlanErrors проверяет классификацию терминальных ошибок.
func TestGeneratePlanErrors(t *testing.T) {
	transportErr := errors.New("connection reset")

	cases := []struct {
		name   string
		client *fakeClient
		want   error
		kind   string
	}{
		{name: "empty", client: &fakeClient{completion: Completion{Text: "  \n"}}, want: ErrEmptyResponse, kind: KindEmptyResponse},
		{name: "malformed", client: &fakeClient{completion: Completion{Text: "I cannot help with that"}}, want: ErrMalformedJSON, kind: KindMalformedJSON},
		{name: "incomplete", client: &fakeClient{completion: Completion{Text: `{"summary": "nothing else"}`}}, want: ErrIncompleteItinerary, kind: KindIncompleteItinerary},
		{name: "transport", client: &fakeClient{err: transportErr, completion: Completion{Raw: []byte("503")}}, want: transportErr, kind: KindGenerationFailed},
	}

	for _, tc := range cases {
		plan, _, raw, err := NewService(tc.client, "fake", nil).GeneratePlan(context.Background(), testInput())
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		if kind := ErrorKind(err); kind != tc.kind {
			t.Fatalf("%s: expected kind %s, got %s", tc.name, tc.kind, kind)
		}
		if !reflect.DeepEqual(plan, models.TravelPlan{}) {
			t.Fatalf("%s: expected no partial plan, got %+v", tc.name, plan)
		}
		if tc.name == "transport" && string(raw) != "503" {
			t.Fatalf("expected raw body to be returned, got %s", raw)
		}
	}
}

// TestDedupeSources проверяет удаление дублей по URI с сохранением первого заголовка.
func TestDedupeSources(t *testing.T) {
	sources := DedupeSources([]Citation{
		{Title: "First", URI: "https://example.com/a"},
		{Title: "Second", URI: "https://example.com/a"},
	})

	if len(sources) != 1 || sources[0].Title != "First" {
		t.Fatalf("expected single first source, got %+v", sources)
	}

	if DedupeSources(nil) != nil {
		t.Fatal("expected nil for no citations")
	}
}

// TestParsePlan проверяет разбор текста без обращения к модели.
func TestParsePlan(t *testing.T) {
	plan, err := ParsePlan("```\n{\"budgetBreakdown\": {\"food\": \"₹1,200\"}}\n```")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if plan.CostBreakdown.Food != 1200 || plan.CostBreakdown.Total != 1200 {
		t.Fatalf("unexpected cost breakdown %+v", plan.CostBreakdown)
	}
}
