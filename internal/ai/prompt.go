package ai

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"example.com/ai-travel-planner/internal/models"
)

const systemPrompt = `You are "Chalo AI", a modern, trend-aware Indian travel consultant. Respond with a single JSON object only.`

type promptInput struct {
	FromCity  string   `json:"from_city"`
	ToCity    string   `json:"to_city"`
	Persona   string   `json:"persona"`
	BudgetINR int64    `json:"budget_inr"`
	Days      int      `json:"duration_days"`
	Interests []string `json:"interests"`
}

func buildPlanPrompt(input models.UserInput) (string, error) {
	payload, err := json.MarshalIndent(promptInput{
		FromCity:  strings.TrimSpace(input.FromCity),
		ToCity:    strings.TrimSpace(input.ToCity),
		Persona:   string(input.TripType),
		BudgetINR: input.Budget,
		Days:      input.Duration,
		Interests: uniqueInterests(input.Interests),
	}, "", "  ")
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`Search the live web for the most accurate and recent information and plan this trip.

Requirements:
- Use Google Search to find REAL current train/bus prices and popular hostels/hotels.
- For low budgets (5k-15k) prioritize sleeper trains, state volvos and shared dorms.
- For mid budgets (15k-40k) suggest 3AC/flights and private rooms.
- The cost breakdown should add up to the total budget provided.
- Provide "Real India" hacks (e.g. Rapido, local mess prices).
- Output one JSON object, no extra text.
- Schema:
{
  "summary": string,
  "travelOptions": [{"mode": string, "type": string, "estimatedCost": number, "description": string}],
  "accommodation": {
    "area": string,
    "whyThisArea": string,
    "options": [{"name": string, "type": string, "price": number, "rating": number, "reviewCount": string, "highlight": string, "bookingUrl": string}]
  },
  "suggestedPlaces": [string],
  "itinerary": [{"day": number, "title": string, "activities": [string], "estimatedCost": number}],
  "costBreakdown": {"travel": number, "stay": number, "food": number, "activities": number, "total": number},
  "localTips": [{"category": string, "text": string}]
}
- Provide exactly %d itinerary days.

Trip:
%s`, input.Duration, string(payload))

	return prompt, nil
}

// uniqueInterests drops duplicates and sorts, since interest order carries no meaning.
func uniqueInterests(values []models.Interest) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(string(value))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	sort.Strings(out)
	return out
}
