package itinerary

import (
	"errors"

	"example.com/ai-travel-planner/internal/models"
)

var ErrIncompleteItinerary = errors.New("incomplete itinerary")

// Validate отклоняет план, только если проживание, маршрут и расходы пусты одновременно.
func Validate(plan models.TravelPlan) error {
	if plan.Accommodation.IsZero() && len(plan.Itinerary) == 0 && plan.CostBreakdown.IsZero() {
		return ErrIncompleteItinerary
	}

	return nil
}
