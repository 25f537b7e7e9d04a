package itinerary

import (
	"fmt"
	"strconv"
	"strings"

	"example.com/ai-travel-planner/internal/models"
)

// Candidate keys per section, tried in order. New response variants are
// supported by appending a key here.
var (
	travelOptionKeys       = []string{"travelOptions", "transport", "transportOptions"}
	accommodationKeys      = []string{"accommodation", "stays", "accommodations"}
	stayOptionKeys         = []string{"options", "stays"}
	topLevelStayOptionKeys = []string{"accommodationOptions"}
	itineraryKeys          = []string{"itinerary", "dayByDay", "dailyPlan"}
	costBreakdownKeys      = []string{"costBreakdown", "budgetBreakdown", "costs"}
	localTipKeys           = []string{"localTips", "tips", "insiderTips"}
	suggestedPlaceKeys     = []string{"suggestedPlaces", "places", "mustVisit"}
	summaryKeys            = []string{"summary", "overview", "vibe"}

	travelModeKeys        = []string{"mode", "type", "name"}
	travelCategoryKeys    = []string{"type", "category"}
	travelCostKeys        = []string{"estimatedCost", "cost", "price"}
	travelDescriptionKeys = []string{"description", "details", "desc"}

	areaKeys      = []string{"area", "location", "neighborhood"}
	rationaleKeys = []string{"whyThisArea", "why", "reason", "rationale"}

	stayNameKeys      = []string{"name", "title", "hotel"}
	stayTypeKeys      = []string{"type", "category"}
	stayPriceKeys     = []string{"price", "cost", "rate", "pricePerNight"}
	stayRatingKeys    = []string{"rating", "stars"}
	stayReviewKeys    = []string{"reviewCount", "reviews"}
	stayHighlightKeys = []string{"highlight", "description", "why"}

	dayTitleKeys = []string{"title", "theme"}
	dayCostKeys  = []string{"estimatedCost", "cost"}

	costTravelKeys     = []string{"travel", "transport"}
	costStayKeys       = []string{"stay", "accommodation"}
	costFoodKeys       = []string{"food"}
	costActivitiesKeys = []string{"activities", "sightseeing"}
	costTotalKeys      = []string{"total", "grandTotal"}

	tipTextKeys      = []string{"text", "tip"}
	placeNameKeys    = []string{"name", "title", "place"}
	activityTextKeys = []string{"activity", "description", "name", "title"}
)

// Normalize приводит разобранный ответ модели произвольной формы к каноническому плану.
func Normalize(raw interface{}) models.TravelPlan {
	root := asObject(raw)

	return models.TravelPlan{
		Summary:         text(firstPresent(root, summaryKeys...)),
		TravelOptions:   normalizeTravelOptions(asList(firstPresent(root, travelOptionKeys...))),
		Accommodation:   normalizeAccommodation(firstPresent(root, accommodationKeys...), root),
		SuggestedPlaces: normalizePlaces(asList(firstPresent(root, suggestedPlaceKeys...))),
		Itinerary:       normalizeItinerary(asList(firstPresent(root, itineraryKeys...))),
		CostBreakdown:   normalizeCostBreakdown(asObject(firstPresent(root, costBreakdownKeys...))),
		LocalTips:       normalizeLocalTips(asList(firstPresent(root, localTipKeys...))),
	}
}

func normalizeTravelOptions(values []interface{}) []models.TravelOption {
	out := make([]models.TravelOption, 0, len(values))
	for _, value := range values {
		switch v := value.(type) {
		case string:
			out = append(out, travelOptionFromText(v))
		case map[string]interface{}:
			out = append(out, travelOptionFromObject(v))
		}
	}
	return out
}

func travelOptionFromText(value string) models.TravelOption {
	return models.TravelOption{Mode: value, Description: value}
}

func travelOptionFromObject(value map[string]interface{}) models.TravelOption {
	return models.TravelOption{
		Mode:          text(firstPresent(value, travelModeKeys...)),
		Type:          text(firstPresent(value, travelCategoryKeys...)),
		EstimatedCost: ToNumber(firstPresent(value, travelCostKeys...)),
		Description:   text(firstPresent(value, travelDescriptionKeys...)),
	}
}

func normalizeAccommodation(block interface{}, root map[string]interface{}) models.Accommodation {
	// A bare list under an accommodation key is the list of stays itself.
	if list, ok := block.([]interface{}); ok {
		return models.Accommodation{Options: normalizeStayOptions(list)}
	}

	object := asObject(block)
	options := firstPresent(object, stayOptionKeys...)
	if options == nil {
		options = firstPresent(root, topLevelStayOptionKeys...)
	}

	rationale := text(firstPresent(object, rationaleKeys...))
	if rationale == "" {
		rationale = strings.Join(textList(asList(object["benefits"]), nil), ", ")
	}

	return models.Accommodation{
		Area:        text(firstPresent(object, areaKeys...)),
		WhyThisArea: rationale,
		Options:     normalizeStayOptions(asList(options)),
	}
}

func normalizeStayOptions(values []interface{}) []models.StayOption {
	out := make([]models.StayOption, 0, len(values))
	for _, value := range values {
		switch v := value.(type) {
		case string:
			out = append(out, models.StayOption{Name: v})
		case map[string]interface{}:
			out = append(out, stayOptionFromObject(v))
		}
	}
	return out
}

func stayOptionFromObject(value map[string]interface{}) models.StayOption {
	return models.StayOption{
		Name:        text(firstPresent(value, stayNameKeys...)),
		Type:        text(firstPresent(value, stayTypeKeys...)),
		Price:       ToNumber(firstPresent(value, stayPriceKeys...)),
		Rating:      ToNumber(firstPresent(value, stayRatingKeys...)),
		ReviewCount: text(firstPresent(value, stayReviewKeys...)),
		Highlight:   text(firstPresent(value, stayHighlightKeys...)),
		BookingURL:  text(value["bookingUrl"]),
	}
}

func normalizeItinerary(values []interface{}) []models.DayItinerary {
	out := make([]models.DayItinerary, 0, len(values))
	for i, value := range values {
		position := i + 1
		switch v := value.(type) {
		case string:
			out = append(out, dayFromText(v, position))
		case map[string]interface{}:
			out = append(out, dayFromObject(v, position))
		}
	}
	return out
}

func dayFromText(value string, position int) models.DayItinerary {
	return models.DayItinerary{
		Day:        position,
		Title:      dayTitle(position),
		Activities: []string{value},
	}
}

func dayFromObject(value map[string]interface{}, position int) models.DayItinerary {
	day := int(ToNumber(value["day"]))
	if day <= 0 {
		day = position
	}

	activities, ok := value["activities"]
	if !ok || activities == nil {
		activities = value["plan"]
	}

	title := text(firstPresent(value, dayTitleKeys...))
	if title == "" {
		title = dayTitle(day)
	}

	return models.DayItinerary{
		Day:           day,
		Title:         title,
		Activities:    textList(asList(activities), activityTextKeys),
		EstimatedCost: ToNumber(firstPresent(value, dayCostKeys...)),
	}
}

func dayTitle(day int) string {
	return fmt.Sprintf("Day %d", day)
}

func normalizeCostBreakdown(value map[string]interface{}) models.CostBreakdown {
	breakdown := models.CostBreakdown{
		Travel:     ToNumber(firstPresent(value, costTravelKeys...)),
		Stay:       ToNumber(firstPresent(value, costStayKeys...)),
		Food:       ToNumber(firstPresent(value, costFoodKeys...)),
		Activities: ToNumber(firstPresent(value, costActivitiesKeys...)),
		Total:      ToNumber(firstPresent(value, costTotalKeys...)),
	}

	if breakdown.Total == 0 {
		breakdown.Total = breakdown.Travel + breakdown.Stay + breakdown.Food + breakdown.Activities
	}

	return breakdown
}

func normalizeLocalTips(values []interface{}) []models.LocalTip {
	out := make([]models.LocalTip, 0, len(values))
	for _, value := range values {
		switch v := value.(type) {
		case string:
			out = append(out, tipFromText(v))
		case map[string]interface{}:
			out = append(out, tipFromObject(v))
		}
	}
	return out
}

func tipFromText(value string) models.LocalTip {
	return models.LocalTip{Category: models.DefaultTipCategory, Text: value}
}

func tipFromObject(value map[string]interface{}) models.LocalTip {
	category := text(value["category"])
	if category == "" {
		category = models.DefaultTipCategory
	}

	return models.LocalTip{
		Category: category,
		Text:     text(firstPresent(value, tipTextKeys...)),
	}
}

func normalizePlaces(values []interface{}) []string {
	return textList(values, placeNameKeys)
}

// firstPresent returns the value of the first key holding something usable:
// nil, "", 0 and false fall through to the next candidate.
func firstPresent(object map[string]interface{}, keys ...string) interface{} {
	for _, key := range keys {
		value, ok := object[key]
		if !ok || !present(value) {
			continue
		}
		return value
	}
	return nil
}

func present(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case float64:
		return v != 0
	case bool:
		return v
	default:
		return true
	}
}

func asObject(value interface{}) map[string]interface{} {
	if object, ok := value.(map[string]interface{}); ok {
		return object
	}
	return map[string]interface{}{}
}

// asList wraps a single scalar or object into a one-element list.
func asList(value interface{}) []interface{} {
	switch v := value.(type) {
	case nil:
		return nil
	case []interface{}:
		return v
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return []interface{}{v}
	default:
		return []interface{}{v}
	}
}

// textList keeps string items and reads objects through nameKeys.
func textList(values []interface{}, nameKeys []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		var item string
		if object, ok := value.(map[string]interface{}); ok {
			item = text(firstPresent(object, nameKeys...))
		} else {
			item = text(value)
		}
		if strings.TrimSpace(item) == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func text(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
