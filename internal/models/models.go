package models

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Persona string

type Interest string

const (
	PersonaSolo     Persona = "Solo"
	PersonaBachelor Persona = "Bachelor"
	PersonaCouple   Persona = "Couple"
	PersonaFriends  Persona = "Friends"
	PersonaFamily   Persona = "Family"

	InterestNightlife   Interest = "Nightlife"
	InterestBeaches     Interest = "Beaches"
	InterestFood        Interest = "Food"
	InterestAdventure   Interest = "Adventure"
	InterestSightseeing Interest = "Sightseeing"
	InterestCulture     Interest = "Local Culture"
)

const (
	DefaultTipCategory = "Tip"
	DefaultSourceTitle = "Travel Source"
)

type UserInput struct {
	FromCity  string     `json:"fromCity" validate:"required"`
	ToCity    string     `json:"toCity" validate:"required"`
	TripType  Persona    `json:"tripType" validate:"required,oneof=Solo Bachelor Couple Friends Family"`
	Budget    int64      `json:"budget" validate:"gt=0"`
	Duration  int        `json:"duration" validate:"gt=0"`
	Interests []Interest `json:"interests" validate:"dive,oneof=Nightlife Beaches Food Adventure Sightseeing 'Local Culture'"`
}

type TravelOption struct {
	Mode          string  `json:"mode"`
	Type          string  `json:"type"`
	EstimatedCost float64 `json:"estimatedCost"`
	Description   string  `json:"description"`
}

type StayOption struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Price       float64 `json:"price"`
	Rating      float64 `json:"rating"`
	ReviewCount string  `json:"reviewCount"`
	Highlight   string  `json:"highlight"`
	BookingURL  string  `json:"bookingUrl,omitempty"`
}

type Accommodation struct {
	Area        string       `json:"area"`
	WhyThisArea string       `json:"whyThisArea"`
	Options     []StayOption `json:"options"`
}

// IsZero сообщает, что блок проживания не содержит данных.
func (a Accommodation) IsZero() bool {
	return a.Area == "" && a.WhyThisArea == "" && len(a.Options) == 0
}

type DayItinerary struct {
	Day           int      `json:"day"`
	Title         string   `json:"title"`
	Activities    []string `json:"activities"`
	EstimatedCost float64  `json:"estimatedCost"`
}

type CostBreakdown struct {
	Travel     float64 `json:"travel"`
	Stay       float64 `json:"stay"`
	Food       float64 `json:"food"`
	Activities float64 `json:"activities"`
	Total      float64 `json:"total"`
}

// IsZero сообщает, что разбивка расходов пуста.
func (c CostBreakdown) IsZero() bool {
	return c == CostBreakdown{}
}

type LocalTip struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

type TravelPlan struct {
	Summary         string         `json:"summary"`
	TravelOptions   []TravelOption `json:"travelOptions"`
	Accommodation   Accommodation  `json:"accommodation"`
	SuggestedPlaces []string       `json:"suggestedPlaces"`
	Itinerary       []DayItinerary `json:"itinerary"`
	CostBreakdown   CostBreakdown  `json:"costBreakdown"`
	LocalTips       []LocalTip     `json:"localTips"`
	Sources         []Source       `json:"sources,omitempty"`
}

// DecodePlan восстанавливает сохраненный план; любая ошибка означает отсутствие плана.
func DecodePlan(data []byte) (TravelPlan, bool) {
	var plan TravelPlan
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return plan, false
	}
	if err := json.Unmarshal(trimmed, &plan); err != nil {
		return TravelPlan{}, false
	}

	return plan, true
}

type StoredPlan struct {
	ID        uuid.UUID  `json:"id"`
	SessionID uuid.UUID  `json:"session_id"`
	Input     UserInput  `json:"input"`
	Plan      TravelPlan `json:"plan"`
	CreatedAt time.Time  `json:"created_at"`
}

type GenerationRequest struct {
	ID           uuid.UUID `json:"id"`
	SessionID    uuid.UUID `json:"session_id"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	Success      bool      `json:"success"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
