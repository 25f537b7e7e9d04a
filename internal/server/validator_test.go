package server

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"

	"example.com/ai-travel-planner/internal/models"
)

// TestValidatorUserInput проверяет допустимые интересы, включая значение с пробелом.
func TestValidatorUserInput(t *testing.T) {
	v := NewValidator()

	input := models.UserInput{
		FromCity:  "Mumbai",
		ToCity:    "Udaipur",
		TripType:  models.PersonaCouple,
		Budget:    30000,
		Duration:  3,
		Interests: []models.Interest{models.InterestCulture, models.InterestFood},
	}
	if err := v.Validate(&input); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}

	input.Interests = append(input.Interests, "Shopping")
	if err := v.Validate(&input); err == nil {
		t.Fatal("expected unknown interest to be rejected")
	}
}

// TestValidatorJSONFieldNames проверяет имена полей из json-тегов.
func TestValidatorJSONFieldNames(t *testing.T) {
	err := NewValidator().Validate(&models.UserInput{TripType: models.PersonaSolo, Budget: 1, Duration: 1})

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if validationErrors[0].Field() != "fromCity" {
		t.Fatalf("expected json field name, got %s", validationErrors[0].Field())
	}
}
