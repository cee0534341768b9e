package service

import (
	"math"
	"strings"
)

// foodCalories maps food keywords to rough per-portion calorie values.
// Every keyword found as a substring contributes to the sum, so composite
// descriptions like "chicken pizza" count both entries.
var foodCalories = []struct {
	keyword  string
	calories float64
}{
	{"pizza", 300},
	{"burger", 350},
	{"sandwich", 250},
	{"pasta", 350},
	{"rice", 200},
	{"chicken", 250},
	{"beef", 300},
	{"pork", 280},
	{"fish", 200},
	{"egg", 80},
	{"salad", 150},
	{"soup", 120},
	{"bread", 80},
	{"cheese", 110},
	{"apple", 80},
	{"banana", 100},
	{"orange", 60},
	{"potato", 160},
	{"fries", 320},
	{"cereal", 150},
	{"yogurt", 100},
	{"milk", 120},
	{"juice", 110},
	{"cookie", 150},
	{"cake", 350},
	{"chocolate", 230},
	{"ice cream", 250},
}

// portionMultipliers adjusts the summed calories for portion wording. Only
// the first matching keyword applies, in table order.
var portionMultipliers = []struct {
	keyword string
	factor  float64
}{
	{"small", 0.7},
	{"mini", 0.5},
	{"large", 1.5},
	{"big", 1.4},
	{"double", 2.0},
	{"half", 0.5},
	{"slice", 0.8},
	{"bowl", 1.2},
	{"plate", 1.3},
	{"cup", 0.9},
}

// EstimateCaloriesFromDescription produces a keyword-based calorie estimate
// for a free-text food description. It is pure and offline: same input,
// same output, no network. The result is a degraded-mode fallback for when
// the upstream sources are unavailable and is explicitly an estimate, never
// authoritative nutrition data.
func EstimateCaloriesFromDescription(text string) NutritionInfo {
	lower := strings.ToLower(text)

	var total float64
	for _, f := range foodCalories {
		if strings.Contains(lower, f.keyword) {
			total += f.calories
		}
	}

	multiplier := 1.0
	for _, p := range portionMultipliers {
		if strings.Contains(lower, p.keyword) {
			multiplier = p.factor
			break
		}
	}

	calories := math.Round(total * multiplier)

	if calories == 0 {
		switch {
		case strings.Contains(lower, "drink"), strings.Contains(lower, "beverage"):
			calories = 100
		case strings.Contains(lower, "snack"):
			calories = 150
		default:
			calories = 300
		}
	}

	return NutritionInfo{
		Calories:    calories,
		Description: strings.TrimSpace(text),
		ServingSize: "1 serving",
		Source:      SourceEstimated,
	}
}
