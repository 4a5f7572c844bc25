package usecase

import (
	"math"

	"github.com/nutriscope/backend/internal/domain"
)

// ScaledMacros is the four-field shape the UI's serving-size control
// consumes; field names must not change.
type ScaledMacros struct {
	Calories float64 `json:"calories"`
	Carbs    float64 `json:"carbs"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
}

// ScaleMacros converts per-100g nutrient values to the amounts present
// in servingGrams. The label view is preferred when the provider
// supplied one; otherwise each slot falls back to alias matching over
// the full nutrient list, with missing slots scaling from zero.
// Non-positive servings yield all zeros rather than an error.
func ScaleMacros(details *domain.FoodDetails, servingGrams float64) ScaledMacros {
	if details == nil || servingGrams <= 0 {
		return ScaledMacros{}
	}

	calories, carbs, protein, fat := headlineValues(details)
	factor := servingGrams / 100

	return ScaledMacros{
		Calories: roundWhole(clamp(calories * factor)),
		Carbs:    roundTenth(clamp(carbs * factor)),
		Protein:  roundTenth(clamp(protein * factor)),
		Fat:      roundTenth(clamp(fat * factor)),
	}
}

func headlineValues(details *domain.FoodDetails) (calories, carbs, protein, fat float64) {
	label := details.LabelNutrients
	if label == nil {
		label = &domain.LabelNutrients{}
	}

	entries := details.FoodNutrients
	calories = slotValue(label.Calories, entries, domain.CaloriesAmount)
	carbs = slotValue(label.Carbohydrates, entries, domain.CarbsAmount)
	protein = slotValue(label.Protein, entries, domain.ProteinAmount)
	fat = slotValue(label.Fat, entries, domain.FatAmount)
	return calories, carbs, protein, fat
}

// slotValue keeps a present label slot even when its value is zero; a
// labeled 0 g is a real measurement, not an absence. Only a nil slot
// falls back to alias matching over the full nutrient list.
func slotValue(slot *domain.LabelValue, entries []domain.NutrientEntry, fallback func([]domain.NutrientEntry) float64) float64 {
	if slot != nil {
		return slot.Value
	}
	return fallback(entries)
}

// clamp guards against malformed upstream data reporting negatives
func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func roundWhole(v float64) float64 {
	return math.Round(v)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
