package domain

import "strings"

// Providers disagree on nutrient naming ("Energy" vs "Energy (Atwater
// General Factors)" vs "ENERGY (KILOCALORIES)"), so each label slot is
// resolved by case-insensitive substring aliases. This is a deliberate
// best-effort heuristic: the first alias with a nonzero match wins, and
// a slot with no match at all stays absent.
var (
	caloriesAliases  = []string{"energy", "calorie", "kcal"}
	proteinAliases   = []string{"protein"}
	carbsAliases     = []string{"carbohydrate", "carbs"}
	fatAliases       = []string{"total lipid", "fat (total", "fat"}
	sugarsAliases    = []string{"sugars", "sugar"}
	fiberAliases     = []string{"fiber", "fibre"}
	saturatedAliases = []string{"saturated"}
	transAliases     = []string{"trans"}
)

// FindNutrientAmount resolves one label slot against a nutrient list.
// Aliases are tried in order; within an alias the first nonzero entry
// wins. A zero-amount match still counts as found so the label can
// report genuine zeros (e.g. trans fat 0).
func FindNutrientAmount(entries []NutrientEntry, aliases []string) (float64, bool) {
	found := false
	var fallback float64
	for _, alias := range aliases {
		for _, entry := range entries {
			if !strings.Contains(strings.ToLower(entry.Name), alias) {
				continue
			}
			if entry.Amount != 0 {
				return entry.Amount, true
			}
			if !found {
				found = true
				fallback = entry.Amount
			}
		}
	}
	return fallback, found
}

// CaloriesAmount resolves the calories slot, zero when absent.
// Used by serving-size scaling, where a missing nutrient scales to zero.
func CaloriesAmount(entries []NutrientEntry) float64 {
	v, _ := FindNutrientAmount(entries, caloriesAliases)
	return v
}

// ProteinAmount resolves the protein slot, zero when absent
func ProteinAmount(entries []NutrientEntry) float64 {
	v, _ := FindNutrientAmount(entries, proteinAliases)
	return v
}

// CarbsAmount resolves the carbohydrate slot, zero when absent
func CarbsAmount(entries []NutrientEntry) float64 {
	v, _ := FindNutrientAmount(entries, carbsAliases)
	return v
}

// FatAmount resolves the total fat slot, zero when absent
func FatAmount(entries []NutrientEntry) float64 {
	v, _ := FindNutrientAmount(entries, fatAliases)
	return v
}

// BuildLabel derives the display label subset from a name-keyed nutrient
// list. Slots with no alias match are left nil rather than zeroed.
func BuildLabel(entries []NutrientEntry) *LabelNutrients {
	label := &LabelNutrients{}
	any := false

	set := func(dst **LabelValue, aliases []string) {
		if v, ok := FindNutrientAmount(entries, aliases); ok {
			*dst = &LabelValue{Value: v}
			any = true
		}
	}

	set(&label.Calories, caloriesAliases)
	set(&label.Protein, proteinAliases)
	set(&label.Carbohydrates, carbsAliases)
	set(&label.Fat, fatAliases)
	set(&label.Sugars, sugarsAliases)
	set(&label.Fiber, fiberAliases)
	set(&label.SaturatedFat, saturatedAliases)
	set(&label.TransFat, transAliases)

	if !any {
		return nil
	}
	return label
}
