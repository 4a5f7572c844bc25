package openfoodfacts

import (
	"strings"

	"github.com/nutriscope/backend/internal/domain"
)

// nutrimentSlots fixes the key set and ordering of the canonical
// nutrient list built from an OFF nutriments dictionary. Keys are
// provider-controlled and stable, so this is a direct lookup rather
// than the alias heuristic the name-keyed providers need.
var nutrimentSlots = []struct {
	key  string
	name string
	unit string
}{
	{"energy-kcal", "Energy", "kcal"},
	{"proteins", "Protein", "g"},
	{"carbohydrates", "Carbohydrates", "g"},
	{"fat", "Fat", "g"},
	{"sugars", "Sugars", "g"},
	{"fiber", "Fiber", "g"},
	{"saturated-fat", "Saturated fat", "g"},
	{"trans-fat", "Trans fat", "g"},
	{"sodium", "Sodium", "g"},
	{"salt", "Salt", "g"},
}

func mapRecord(p product) domain.FoodRecord {
	return domain.FoodRecord{
		ID:          IDPrefix + strings.TrimSpace(p.Code),
		Description: strings.TrimSpace(p.ProductName),
		Source:      domain.SourceOFF,
		Brand:       strings.TrimSpace(p.Brands),
		Barcode:     strings.TrimSpace(p.Code),
	}
}

// mapProduct converts a raw OFF product to canonical FoodDetails.
// Nutrient entries get sequential synthetic ids starting at 1; a label
// slot is set only when the source value is present and numeric, never
// defaulted to zero.
func mapProduct(p product) *domain.FoodDetails {
	entries := make([]domain.NutrientEntry, 0, len(nutrimentSlots))
	label := &domain.LabelNutrients{}

	nextID := 1
	for _, slot := range nutrimentSlots {
		value, ok := nutrimentValue(p.Nutriments, slot.key)
		if !ok {
			continue
		}
		entries = append(entries, domain.NutrientEntry{
			ID:       nextID,
			Name:     slot.name,
			UnitName: slot.unit,
			Amount:   value,
		})
		nextID++

		lv := &domain.LabelValue{Value: value}
		switch slot.key {
		case "energy-kcal":
			label.Calories = lv
		case "proteins":
			label.Protein = lv
		case "carbohydrates":
			label.Carbohydrates = lv
		case "fat":
			label.Fat = lv
		case "sugars":
			label.Sugars = lv
		case "fiber":
			label.Fiber = lv
		case "saturated-fat":
			label.SaturatedFat = lv
		case "trans-fat":
			label.TransFat = lv
		}
	}

	details := &domain.FoodDetails{
		FoodRecord:    mapRecord(p),
		FoodNutrients: entries,
	}
	if len(entries) > 0 {
		details.LabelNutrients = label
	}
	return details
}

// nutrimentValue prefers the explicit per-100g variant and falls back
// to the bare key
func nutrimentValue(nutriments map[string]any, key string) (float64, bool) {
	for _, k := range []string{key + "_100g", key} {
		if v, ok := parseFloatAny(nutriments[k]); ok {
			return v, true
		}
	}
	return 0, false
}
