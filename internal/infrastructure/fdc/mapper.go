package fdc

import (
	"strconv"
	"strings"

	"github.com/nutriscope/backend/internal/domain"
)

// mapSearchHit converts one raw search hit to a canonical record
func mapSearchHit(hit searchHit) domain.FoodRecord {
	return domain.FoodRecord{
		ID:          strconv.FormatInt(hit.FdcID, 10),
		Description: hit.Description,
		Source:      domain.SourceFDC,
		Brand:       pickBrand(hit.BrandName, hit.BrandOwner),
		Barcode:     strings.TrimSpace(hit.GtinUpc),
	}
}

// mapFood converts a raw detail response to canonical FoodDetails.
// Branded foods ship their own labelNutrients block; for the datasets
// that omit it the label is derived from the nutrient names.
func mapFood(food foodDetail) *domain.FoodDetails {
	entries := make([]domain.NutrientEntry, 0, len(food.FoodNutrients))
	for _, fn := range food.FoodNutrients {
		entries = append(entries, domain.NutrientEntry{
			ID:       fn.Nutrient.ID,
			Name:     fn.Nutrient.Name,
			UnitName: fn.Nutrient.UnitName,
			Amount:   fn.Amount,
		})
	}

	label := food.Label
	if label == nil {
		label = domain.BuildLabel(entries)
	}

	return &domain.FoodDetails{
		FoodRecord: domain.FoodRecord{
			ID:          strconv.FormatInt(food.FdcID, 10),
			Description: food.Description,
			Source:      domain.SourceFDC,
			Brand:       strings.TrimSpace(food.BrandOwner),
			Barcode:     strings.TrimSpace(food.GtinUpc),
		},
		FoodNutrients:  entries,
		LabelNutrients: label,
	}
}

func pickBrand(brandName, brandOwner string) string {
	if b := strings.TrimSpace(brandName); b != "" {
		return b
	}
	return strings.TrimSpace(brandOwner)
}
