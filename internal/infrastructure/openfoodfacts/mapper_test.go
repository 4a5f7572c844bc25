package openfoodfacts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapProduct(t *testing.T) {
	t.Run("known dictionary maps to exact label values", func(t *testing.T) {
		p := product{
			Code:        "7622210410337",
			ProductName: "Sample biscuit",
			Nutriments: map[string]any{
				"energy-kcal":   250.0,
				"proteins":      10.0,
				"carbohydrates": 30.0,
				"fat":           8.0,
				"sugars":        12.0,
				"fiber":         5.0,
				"saturated-fat": 2.0,
				"trans-fat":     0.2,
			},
		}

		details := mapProduct(p)
		require.NotNil(t, details.LabelNutrients)
		label := details.LabelNutrients

		assert.Equal(t, 250.0, label.Calories.Value)
		assert.Equal(t, 10.0, label.Protein.Value)
		assert.Equal(t, 30.0, label.Carbohydrates.Value)
		assert.Equal(t, 8.0, label.Fat.Value)
		assert.Equal(t, 12.0, label.Sugars.Value)
		assert.Equal(t, 5.0, label.Fiber.Value)
		assert.Equal(t, 2.0, label.SaturatedFat.Value)
		assert.Equal(t, 0.2, label.TransFat.Value)
		assert.GreaterOrEqual(t, len(details.FoodNutrients), 4)
	})

	t.Run("synthetic ids are sequential from 1", func(t *testing.T) {
		p := product{
			Code:        "123",
			ProductName: "Sparse",
			Nutriments: map[string]any{
				"proteins_100g": 4.0,
				"fat_100g":      1.5,
			},
		}

		details := mapProduct(p)
		require.Len(t, details.FoodNutrients, 2)
		assert.Equal(t, 1, details.FoodNutrients[0].ID)
		assert.Equal(t, 2, details.FoodNutrients[1].ID)
		assert.Equal(t, "Protein", details.FoodNutrients[0].Name)
	})

	t.Run("missing values stay absent in the label, not zeroed", func(t *testing.T) {
		p := product{
			Code:        "123",
			ProductName: "Sparse",
			Nutriments:  map[string]any{"energy-kcal_100g": 100.0},
		}

		details := mapProduct(p)
		require.NotNil(t, details.LabelNutrients)
		assert.NotNil(t, details.LabelNutrients.Calories)
		assert.Nil(t, details.LabelNutrients.Protein)
		assert.Nil(t, details.LabelNutrients.TransFat)
	})

	t.Run("per-100g keys take precedence over bare keys", func(t *testing.T) {
		p := product{
			Code:        "123",
			ProductName: "Dual",
			Nutriments: map[string]any{
				"energy-kcal":      120.0, // as-labeled
				"energy-kcal_100g": 480.0,
			},
		}

		details := mapProduct(p)
		assert.Equal(t, 480.0, details.LabelNutrients.Calories.Value)
	})

	t.Run("string-encoded numbers are coerced", func(t *testing.T) {
		p := product{
			Code:        "123",
			ProductName: "Stringy",
			Nutriments:  map[string]any{"proteins_100g": "7.5"},
		}

		details := mapProduct(p)
		require.Len(t, details.FoodNutrients, 1)
		assert.Equal(t, 7.5, details.FoodNutrients[0].Amount)
	})

	t.Run("non-numeric values are skipped", func(t *testing.T) {
		p := product{
			Code:        "123",
			ProductName: "Junk",
			Nutriments:  map[string]any{"proteins_100g": "n/a"},
		}

		details := mapProduct(p)
		assert.Empty(t, details.FoodNutrients)
		assert.Nil(t, details.LabelNutrients)
	})
}
