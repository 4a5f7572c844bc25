package domain

// Source identifies which food-data provider a record came from
type Source string

const (
	// SourceFDC is the USDA FoodData Central remote API
	SourceFDC Source = "fdc"
	// SourceCNF is the Canadian Nutrient File flat-file dataset
	SourceCNF Source = "cnf"
	// SourceOFF is the Open Food Facts barcode/product API
	SourceOFF Source = "off"
)

// FoodRecord is the canonical search hit shared by all providers.
// IDs from FDC and CNF are raw numeric identifiers; OFF ids carry an
// "off:" prefix so barcode-derived ids can never collide with them.
type FoodRecord struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Source      Source `json:"source"`
	Brand       string `json:"brand,omitempty"`
	Barcode     string `json:"barcode,omitempty"`
}

// NutrientEntry is one canonical nutrient value. Amounts stay on the
// source's native basis (per-100g for FDC/CNF, as-labeled for OFF).
type NutrientEntry struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	UnitName string  `json:"unitName"`
	Amount   float64 `json:"amount"`
}

// LabelValue wraps a single label nutrient amount
type LabelValue struct {
	Value float64 `json:"value"`
}

// LabelNutrients is the fixed display subset. A slot is nil when the
// source never reported it; it is not defaulted to zero here.
type LabelNutrients struct {
	Calories      *LabelValue `json:"calories,omitempty"`
	Protein       *LabelValue `json:"protein,omitempty"`
	Carbohydrates *LabelValue `json:"carbohydrates,omitempty"`
	Fat           *LabelValue `json:"fat,omitempty"`
	Sugars        *LabelValue `json:"sugars,omitempty"`
	Fiber         *LabelValue `json:"fiber,omitempty"`
	SaturatedFat  *LabelValue `json:"saturatedFat,omitempty"`
	TransFat      *LabelValue `json:"transFat,omitempty"`
}

// FoodDetails extends FoodRecord with the full nutrient list
type FoodDetails struct {
	FoodRecord
	FoodNutrients  []NutrientEntry `json:"foodNutrients"`
	LabelNutrients *LabelNutrients `json:"labelNutrients,omitempty"`
}

// SearchPage is one page of provider search results
type SearchPage struct {
	Items       []FoodRecord `json:"items"`
	TotalHits   int          `json:"totalHits"`
	CurrentPage int          `json:"currentPage"`
	TotalPages  int          `json:"totalPages"`
}

// SourceSummary reports a single provider's contribution to a combined
// search, so the UI can show "N more results" cues per source
type SourceSummary struct {
	TotalHits int `json:"totalHits"`
}

// CombinedSearchResult is the merged, ranked output of a combined search
type CombinedSearchResult struct {
	Items   []FoodRecord             `json:"items"`
	Sources map[Source]SourceSummary `json:"sources"`
}

// TotalPages computes pagination math shared by all providers
func TotalPages(totalHits, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (totalHits + pageSize - 1) / pageSize
}
