package cnf

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/nutriscope/backend/internal/domain"
)

// Provider adapts the flat-file store to the common provider contract.
// It is a thin pass-through: field renaming plus label derivation.
type Provider struct {
	store *Store
}

// NewProvider wraps a store as a domain.FoodProvider
func NewProvider(store *Store) *Provider {
	return &Provider{store: store}
}

// Search pages over the store's substring matches
func (p *Provider) Search(ctx context.Context, query string, pageSize, pageNumber int) (*domain.SearchPage, error) {
	if pageSize < 1 {
		pageSize = 1
	}
	if pageNumber < 1 {
		pageNumber = 1
	}

	rows, totalHits, err := p.store.SearchFoods(query, pageSize, pageNumber)
	if err != nil {
		return nil, err
	}

	items := make([]domain.FoodRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.FoodRecord{
			ID:          strconv.Itoa(row.ID),
			Description: row.Description,
			Source:      domain.SourceCNF,
		})
	}

	return &domain.SearchPage{
		Items:       items,
		TotalHits:   totalHits,
		CurrentPage: pageNumber,
		TotalPages:  domain.TotalPages(totalHits, pageSize),
	}, nil
}

// GetDetails resolves a numeric CNF food id to its full nutrient list.
// Amounts are on the dataset's per-100g basis.
func (p *Provider) GetDetails(ctx context.Context, id string) (*domain.FoodDetails, error) {
	foodID, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%w: food id must be numeric", domain.ErrInvalidRequest)
	}

	row, entries, ok, err := p.store.FoodDetails(foodID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrFoodNotFound
	}

	return &domain.FoodDetails{
		FoodRecord: domain.FoodRecord{
			ID:          strconv.Itoa(row.ID),
			Description: row.Description,
			Source:      domain.SourceCNF,
		},
		FoodNutrients:  entries,
		LabelNutrients: domain.BuildLabel(entries),
	}, nil
}
