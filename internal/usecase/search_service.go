package usecase

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/nutriscope/backend/internal/domain"
)

// Rank tiers for the combined result ordering, ascending. Stable sort
// preserves provider order within a tier.
const (
	rankBarcodeExact = 0 // barcode field equals the query exactly
	rankBrandedMatch = 1 // has a brand and the name contains the query
	rankNameMatch    = 2 // name contains the query, no brand
	rankOther        = 3
)

var barcodeQueryPattern = regexp.MustCompile(`^\d{8,14}$`)

// ProviderEntry binds a provider to its source tag and configured flag.
// An unconfigured provider is short-circuited to an empty result
// without ever being called.
type ProviderEntry struct {
	Source     domain.Source
	Provider   domain.FoodProvider
	Configured bool
}

// CombinedSearchService fans one query out to every provider, tolerates
// per-source failure, and merges the hits into a single ranked list
type CombinedSearchService struct {
	providers []ProviderEntry
	barcodes  domain.BarcodeLookup // nil when the barcode source is disabled
}

// NewCombinedSearchService creates the orchestrator. Provider order
// drives the page-size partition and tie-breaking in the merged list.
func NewCombinedSearchService(providers []ProviderEntry, barcodes domain.BarcodeLookup) *CombinedSearchService {
	return &CombinedSearchService{
		providers: providers,
		barcodes:  barcodes,
	}
}

// Search runs the combined search. It fails only for a blank query;
// every downstream failure degrades to an empty result for that source.
func (s *CombinedSearchService) Search(ctx context.Context, query string, pageSize, pageNumber int) (*domain.CombinedSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidRequest)
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageNumber < 1 {
		pageNumber = 1
	}

	shares := splitPageSize(pageSize, len(s.providers))

	pages := make([]*domain.SearchPage, len(s.providers))
	var exact *domain.FoodDetails

	var wg sync.WaitGroup
	for i, entry := range s.providers {
		wg.Add(1)
		go func(i int, entry ProviderEntry) {
			defer wg.Done()
			if !entry.Configured {
				return
			}
			page, err := entry.Provider.Search(ctx, query, shares[i], pageNumber)
			if err != nil {
				log.WithField("source", string(entry.Source)).Warnf("combined search branch failed: %v", err)
				return
			}
			pages[i] = page
		}(i, entry)
	}

	// A pure-barcode query also gets an authoritative exact lookup.
	// This enrichment is best effort: failures are swallowed.
	if s.barcodes != nil && barcodeQueryPattern.MatchString(query) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			details, err := s.barcodes.FetchByBarcode(ctx, query)
			if err != nil {
				log.WithField("source", "off").Debugf("barcode enrichment skipped: %v", err)
				return
			}
			exact = details
		}()
	}

	wg.Wait()

	var items []domain.FoodRecord
	if exact != nil {
		items = append(items, exact.FoodRecord)
	}
	sources := make(map[domain.Source]domain.SourceSummary, len(s.providers))
	for i, entry := range s.providers {
		if pages[i] == nil {
			sources[entry.Source] = domain.SourceSummary{TotalHits: 0}
			continue
		}
		sources[entry.Source] = domain.SourceSummary{TotalHits: pages[i].TotalHits}
		items = append(items, pages[i].Items...)
	}

	rankResults(items, query)

	return &domain.CombinedSearchResult{
		Items:   items,
		Sources: sources,
	}, nil
}

// splitPageSize partitions the requested total roughly evenly: each
// provider takes the ceiling of what remains divided by the providers
// left, with a floor of 1. The split is fixed, not adaptive.
func splitPageSize(pageSize, providers int) []int {
	shares := make([]int, providers)
	remaining := pageSize
	for i := range shares {
		left := providers - i
		share := (remaining + left - 1) / left
		if share < 1 {
			share = 1
		}
		shares[i] = share
		remaining -= share
	}
	return shares
}

// rankResults orders items by rank tier, ascending, stable for ties
func rankResults(items []domain.FoodRecord, query string) {
	queryLower := strings.ToLower(query)
	sort.SliceStable(items, func(i, j int) bool {
		return rankScore(items[i], query, queryLower) < rankScore(items[j], query, queryLower)
	})
}

func rankScore(item domain.FoodRecord, query, queryLower string) int {
	if item.Barcode != "" && item.Barcode == query {
		return rankBarcodeExact
	}
	if strings.Contains(strings.ToLower(item.Description), queryLower) {
		if item.Brand != "" {
			return rankBrandedMatch
		}
		return rankNameMatch
	}
	return rankOther
}
