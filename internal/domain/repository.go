package domain

import (
	"context"
	"time"
)

// FoodProvider is the contract every food-data source exposes.
// Search returns one page of canonical records; GetDetails resolves a
// single source-scoped id to the full nutrient list.
type FoodProvider interface {
	Search(ctx context.Context, query string, pageSize, pageNumber int) (*SearchPage, error)
	GetDetails(ctx context.Context, id string) (*FoodDetails, error)
}

// BarcodeLookup resolves an exact barcode to a product, bypassing search
type BarcodeLookup interface {
	FetchByBarcode(ctx context.Context, barcode string) (*FoodDetails, error)
}

// DetailsCache stores serialized detail responses with a TTL
type DetailsCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
