package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nutriscope/backend/internal/domain"
)

// DetailsService fronts remote detail lookups with a TTL cache. The
// flat-file source is not cached here since its index already lives in
// memory.
type DetailsService struct {
	cache domain.DetailsCache
	ttl   time.Duration
}

// NewDetailsService creates a caching detail lookup. A zero TTL
// defaults to 24 hours.
func NewDetailsService(cache domain.DetailsCache, ttl time.Duration) *DetailsService {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &DetailsService{cache: cache, ttl: ttl}
}

// Lookup resolves id through provider, serving from cache when possible.
// Cache failures never fail the lookup.
func (s *DetailsService) Lookup(ctx context.Context, source domain.Source, provider domain.FoodProvider, id string) (*domain.FoodDetails, error) {
	key := cacheKey(source, id)

	if payload, err := s.cache.Get(ctx, key); err == nil {
		var details domain.FoodDetails
		if err := json.Unmarshal(payload, &details); err == nil {
			return &details, nil
		}
		// Corrupt entry: drop it and fall through to the provider
		_ = s.cache.Delete(ctx, key)
	}

	details, err := provider.GetDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(details); err == nil {
		if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
			log.WithField("key", key).Warnf("detail cache set failed: %v", err)
		}
	}
	return details, nil
}

func cacheKey(source domain.Source, id string) string {
	return fmt.Sprintf("details:%s:%s", source, id)
}
