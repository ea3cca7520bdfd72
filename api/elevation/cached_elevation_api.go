package elevation

import (
	"context"

	"profile-server/geo"
	"profile-server/metrics"
	"profile-server/models"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedElevationAPI keeps the most recently sampled paths in memory.
// Only successful results are cached.
type CachedElevationAPI struct {
	next  ElevationAPI
	cache *lru.Cache[string, models.Profile]
}

// NewCachedElevationAPI wraps next with an LRU cache of size entries.
func NewCachedElevationAPI(next ElevationAPI, size int) (*CachedElevationAPI, error) {
	cache, err := lru.New[string, models.Profile](size)
	if err != nil {
		return nil, err
	}
	return &CachedElevationAPI{next: next, cache: cache}, nil
}

func (c *CachedElevationAPI) SampleAlongPath(ctx context.Context, path []models.LatLng, samples int) (models.Profile, error) {
	key := geo.PathKey(path, samples)
	if profile, ok := c.cache.Get(key); ok {
		metrics.ElevationCacheHits.Inc()
		return profile.Clone(), nil
	}
	metrics.ElevationCacheMisses.Inc()

	profile, err := c.next.SampleAlongPath(ctx, path, samples)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, profile.Clone())
	return profile, nil
}

// Len returns the number of cached paths.
func (c *CachedElevationAPI) Len() int {
	return c.cache.Len()
}
