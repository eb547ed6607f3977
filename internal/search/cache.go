// ABOUTME: Short-lived result cache for account searches
// ABOUTME: Keys are scoped by tenant, normalized query, and strategy
package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/harper/discovery/internal/models"
)

// Cache holds ranked result sets for a fixed TTL
type Cache struct {
	store *ristretto.Cache
	ttl   time.Duration
}

// NewCache creates a cache whose entries expire after ttl
func NewCache(ttl time.Duration) (*Cache, error) {
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create search cache: %w", err)
	}
	return &Cache{store: store, ttl: ttl}, nil
}

// CacheKey builds the key for a query; results are never shared across tenants
func CacheKey(tenant, normalizedQuery string, strategy models.SearchStrategy) string {
	return strings.Join([]string{tenant, string(strategy), normalizedQuery}, "\x00")
}

// Get returns a copy of the cached results for key
func (c *Cache) Get(key string) ([]models.AccountMatch, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	matches, ok := v.([]models.AccountMatch)
	if !ok {
		return nil, false
	}
	return copyMatches(matches), true
}

// Set stores a copy of matches under key. Admission is best effort; an
// admitted entry is visible to the next Get.
func (c *Cache) Set(key string, matches []models.AccountMatch) {
	if c == nil || c.ttl <= 0 {
		return
	}
	if c.store.SetWithTTL(key, copyMatches(matches), 1, c.ttl) {
		c.store.Wait()
	}
}

// Close releases the cache's background goroutines
func (c *Cache) Close() {
	if c != nil {
		c.store.Close()
	}
}

func copyMatches(matches []models.AccountMatch) []models.AccountMatch {
	out := make([]models.AccountMatch, len(matches))
	copy(out, matches)
	return out
}
