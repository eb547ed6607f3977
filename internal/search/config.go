// ABOUTME: Builds a ranker from application configuration
// ABOUTME: Wires the configured similarity metric, thresholds, and result cache
package search

import (
	"github.com/charmbracelet/log"

	"github.com/harper/discovery/internal/config"
)

// NewFromConfig creates a Ranker over dir using cfg. Close the ranker to
// release its cache.
func NewFromConfig(dir Directory, cfg *config.Config, logger *log.Logger) (*Ranker, error) {
	matcher, err := NewMatcher(cfg.SimilarityMetric)
	if err != nil {
		return nil, err
	}

	var cache *Cache
	if cfg.CacheTTL > 0 {
		cache, err = NewCache(cfg.CacheTTL)
		if err != nil {
			return nil, err
		}
	}

	minRelevance := cfg.MinRelevance
	if minRelevance == 0 {
		minRelevance = NoThreshold
	}

	return NewRanker(dir, matcher, Options{
		Tenant:         cfg.Tenant,
		Cutoff:         cfg.SearchCutoff,
		MinRelevance:   minRelevance,
		MaxResults:     cfg.MaxResults,
		FuzzyMinLength: cfg.FuzzyMinLength,
		MaxTerms:       cfg.MaxTerms,
		Cache:          cache,
		Logger:         logger,
	}), nil
}

// Close releases the ranker's cache
func (r *Ranker) Close() {
	r.opts.Cache.Close()
}
