// ABOUTME: Centralized configuration for the discovery migration and search tools
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the discovery tools
type Config struct {
	// Storage settings
	DBPath    string
	Tenant    string
	UserEmail string

	// Search settings
	SearchCutoff     time.Time
	MinRelevance     float64
	MaxResults       int
	FuzzyMinLength   int
	MaxTerms         int
	CacheTTL         time.Duration
	SimilarityMetric string

	// Migration settings
	Workers           int
	DefaultConfidence int

	LogLevel string
}

const cutoffLayout = "2006-01-02"

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cutoff, err := getEnvDate("SEARCH_CUTOFF_DATE", "2020-01-01")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DBPath:            getEnv("DISCOVERY_DB_PATH", DefaultDBPath()),
		Tenant:            getEnv("DISCOVERY_TENANT", "default"),
		UserEmail:         getEnv("DISCOVERY_USER_EMAIL", "demo_user@company.com"),
		SearchCutoff:      cutoff,
		MinRelevance:      getEnvFloat("SEARCH_MIN_RELEVANCE", 30),
		MaxResults:        getEnvInt("SEARCH_MAX_RESULTS", 20),
		FuzzyMinLength:    getEnvInt("SEARCH_FUZZY_MIN_LENGTH", 6),
		MaxTerms:          getEnvInt("SEARCH_MAX_TERMS", 3),
		CacheTTL:          getEnvDuration("SEARCH_CACHE_TTL", 5*time.Minute),
		SimilarityMetric:  strings.ToLower(getEnv("SEARCH_SIMILARITY", "jarowinkler")),
		Workers:           getEnvInt("MIGRATE_WORKERS", 4),
		DefaultConfidence: getEnvInt("MIGRATE_DEFAULT_CONFIDENCE", 3),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.MinRelevance < 0 || c.MinRelevance > 100 {
		return fmt.Errorf("SEARCH_MIN_RELEVANCE must be 0-100, got %f", c.MinRelevance)
	}
	if c.MaxResults < 1 || c.MaxResults > 200 {
		return fmt.Errorf("SEARCH_MAX_RESULTS must be 1-200, got %d", c.MaxResults)
	}
	if c.FuzzyMinLength < 1 {
		return fmt.Errorf("SEARCH_FUZZY_MIN_LENGTH must be positive, got %d", c.FuzzyMinLength)
	}
	if c.MaxTerms < 1 {
		return fmt.Errorf("SEARCH_MAX_TERMS must be positive, got %d", c.MaxTerms)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("SEARCH_CACHE_TTL must not be negative, got %v", c.CacheTTL)
	}
	switch c.SimilarityMetric {
	case "jarowinkler", "levenshtein":
	default:
		return fmt.Errorf("SEARCH_SIMILARITY must be jarowinkler or levenshtein, got %q", c.SimilarityMetric)
	}
	if c.Workers < 1 || c.Workers > 64 {
		return fmt.Errorf("MIGRATE_WORKERS must be 1-64, got %d", c.Workers)
	}
	if c.DefaultConfidence < 1 || c.DefaultConfidence > 5 {
		return fmt.Errorf("MIGRATE_DEFAULT_CONFIDENCE must be 1-5, got %d", c.DefaultConfidence)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
	return nil
}

// DefaultDataDir returns the default data directory following the XDG spec
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".local", "share", "discovery")
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, "discovery")
}

// DefaultDBPath returns the default database file path
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), "discovery.db")
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvDate(key, defaultVal string) (time.Time, error) {
	v := getEnv(key, defaultVal)
	t, err := time.Parse(cutoffLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD, got %q", key, v)
	}
	return t, nil
}
