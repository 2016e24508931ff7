// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, the process
// exits with an error.
package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
)

// Catalog backends.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Config holds all runtime configuration for the radar binaries.
type Config struct {
	Backend     string `env:"CATALOG_BACKEND" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"data/radar.db"`
	RedisURL    string `env:"REDIS_URL"` // optional: enables the search cache and ingest events

	Port     string `env:"RADAR_PORT" envDefault:"8080"`
	GRPCPort string `env:"RADAR_GRPC_PORT" envDefault:"9090"`

	TimeZone       string        `env:"CATALOG_TIMEZONE" envDefault:"Asia/Seoul"`
	SearchCacheTTL time.Duration `env:"SEARCH_CACHE_TTL" envDefault:"2m"`

	CrawlIntervalHours int           `env:"CRAWL_INTERVAL_HOURS" envDefault:"24"`
	CrawlSourcesFile   string        `env:"CRAWL_SOURCES_FILE"`
	CrawlDelay         time.Duration `env:"CRAWL_DELAY" envDefault:"2s"`
	CrawlMaxItems      int           `env:"CRAWL_MAX_ITEMS" envDefault:"50"`
	CrawlConcurrency   int           `env:"CRAWL_CONCURRENCY" envDefault:"4"`
	DefaultDueDays     int           `env:"DEFAULT_DUE_DAYS" envDefault:"90"`

	location *time.Location
}

// Overrides replaces environment values, typically from command-line
// flags. Empty fields keep the environment or default value.
type Overrides struct {
	Backend    string
	SQLitePath string
	RedisURL   string
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	return LoadWith(Overrides{})
}

// LoadWith reads environment variables, applies o and validates the result.
func LoadWith(o Overrides) (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if o.Backend != "" {
		cfg.Backend = o.Backend
	}
	if o.SQLitePath != "" {
		cfg.SQLitePath = o.SQLitePath
	}
	if o.RedisURL != "" {
		cfg.RedisURL = o.RedisURL
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("CATALOG_BACKEND must be one of postgres, sqlite, memory; got %q", c.Backend)
	}

	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return fmt.Errorf("CATALOG_TIMEZONE %q: %w", c.TimeZone, err)
	}
	c.location = loc

	if c.SearchCacheTTL <= 0 {
		return fmt.Errorf("SEARCH_CACHE_TTL must be positive, got %s", c.SearchCacheTTL)
	}
	if c.CrawlIntervalHours < 1 {
		return fmt.Errorf("CRAWL_INTERVAL_HOURS must be a positive integer, got %d", c.CrawlIntervalHours)
	}
	if c.CrawlDelay < 0 {
		return fmt.Errorf("CRAWL_DELAY must not be negative, got %s", c.CrawlDelay)
	}
	if c.CrawlMaxItems < 1 {
		return fmt.Errorf("CRAWL_MAX_ITEMS must be a positive integer, got %d", c.CrawlMaxItems)
	}
	if c.CrawlConcurrency < 1 {
		return fmt.Errorf("CRAWL_CONCURRENCY must be a positive integer, got %d", c.CrawlConcurrency)
	}
	if c.DefaultDueDays < 0 {
		return fmt.Errorf("DEFAULT_DUE_DAYS must not be negative, got %d", c.DefaultDueDays)
	}
	return nil
}

// Location is the catalog time zone used to derive "today".
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// CrawlSchedule returns the cron spec for the periodic crawl.
func (c *Config) CrawlSchedule() string {
	return fmt.Sprintf("@every %dh", c.CrawlIntervalHours)
}
