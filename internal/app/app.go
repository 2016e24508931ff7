// Package app assembles the catalog from configuration: the store backend,
// the optional Redis search cache and the ingest pipeline. Every binary
// builds its dependencies through Open.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/SunWoo1213/ScholarShipRadar/internal/catalog"
	"github.com/SunWoo1213/ScholarShipRadar/internal/config"
	"github.com/SunWoo1213/ScholarShipRadar/internal/crawler"
	"github.com/SunWoo1213/ScholarShipRadar/internal/db"
	"github.com/SunWoo1213/ScholarShipRadar/internal/ingest"
	"github.com/SunWoo1213/ScholarShipRadar/internal/metrics"
	"github.com/SunWoo1213/ScholarShipRadar/internal/store/memory"
	"github.com/SunWoo1213/ScholarShipRadar/internal/store/postgres"
	"github.com/SunWoo1213/ScholarShipRadar/internal/store/rediscache"
	"github.com/SunWoo1213/ScholarShipRadar/internal/store/sqlite"
)

// Backend is a catalog store that also accepts writes.
type Backend interface {
	catalog.Store
	ingest.Writer
}

// App holds the wired services. Close releases every connection Open made.
type App struct {
	Catalog *catalog.Service
	Ingest  *ingest.Service
	Metrics *metrics.Metrics
	Redis   *redis.Client // nil when REDIS_URL is unset

	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// Open connects the configured backend and builds the services on top of
// it. reg may be nil, in which case no metrics are recorded.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{cfg: cfg, logger: logger}
	if reg != nil {
		a.Metrics = metrics.New(reg)
	}

	backend, err := a.openBackend(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	var (
		store catalog.Store = backend
		cache ingest.Invalidator
	)
	if cfg.RedisURL != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.Redis = rdb
		a.closers = append(a.closers, func() { _ = rdb.Close() })

		cached := rediscache.New(backend, rdb, cfg.SearchCacheTTL, logger, a.Metrics)
		store, cache = cached, cached
	}

	a.Catalog = catalog.NewService(store, logger, a.Metrics)
	a.Ingest = ingest.NewService(backend, ingest.Options{
		Redis:          a.Redis,
		Cache:          cache,
		Logger:         logger,
		Metrics:        a.Metrics,
		DefaultDueDays: cfg.DefaultDueDays,
		Location:       cfg.Location(),
	})
	return a, nil
}

func (a *App) openBackend(ctx context.Context) (Backend, error) {
	switch a.cfg.Backend {
	case config.BackendPostgres:
		pool, err := db.NewPostgresPool(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		s := postgres.New(pool)
		if err := s.Migrate(ctx); err != nil {
			return nil, err
		}
		a.logger.Info("catalog backend ready", "backend", "postgres")
		return s, nil

	case config.BackendSQLite:
		s, err := sqlite.Open(a.cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = s.Close() })
		a.logger.Info("catalog backend ready", "backend", "sqlite", "path", a.cfg.SQLitePath)
		return s, nil

	case config.BackendMemory:
		a.logger.Info("catalog backend ready", "backend", "memory")
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unknown catalog backend %q", a.cfg.Backend)
}

// NewCrawler returns a crawler writing through the ingest service, tuned by
// the CRAWL_* settings.
func (a *App) NewCrawler() *crawler.Crawler {
	return crawler.New(a.Ingest, crawler.Options{
		Fetcher:     crawler.NewFetcher(nil),
		Extractor:   crawler.RuleExtractor{},
		Logger:      a.logger.With("component", "crawler"),
		Metrics:     a.Metrics,
		Delay:       a.cfg.CrawlDelay,
		Concurrency: a.cfg.CrawlConcurrency,
		MaxItems:    a.cfg.CrawlMaxItems,
	})
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
