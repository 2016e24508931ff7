// Package catalog contains the scholarship query engine: eligibility
// predicates, the query builder and the deadline classifier, plus the
// Service that runs queries against a Store.
// It is transport-agnostic: used by the HTTP handlers, the gRPC server and
// the radarctl CLI.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/SunWoo1213/ScholarShipRadar/internal/metrics"
	"github.com/SunWoo1213/ScholarShipRadar/internal/model"
)

// Query modes, used in logs, metrics and API responses.
const (
	ModeBrowse = "browse"
	ModeSearch = "search"
)

// Store is the catalog collaborator. Implementations render Query.Filter
// into their own query language and must return records ordered by
// Query.OrderBy ascending, ties in insertion order.
type Store interface {
	QueryCatalog(ctx context.Context, q Query) ([]model.Scholarship, error)
	CatalogStats(ctx context.Context, today time.Time) (model.CatalogStats, error)
}

// ─── Service ─────────────────────────────────────────────────────────────────

const tracerName = "github.com/SunWoo1213/ScholarShipRadar/internal/catalog"

// Service runs catalog queries. It holds no mutable state; every call is
// independent.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// NewService returns a configured Service. logger and m may be nil.
func NewService(store Store, logger *slog.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer(tracerName),
	}
}

// UseTracerProvider starts the service's spans from tp instead of the
// global provider.
func (s *Service) UseTracerProvider(tp trace.TracerProvider) {
	s.tracer = tp.Tracer(tracerName)
}

// BrowseAll returns every non-expired record, soonest deadline first.
func (s *Service) BrowseAll(ctx context.Context, today time.Time) ([]model.Scholarship, error) {
	return s.run(ctx, ModeBrowse, BrowseQuery(today))
}

// Search returns the non-expired records matching every supplied criterion,
// soonest deadline first. It refuses empty criteria with ErrEmptyCriteria so
// that an explicit search is never confused with the browse listing.
func (s *Service) Search(ctx context.Context, c model.Criteria, today time.Time) ([]model.Scholarship, error) {
	if c.IsEmpty() {
		s.metrics.ObserveQuery(ModeSearch, "invalid", 0, 0)
		return nil, ErrEmptyCriteria
	}
	return s.run(ctx, ModeSearch, BuildQuery(c, today))
}

// Stats returns total, active and expired counts relative to today.
func (s *Service) Stats(ctx context.Context, today time.Time) (model.CatalogStats, error) {
	st, err := s.store.CatalogStats(ctx, today)
	if err != nil {
		return model.CatalogStats{}, fmt.Errorf("%w: stats: %w", ErrCatalogUnavailable, err)
	}
	return st, nil
}

func (s *Service) run(ctx context.Context, mode string, q Query) ([]model.Scholarship, error) {
	ctx, span := s.tracer.Start(ctx, "catalog."+mode,
		trace.WithAttributes(attribute.String("catalog.query", q.String())))
	defer span.End()

	start := time.Now()
	recs, err := s.store.QueryCatalog(ctx, q)
	elapsed := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		s.metrics.ObserveQuery(mode, "error", 0, elapsed)
		s.logger.ErrorContext(ctx, "catalog query failed",
			"mode", mode,
			"query", q.String(),
			"err", err,
		)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	outcome := "ok"
	if len(recs) == 0 {
		outcome = "empty"
	}
	span.SetAttributes(attribute.Int("catalog.results", len(recs)))
	s.metrics.ObserveQuery(mode, outcome, len(recs), elapsed)
	s.logger.DebugContext(ctx, "catalog query",
		"mode", mode,
		"results", len(recs),
		"duration_ms", elapsed.Milliseconds(),
	)
	return recs, nil
}
