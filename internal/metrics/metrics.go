// Package metrics provides Prometheus instrumentation for the catalog and
// the crawler. All methods are safe on a nil *Metrics so tests and tools can
// run without a registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups every collector the service exports.
type Metrics struct {
	// Catalog queries by mode (browse|search) and outcome (ok|empty|invalid|error)
	Queries *prometheus.CounterVec

	// Records returned per query, by mode
	ResultSize *prometheus.HistogramVec

	// End-to-end query latency, by mode
	QueryLatency *prometheus.HistogramVec

	// Search cache lookups by result (hit|miss|error)
	CacheLookups *prometheus.CounterVec

	// Upserts by result (created|updated|invalid|error)
	Upserts *prometheus.CounterVec

	// Crawled announcements by outcome (upserted|skipped|excluded|failed)
	CrawlItems *prometheus.CounterVec
}

// New registers all collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Queries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "radar_catalog_queries_total",
			Help: "Catalog queries by mode and outcome",
		}, []string{"mode", "outcome"}),

		ResultSize: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "radar_catalog_result_size",
			Help:    "Number of scholarships returned per query",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}, []string{"mode"}),

		QueryLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "radar_catalog_query_duration_seconds",
			Help:    "Duration of catalog queries including the store round trip",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"mode"}),

		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "radar_search_cache_lookups_total",
			Help: "Search result cache lookups by result",
		}, []string{"result"}),

		Upserts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "radar_catalog_upserts_total",
			Help: "Catalog upserts by result",
		}, []string{"result"}),

		CrawlItems: f.NewCounterVec(prometheus.CounterOpts{
			Name: "radar_crawl_items_total",
			Help: "Crawled announcements by source and outcome",
		}, []string{"source", "outcome"}),
	}
}

// ObserveQuery records one finished catalog query.
func (m *Metrics) ObserveQuery(mode, outcome string, results int, d time.Duration) {
	if m == nil {
		return
	}
	m.Queries.WithLabelValues(mode, outcome).Inc()
	m.QueryLatency.WithLabelValues(mode).Observe(d.Seconds())
	if outcome == "ok" || outcome == "empty" {
		m.ResultSize.WithLabelValues(mode).Observe(float64(results))
	}
}

// IncCacheLookup records a cache hit, miss or error.
func (m *Metrics) IncCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}

// IncUpsert records an upsert result.
func (m *Metrics) IncUpsert(result string) {
	if m != nil {
		m.Upserts.WithLabelValues(result).Inc()
	}
}

// IncCrawlItem records the outcome of one crawled announcement.
func (m *Metrics) IncCrawlItem(source, outcome string) {
	if m != nil {
		m.CrawlItems.WithLabelValues(source, outcome).Inc()
	}
}
