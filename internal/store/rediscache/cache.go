// Package rediscache decorates a catalog.Store with a Redis-backed result
// cache. Keys embed a generation counter; Invalidate bumps it so every
// cached listing becomes unreachable at once and expires by TTL.
package rediscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SunWoo1213/ScholarShipRadar/internal/catalog"
	"github.com/SunWoo1213/ScholarShipRadar/internal/metrics"
	"github.com/SunWoo1213/ScholarShipRadar/internal/model"
	"github.com/SunWoo1213/ScholarShipRadar/internal/store"
)

const (
	keyPrefix = "radar:catalog:v1"
	genKey    = keyPrefix + ":gen"
)

// Store is a caching catalog.Store.
type Store struct {
	next    catalog.Store
	rdb     *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New wraps next. logger and m may be nil.
func New(next catalog.Store, rdb *redis.Client, ttl time.Duration, logger *slog.Logger, m *metrics.Metrics) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{next: next, rdb: rdb, ttl: ttl, logger: logger, metrics: m}
}

// QueryCatalog serves q from Redis when possible. Redis failures degrade to
// the wrapped store; they are never returned to the caller.
func (s *Store) QueryCatalog(ctx context.Context, q catalog.Query) ([]model.Scholarship, error) {
	gen, err := s.rdb.Get(ctx, genKey).Result()
	switch {
	case errors.Is(err, redis.Nil):
		gen = "0"
	case err != nil:
		s.metrics.IncCacheLookup("error")
		s.logger.WarnContext(ctx, "search cache unavailable", "err", err)
		return s.next.QueryCatalog(ctx, q)
	}
	key := cacheKey(gen, q)

	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		recs, derr := decodeRows(raw)
		if derr == nil {
			s.metrics.IncCacheLookup("hit")
			return recs, nil
		}
		s.logger.WarnContext(ctx, "discarding undecodable cache entry", "key", key, "err", derr)
	} else if !errors.Is(err, redis.Nil) {
		s.metrics.IncCacheLookup("error")
		s.logger.WarnContext(ctx, "search cache read failed", "key", key, "err", err)
		return s.next.QueryCatalog(ctx, q)
	}

	s.metrics.IncCacheLookup("miss")
	recs, err := s.next.QueryCatalog(ctx, q)
	if err != nil {
		return nil, err
	}

	payload, err := encodeRows(recs)
	if err != nil {
		return recs, nil
	}
	if err := s.rdb.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "search cache write failed", "key", key, "err", err)
	}
	return recs, nil
}

// CatalogStats is not cached.
func (s *Store) CatalogStats(ctx context.Context, today time.Time) (model.CatalogStats, error) {
	return s.next.CatalogStats(ctx, today)
}

// Invalidate makes every cached listing stale.
func (s *Store) Invalidate(ctx context.Context) error {
	if err := s.rdb.Incr(ctx, genKey).Err(); err != nil {
		return fmt.Errorf("bump cache generation: %w", err)
	}
	return nil
}

func cacheKey(gen string, q catalog.Query) string {
	sum := sha256.Sum256([]byte(q.String()))
	return keyPrefix + ":" + gen + ":" + hex.EncodeToString(sum[:16])
}

// row is the cached form of a record, with stored sentinels.
type row struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	DueDate   string    `json:"due_date"`
	MinGPA    float64   `json:"min_gpa"`
	MaxIncome int       `json:"max_income"`
	Residence string    `json:"residence"`
	CreatedAt time.Time `json:"created_at"`
}

func encodeRows(recs []model.Scholarship) ([]byte, error) {
	rows := make([]row, len(recs))
	for i, r := range recs {
		rows[i] = row{
			ID:        r.ID,
			Title:     r.Title,
			Link:      r.Link,
			DueDate:   r.DueDate.Format(model.DateLayout),
			MinGPA:    r.MinGPA,
			MaxIncome: store.EncodeIncome(r.MaxIncome),
			Residence: store.EncodeResidence(r.Residence),
			CreatedAt: r.CreatedAt,
		}
	}
	return json.Marshal(rows)
}

func decodeRows(raw []byte) ([]model.Scholarship, error) {
	var rows []row
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	recs := make([]model.Scholarship, len(rows))
	for i, r := range rows {
		due, err := model.ParseDate(r.DueDate)
		if err != nil {
			return nil, err
		}
		inc, err := store.DecodeIncome(r.MaxIncome)
		if err != nil {
			return nil, err
		}
		res, err := store.DecodeResidence(r.Residence)
		if err != nil {
			return nil, err
		}
		recs[i] = model.Scholarship{
			ID:        r.ID,
			Title:     r.Title,
			Link:      r.Link,
			DueDate:   due,
			MinGPA:    r.MinGPA,
			MaxIncome: inc,
			Residence: res,
			CreatedAt: r.CreatedAt,
		}
	}
	return recs, nil
}
