// Package postgres is the production catalog store, backed by a pgx pool.
package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SunWoo1213/ScholarShipRadar/internal/catalog"
	"github.com/SunWoo1213/ScholarShipRadar/internal/model"
	"github.com/SunWoo1213/ScholarShipRadar/internal/store"
)

//go:embed schema.sql
var schema string

const selectColumns = `id, title, link, due_date, min_gpa, max_income, residence, created_at`

// Store implements catalog.Store and ingest.Writer on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store using pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the scholarships table and its index if missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate scholarships: %w", err)
	}
	return nil
}

// QueryCatalog implements catalog.Store.
func (s *Store) QueryCatalog(ctx context.Context, q catalog.Query) ([]model.Scholarship, error) {
	cond, err := store.Where(q.Filter, store.Postgres)
	if err != nil {
		return nil, fmt.Errorf("render filter: %w", err)
	}
	order, err := store.OrderBy(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+selectColumns+` FROM scholarships WHERE `+cond.Clause+` ORDER BY `+order,
		cond.Args...,
	)
	if err != nil {
		return nil, fmt.Errorf("queryCatalog query: %w", err)
	}
	defer rows.Close()

	recs := make([]model.Scholarship, 0)
	for rows.Next() {
		rec, err := scanScholarship(rows)
		if err != nil {
			return nil, fmt.Errorf("queryCatalog scan: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// CatalogStats implements catalog.Store.
func (s *Store) CatalogStats(ctx context.Context, today time.Time) (model.CatalogStats, error) {
	var st model.CatalogStats
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE due_date >= $1) FROM scholarships`,
		today,
	).Scan(&st.Total, &st.Active)
	if err != nil {
		return model.CatalogStats{}, fmt.Errorf("catalogStats: %w", err)
	}
	st.Expired = st.Total - st.Active
	return st, nil
}

// UpsertScholarship inserts d or updates the row with the same link. The
// boolean reports whether a new row was created.
func (s *Store) UpsertScholarship(ctx context.Context, d model.ScholarshipDraft) (model.Scholarship, bool, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO scholarships (title, link, due_date, min_gpa, max_income, residence)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (link) DO UPDATE
		 SET title      = EXCLUDED.title,
		     due_date   = EXCLUDED.due_date,
		     min_gpa    = EXCLUDED.min_gpa,
		     max_income = EXCLUDED.max_income,
		     residence  = EXCLUDED.residence,
		     updated_at = NOW()
		 RETURNING `+selectColumns+`, (xmax = 0) AS inserted`,
		d.Title, d.Link, d.DueDate, d.MinGPA,
		store.EncodeIncome(d.MaxIncome), store.EncodeResidence(d.Residence),
	)

	var (
		rec      model.Scholarship
		income   int
		res      string
		inserted bool
	)
	if err := row.Scan(
		&rec.ID, &rec.Title, &rec.Link, &rec.DueDate, &rec.MinGPA,
		&income, &res, &rec.CreatedAt, &inserted,
	); err != nil {
		return model.Scholarship{}, false, fmt.Errorf("upsertScholarship: %w", err)
	}
	if err := decodeSentinels(&rec, income, res); err != nil {
		return model.Scholarship{}, false, err
	}
	return rec, inserted, nil
}

func scanScholarship(rows pgx.Rows) (model.Scholarship, error) {
	var (
		rec    model.Scholarship
		income int
		res    string
	)
	if err := rows.Scan(
		&rec.ID, &rec.Title, &rec.Link, &rec.DueDate, &rec.MinGPA,
		&income, &res, &rec.CreatedAt,
	); err != nil {
		return model.Scholarship{}, err
	}
	if err := decodeSentinels(&rec, income, res); err != nil {
		return model.Scholarship{}, err
	}
	return rec, nil
}

func decodeSentinels(rec *model.Scholarship, income int, res string) error {
	var err error
	if rec.MaxIncome, err = store.DecodeIncome(income); err != nil {
		return fmt.Errorf("scholarship %d: %w", rec.ID, err)
	}
	if rec.Residence, err = store.DecodeResidence(res); err != nil {
		return fmt.Errorf("scholarship %d: %w", rec.ID, err)
	}
	return nil
}
