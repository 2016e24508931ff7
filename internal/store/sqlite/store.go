// Package sqlite provides a SQLite-backed catalog store for local
// development, the radarctl CLI and tests.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/SunWoo1213/ScholarShipRadar/internal/catalog"
	"github.com/SunWoo1213/ScholarShipRadar/internal/model"
	"github.com/SunWoo1213/ScholarShipRadar/internal/store"
)

//go:embed schema.sql
var schema string

const selectColumns = `id, title, link, due_date, min_gpa, max_income, residence, created_at`

// Store persists the catalog in a single SQLite file.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(v int64) time.Time { return time.UnixMilli(v).UTC() }

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	clean := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
		return nil, fmt.Errorf("creating db dir: %w", err)
	}

	db, err := sql.Open("sqlite", clean+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection serialises writers and keeps the upsert
	// transaction free of SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// QueryCatalog implements catalog.Store.
func (s *Store) QueryCatalog(ctx context.Context, q catalog.Query) ([]model.Scholarship, error) {
	cond, err := store.Where(q.Filter, store.SQLite)
	if err != nil {
		return nil, fmt.Errorf("render filter: %w", err)
	}
	order, err := store.OrderBy(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM scholarships WHERE "+cond.Clause+" ORDER BY "+order, //nolint:gosec
		cond.Args...,
	)
	if err != nil {
		return nil, fmt.Errorf("querying scholarships: %w", err)
	}
	defer rows.Close()

	recs := make([]model.Scholarship, 0)
	for rows.Next() {
		rec, err := scanScholarship(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning scholarship: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// CatalogStats implements catalog.Store.
func (s *Store) CatalogStats(ctx context.Context, today time.Time) (model.CatalogStats, error) {
	var st model.CatalogStats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN due_date >= ? THEN 1 ELSE 0 END), 0) FROM scholarships`,
		today.Format(model.DateLayout),
	).Scan(&st.Total, &st.Active)
	if err != nil {
		return model.CatalogStats{}, fmt.Errorf("counting scholarships: %w", err)
	}
	st.Expired = st.Total - st.Active
	return st, nil
}

// UpsertScholarship inserts d or updates the row with the same link.
func (s *Store) UpsertScholarship(ctx context.Context, d model.ScholarshipDraft) (model.Scholarship, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Scholarship{}, false, err
	}
	defer tx.Rollback()

	now := toMillis(s.now())
	rec := model.Scholarship{
		Title:     d.Title,
		Link:      d.Link,
		DueDate:   d.DueDate,
		MinGPA:    d.MinGPA,
		MaxIncome: d.MaxIncome,
		Residence: d.Residence,
	}

	var createdAt int64
	err = tx.QueryRowContext(ctx,
		`SELECT id, created_at FROM scholarships WHERE link = ?`, d.Link,
	).Scan(&rec.ID, &createdAt)

	created := false
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx,
			`INSERT INTO scholarships (title, link, due_date, min_gpa, max_income, residence, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			d.Title, d.Link, d.DueDate.Format(model.DateLayout), d.MinGPA,
			store.EncodeIncome(d.MaxIncome), store.EncodeResidence(d.Residence), now, now,
		)
		if err != nil {
			return model.Scholarship{}, false, fmt.Errorf("inserting scholarship: %w", err)
		}
		if rec.ID, err = res.LastInsertId(); err != nil {
			return model.Scholarship{}, false, err
		}
		createdAt = now
		created = true
	case err != nil:
		return model.Scholarship{}, false, fmt.Errorf("looking up link: %w", err)
	default:
		_, err := tx.ExecContext(ctx,
			`UPDATE scholarships
			 SET title = ?, due_date = ?, min_gpa = ?, max_income = ?, residence = ?, updated_at = ?
			 WHERE id = ?`,
			d.Title, d.DueDate.Format(model.DateLayout), d.MinGPA,
			store.EncodeIncome(d.MaxIncome), store.EncodeResidence(d.Residence), now, rec.ID,
		)
		if err != nil {
			return model.Scholarship{}, false, fmt.Errorf("updating scholarship %d: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Scholarship{}, false, err
	}
	rec.CreatedAt = fromMillis(createdAt)
	return rec, created, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanScholarship(row scanner) (model.Scholarship, error) {
	var (
		rec       model.Scholarship
		due       string
		income    int
		res       string
		createdAt int64
	)
	if err := row.Scan(&rec.ID, &rec.Title, &rec.Link, &due, &rec.MinGPA, &income, &res, &createdAt); err != nil {
		return model.Scholarship{}, err
	}
	var err error
	if rec.DueDate, err = model.ParseDate(due); err != nil {
		return model.Scholarship{}, fmt.Errorf("scholarship %d: %w", rec.ID, err)
	}
	if rec.MaxIncome, err = store.DecodeIncome(income); err != nil {
		return model.Scholarship{}, fmt.Errorf("scholarship %d: %w", rec.ID, err)
	}
	if rec.Residence, err = store.DecodeResidence(res); err != nil {
		return model.Scholarship{}, fmt.Errorf("scholarship %d: %w", rec.ID, err)
	}
	rec.CreatedAt = fromMillis(createdAt)
	return rec, nil
}
