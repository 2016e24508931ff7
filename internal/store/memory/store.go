// Package memory provides an in-process catalog store that evaluates filter
// expressions directly against records. It backs tests and the
// CATALOG_BACKEND=memory development mode.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/SunWoo1213/ScholarShipRadar/internal/catalog"
	"github.com/SunWoo1213/ScholarShipRadar/internal/model"
)

// Store keeps records in insertion order.
type Store struct {
	mu     sync.RWMutex
	recs   []model.Scholarship
	byLink map[string]int
	nextID int64
	now    func() time.Time
}

// New returns a Store seeded with recs. Seed records keep their IDs when
// set; otherwise IDs are assigned in order.
func New(recs ...model.Scholarship) *Store {
	s := &Store{byLink: make(map[string]int), nextID: 1, now: time.Now}
	for _, r := range recs {
		if r.ID == 0 {
			r.ID = s.nextID
		}
		if r.ID >= s.nextID {
			s.nextID = r.ID + 1
		}
		s.byLink[r.Link] = len(s.recs)
		s.recs = append(s.recs, r)
	}
	return s
}

// QueryCatalog implements catalog.Store.
func (s *Store) QueryCatalog(ctx context.Context, q catalog.Query) ([]model.Scholarship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Scholarship, 0)
	for _, r := range s.recs {
		ok, err := catalog.Evaluate(q.Filter, r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	// Stable sort keeps insertion order among equal deadlines.
	if q.OrderBy == catalog.FieldDueDate {
		slices.SortStableFunc(out, func(a, b model.Scholarship) int {
			return a.DueDate.Compare(b.DueDate)
		})
	}
	return out, nil
}

// CatalogStats implements catalog.Store.
func (s *Store) CatalogStats(ctx context.Context, today time.Time) (model.CatalogStats, error) {
	if err := ctx.Err(); err != nil {
		return model.CatalogStats{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := model.CatalogStats{Total: len(s.recs)}
	for _, r := range s.recs {
		if catalog.NotExpired(r, today) {
			st.Active++
		}
	}
	st.Expired = st.Total - st.Active
	return st, nil
}

// UpsertScholarship inserts d, or replaces the record with the same link.
func (s *Store) UpsertScholarship(ctx context.Context, d model.ScholarshipDraft) (model.Scholarship, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.Scholarship{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := model.Scholarship{
		Title:     d.Title,
		Link:      d.Link,
		DueDate:   d.DueDate,
		MinGPA:    d.MinGPA,
		MaxIncome: d.MaxIncome,
		Residence: d.Residence,
	}
	if i, ok := s.byLink[d.Link]; ok {
		rec.ID = s.recs[i].ID
		rec.CreatedAt = s.recs[i].CreatedAt
		s.recs[i] = rec
		return rec, false, nil
	}

	rec.ID = s.nextID
	rec.CreatedAt = s.now().UTC()
	s.nextID++
	s.byLink[d.Link] = len(s.recs)
	s.recs = append(s.recs, rec)
	return rec, true, nil
}
