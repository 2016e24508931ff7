package catalog_test

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"testing"
	"time"

	"github.com/SunWoo1213/ScholarShipRadar/internal/catalog"
	"github.com/SunWoo1213/ScholarShipRadar/internal/model"
	"github.com/SunWoo1213/ScholarShipRadar/internal/store/memory"
)

func newStore(recs ...model.Scholarship) *memory.Store {
	return memory.New(recs...)
}

func newService(recs ...model.Scholarship) *catalog.Service {
	return catalog.NewService(newStore(recs...), nil, nil)
}

func titles(recs []model.Scholarship) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Title
	}
	return out
}

// ── BuildQuery shape ───────────────────────────────────────────────────────

func TestBuildQuery_AlwaysFiltersExpired(t *testing.T) {
	today := date("2025-01-01")
	q := catalog.BuildQuery(model.Criteria{}, today)

	if len(q.Filter.Terms) != 1 {
		t.Fatalf("empty criteria should yield one term, got %d: %s", len(q.Filter.Terms), q)
	}
	want := catalog.Compare{Field: catalog.FieldDueDate, Op: catalog.OpGE, Value: today}
	if !reflect.DeepEqual(q.Filter.Terms[0], want) {
		t.Errorf("first term = %v, want %v", q.Filter.Terms[0], want)
	}
	if q.OrderBy != catalog.FieldDueDate {
		t.Errorf("OrderBy = %q, want due_date", q.OrderBy)
	}
}

func TestBuildQuery_String(t *testing.T) {
	c := model.Criteria{GPA: f64(3.5), Income: intp(3), Residence: scope("경기")}
	got := catalog.BuildQuery(c, date("2025-01-01")).String()
	want := "(due_date >= 2025-01-01 AND min_gpa <= 3.5 AND " +
		"(max_income >= 3 OR unrestricted(max_income)) AND " +
		"(residence = 경기 OR unrestricted(residence))) ORDER BY due_date"
	if got != want {
		t.Errorf("String() =\n  %s\nwant\n  %s", got, want)
	}
}

func TestBuildQuery_NationwideCriterion(t *testing.T) {
	q := catalog.BuildQuery(model.Criteria{Residence: scope("전국")}, date("2025-01-01"))
	last := q.Filter.Terms[len(q.Filter.Terms)-1]
	if last != (catalog.Unrestricted{Field: catalog.FieldResidence}) {
		t.Errorf("nationwide criterion should reduce to unrestricted(residence), got %v", last)
	}
}

// ── Scenarios ──────────────────────────────────────────────────────────────

func TestSearch_GPAScenario(t *testing.T) {
	svc := newService(recordA(), recordB())
	got, err := svc.Search(context.Background(), model.Criteria{GPA: f64(3.5)}, date("2025-01-01"))
	if err != nil {
		t.Fatalf("Search returned unexpected error: %v", err)
	}
	if want := []string{"B", "A"}; !slices.Equal(titles(got), want) {
		t.Errorf("Search(gpa 3.5) = %v, want %v", titles(got), want)
	}
}

func TestSearch_IncomeScenario(t *testing.T) {
	svc := newService(recordA(), recordB())
	got, err := svc.Search(context.Background(), model.Criteria{Income: intp(3)}, date("2025-01-01"))
	if err != nil {
		t.Fatalf("Search returned unexpected error: %v", err)
	}
	if want := []string{"B", "A"}; !slices.Equal(titles(got), want) {
		t.Errorf("Search(income 3) = %v, want %v", titles(got), want)
	}
}

func TestSearch_ResidenceScenario(t *testing.T) {
	svc := newService(recordA(), recordB())
	got, err := svc.Search(context.Background(), model.Criteria{Residence: scope("경기")}, date("2025-01-01"))
	if err != nil {
		t.Fatalf("Search returned unexpected error: %v", err)
	}
	if want := []string{"B"}; !slices.Equal(titles(got), want) {
		t.Errorf("Search(residence 경기) = %v, want %v", titles(got), want)
	}
}

func TestBrowseAll_ExcludesExpired(t *testing.T) {
	svc := newService(recordA(), recordB())
	got, err := svc.BrowseAll(context.Background(), date("2025-01-06"))
	if err != nil {
		t.Fatalf("BrowseAll returned unexpected error: %v", err)
	}
	if want := []string{"A"}; !slices.Equal(titles(got), want) {
		t.Errorf("BrowseAll(2025-01-06) = %v, want %v", titles(got), want)
	}
}

func TestBrowseAll_OrderedByDueDate(t *testing.T) {
	svc := newService(recordA(), recordB())
	got, err := svc.BrowseAll(context.Background(), date("2025-01-01"))
	if err != nil {
		t.Fatalf("BrowseAll returned unexpected error: %v", err)
	}
	if want := []string{"B", "A"}; !slices.Equal(titles(got), want) {
		t.Errorf("BrowseAll = %v, want %v", titles(got), want)
	}
}

// ── Properties over the grid ───────────────────────────────────────────────

func TestResults_NeverExpiredAndSorted(t *testing.T) {
	recs := grid()
	svc := newService(recs...)
	today := date("2025-01-01")
	ctx := context.Background()

	criteria := []model.Criteria{
		{GPA: f64(3.0)},
		{Income: intp(5)},
		{Residence: scope("서울")},
		{GPA: f64(2.5), Income: intp(1), Residence: scope("제주")},
	}
	results := [][]model.Scholarship{}
	browse, err := svc.BrowseAll(ctx, today)
	if err != nil {
		t.Fatalf("BrowseAll: %v", err)
	}
	results = append(results, browse)
	for _, c := range criteria {
		got, err := svc.Search(ctx, c, today)
		if err != nil {
			t.Fatalf("Search(%+v): %v", c, err)
		}
		results = append(results, got)
	}

	for i, res := range results {
		for j, r := range res {
			if r.DueDate.Before(today) {
				t.Errorf("result set %d contains expired record %d", i, r.ID)
			}
			if j > 0 && res[j-1].DueDate.After(r.DueDate) {
				t.Errorf("result set %d not sorted at index %d", i, j)
			}
		}
	}
}

// Equal deadlines keep catalog insertion order.
func TestResults_TiesKeepInsertionOrder(t *testing.T) {
	recs := grid()
	svc := newService(recs...)
	got, err := svc.BrowseAll(context.Background(), date("2025-01-01"))
	if err != nil {
		t.Fatalf("BrowseAll: %v", err)
	}
	for j := 1; j < len(got); j++ {
		if got[j-1].DueDate.Equal(got[j].DueDate) && got[j-1].ID > got[j].ID {
			t.Fatalf("tie at index %d out of insertion order: %d before %d", j, got[j-1].ID, got[j].ID)
		}
	}
}

func TestSearch_Idempotent(t *testing.T) {
	svc := newService(grid()...)
	c := model.Criteria{GPA: f64(3.0), Income: intp(5)}
	today := date("2025-01-01")

	first, err := svc.Search(context.Background(), c, today)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	second, err := svc.Search(context.Background(), c, today)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two identical searches returned different sequences")
	}
}

// Filtering with zero criteria is the browse view.
func TestBuildQuery_ZeroCriteriaEqualsBrowse(t *testing.T) {
	store := memory.New(grid()...)
	today := date("2025-01-01")
	ctx := context.Background()

	viaBuild, err := store.QueryCatalog(ctx, catalog.BuildQuery(model.Criteria{}, today))
	if err != nil {
		t.Fatalf("QueryCatalog: %v", err)
	}
	browse, err := catalog.NewService(store, nil, nil).BrowseAll(ctx, today)
	if err != nil {
		t.Fatalf("BrowseAll: %v", err)
	}
	if !reflect.DeepEqual(viaBuild, browse) {
		t.Error("zero-criteria query differs from BrowseAll")
	}
}

// ── Errors ─────────────────────────────────────────────────────────────────

func TestSearch_EmptyCriteria(t *testing.T) {
	svc := newService(recordA(), recordB())
	_, err := svc.Search(context.Background(), model.Criteria{}, date("2025-01-01"))
	if !errors.Is(err, catalog.ErrEmptyCriteria) {
		t.Errorf("Search(empty) error = %v, want ErrEmptyCriteria", err)
	}
}

type failingStore struct{ err error }

func (f failingStore) QueryCatalog(context.Context, catalog.Query) ([]model.Scholarship, error) {
	return nil, f.err
}

func (f failingStore) CatalogStats(context.Context, time.Time) (model.CatalogStats, error) {
	return model.CatalogStats{}, f.err
}

func TestSearch_StoreFailure(t *testing.T) {
	cause := errors.New("connection refused")
	svc := catalog.NewService(failingStore{err: cause}, nil, nil)

	got, err := svc.Search(context.Background(), model.Criteria{GPA: f64(3)}, date("2025-01-01"))
	if !errors.Is(err, catalog.ErrCatalogUnavailable) {
		t.Errorf("error = %v, want ErrCatalogUnavailable", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error = %v, should wrap the store error", err)
	}
	if got != nil {
		t.Errorf("failed search returned %d records, want none", len(got))
	}
}

func TestBrowseAll_ContextCanceled(t *testing.T) {
	svc := catalog.NewService(failingStore{err: context.Canceled}, nil, nil)
	_, err := svc.BrowseAll(context.Background(), date("2025-01-01"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if errors.Is(err, catalog.ErrCatalogUnavailable) {
		t.Error("cancellation should not be reported as catalog unavailable")
	}
}

func TestStats(t *testing.T) {
	svc := newService(recordA(), recordB())
	st, err := svc.Stats(context.Background(), date("2025-01-06"))
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st != (model.CatalogStats{Total: 2, Active: 1, Expired: 1}) {
		t.Errorf("Stats = %+v, want {2 1 1}", st)
	}
}
