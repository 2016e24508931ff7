package catalog_test

import (
	"testing"

	"github.com/SunWoo1213/ScholarShipRadar/internal/catalog"
	"github.com/SunWoo1213/ScholarShipRadar/internal/model"
)

// ── Individual predicates ──────────────────────────────────────────────────

func TestMeetsGPA(t *testing.T) {
	rec := recordA() // min 3.0
	cases := []struct {
		gpa  float64
		want bool
	}{
		{2.99, false},
		{3.0, true},
		{4.5, true},
	}
	for _, c := range cases {
		if got := catalog.MeetsGPA(rec, c.gpa); got != c.want {
			t.Errorf("MeetsGPA(min 3.0, %v) = %v, want %v", c.gpa, got, c.want)
		}
	}
}

func TestMeetsGPA_NoRequirement(t *testing.T) {
	rec := recordB() // min 0
	for _, gpa := range []float64{0, 1.2, 4.5} {
		if !catalog.MeetsGPA(rec, gpa) {
			t.Errorf("MeetsGPA(min 0, %v) should be true", gpa)
		}
	}
}

func TestMeetsIncome_Restricted(t *testing.T) {
	rec := recordA() // cap 5
	cases := []struct {
		income int
		want   bool
	}{
		{1, true},
		{5, true},
		{6, false},
		{10, false},
	}
	for _, c := range cases {
		if got := catalog.MeetsIncome(rec, c.income); got != c.want {
			t.Errorf("MeetsIncome(cap 5, %d) = %v, want %v", c.income, got, c.want)
		}
	}
}

// An unrestricted cap passes every numeric income, in range or not.
func TestMeetsIncome_UnrestrictedAlwaysPasses(t *testing.T) {
	rec := recordB()
	for income := -5; income <= 200; income++ {
		if !catalog.MeetsIncome(rec, income) {
			t.Fatalf("MeetsIncome(unrestricted, %d) should be true", income)
		}
	}
}

func TestMeetsResidence(t *testing.T) {
	rec := recordA() // 서울
	if !catalog.MeetsResidence(rec, model.InRegion("서울")) {
		t.Error("MeetsResidence(서울, 서울) should be true")
	}
	if catalog.MeetsResidence(rec, model.InRegion("경기")) {
		t.Error("MeetsResidence(서울, 경기) should be false")
	}
	if catalog.MeetsResidence(rec, model.Nationwide()) {
		t.Error("MeetsResidence(서울, 전국) should be false")
	}
}

// A nationwide record passes the residence predicate for every region.
func TestMeetsResidence_NationwideAlwaysPasses(t *testing.T) {
	rec := recordB()
	for _, r := range model.Regions {
		if !catalog.MeetsResidence(rec, model.InRegion(r)) {
			t.Errorf("MeetsResidence(전국, %s) should be true", r)
		}
	}
	if !catalog.MeetsResidence(rec, model.Nationwide()) {
		t.Error("MeetsResidence(전국, 전국) should be true")
	}
}

func TestNotExpired(t *testing.T) {
	rec := recordB() // due 2025-01-05
	if !catalog.NotExpired(rec, date("2025-01-05")) {
		t.Error("record due today should not be expired")
	}
	if catalog.NotExpired(rec, date("2025-01-06")) {
		t.Error("record due yesterday should be expired")
	}
}

// ── Predicates and query clauses agree ─────────────────────────────────────

// For every record in the grid and every criteria combination, evaluating
// the built query must give the same answer as the pure predicates. This
// also covers out-of-range values, which are compared literally.
func TestBuildQuery_AgreesWithPredicates(t *testing.T) {
	today := date("2025-01-01")
	gpas := []*float64{nil, f64(0), f64(2.99), f64(3.0), f64(4.5), f64(10)}
	incomes := []*int{nil, intp(-1), intp(1), intp(5), intp(6), intp(10), intp(99)}
	residences := []*model.ResidenceScope{nil, scope("서울"), scope("경기"), scope("전국")}

	recs := grid()
	for _, g := range gpas {
		for _, inc := range incomes {
			for _, res := range residences {
				c := model.Criteria{GPA: g, Income: inc, Residence: res}
				q := catalog.BuildQuery(c, today)
				for _, r := range recs {
					got, err := catalog.Evaluate(q.Filter, r)
					if err != nil {
						t.Fatalf("Evaluate(%s) error: %v", q, err)
					}
					if want := catalog.Eligible(r, c, today); got != want {
						t.Fatalf("query %s on record %+v = %v, predicates say %v", q, r, got, want)
					}
				}
			}
		}
	}
}

func TestEvaluate_RejectsBadValueType(t *testing.T) {
	e := catalog.Compare{Field: catalog.FieldMinGPA, Op: catalog.OpLE, Value: "3.5"}
	if _, err := catalog.Evaluate(e, recordA()); err == nil {
		t.Error("Evaluate with string GPA value expected error, got nil")
	}
}

func TestEvaluate_RejectsUnknownField(t *testing.T) {
	e := catalog.Compare{Field: "title", Op: catalog.OpEQ, Value: "A"}
	if _, err := catalog.Evaluate(e, recordA()); err == nil {
		t.Error("Evaluate on unknown field expected error, got nil")
	}
}
