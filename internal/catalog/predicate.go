package catalog

import (
	"time"

	"github.com/SunWoo1213/ScholarShipRadar/internal/model"
)

// Each eligibility dimension is defined twice: as a pure predicate over one
// record, and as the expression clause the query builder hands to stores.
// The two forms must agree for every record; predicate_test.go checks that.

// NotExpired reports whether the record's deadline is today or later.
func NotExpired(rec model.Scholarship, today time.Time) bool {
	return !rec.DueDate.Before(today)
}

// MeetsGPA reports whether a student with gpa satisfies the record's
// minimum. A minimum of 0 admits every GPA.
func MeetsGPA(rec model.Scholarship, gpa float64) bool {
	return rec.MinGPA <= gpa
}

// MeetsIncome reports whether a student in income percentile income is
// within the record's cap. Unrestricted caps admit every percentile.
func MeetsIncome(rec model.Scholarship, income int) bool {
	limit, restricted := rec.MaxIncome.Limit()
	return !restricted || limit >= income
}

// MeetsResidence reports whether a student living in scope may apply.
// Nationwide records admit every region.
func MeetsResidence(rec model.Scholarship, scope model.ResidenceScope) bool {
	if rec.Residence.IsNationwide() {
		return true
	}
	return rec.Residence == scope
}

// Eligible applies every supplied criterion plus the expiry check.
func Eligible(rec model.Scholarship, c model.Criteria, today time.Time) bool {
	if !NotExpired(rec, today) {
		return false
	}
	if c.GPA != nil && !MeetsGPA(rec, *c.GPA) {
		return false
	}
	if c.Income != nil && !MeetsIncome(rec, *c.Income) {
		return false
	}
	if c.Residence != nil && !MeetsResidence(rec, *c.Residence) {
		return false
	}
	return true
}

// ─── Clauses ─────────────────────────────────────────────────────────────────

func notExpiredClause(today time.Time) Expr {
	return Compare{Field: FieldDueDate, Op: OpGE, Value: today}
}

func gpaClause(gpa float64) Expr {
	return Compare{Field: FieldMinGPA, Op: OpLE, Value: gpa}
}

func incomeClause(income int) Expr {
	return Or{Terms: []Expr{
		Compare{Field: FieldMaxIncome, Op: OpGE, Value: income},
		Unrestricted{Field: FieldMaxIncome},
	}}
}

func residenceClause(scope model.ResidenceScope) Expr {
	r, ok := scope.Region()
	if !ok {
		return Unrestricted{Field: FieldResidence}
	}
	return Or{Terms: []Expr{
		Compare{Field: FieldResidence, Op: OpEQ, Value: r},
		Unrestricted{Field: FieldResidence},
	}}
}
