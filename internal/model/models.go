// Package model defines shared data structures for the scholarship catalog.
package model

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Scholarship is one catalog entry. Records are written by the ingestion
// pipeline and only ever read by the query engine.
type Scholarship struct {
	ID        int64
	Title     string
	Link      string
	DueDate   time.Time // calendar date, midnight UTC
	MinGPA    float64   // 0 means no GPA requirement
	MaxIncome IncomeCap
	Residence ResidenceScope
	CreatedAt time.Time
}

// ScholarshipDraft is the input to an upsert. Zero values of MaxIncome and
// Residence already mean "unrestricted"; a zero DueDate is filled by the
// ingest service.
type ScholarshipDraft struct {
	Title     string
	Link      string
	DueDate   time.Time
	MinGPA    float64
	MaxIncome IncomeCap
	Residence ResidenceScope
}

// CatalogStats summarises the catalog relative to a reference day.
type CatalogStats struct {
	Total   int
	Active  int
	Expired int
}

// ─── Income cap ──────────────────────────────────────────────────────────────

// IncomeCap is the highest income percentile a scholarship accepts.
// The zero value is Unrestricted.
type IncomeCap struct {
	limit      int
	restricted bool
}

// UnrestrictedIncome returns a cap that admits every income percentile.
func UnrestrictedIncome() IncomeCap { return IncomeCap{} }

// IncomeAtMost returns a cap admitting percentiles up to and including n.
func IncomeAtMost(n int) IncomeCap { return IncomeCap{limit: n, restricted: true} }

// Unrestricted reports whether the cap admits every percentile.
func (c IncomeCap) Unrestricted() bool { return !c.restricted }

// Limit returns the ceiling and true, or 0 and false when unrestricted.
func (c IncomeCap) Limit() (int, bool) { return c.limit, c.restricted }

func (c IncomeCap) String() string {
	if !c.restricted {
		return "unrestricted"
	}
	return fmt.Sprintf("%d분위 이하", c.limit)
}

// ─── Residence scope ─────────────────────────────────────────────────────────

// ResidenceScope is the set of regions a scholarship is open to: either a
// single region or the whole country. The zero value is Nationwide.
type ResidenceScope struct {
	region Region
}

// Nationwide returns a scope open to every region.
func Nationwide() ResidenceScope { return ResidenceScope{} }

// InRegion returns a scope restricted to r.
func InRegion(r Region) ResidenceScope { return ResidenceScope{region: r} }

// IsNationwide reports whether the scope covers every region.
func (s ResidenceScope) IsNationwide() bool { return s.region == "" }

// Region returns the region and true, or "" and false when nationwide.
func (s ResidenceScope) Region() (Region, bool) { return s.region, s.region != "" }

func (s ResidenceScope) String() string {
	if s.region == "" {
		return NationwideLabel
	}
	return string(s.region)
}

// ─── Criteria ────────────────────────────────────────────────────────────────

// Criteria are the optional, per-request filters a student supplies. A nil
// field means "do not filter on this dimension".
type Criteria struct {
	GPA       *float64
	Income    *int
	Residence *ResidenceScope
}

// IsEmpty reports whether no criterion is set.
func (c Criteria) IsEmpty() bool {
	return c.GPA == nil && c.Income == nil && c.Residence == nil
}
