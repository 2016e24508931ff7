package catalog

import (
	"time"

	"github.com/SunWoo1213/ScholarShipRadar/internal/model"
)

// Query is what the engine asks a store for: every record matching Filter,
// ordered ascending by OrderBy with ties in insertion order.
type Query struct {
	Filter  And
	OrderBy Field
}

// String renders the query canonically. Equal queries render equally, so
// the string doubles as a cache key.
func (q Query) String() string {
	return q.Filter.String() + " ORDER BY " + string(q.OrderBy)
}

// BuildQuery translates criteria into a store query. The expiry clause is
// always present and comes first; criterion clauses follow in a fixed order
// (gpa, income, residence). Values are passed through literally; range
// validation is the caller's job.
func BuildQuery(c model.Criteria, today time.Time) Query {
	terms := []Expr{notExpiredClause(today)}
	if c.GPA != nil {
		terms = append(terms, gpaClause(*c.GPA))
	}
	if c.Income != nil {
		terms = append(terms, incomeClause(*c.Income))
	}
	if c.Residence != nil {
		terms = append(terms, residenceClause(*c.Residence))
	}
	return Query{Filter: And{Terms: terms}, OrderBy: FieldDueDate}
}

// BrowseQuery is the criteria-free query behind the default listing.
func BrowseQuery(today time.Time) Query {
	return BuildQuery(model.Criteria{}, today)
}
