package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/SunWoo1213/ScholarShipRadar/internal/catalog"
	"github.com/SunWoo1213/ScholarShipRadar/internal/model"
)

// Dialect captures the differences between SQL backends that matter to
// the renderer.
type Dialect struct {
	// Placeholder returns the bind marker for the n-th (1-based) argument.
	Placeholder func(n int) string
	// Date converts a calendar date into the driver argument for a
	// due_date comparison.
	Date func(time.Time) any
}

// Postgres binds with $1, $2, … and passes dates as time.Time.
var Postgres = Dialect{
	Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	Date:        func(t time.Time) any { return t },
}

// SQLite binds with ? and stores dates as YYYY-MM-DD text, which sorts and
// compares correctly as strings.
var SQLite = Dialect{
	Placeholder: func(int) string { return "?" },
	Date:        func(t time.Time) any { return t.Format(model.DateLayout) },
}

// columns maps filter fields to SQL column names.
var columns = map[catalog.Field]string{
	catalog.FieldDueDate:   "due_date",
	catalog.FieldMinGPA:    "min_gpa",
	catalog.FieldMaxIncome: "max_income",
	catalog.FieldResidence: "residence",
}

// Condition is a SQL WHERE clause fragment with its arguments.
type Condition struct {
	Clause string
	Args   []any
}

// Where renders e as a WHERE clause body. An empty And renders as TRUE
// (SQLite accepts TRUE since 3.23).
func Where(e catalog.Expr, d Dialect) (Condition, error) {
	r := renderer{d: d}
	clause, err := r.expr(e)
	if err != nil {
		return Condition{}, err
	}
	return Condition{Clause: clause, Args: r.args}, nil
}

// OrderBy renders the ORDER BY list for q. The id tiebreak preserves
// insertion order among equal keys.
func OrderBy(q catalog.Query) (string, error) {
	col, ok := columns[q.OrderBy]
	if !ok {
		return "", fmt.Errorf("unknown sort field %q", q.OrderBy)
	}
	return col + " ASC, id ASC", nil
}

type renderer struct {
	d    Dialect
	args []any
}

func (r *renderer) bind(v any) string {
	r.args = append(r.args, v)
	return r.d.Placeholder(len(r.args))
}

func (r *renderer) expr(e catalog.Expr) (string, error) {
	switch n := e.(type) {
	case catalog.And:
		if len(n.Terms) == 0 {
			return "TRUE", nil
		}
		return r.join(n.Terms, " AND ")
	case catalog.Or:
		if len(n.Terms) == 0 {
			return "FALSE", nil
		}
		return r.join(n.Terms, " OR ")
	case catalog.Unrestricted:
		switch n.Field {
		case catalog.FieldMaxIncome:
			return "max_income = " + r.bind(IncomeUnrestricted), nil
		case catalog.FieldResidence:
			return "residence = " + r.bind(ResidenceNationwide), nil
		}
		return "", fmt.Errorf("field %s has no unrestricted form", n.Field)
	case catalog.Compare:
		return r.compare(n)
	}
	return "", fmt.Errorf("unsupported expression %T", e)
}

func (r *renderer) join(terms []catalog.Expr, sep string) (string, error) {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		s, err := r.expr(t)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func (r *renderer) compare(c catalog.Compare) (string, error) {
	col, ok := columns[c.Field]
	if !ok {
		return "", fmt.Errorf("unknown field: %s", c.Field)
	}
	switch c.Op {
	case catalog.OpEQ, catalog.OpLE, catalog.OpGE:
	default:
		return "", fmt.Errorf("unsupported operator: %s", c.Op)
	}

	var arg any
	switch v := c.Value.(type) {
	case time.Time:
		if c.Field != catalog.FieldDueDate {
			return "", fmt.Errorf("field %s: unexpected date value", c.Field)
		}
		arg = r.d.Date(v)
	case float64:
		arg = v
	case int:
		arg = v
	case model.Region:
		arg = string(v)
	default:
		return "", fmt.Errorf("field %s: unexpected value type %T", c.Field, c.Value)
	}
	return fmt.Sprintf("%s %s %s", col, c.Op, r.bind(arg)), nil
}
