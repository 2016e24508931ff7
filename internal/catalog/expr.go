package catalog

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/SunWoo1213/ScholarShipRadar/internal/model"
)

// Field names a filterable or sortable catalog column.
type Field string

const (
	FieldDueDate   Field = "due_date"
	FieldMinGPA    Field = "min_gpa"
	FieldMaxIncome Field = "max_income"
	FieldResidence Field = "residence"
)

// Op is a binary comparison operator.
type Op string

const (
	OpEQ Op = "="
	OpLE Op = "<="
	OpGE Op = ">="
)

// Expr is a node of a filter expression tree. Store adapters render the
// tree into their native query language; the in-memory adapter evaluates it
// with Evaluate.
type Expr interface {
	fmt.Stringer
	isExpr()
}

// And matches when every term matches. An empty And matches everything.
type And struct{ Terms []Expr }

// Or matches when at least one term matches. An empty Or matches nothing.
type Or struct{ Terms []Expr }

// Compare tests Field Op Value. Value's dynamic type depends on Field:
// time.Time for FieldDueDate, float64 for FieldMinGPA, int for
// FieldMaxIncome and model.Region for FieldResidence.
type Compare struct {
	Field Field
	Op    Op
	Value any
}

// Unrestricted matches records that impose no restriction on Field: an
// unrestricted income cap or a nationwide residence scope.
type Unrestricted struct{ Field Field }

func (And) isExpr()          {}
func (Or) isExpr()           {}
func (Compare) isExpr()      {}
func (Unrestricted) isExpr() {}

func (e And) String() string { return joinTerms(e.Terms, " AND ") }
func (e Or) String() string  { return joinTerms(e.Terms, " OR ") }

func (e Compare) String() string {
	v := e.Value
	if t, ok := v.(time.Time); ok {
		v = t.Format(model.DateLayout)
	}
	return fmt.Sprintf("%s %s %v", e.Field, e.Op, v)
}

func (e Unrestricted) String() string { return fmt.Sprintf("unrestricted(%s)", e.Field) }

func joinTerms(terms []Expr, sep string) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// ─── Evaluation ──────────────────────────────────────────────────────────────

// Evaluate reports whether rec satisfies e. It returns an error for nodes or
// value types it does not understand rather than guessing.
func Evaluate(e Expr, rec model.Scholarship) (bool, error) {
	switch n := e.(type) {
	case And:
		for _, t := range n.Terms {
			ok, err := Evaluate(t, rec)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case Or:
		for _, t := range n.Terms {
			ok, err := Evaluate(t, rec)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case Unrestricted:
		switch n.Field {
		case FieldMaxIncome:
			return rec.MaxIncome.Unrestricted(), nil
		case FieldResidence:
			return rec.Residence.IsNationwide(), nil
		}
		return false, fmt.Errorf("field %s has no unrestricted form", n.Field)
	case Compare:
		return evaluateCompare(n, rec)
	case nil:
		return true, nil
	}
	return false, fmt.Errorf("unsupported expression %T", e)
}

func evaluateCompare(c Compare, rec model.Scholarship) (bool, error) {
	switch c.Field {
	case FieldDueDate:
		v, ok := c.Value.(time.Time)
		if !ok {
			return false, valueTypeError(c)
		}
		return compareOrdered(rec.DueDate.Compare(v), c.Op)
	case FieldMinGPA:
		v, ok := c.Value.(float64)
		if !ok {
			return false, valueTypeError(c)
		}
		return compareOrdered(cmp.Compare(rec.MinGPA, v), c.Op)
	case FieldMaxIncome:
		v, ok := c.Value.(int)
		if !ok {
			return false, valueTypeError(c)
		}
		// A numeric comparison never matches an unrestricted cap; the
		// Unrestricted node covers that case.
		limit, restricted := rec.MaxIncome.Limit()
		if !restricted {
			return false, nil
		}
		return compareOrdered(cmp.Compare(limit, v), c.Op)
	case FieldResidence:
		v, ok := c.Value.(model.Region)
		if !ok {
			return false, valueTypeError(c)
		}
		if c.Op != OpEQ {
			return false, fmt.Errorf("operator %s not supported on %s", c.Op, c.Field)
		}
		// Nationwide records only match through the Unrestricted node.
		r, ok := rec.Residence.Region()
		return ok && r == v, nil
	}
	return false, fmt.Errorf("unknown field %q", c.Field)
}

func compareOrdered(c int, op Op) (bool, error) {
	switch op {
	case OpEQ:
		return c == 0, nil
	case OpLE:
		return c <= 0, nil
	case OpGE:
		return c >= 0, nil
	}
	return false, fmt.Errorf("unknown operator %q", op)
}

func valueTypeError(c Compare) error {
	return fmt.Errorf("field %s: unexpected value type %T", c.Field, c.Value)
}
