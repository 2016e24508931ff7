package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/SunWoo1213/ScholarShipRadar/internal/model"
)

// Accepted input ranges for criteria supplied by students.
const (
	MaxGPA    = 4.5
	MinIncome = 1
	MaxIncome = 10
)

// decimalPattern admits plain decimal notation only. ParseFloat alone would
// also take NaN, Inf, exponents and hex floats.
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// RawCriteria is criteria text as it arrives from a form, query string or
// command line. Empty strings mean "not supplied".
type RawCriteria struct {
	GPA       string
	Income    string
	Residence string
}

// ParseCriteria parses and range-checks raw input. Every problem is
// reported, not just the first, so a form can flag all bad fields at once.
// The engine itself never clamps; this is the only place ranges are
// enforced.
func ParseCriteria(raw RawCriteria) (model.Criteria, error) {
	var (
		c    model.Criteria
		errs []string
	)

	if s := strings.TrimSpace(raw.GPA); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		switch {
		case err != nil || !decimalPattern.MatchString(s):
			errs = append(errs, fmt.Sprintf("gpa %q is not a number", raw.GPA))
		case v < 0 || v > MaxGPA:
			errs = append(errs, fmt.Sprintf("gpa must be between 0 and %.1f", MaxGPA))
		default:
			c.GPA = &v
		}
	}

	if s := strings.TrimSpace(raw.Income); s != "" {
		v, err := strconv.Atoi(s)
		switch {
		case err != nil:
			errs = append(errs, fmt.Sprintf("income %q is not an integer", raw.Income))
		case v < MinIncome || v > MaxIncome:
			errs = append(errs, fmt.Sprintf("income must be between %d and %d", MinIncome, MaxIncome))
		default:
			c.Income = &v
		}
	}

	if s := strings.TrimSpace(raw.Residence); s != "" {
		scope, err := model.ParseResidence(s)
		if err != nil {
			errs = append(errs, err.Error())
		} else {
			c.Residence = &scope
		}
	}

	if len(errs) > 0 {
		return model.Criteria{}, &ValidationError{Msg: strings.Join(errs, "; ")}
	}
	return c, nil
}

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrEmptyCriteria is returned by Search when no criterion is supplied.
// Callers wanting the unfiltered listing use BrowseAll.
var ErrEmptyCriteria = errors.New("enter at least one search criterion")

// ErrCatalogUnavailable wraps every failure of the backing store.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
