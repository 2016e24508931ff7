// Package store holds what the SQL catalog adapters share: the column
// encoding of the tagged model types and the translation of catalog filter
// expressions into SQL WHERE clauses.
package store

import (
	"fmt"

	"github.com/SunWoo1213/ScholarShipRadar/internal/model"
)

// Stored sentinel values. These never leave the adapter layer; the rest of
// the code base works with model.IncomeCap and model.ResidenceScope.
const (
	IncomeUnrestricted  = 99
	ResidenceNationwide = model.NationwideLabel
)

// EncodeIncome maps a cap to its column value.
func EncodeIncome(c model.IncomeCap) int {
	if n, ok := c.Limit(); ok {
		return n
	}
	return IncomeUnrestricted
}

// DecodeIncome maps a column value back to a cap.
func DecodeIncome(v int) (model.IncomeCap, error) {
	switch {
	case v == IncomeUnrestricted:
		return model.UnrestrictedIncome(), nil
	case v >= 1 && v <= 10:
		return model.IncomeAtMost(v), nil
	}
	return model.IncomeCap{}, fmt.Errorf("max_income %d out of range", v)
}

// EncodeResidence maps a scope to its column value.
func EncodeResidence(s model.ResidenceScope) string {
	if r, ok := s.Region(); ok {
		return string(r)
	}
	return ResidenceNationwide
}

// DecodeResidence maps a column value back to a scope.
func DecodeResidence(v string) (model.ResidenceScope, error) {
	s, err := model.ParseResidence(v)
	if err != nil {
		return model.ResidenceScope{}, fmt.Errorf("residence: %w", err)
	}
	return s, nil
}
