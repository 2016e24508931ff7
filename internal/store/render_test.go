package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SunWoo1213/ScholarShipRadar/internal/catalog"
	"github.com/SunWoo1213/ScholarShipRadar/internal/model"
	"github.com/SunWoo1213/ScholarShipRadar/internal/store"
)

var today = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func fullCriteria() model.Criteria {
	gpa := 3.5
	income := 3
	res := model.InRegion("경기")
	return model.Criteria{GPA: &gpa, Income: &income, Residence: &res}
}

func TestWhere_Postgres(t *testing.T) {
	q := catalog.BuildQuery(fullCriteria(), today)

	cond, err := store.Where(q.Filter, store.Postgres)
	require.NoError(t, err)

	assert.Equal(t,
		"(due_date >= $1 AND min_gpa <= $2 AND (max_income >= $3 OR max_income = $4) AND (residence = $5 OR residence = $6))",
		cond.Clause)
	assert.Equal(t, []any{today, 3.5, 3, 99, "경기", "전국"}, cond.Args)
}

func TestWhere_SQLite(t *testing.T) {
	q := catalog.BuildQuery(fullCriteria(), today)

	cond, err := store.Where(q.Filter, store.SQLite)
	require.NoError(t, err)

	assert.Equal(t,
		"(due_date >= ? AND min_gpa <= ? AND (max_income >= ? OR max_income = ?) AND (residence = ? OR residence = ?))",
		cond.Clause)
	assert.Equal(t, []any{"2025-01-01", 3.5, 3, 99, "경기", "전국"}, cond.Args)
}

func TestWhere_Browse(t *testing.T) {
	cond, err := store.Where(catalog.BrowseQuery(today).Filter, store.Postgres)
	require.NoError(t, err)
	assert.Equal(t, "(due_date >= $1)", cond.Clause)
	assert.Equal(t, []any{today}, cond.Args)
}

func TestWhere_EmptyNodes(t *testing.T) {
	cond, err := store.Where(catalog.And{}, store.SQLite)
	require.NoError(t, err)
	assert.Equal(t, "TRUE", cond.Clause)

	cond, err = store.Where(catalog.Or{}, store.SQLite)
	require.NoError(t, err)
	assert.Equal(t, "FALSE", cond.Clause)
}

func TestWhere_Rejects(t *testing.T) {
	cases := map[string]catalog.Expr{
		"unknown field":    catalog.Compare{Field: "title", Op: catalog.OpEQ, Value: "x"},
		"unknown operator": catalog.Compare{Field: catalog.FieldMinGPA, Op: "LIKE", Value: 1.0},
		"bad value type":   catalog.Compare{Field: catalog.FieldMinGPA, Op: catalog.OpLE, Value: []int{1}},
		"date on gpa":      catalog.Compare{Field: catalog.FieldMinGPA, Op: catalog.OpLE, Value: today},
		"no unrestricted":  catalog.Unrestricted{Field: catalog.FieldDueDate},
	}
	for name, e := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := store.Where(e, store.Postgres)
			assert.Error(t, err)
		})
	}
}

func TestOrderBy(t *testing.T) {
	got, err := store.OrderBy(catalog.BrowseQuery(today))
	require.NoError(t, err)
	assert.Equal(t, "due_date ASC, id ASC", got)

	_, err = store.OrderBy(catalog.Query{OrderBy: "title"})
	assert.Error(t, err)
}

func TestSentinelCodec(t *testing.T) {
	assert.Equal(t, 99, store.EncodeIncome(model.UnrestrictedIncome()))
	assert.Equal(t, 7, store.EncodeIncome(model.IncomeAtMost(7)))
	assert.Equal(t, "전국", store.EncodeResidence(model.Nationwide()))
	assert.Equal(t, "제주", store.EncodeResidence(model.InRegion("제주")))

	c, err := store.DecodeIncome(99)
	require.NoError(t, err)
	assert.True(t, c.Unrestricted())

	_, err = store.DecodeIncome(11)
	assert.Error(t, err)

	s, err := store.DecodeResidence("전국")
	require.NoError(t, err)
	assert.True(t, s.IsNationwide())

	_, err = store.DecodeResidence("Atlantis")
	assert.Error(t, err)
}
