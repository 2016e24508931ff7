package catalog_test

import (
	"strconv"
	"time"

	"github.com/SunWoo1213/ScholarShipRadar/internal/model"
)

func date(s string) time.Time {
	t, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

func scope(s string) *model.ResidenceScope {
	r, err := model.ParseResidence(s)
	if err != nil {
		panic(err)
	}
	return &r
}

// recordA and recordB are the two-record catalog used by the scenario tests.
func recordA() model.Scholarship {
	return model.Scholarship{
		ID:        1,
		Title:     "A",
		Link:      "https://example.ac.kr/a",
		DueDate:   date("2025-01-10"),
		MinGPA:    3.0,
		MaxIncome: model.IncomeAtMost(5),
		Residence: model.InRegion("서울"),
	}
}

func recordB() model.Scholarship {
	return model.Scholarship{
		ID:        2,
		Title:     "B",
		Link:      "https://example.ac.kr/b",
		DueDate:   date("2025-01-05"),
		MinGPA:    0,
		MaxIncome: model.UnrestrictedIncome(),
		Residence: model.Nationwide(),
	}
}

// grid returns a spread of records covering every sentinel and boundary.
func grid() []model.Scholarship {
	var out []model.Scholarship
	id := int64(1)
	dues := []string{"2024-12-31", "2025-01-01", "2025-01-02", "2025-03-01"}
	gpas := []float64{0, 2.5, 3.0, 4.5}
	incomes := []model.IncomeCap{model.UnrestrictedIncome(), model.IncomeAtMost(1), model.IncomeAtMost(5), model.IncomeAtMost(10)}
	residences := []model.ResidenceScope{model.Nationwide(), model.InRegion("서울"), model.InRegion("제주")}
	for _, d := range dues {
		for _, g := range gpas {
			for _, inc := range incomes {
				for _, res := range residences {
					out = append(out, model.Scholarship{
						ID:        id,
						Link:      "https://example.ac.kr/" + strconv.FormatInt(id, 10),
						DueDate:   date(d),
						MinGPA:    g,
						MaxIncome: inc,
						Residence: res,
					})
					id++
				}
			}
		}
	}
	return out
}
