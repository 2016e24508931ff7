package httpapi

import (
	"strings"
	"time"

	"github.com/SunWoo1213/ScholarShipRadar/internal/catalog"
	"github.com/SunWoo1213/ScholarShipRadar/internal/model"
	"github.com/SunWoo1213/ScholarShipRadar/internal/store"
)

// scholarshipJSON is the JSON shape of a catalog record. max_income is null
// when the scholarship has no income cap.
type scholarshipJSON struct {
	ID        int64        `json:"id"`
	Title     string       `json:"title"`
	Link      string       `json:"link"`
	DueDate   string       `json:"due_date"`
	MinGPA    float64      `json:"min_gpa"`
	MaxIncome *int         `json:"max_income"`
	Residence string       `json:"residence"`
	Deadline  deadlineJSON `json:"deadline"`
}

type deadlineJSON struct {
	Label    string `json:"label"`
	DaysLeft int    `json:"days_left"`
	Urgent   bool   `json:"urgent"`
	Expired  bool   `json:"expired"`
}

type listResponse struct {
	Mode         string            `json:"mode"`
	Seq          *int64            `json:"seq,omitempty"`
	Today        string            `json:"today"`
	Count        int               `json:"count"`
	Scholarships []scholarshipJSON `json:"scholarships"`
}

type statsResponse struct {
	Today   string `json:"today"`
	Total   int    `json:"total"`
	Active  int    `json:"active"`
	Expired int    `json:"expired"`
}

type upsertResponse struct {
	Created     bool            `json:"created"`
	Scholarship scholarshipJSON `json:"scholarship"`
}

func toScholarshipJSON(r model.Scholarship, today time.Time) scholarshipJSON {
	dl := catalog.ClassifyDeadline(r.DueDate, today)
	out := scholarshipJSON{
		ID:        r.ID,
		Title:     r.Title,
		Link:      r.Link,
		DueDate:   r.DueDate.Format(model.DateLayout),
		MinGPA:    r.MinGPA,
		Residence: r.Residence.String(),
		Deadline: deadlineJSON{
			Label:    dl.Label(),
			DaysLeft: dl.DaysLeft,
			Urgent:   dl.Urgent,
			Expired:  dl.Status == catalog.DeadlineExpired,
		},
	}
	if n, ok := r.MaxIncome.Limit(); ok {
		out.MaxIncome = &n
	}
	return out
}

func toScholarshipsJSON(recs []model.Scholarship, today time.Time) []scholarshipJSON {
	out := make([]scholarshipJSON, len(recs))
	for i, r := range recs {
		out[i] = toScholarshipJSON(r, today)
	}
	return out
}

// upsertRequest is the admin write body. Omitted optional fields take the
// unrestricted defaults; an omitted due_date is filled by the ingest
// service. max_income accepts null or the stored no-cap value 99 for
// "no income cap", and residence accepts 전국 for nationwide.
type upsertRequest struct {
	Title     string  `json:"title"`
	Link      string  `json:"link"`
	DueDate   string  `json:"due_date"`
	MinGPA    float64 `json:"min_gpa"`
	MaxIncome *int    `json:"max_income"`
	Residence string  `json:"residence"`
}

func (u upsertRequest) draft() (model.ScholarshipDraft, error) {
	d := model.ScholarshipDraft{
		Title:     u.Title,
		Link:      u.Link,
		MinGPA:    u.MinGPA,
		MaxIncome: model.UnrestrictedIncome(),
		Residence: model.Nationwide(),
	}
	var errs []string
	if strings.TrimSpace(u.DueDate) != "" {
		due, err := model.ParseDate(u.DueDate)
		if err != nil {
			errs = append(errs, "due_date must be YYYY-MM-DD")
		}
		d.DueDate = due
	}
	if u.MaxIncome != nil && *u.MaxIncome != store.IncomeUnrestricted {
		d.MaxIncome = model.IncomeAtMost(*u.MaxIncome)
	}
	if strings.TrimSpace(u.Residence) != "" {
		scope, err := model.ParseResidence(u.Residence)
		if err != nil {
			errs = append(errs, err.Error())
		}
		d.Residence = scope
	}
	if len(errs) > 0 {
		return model.ScholarshipDraft{}, &catalog.ValidationError{Msg: strings.Join(errs, "; ")}
	}
	return d, nil
}
