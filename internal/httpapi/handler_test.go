package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SunWoo1213/ScholarShipRadar/internal/catalog"
	"github.com/SunWoo1213/ScholarShipRadar/internal/ingest"
	"github.com/SunWoo1213/ScholarShipRadar/internal/metrics"
	"github.com/SunWoo1213/ScholarShipRadar/internal/model"
	"github.com/SunWoo1213/ScholarShipRadar/internal/store/memory"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	return memory.New(
		model.Scholarship{
			ID: 1, Title: "A", Link: "https://example.ac.kr/a",
			DueDate: date(t, "2025-01-10"), MinGPA: 3.0,
			MaxIncome: model.IncomeAtMost(5), Residence: model.InRegion("서울"),
		},
		model.Scholarship{
			ID: 2, Title: "B", Link: "https://example.ac.kr/b",
			DueDate:   date(t, "2025-01-05"),
			MaxIncome: model.UnrestrictedIncome(), Residence: model.Nationwide(),
		},
		model.Scholarship{
			ID: 3, Title: "Old", Link: "https://example.ac.kr/old",
			DueDate:   date(t, "2024-12-31"),
			MaxIncome: model.UnrestrictedIncome(), Residence: model.Nationwide(),
		},
	)
}

// newTestRouter serves the API with "today" fixed to 2025-01-01 in Seoul.
func newTestRouter(t *testing.T, c Catalog, ing Ingester) http.Handler {
	t.Helper()
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	h := NewHandler(c, ing, nil, seoul)
	h.now = func() time.Time { return time.Date(2024, 12, 31, 16, 0, 0, 0, time.UTC) }
	reg := prometheus.NewRegistry()
	metrics.New(reg)
	return NewRouter(h, reg, "test")
}

func get(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func titlesOf(body map[string]any) []string {
	var out []string
	for _, s := range body["scholarships"].([]any) {
		out = append(out, s.(map[string]any)["title"].(string))
	}
	return out
}

func TestBrowse(t *testing.T) {
	svc := catalog.NewService(seedStore(t), nil, nil)
	h := newTestRouter(t, svc, nil)

	rec, body := get(t, h, "/v1/scholarships?seq=7")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "browse", body["mode"])
	assert.Equal(t, "2025-01-01", body["today"])
	assert.EqualValues(t, 7, body["seq"])
	assert.EqualValues(t, 2, body["count"])
	assert.Equal(t, []string{"B", "A"}, titlesOf(body))

	b := body["scholarships"].([]any)[0].(map[string]any)
	assert.Nil(t, b["max_income"])
	assert.Equal(t, "전국", b["residence"])
	assert.Equal(t, map[string]any{"label": "D-4", "days_left": float64(4), "urgent": true, "expired": false}, b["deadline"])

	a := body["scholarships"].([]any)[1].(map[string]any)
	assert.EqualValues(t, 5, a["max_income"])
	assert.Equal(t, "서울", a["residence"])
	assert.Equal(t, "D-9", a["deadline"].(map[string]any)["label"])
	assert.Equal(t, false, a["deadline"].(map[string]any)["urgent"])

	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestSearch_Scenarios(t *testing.T) {
	svc := catalog.NewService(seedStore(t), nil, nil)
	h := newTestRouter(t, svc, nil)

	cases := []struct {
		query string
		want  []string
	}{
		{"gpa=3.5", []string{"B", "A"}},
		{"gpa=2.5", []string{"B"}},
		{"income=3", []string{"B", "A"}},
		{"income=6", []string{"B"}},
		{"residence=%EA%B2%BD%EA%B8%B0", []string{"B"}}, // 경기
		{"gpa=3.5&income=3&residence=%EC%84%9C%EC%9A%B8", []string{"B", "A"}},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			rec, body := get(t, h, "/v1/scholarships/search?"+tc.query)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "search", body["mode"])
			assert.Equal(t, tc.want, titlesOf(body))
		})
	}
}

func TestSearch_NoMatchesIsNotAnError(t *testing.T) {
	only := memory.New(model.Scholarship{
		ID: 1, Title: "A", Link: "https://example.ac.kr/a",
		DueDate: date(t, "2025-01-10"), MinGPA: 3.0,
		MaxIncome: model.IncomeAtMost(5), Residence: model.InRegion("서울"),
	})
	h := newTestRouter(t, catalog.NewService(only, nil, nil), nil)

	rec, body := get(t, h, "/v1/scholarships/search?gpa=2.0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, body["count"])
	assert.Equal(t, []any{}, body["scholarships"])
}

func TestSearch_BadRequests(t *testing.T) {
	svc := catalog.NewService(seedStore(t), nil, nil)
	h := newTestRouter(t, svc, nil)

	cases := map[string]string{
		"":                   "enter at least one search criterion",
		"gpa=abc":            "not a number",
		"gpa=NaN":            "not a number",
		"gpa=0x1p1":          "not a number",
		"gpa=5.0":            "between 0 and 4.5",
		"income=0":           "between 1 and 10",
		"income=11":          "between 1 and 10",
		"residence=Atlantis": "unknown region",
		"gpa=3.0&seq=latest": "seq must be an integer",
		"gpa=9&income=x":     "; ",
	}
	for query, want := range cases {
		t.Run(query, func(t *testing.T) {
			rec, body := get(t, h, "/v1/scholarships/search?"+query)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, body["error"], want)
		})
	}
}

type failingCatalog struct{ err error }

func (f failingCatalog) BrowseAll(context.Context, time.Time) ([]model.Scholarship, error) {
	return nil, f.err
}

func (f failingCatalog) Search(context.Context, model.Criteria, time.Time) ([]model.Scholarship, error) {
	return nil, f.err
}

func (f failingCatalog) Stats(context.Context, time.Time) (model.CatalogStats, error) {
	return model.CatalogStats{}, f.err
}

func TestErrors_Mapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{catalog.ErrCatalogUnavailable, http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			h := newTestRouter(t, failingCatalog{err: tc.err}, nil)
			rec, _ := get(t, h, "/v1/scholarships")
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestStats(t *testing.T) {
	svc := catalog.NewService(seedStore(t), nil, nil)
	h := newTestRouter(t, svc, nil)

	rec, body := get(t, h, "/v1/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, body["total"])
	assert.EqualValues(t, 2, body["active"])
	assert.EqualValues(t, 1, body["expired"])
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestRouter(t, catalog.NewService(seedStore(t), nil, nil), nil)

	rec, body := get(t, h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	rec, _ = get(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestID_ReusesValidHeader(t *testing.T) {
	h := newTestRouter(t, catalog.NewService(seedStore(t), nil, nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "0b6c3f52-5d0e-4a6e-9d1c-0a4f3b8e2c11")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "0b6c3f52-5d0e-4a6e-9d1c-0a4f3b8e2c11", rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "<script>", rec.Header().Get(RequestIDHeader))
}

func post(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/scholarships", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

func TestUpsert(t *testing.T) {
	store := seedStore(t)
	h := newTestRouter(t, catalog.NewService(store, nil, nil), ingest.NewService(store, ingest.Options{}))

	rec, body := post(t, h, `{"title":"C","link":"https://example.ac.kr/c","due_date":"2025-01-01","max_income":3,"residence":"부산"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["created"])
	s := body["scholarship"].(map[string]any)
	assert.EqualValues(t, 3, s["max_income"])
	assert.Equal(t, "부산", s["residence"])
	assert.Equal(t, "D-day", s["deadline"].(map[string]any)["label"])

	rec, body = post(t, h, `{"title":"C2","link":"https://example.ac.kr/c","due_date":"2025-01-02"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["created"])

	_, list := get(t, h, "/v1/scholarships")
	assert.Equal(t, []string{"C2", "B", "A"}, titlesOf(list))
}

func TestUpsert_NoCapValue(t *testing.T) {
	store := seedStore(t)
	h := newTestRouter(t, catalog.NewService(store, nil, nil), ingest.NewService(store, ingest.Options{}))

	rec, body := post(t, h, `{"title":"D","link":"https://example.ac.kr/d","due_date":"2025-01-03","max_income":99,"residence":"전국"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	s := body["scholarship"].(map[string]any)
	assert.Nil(t, s["max_income"])
	assert.Equal(t, "전국", s["residence"])

	_, list := get(t, h, "/v1/scholarships/search?income=10")
	assert.Contains(t, titlesOf(list), "D")
}

func TestUpsert_Rejects(t *testing.T) {
	store := seedStore(t)
	h := newTestRouter(t, catalog.NewService(store, nil, nil), ingest.NewService(store, ingest.Options{}))

	cases := map[string]string{
		"not json":      `{`,
		"unknown field": `{"title":"x","link":"https://a.kr","deadline":"soon"}`,
		"bad date":      `{"title":"x","link":"https://a.kr","due_date":"01/02/2025"}`,
		"bad region":    `{"title":"x","link":"https://a.kr","residence":"Atlantis"}`,
		"bad income":    `{"title":"x","link":"https://a.kr","max_income":0}`,
		"income 98":     `{"title":"x","link":"https://a.kr","max_income":98}`,
		"no title":      `{"link":"https://a.kr"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec, out := post(t, h, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, out["error"])
		})
	}
}

func TestUpsert_NotMountedWithoutIngester(t *testing.T) {
	h := newTestRouter(t, catalog.NewService(seedStore(t), nil, nil), nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/scholarships", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, http.StatusCreated, rec.Code)
	assert.NotEqual(t, http.StatusOK, rec.Code)
}
