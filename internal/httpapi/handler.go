// Package httpapi implements the HTTP API of the scholarship radar.
//
// Routes:
//
//	GET  /health                    → liveness
//	GET  /metrics                   → Prometheus exposition
//	GET  /v1/scholarships           → browse every open scholarship
//	GET  /v1/scholarships/search    → search by gpa, income, residence
//	GET  /v1/stats                  → total / active / expired counts
//	POST /v1/admin/scholarships     → insert or update by link
//
// Listing routes echo the client's seq parameter so a client issuing
// overlapping searches can discard stale responses.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/SunWoo1213/ScholarShipRadar/internal/catalog"
	"github.com/SunWoo1213/ScholarShipRadar/internal/ingest"
	"github.com/SunWoo1213/ScholarShipRadar/internal/model"
)

// Catalog is the query side the handlers need. *catalog.Service satisfies it.
type Catalog interface {
	BrowseAll(ctx context.Context, today time.Time) ([]model.Scholarship, error)
	Search(ctx context.Context, c model.Criteria, today time.Time) ([]model.Scholarship, error)
	Stats(ctx context.Context, today time.Time) (model.CatalogStats, error)
}

// Ingester is the write side. *ingest.Service satisfies it.
type Ingester interface {
	Upsert(ctx context.Context, d model.ScholarshipDraft) (ingest.Result, error)
}

// Handler holds shared dependencies.
type Handler struct {
	catalog Catalog
	ingest  Ingester
	logger  *slog.Logger
	loc     *time.Location
	now     func() time.Time
}

// NewHandler returns a configured Handler. ing may be nil, in which case
// the admin route is not mounted. "today" is computed in loc.
func NewHandler(c Catalog, ing Ingester, logger *slog.Logger, loc *time.Location) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{catalog: c, ingest: ing, logger: logger, loc: loc, now: time.Now}
}

// Register mounts the /v1 routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/scholarships", h.handleBrowse)
		r.Get("/scholarships/search", h.handleSearch)
		r.Get("/stats", h.handleStats)
		if h.ingest != nil {
			r.Post("/admin/scholarships", h.handleUpsert)
		}
	})
}

func (h *Handler) today() time.Time {
	return model.DateOf(h.now(), h.loc)
}

// ─── Listing ─────────────────────────────────────────────────────────────────

func (h *Handler) handleBrowse(w http.ResponseWriter, r *http.Request) {
	seq, err := parseSeq(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	today := h.today()
	recs, err := h.catalog.BrowseAll(r.Context(), today)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeList(w, r, catalog.ModeBrowse, seq, today, recs)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	seq, err := parseSeq(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	c, err := catalog.ParseCriteria(catalog.RawCriteria{
		GPA:       q.Get("gpa"),
		Income:    q.Get("income"),
		Residence: q.Get("residence"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	today := h.today()
	recs, err := h.catalog.Search(r.Context(), c, today)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeList(w, r, catalog.ModeSearch, seq, today, recs)
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, mode string, seq *int64, today time.Time, recs []model.Scholarship) {
	h.logger.InfoContext(r.Context(), "catalog listing served",
		"request_id", RequestIDFrom(r.Context()),
		"mode", mode,
		"results", len(recs),
	)
	jsonOK(w, listResponse{
		Mode:         mode,
		Seq:          seq,
		Today:        today.Format(model.DateLayout),
		Count:        len(recs),
		Scholarships: toScholarshipsJSON(recs, today),
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	today := h.today()
	st, err := h.catalog.Stats(r.Context(), today)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonOK(w, statsResponse{
		Today:   today.Format(model.DateLayout),
		Total:   st.Total,
		Active:  st.Active,
		Expired: st.Expired,
	})
}

// ─── Admin ───────────────────────────────────────────────────────────────────

func (h *Handler) handleUpsert(w http.ResponseWriter, r *http.Request) {
	var body upsertRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		h.writeError(w, r, &catalog.ValidationError{Msg: "body must be a JSON scholarship object"})
		return
	}
	d, err := body.draft()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.ingest.Upsert(r.Context(), d)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	code := http.StatusOK
	if res.Created {
		code = http.StatusCreated
	}
	writeJSON(w, code, upsertResponse{
		Created:     res.Created,
		Scholarship: toScholarshipJSON(res.Scholarship, h.today()),
	})
}

// ─── Errors ──────────────────────────────────────────────────────────────────

// writeError maps domain errors to HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *catalog.ValidationError
	switch {
	case errors.As(err, &ve):
		jsonError(w, ve.Msg, http.StatusBadRequest)
	case errors.Is(err, catalog.ErrEmptyCriteria):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, context.Canceled):
		// Client went away; nobody is listening.
		h.logger.DebugContext(r.Context(), "request cancelled", "request_id", RequestIDFrom(r.Context()))
	case errors.Is(err, context.DeadlineExceeded):
		jsonError(w, "request timed out", http.StatusGatewayTimeout)
	case errors.Is(err, catalog.ErrCatalogUnavailable):
		h.logger.ErrorContext(r.Context(), "catalog unavailable",
			"request_id", RequestIDFrom(r.Context()),
			"path", r.URL.Path,
			"err", err,
		)
		jsonError(w, catalog.ErrCatalogUnavailable.Error(), http.StatusServiceUnavailable)
	default:
		h.logger.ErrorContext(r.Context(), "unhandled error",
			"request_id", RequestIDFrom(r.Context()),
			"path", r.URL.Path,
			"err", err,
		)
		jsonError(w, "internal server error", http.StatusInternalServerError)
	}
}

func parseSeq(r *http.Request) (*int64, error) {
	s := strings.TrimSpace(r.URL.Query().Get("seq"))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, &catalog.ValidationError{Msg: "seq must be an integer"}
	}
	return &v, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func jsonOK(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
