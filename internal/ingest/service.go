// Package ingest writes scholarship announcements into the catalog. It is
// used by the crawler and by the admin upsert endpoint.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/SunWoo1213/ScholarShipRadar/internal/catalog"
	"github.com/SunWoo1213/ScholarShipRadar/internal/metrics"
	"github.com/SunWoo1213/ScholarShipRadar/internal/model"
)

// EventUpserted is the Redis channel (and event type) published after every
// successful write.
const EventUpserted = "EVENT_SCHOLARSHIP_UPSERTED"

// Writer persists drafts keyed on their link. The boolean reports whether a
// new record was created.
type Writer interface {
	UpsertScholarship(ctx context.Context, d model.ScholarshipDraft) (model.Scholarship, bool, error)
}

// Invalidator drops cached search results.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Options configures a Service. Every field is optional.
type Options struct {
	// Redis receives EventUpserted notifications. Nil disables publishing.
	Redis *redis.Client
	// Cache is invalidated after every write.
	Cache   Invalidator
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// DefaultDueDays is added to today when a draft has no due date.
	DefaultDueDays int
	// Location determines "today" for the default due date.
	Location *time.Location
}

// Service validates drafts, fills defaults and writes them.
type Service struct {
	writer  Writer
	rdb     *redis.Client
	cache   Invalidator
	logger  *slog.Logger
	metrics *metrics.Metrics
	dueDays int
	loc     *time.Location
	now     func() time.Time
	tracer  trace.Tracer
}

// NewService returns a configured Service.
func NewService(w Writer, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Service{
		writer:  w,
		rdb:     opts.Redis,
		cache:   opts.Cache,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		dueDays: opts.DefaultDueDays,
		loc:     opts.Location,
		now:     time.Now,
		tracer:  otel.Tracer("github.com/SunWoo1213/ScholarShipRadar/internal/ingest"),
	}
}

// Result is the outcome of one upsert.
type Result struct {
	Scholarship model.Scholarship
	Created     bool
}

// Upsert validates d, applies defaults and writes it. Validation failures
// return *catalog.ValidationError; store failures wrap
// catalog.ErrCatalogUnavailable.
func (s *Service) Upsert(ctx context.Context, d model.ScholarshipDraft) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "ingest.upsert",
		trace.WithAttributes(attribute.String("scholarship.link", d.Link)))
	defer span.End()

	d, err := s.prepare(d)
	if err != nil {
		s.metrics.IncUpsert("invalid")
		return Result{}, err
	}

	rec, created, err := s.writer.UpsertScholarship(ctx, d)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert failed")
		s.metrics.IncUpsert("error")
		s.logger.ErrorContext(ctx, "upsert failed", "link", d.Link, "err", err)
		return Result{}, fmt.Errorf("%w: upsert: %w", catalog.ErrCatalogUnavailable, err)
	}

	outcome := "updated"
	if created {
		outcome = "created"
	}
	s.metrics.IncUpsert(outcome)
	s.logger.InfoContext(ctx, "scholarship upserted",
		"id", rec.ID,
		"link", rec.Link,
		"outcome", outcome,
	)

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.WarnContext(ctx, "search cache invalidation failed", "err", err)
		}
	}
	s.publish(ctx, rec, created)

	return Result{Scholarship: rec, Created: created}, nil
}

// prepare trims text fields, validates ranges and fills the due date.
func (s *Service) prepare(d model.ScholarshipDraft) (model.ScholarshipDraft, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Link = strings.TrimSpace(d.Link)

	var errs []string
	if d.Title == "" {
		errs = append(errs, "title is required")
	}
	if d.Link == "" {
		errs = append(errs, "link is required")
	} else if u, err := url.Parse(d.Link); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Sprintf("link %q is not an absolute http(s) URL", d.Link))
	}
	if d.MinGPA < 0 || d.MinGPA > catalog.MaxGPA {
		errs = append(errs, fmt.Sprintf("min_gpa must be between 0 and %.1f", catalog.MaxGPA))
	}
	if n, ok := d.MaxIncome.Limit(); ok && (n < catalog.MinIncome || n > catalog.MaxIncome) {
		errs = append(errs, fmt.Sprintf("max_income must be between %d and %d", catalog.MinIncome, catalog.MaxIncome))
	}
	if r, ok := d.Residence.Region(); ok && !model.IsKnownRegion(r) {
		errs = append(errs, fmt.Sprintf("unknown region %q", r))
	}
	if len(errs) > 0 {
		return d, &catalog.ValidationError{Msg: strings.Join(errs, "; ")}
	}

	if d.DueDate.IsZero() {
		d.DueDate = model.DateOf(s.now(), s.loc).AddDate(0, 0, s.dueDays)
	} else {
		d.DueDate = model.DateOf(d.DueDate, nil)
	}
	return d, nil
}

// publish emits EventUpserted. Failures are logged, never returned.
func (s *Service) publish(ctx context.Context, rec model.Scholarship, created bool) {
	if s.rdb == nil {
		return
	}
	event, _ := json.Marshal(map[string]any{
		"eventId":       uuid.NewString(),
		"type":          EventUpserted,
		"scholarshipId": rec.ID,
		"link":          rec.Link,
		"dueDate":       rec.DueDate.Format(model.DateLayout),
		"created":       created,
	})
	if err := s.rdb.Publish(ctx, EventUpserted, event).Err(); err != nil {
		s.logger.WarnContext(ctx, "publish "+EventUpserted+" failed", "err", err)
	}
}
