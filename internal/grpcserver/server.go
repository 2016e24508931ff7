// Package grpcserver implements the scholarship.v1.Catalog gRPC server.
//
// It delegates all business logic to catalog.Service and handles
// only the gRPC transport concerns: request decoding, error mapping,
// and type conversion between the domain model and Struct messages.
package grpcserver

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/SunWoo1213/ScholarShipRadar/internal/catalog"
	"github.com/SunWoo1213/ScholarShipRadar/internal/model"
)

// Catalog is the query side the server needs. *catalog.Service satisfies it.
type Catalog interface {
	BrowseAll(ctx context.Context, today time.Time) ([]model.Scholarship, error)
	Search(ctx context.Context, c model.Criteria, today time.Time) ([]model.Scholarship, error)
	Stats(ctx context.Context, today time.Time) (model.CatalogStats, error)
}

// Server implements CatalogServer.
type Server struct {
	svc Catalog
	loc *time.Location
	now func() time.Time
}

// NewServer constructs a gRPC Server backed by svc. "today" is computed in
// loc.
func NewServer(svc Catalog, loc *time.Location) *Server {
	if loc == nil {
		loc = time.UTC
	}
	return &Server{svc: svc, loc: loc, now: time.Now}
}

func (s *Server) today() time.Time {
	return model.DateOf(s.now(), s.loc)
}

// ─── RPC implementations ──────────────────────────────────────────────────────

// Browse returns every non-expired scholarship.
func (s *Server) Browse(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	seq, err := seqOf(req)
	if err != nil {
		return nil, toGRPCError(err)
	}
	today := s.today()
	recs, err := s.svc.BrowseAll(ctx, today)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return listToStruct(catalog.ModeBrowse, seq, today, recs)
}

// Search returns the non-expired scholarships matching the request's gpa,
// income and residence fields.
func (s *Server) Search(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	seq, err := seqOf(req)
	if err != nil {
		return nil, toGRPCError(err)
	}
	c, err := catalog.ParseCriteria(rawCriteria(req))
	if err != nil {
		return nil, toGRPCError(err)
	}
	today := s.today()
	recs, err := s.svc.Search(ctx, c, today)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return listToStruct(catalog.ModeSearch, seq, today, recs)
}

// Stats returns total, active and expired counts.
func (s *Server) Stats(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	today := s.today()
	st, err := s.svc.Stats(ctx, today)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return structpb.NewStruct(map[string]any{
		"today":   today.Format(model.DateLayout),
		"total":   st.Total,
		"active":  st.Active,
		"expired": st.Expired,
	})
}

// ─── Interceptors ─────────────────────────────────────────────────────────────

// LoggingInterceptor logs every unary call with its status code.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.InfoContext(ctx, "grpc call",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	var ve *catalog.ValidationError
	switch {
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, ve.Msg)
	case errors.Is(err, catalog.ErrEmptyCriteria):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, catalog.ErrCatalogUnavailable):
		return status.Error(codes.Unavailable, catalog.ErrCatalogUnavailable.Error())
	}
	return status.Error(codes.Internal, "internal server error")
}

// rawCriteria reads criteria fields that may arrive as numbers or strings.
func rawCriteria(req *structpb.Struct) catalog.RawCriteria {
	return catalog.RawCriteria{
		GPA:       fieldText(req, "gpa"),
		Income:    fieldText(req, "income"),
		Residence: fieldText(req, "residence"),
	}
}

func fieldText(req *structpb.Struct, name string) string {
	v, ok := req.GetFields()[name]
	if !ok {
		return ""
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
	case *structpb.Value_StringValue:
		return k.StringValue
	}
	return ""
}

func seqOf(req *structpb.Struct) (*int64, error) {
	s := fieldText(req, "seq")
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, &catalog.ValidationError{Msg: "seq must be an integer"}
	}
	return &v, nil
}

// listToStruct converts a listing into its Struct representation. Deadline
// classification is attached to each record.
func listToStruct(mode string, seq *int64, today time.Time, recs []model.Scholarship) (*structpb.Struct, error) {
	items := make([]any, 0, len(recs))
	for _, r := range recs {
		items = append(items, scholarshipToMap(r, today))
	}
	m := map[string]any{
		"mode":         mode,
		"today":        today.Format(model.DateLayout),
		"count":        len(recs),
		"scholarships": items,
	}
	if seq != nil {
		m["seq"] = *seq
	}
	return structpb.NewStruct(m)
}

func scholarshipToMap(r model.Scholarship, today time.Time) map[string]any {
	dl := catalog.ClassifyDeadline(r.DueDate, today)
	var maxIncome any
	if n, ok := r.MaxIncome.Limit(); ok {
		maxIncome = n
	}
	return map[string]any{
		"id":         r.ID,
		"title":      r.Title,
		"link":       r.Link,
		"due_date":   r.DueDate.Format(model.DateLayout),
		"min_gpa":    r.MinGPA,
		"max_income": maxIncome,
		"residence":  r.Residence.String(),
		"deadline": map[string]any{
			"label":     dl.Label(),
			"days_left": dl.DaysLeft,
			"urgent":    dl.Urgent,
			"expired":   dl.Status == catalog.DeadlineExpired,
		},
	}
}
