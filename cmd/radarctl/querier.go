package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/SunWoo1213/ScholarShipRadar/internal/app"
	"github.com/SunWoo1213/ScholarShipRadar/internal/catalog"
	"github.com/SunWoo1213/ScholarShipRadar/internal/grpcserver"
	"github.com/SunWoo1213/ScholarShipRadar/internal/model"
)

// row is one printed scholarship, shared by local and remote results.
type row struct {
	Deadline  string  `json:"deadline"`
	Urgent    bool    `json:"urgent"`
	DueDate   string  `json:"due_date"`
	Title     string  `json:"title"`
	MinGPA    float64 `json:"min_gpa"`
	MaxIncome string  `json:"max_income"`
	Residence string  `json:"residence"`
	Link      string  `json:"link"`
}

type listing struct {
	Mode  string `json:"mode"`
	Today string `json:"today"`
	Rows  []row  `json:"scholarships"`
}

type stats struct {
	Today   string `json:"today"`
	Total   int    `json:"total"`
	Active  int    `json:"active"`
	Expired int    `json:"expired"`
}

type querier interface {
	Browse(ctx context.Context) (listing, error)
	Search(ctx context.Context, raw catalog.RawCriteria) (listing, error)
	Stats(ctx context.Context) (stats, error)
	Close()
}

func (f *rootFlags) querier(cmd *cobra.Command) (querier, error) {
	if f.grpcAddr != "" {
		conn, err := grpc.NewClient(f.grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, fmt.Errorf("dialing %s: %w", f.grpcAddr, err)
		}
		return &remoteQuerier{conn: conn, client: grpcserver.NewClient(conn)}, nil
	}
	a, cfg, err := f.openApp(cmd)
	if err != nil {
		return nil, err
	}
	return &localQuerier{app: a, loc: cfg.Location(), now: time.Now}, nil
}

// ─── Local catalog ───────────────────────────────────────────────────────────

type localQuerier struct {
	app *app.App
	loc *time.Location
	now func() time.Time
}

func (q *localQuerier) today() time.Time { return model.DateOf(q.now(), q.loc) }

func (q *localQuerier) Browse(ctx context.Context) (listing, error) {
	today := q.today()
	recs, err := q.app.Catalog.BrowseAll(ctx, today)
	if err != nil {
		return listing{}, err
	}
	return listing{Mode: catalog.ModeBrowse, Today: today.Format(model.DateLayout), Rows: rowsFrom(recs, today)}, nil
}

func (q *localQuerier) Search(ctx context.Context, raw catalog.RawCriteria) (listing, error) {
	c, err := catalog.ParseCriteria(raw)
	if err != nil {
		return listing{}, err
	}
	today := q.today()
	recs, err := q.app.Catalog.Search(ctx, c, today)
	if err != nil {
		return listing{}, err
	}
	return listing{Mode: catalog.ModeSearch, Today: today.Format(model.DateLayout), Rows: rowsFrom(recs, today)}, nil
}

func (q *localQuerier) Stats(ctx context.Context) (stats, error) {
	today := q.today()
	st, err := q.app.Catalog.Stats(ctx, today)
	if err != nil {
		return stats{}, err
	}
	return stats{Today: today.Format(model.DateLayout), Total: st.Total, Active: st.Active, Expired: st.Expired}, nil
}

func (q *localQuerier) Close() { q.app.Close() }

func rowsFrom(recs []model.Scholarship, today time.Time) []row {
	rows := make([]row, len(recs))
	for i, r := range recs {
		dl := catalog.ClassifyDeadline(r.DueDate, today)
		rows[i] = row{
			Deadline:  dl.Label(),
			Urgent:    dl.Urgent,
			DueDate:   r.DueDate.Format(model.DateLayout),
			Title:     r.Title,
			MinGPA:    r.MinGPA,
			MaxIncome: "-",
			Residence: r.Residence.String(),
			Link:      r.Link,
		}
		if n, ok := r.MaxIncome.Limit(); ok {
			rows[i].MaxIncome = strconv.Itoa(n)
		}
	}
	return rows
}

// ─── Remote server ───────────────────────────────────────────────────────────

type remoteQuerier struct {
	conn   *grpc.ClientConn
	client *grpcserver.Client
}

func (q *remoteQuerier) Browse(ctx context.Context) (listing, error) {
	resp, err := q.client.Browse(ctx, nil)
	if err != nil {
		return listing{}, err
	}
	return listingFromStruct(resp), nil
}

func (q *remoteQuerier) Search(ctx context.Context, raw catalog.RawCriteria) (listing, error) {
	fields := map[string]any{}
	for k, v := range map[string]string{"gpa": raw.GPA, "income": raw.Income, "residence": raw.Residence} {
		if v != "" {
			fields[k] = v
		}
	}
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return listing{}, err
	}
	resp, err := q.client.Search(ctx, req)
	if err != nil {
		return listing{}, err
	}
	return listingFromStruct(resp), nil
}

func (q *remoteQuerier) Stats(ctx context.Context) (stats, error) {
	resp, err := q.client.Stats(ctx, nil)
	if err != nil {
		return stats{}, err
	}
	f := resp.GetFields()
	return stats{
		Today:   f["today"].GetStringValue(),
		Total:   int(f["total"].GetNumberValue()),
		Active:  int(f["active"].GetNumberValue()),
		Expired: int(f["expired"].GetNumberValue()),
	}, nil
}

func (q *remoteQuerier) Close() { _ = q.conn.Close() }

func listingFromStruct(s *structpb.Struct) listing {
	f := s.GetFields()
	l := listing{
		Mode:  f["mode"].GetStringValue(),
		Today: f["today"].GetStringValue(),
		Rows:  []row{},
	}
	for _, v := range f["scholarships"].GetListValue().GetValues() {
		sf := v.GetStructValue().GetFields()
		dl := sf["deadline"].GetStructValue().GetFields()
		r := row{
			Deadline:  dl["label"].GetStringValue(),
			Urgent:    dl["urgent"].GetBoolValue(),
			DueDate:   sf["due_date"].GetStringValue(),
			Title:     sf["title"].GetStringValue(),
			MinGPA:    sf["min_gpa"].GetNumberValue(),
			MaxIncome: "-",
			Residence: sf["residence"].GetStringValue(),
			Link:      sf["link"].GetStringValue(),
		}
		if n, ok := sf["max_income"].GetKind().(*structpb.Value_NumberValue); ok {
			r.MaxIncome = strconv.Itoa(int(n.NumberValue))
		}
		l.Rows = append(l.Rows, r)
	}
	return l
}
