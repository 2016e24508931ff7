// Package crawler collects scholarship announcements from university and
// foundation notice boards and feeds them to the ingest service.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/SunWoo1213/ScholarShipRadar/internal/ingest"
	"github.com/SunWoo1213/ScholarShipRadar/internal/metrics"
	"github.com/SunWoo1213/ScholarShipRadar/internal/model"
)

// Upserter writes one draft into the catalog.
type Upserter interface {
	Upsert(ctx context.Context, d model.ScholarshipDraft) (ingest.Result, error)
}

// Options configures a Crawler. Zero values fall back to defaults.
type Options struct {
	Fetcher     *Fetcher
	Extractor   Extractor
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Delay       time.Duration // pause before each detail fetch
	Concurrency int           // detail pages fetched in parallel
	MaxItems    int           // per-source cap unless the source sets its own
}

// Crawler runs crawl cycles. Links upserted by earlier cycles are skipped,
// so a long-running process only processes new announcements.
type Crawler struct {
	fetcher     *Fetcher
	extractor   Extractor
	ingest      Upserter
	logger      *slog.Logger
	metrics     *metrics.Metrics
	delay       time.Duration
	concurrency int
	maxItems    int

	mu   sync.Mutex
	seen map[string]struct{}
}

// Report summarises one source's crawl.
type Report struct {
	Source   string
	Found    int
	Upserted int
	Skipped  int // already seen
	Excluded int
	Failed   int
}

// New constructs a Crawler writing through ing.
func New(ing Upserter, opts Options) *Crawler {
	if opts.Fetcher == nil {
		opts.Fetcher = NewFetcher(nil)
	}
	if opts.Extractor == nil {
		opts.Extractor = RuleExtractor{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.MaxItems < 1 {
		opts.MaxItems = 50
	}
	return &Crawler{
		fetcher:     opts.Fetcher,
		extractor:   opts.Extractor,
		ingest:      ing,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		delay:       opts.Delay,
		concurrency: opts.Concurrency,
		maxItems:    opts.MaxItems,
		seen:        make(map[string]struct{}),
	}
}

// RunAll crawls every source in turn. A failing source is logged and does
// not stop the others.
func (c *Crawler) RunAll(ctx context.Context, sources []Source) []Report {
	reports := make([]Report, 0, len(sources))
	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		rep, err := c.Run(ctx, src)
		if err != nil {
			c.logger.ErrorContext(ctx, "crawl failed", "source", src.Name, "err", err)
		}
		reports = append(reports, rep)
	}
	return reports
}

// Run crawls one source: the board listing, then each new announcement's
// detail page. Per-announcement failures are counted and skipped; only a
// board failure or cancellation is returned as an error.
func (c *Crawler) Run(ctx context.Context, src Source) (Report, error) {
	rep := Report{Source: src.Name}

	base, err := url.Parse(src.URL)
	if err != nil {
		return rep, fmt.Errorf("source url: %w", err)
	}
	doc, err := c.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return rep, fmt.Errorf("fetch board: %w", err)
	}

	items := ParseBoard(doc, base)
	limit := c.maxItems
	if src.MaxItems > 0 {
		limit = src.MaxItems
	}
	if len(items) > limit {
		items = items[:limit]
	}
	rep.Found = len(items)
	c.logger.InfoContext(ctx, "board parsed", "source", src.Name, "announcements", len(items))

	var mu sync.Mutex
	count := func(outcome string) {
		mu.Lock()
		defer mu.Unlock()
		switch outcome {
		case "upserted":
			rep.Upserted++
		case "skipped":
			rep.Skipped++
		case "excluded":
			rep.Excluded++
		case "failed":
			rep.Failed++
		}
		c.metrics.IncCrawlItem(src.Name, outcome)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, item := range items {
		if c.isSeen(item.Link) {
			count("skipped")
			continue
		}
		g.Go(func() error {
			outcome, err := c.process(gctx, src, item)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				c.logger.WarnContext(gctx, "announcement skipped",
					"source", src.Name,
					"link", item.Link,
					"err", err,
				)
			}
			count(outcome)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return rep, err
	}

	c.logger.InfoContext(ctx, "crawl complete",
		"source", src.Name,
		"found", rep.Found,
		"upserted", rep.Upserted,
		"skipped", rep.Skipped,
		"excluded", rep.Excluded,
		"failed", rep.Failed,
	)
	return rep, nil
}

func (c *Crawler) process(ctx context.Context, src Source, item Announcement) (string, error) {
	if err := sleep(ctx, c.delay); err != nil {
		return "failed", err
	}

	doc, err := c.fetcher.Fetch(ctx, item.Link)
	if err != nil {
		return "failed", fmt.Errorf("fetch detail: %w", err)
	}
	body := ExtractText(doc)
	if body == "" {
		return "failed", errors.New("detail page has no text")
	}
	if Excluded(item.Title, body, src.Exclude) {
		return "excluded", nil
	}

	d, err := c.extractor.Extract(ctx, item.Title, body)
	if err != nil {
		return "failed", fmt.Errorf("extract: %w", err)
	}

	_, err = c.ingest.Upsert(ctx, model.ScholarshipDraft{
		Title:     item.Title,
		Link:      item.Link,
		DueDate:   d.DueDate,
		MinGPA:    d.MinGPA,
		MaxIncome: d.MaxIncome,
		Residence: d.Residence,
	})
	if err != nil {
		return "failed", err
	}
	c.markSeen(item.Link)
	return "upserted", nil
}

func (c *Crawler) isSeen(link string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.seen[link]
	return ok
}

func (c *Crawler) markSeen(link string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen[link] = struct{}{}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
