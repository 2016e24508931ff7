// Package scheduler wires up the cron job that periodically crawls every
// configured scholarship source.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/SunWoo1213/ScholarShipRadar/internal/crawler"
)

// Runner crawls a set of sources. *crawler.Crawler satisfies it.
type Runner interface {
	RunAll(ctx context.Context, sources []crawler.Source) []crawler.Report
}

// Scheduler wraps robfig/cron and manages the crawl loop.
type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	sources []crawler.Source
	spec    string // cron spec, e.g. "@every 24h"

	// running guards against overlapping cycles when a crawl outlasts the
	// interval.
	running sync.Mutex
}

// New creates a Scheduler that runs the sources on spec.
func New(runner Runner, sources []crawler.Source, spec string) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cron.DefaultLogger)),
		runner:  runner,
		sources: sources,
		spec:    spec,
	}
}

// Start registers the job and starts the scheduler. Also runs one crawl
// immediately so the catalog is populated without waiting for the first
// tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started, spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	go s.RunOnce(ctx)

	return nil
}

// Stop halts the scheduler and waits for a running crawl to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("[scheduler] Cron stopped")
}

// RunOnce runs one crawl cycle over all sources. A cycle that starts while
// another is still running is skipped.
func (s *Scheduler) RunOnce(ctx context.Context) []crawler.Report {
	if !s.running.TryLock() {
		log.Println("[scheduler] Previous crawl cycle still running, skipping")
		return nil
	}
	defer s.running.Unlock()

	if len(s.sources) == 0 {
		log.Println("[scheduler] No crawl sources configured, nothing to crawl")
		return nil
	}

	log.Printf("[scheduler] Crawl cycle started for %d source(s)", len(s.sources))
	reports := s.runner.RunAll(ctx, s.sources)

	var upserted, failed int
	for _, r := range reports {
		upserted += r.Upserted
		failed += r.Failed
	}
	log.Printf("[scheduler] Crawl cycle complete: upserted=%d failed=%d", upserted, failed)
	return reports
}
