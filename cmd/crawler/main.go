// scholarship-radar crawler
//
// Standalone crawl worker: loads CRAWL_SOURCES_FILE, crawls every source on
// startup and then every CRAWL_INTERVAL_HOURS, writing through the same
// ingest pipeline as the server's admin endpoint. Exposes /health and
// /metrics on RADAR_PORT.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SunWoo1213/ScholarShipRadar/internal/app"
	"github.com/SunWoo1213/ScholarShipRadar/internal/config"
	"github.com/SunWoo1213/ScholarShipRadar/internal/crawler"
	"github.com/SunWoo1213/ScholarShipRadar/internal/scheduler"
	"github.com/SunWoo1213/ScholarShipRadar/internal/telemetry"
)

const version = "1.0.0"

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Sources int    `json:"sources"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[crawler] Config error: %v", err)
	}
	if cfg.CrawlSourcesFile == "" {
		log.Fatal("[crawler] CRAWL_SOURCES_FILE is required")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", "crawler")
	slog.SetDefault(logger)

	sources, err := crawler.LoadSources(cfg.CrawlSourcesFile)
	if err != nil {
		log.Fatalf("[crawler] Crawl sources: %v", err)
	}
	log.Printf("[crawler] Loaded %d enabled source(s) from %s", len(sources), cfg.CrawlSourcesFile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, "scholarship-radar-crawler")
	if err != nil {
		log.Fatalf("[crawler] Tracing: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	a, err := app.Open(ctx, cfg, logger, reg)
	if err != nil {
		log.Fatalf("[crawler] Catalog: %v", err)
	}
	defer a.Close()

	sched := scheduler.New(a.NewCrawler(), sources, cfg.CrawlSchedule())
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[crawler] Scheduler: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(healthResponse{
			Status:  "ok",
			Service: "crawler",
			Version: version,
			Sources: len(sources),
		})
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("[crawler] Listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[crawler] Fatal: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[crawler] Shutting down…")
	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[crawler] Shutdown error: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("[crawler] Tracing shutdown error: %v", err)
	}
	log.Println("[crawler] Stopped.")
}
