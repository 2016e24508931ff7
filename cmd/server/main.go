// scholarship-radar server
//
// Serves the scholarship catalog over two transports:
//   - REST (chi) on RADAR_PORT: browse, search, stats, admin upsert
//   - gRPC on RADAR_GRPC_PORT: scholarship.v1.Catalog Browse/Search/Stats
//
// When CRAWL_SOURCES_FILE is set the crawl scheduler runs in-process and
// feeds new announcements through the ingest pipeline.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/SunWoo1213/ScholarShipRadar/internal/app"
	"github.com/SunWoo1213/ScholarShipRadar/internal/config"
	"github.com/SunWoo1213/ScholarShipRadar/internal/crawler"
	"github.com/SunWoo1213/ScholarShipRadar/internal/grpcserver"
	"github.com/SunWoo1213/ScholarShipRadar/internal/httpapi"
	"github.com/SunWoo1213/ScholarShipRadar/internal/scheduler"
	"github.com/SunWoo1213/ScholarShipRadar/internal/telemetry"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[radar] Config error: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", "radar")
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Tracing ──────────────────────────────────────────────────────────────
	shutdownTracing, err := telemetry.Setup(ctx, "scholarship-radar")
	if err != nil {
		log.Fatalf("[radar] Tracing: %v", err)
	}

	// ── Metrics ──────────────────────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// ── Catalog backend ──────────────────────────────────────────────────────
	log.Printf("[radar] Opening %s catalog…", cfg.Backend)
	a, err := app.Open(ctx, cfg, logger, reg)
	if err != nil {
		log.Fatalf("[radar] Catalog: %v", err)
	}
	defer a.Close()
	log.Println("[radar] Catalog ready ✓")

	// ── Crawl scheduler (optional) ───────────────────────────────────────────
	var sched *scheduler.Scheduler
	if cfg.CrawlSourcesFile != "" {
		sources, err := crawler.LoadSources(cfg.CrawlSourcesFile)
		if err != nil {
			log.Fatalf("[radar] Crawl sources: %v", err)
		}
		sched = scheduler.New(a.NewCrawler(), sources, cfg.CrawlSchedule())
		if err := sched.Start(ctx); err != nil {
			log.Fatalf("[radar] Scheduler: %v", err)
		}
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	h := httpapi.NewHandler(a.Catalog, a.Ingest, logger, cfg.Location())
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      httpapi.NewRouter(h, reg, version),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[radar] v%s HTTP listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[radar] HTTP server error: %v", err)
		}
	}()

	// ── gRPC server ──────────────────────────────────────────────────────────
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		log.Fatalf("[radar] gRPC listen: %v", err)
	}
	gs := grpc.NewServer(grpc.UnaryInterceptor(grpcserver.LoggingInterceptor(logger)))
	grpcserver.Register(gs, grpcserver.NewServer(a.Catalog, cfg.Location()))

	hs := health.NewServer()
	hs.SetServingStatus(grpcserver.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)

	go func() {
		log.Printf("[radar] gRPC listening on :%s", cfg.GRPCPort)
		if err := gs.Serve(lis); err != nil {
			log.Fatalf("[radar] gRPC server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[radar] Shutting down…")
	hs.Shutdown()
	cancel()
	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[radar] Shutdown error: %v", err)
	}
	gs.GracefulStop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("[radar] Tracing shutdown error: %v", err)
	}
	log.Println("[radar] Stopped.")
}
