package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/SunWoo1213/ScholarShipRadar/internal/app"
	"github.com/SunWoo1213/ScholarShipRadar/internal/config"
)

var (
	version = "dev"
	commit  = "none"
)

type rootFlags struct {
	backend    string
	sqlitePath string
	redisURL   string
	grpcAddr   string
	asJSON     bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:   "radarctl",
		Short: "Query the scholarship catalog",
		Long: `radarctl lists open scholarships, filters them by GPA, income percentile
and residence, and runs one-off crawls into the catalog.

By default it opens a local SQLite catalog. Use --grpc to query a running
radar server instead.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.backend, "backend", "", "catalog backend: postgres, sqlite or memory (default $CATALOG_BACKEND, else sqlite)")
	pf.StringVar(&f.sqlitePath, "sqlite", "", "SQLite database path (default $SQLITE_PATH or data/radar.db)")
	pf.StringVar(&f.redisURL, "redis", "", "Redis URL for the search cache (default $REDIS_URL)")
	pf.StringVar(&f.grpcAddr, "grpc", "", "query a radar server at host:port instead of opening the catalog")
	pf.BoolVar(&f.asJSON, "json", false, "print JSON instead of a table")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "log backend and crawler activity to stderr")

	root.AddCommand(
		newBrowseCmd(f),
		newSearchCmd(f),
		newStatsCmd(f),
		newAddCmd(f),
		newCrawlCmd(f),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "radarctl %s (commit: %s)\n", version, commit)
			},
		},
	)
	return root
}

// backendName resolves --backend, then CATALOG_BACKEND, then SQLite.
func (f *rootFlags) backendName() string {
	if f.backend != "" {
		return f.backend
	}
	if env := os.Getenv("CATALOG_BACKEND"); env != "" {
		return env
	}
	return config.BackendSQLite
}

func (f *rootFlags) config() (*config.Config, error) {
	cfg, err := config.LoadWith(config.Overrides{
		Backend:    f.backendName(),
		SQLitePath: f.sqlitePath,
		RedisURL:   f.redisURL,
	})
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func (f *rootFlags) logger(cmd *cobra.Command) *slog.Logger {
	if !f.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
}

// openApp opens the configured catalog. The caller must Close it.
func (f *rootFlags) openApp(cmd *cobra.Command) (*app.App, *config.Config, error) {
	cfg, err := f.config()
	if err != nil {
		return nil, nil, err
	}
	a, err := app.Open(cmd.Context(), cfg, f.logger(cmd), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("opening catalog: %w", err)
	}
	return a, cfg, nil
}
