package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SunWoo1213/ScholarShipRadar/internal/crawler"
)

func newCrawlCmd(f *rootFlags) *cobra.Command {
	var (
		sourcesFile string
		only        string
	)
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl the configured sources once",
		Long: `Fetch each enabled source's announcement board, extract eligibility
details from new announcements and write them into the catalog.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.grpcAddr != "" {
				return errors.New("crawl writes to the local catalog; drop --grpc")
			}
			a, cfg, err := f.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if sourcesFile == "" {
				sourcesFile = cfg.CrawlSourcesFile
			}
			if sourcesFile == "" {
				return errors.New("no sources file: pass --sources or set CRAWL_SOURCES_FILE")
			}
			sources, err := crawler.LoadSources(sourcesFile)
			if err != nil {
				return err
			}
			if only != "" {
				sources = filterSources(sources, only)
				if len(sources) == 0 {
					return fmt.Errorf("no enabled source named %q", only)
				}
			}

			reports := a.NewCrawler().RunAll(cmd.Context(), sources)
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			return printReports(cmd.OutOrStdout(), reports, f.asJSON)
		},
	}
	cmd.Flags().StringVar(&sourcesFile, "sources", "", "sources YAML file (default $CRAWL_SOURCES_FILE)")
	cmd.Flags().StringVar(&only, "source", "", "crawl only the source with this name")
	return cmd
}

func filterSources(sources []crawler.Source, name string) []crawler.Source {
	for _, s := range sources {
		if s.Name == name {
			return []crawler.Source{s}
		}
	}
	return nil
}
