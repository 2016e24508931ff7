package main

import (
	"github.com/spf13/cobra"

	"github.com/SunWoo1213/ScholarShipRadar/internal/catalog"
)

func newBrowseCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "List every open scholarship, soonest deadline first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := f.querier(cmd)
			if err != nil {
				return err
			}
			defer q.Close()

			l, err := q.Browse(cmd.Context())
			if err != nil {
				return err
			}
			return printListing(cmd.OutOrStdout(), l, f.asJSON)
		},
	}
}

func newSearchCmd(f *rootFlags) *cobra.Command {
	var raw catalog.RawCriteria
	cmd := &cobra.Command{
		Use:   "search",
		Short: "List open scholarships a student qualifies for",
		Long: `List open scholarships matching the given GPA, income percentile and
residence. At least one criterion is required. Scholarships with no income
cap or a nationwide residence scope match any income or region.`,
		Example: `  radarctl search --gpa 3.5 --income 3
  radarctl search --residence 경기`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := f.querier(cmd)
			if err != nil {
				return err
			}
			defer q.Close()

			l, err := q.Search(cmd.Context(), raw)
			if err != nil {
				return err
			}
			return printListing(cmd.OutOrStdout(), l, f.asJSON)
		},
	}
	cmd.Flags().StringVar(&raw.GPA, "gpa", "", "GPA on a 4.5 scale")
	cmd.Flags().StringVar(&raw.Income, "income", "", "income percentile, 1-10")
	cmd.Flags().StringVar(&raw.Residence, "residence", "", "region of residence, e.g. 서울 or 경기")
	return cmd
}

func newStatsCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := f.querier(cmd)
			if err != nil {
				return err
			}
			defer q.Close()

			st, err := q.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printStats(cmd.OutOrStdout(), st, f.asJSON)
		},
	}
}
