package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/SunWoo1213/ScholarShipRadar/internal/catalog"
	"github.com/SunWoo1213/ScholarShipRadar/internal/crawler"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printListing(w io.Writer, l listing, asJSON bool) error {
	if asJSON {
		return writeJSON(w, l)
	}
	if len(l.Rows) == 0 {
		if l.Mode == catalog.ModeSearch {
			_, err := fmt.Fprintln(w, "No matching scholarships.")
			return err
		}
		_, err := fmt.Fprintln(w, "No open scholarships.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DEADLINE\tDUE\tTITLE\tMIN GPA\tINCOME\tRESIDENCE")
	for _, r := range l.Rows {
		label := r.Deadline
		if r.Urgent {
			label += "!"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			label, r.DueDate, r.Title, strconv.FormatFloat(r.MinGPA, 'f', -1, 64), r.MaxIncome, r.Residence)
	}
	fmt.Fprintf(tw, "\n%d scholarship(s) as of %s\n", len(l.Rows), l.Today)
	return tw.Flush()
}

func printStats(w io.Writer, st stats, asJSON bool) error {
	if asJSON {
		return writeJSON(w, st)
	}
	_, err := fmt.Fprintf(w, "As of %s\nTotal:   %d\nActive:  %d\nExpired: %d\n",
		st.Today, st.Total, st.Active, st.Expired)
	return err
}

func printReports(w io.Writer, reports []crawler.Report, asJSON bool) error {
	if asJSON {
		return writeJSON(w, reports)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tFOUND\tUPSERTED\tSKIPPED\tEXCLUDED\tFAILED")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", r.Source, r.Found, r.Upserted, r.Skipped, r.Excluded, r.Failed)
	}
	return tw.Flush()
}
