package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SunWoo1213/ScholarShipRadar/internal/model"
)

type addFlags struct {
	title     string
	link      string
	due       string
	gpa       float64
	income    int
	residence string
}

func (a addFlags) draft() (model.ScholarshipDraft, error) {
	d := model.ScholarshipDraft{
		Title:     a.title,
		Link:      a.link,
		MinGPA:    a.gpa,
		MaxIncome: model.UnrestrictedIncome(),
		Residence: model.Nationwide(),
	}
	if a.due != "" {
		due, err := model.ParseDate(a.due)
		if err != nil {
			return model.ScholarshipDraft{}, fmt.Errorf("--due: %w", err)
		}
		d.DueDate = due
	}
	if a.income != 0 {
		d.MaxIncome = model.IncomeAtMost(a.income)
	}
	if strings.TrimSpace(a.residence) != "" {
		scope, err := model.ParseResidence(a.residence)
		if err != nil {
			return model.ScholarshipDraft{}, fmt.Errorf("--residence: %w", err)
		}
		d.Residence = scope
	}
	return d, nil
}

func newAddCmd(f *rootFlags) *cobra.Command {
	var a addFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or update a scholarship by link",
		Long: `Add a scholarship to the local catalog, or update the one with the same
link. Without --due the deadline defaults to DEFAULT_DUE_DAYS from today.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.grpcAddr != "" {
				return errors.New("add writes to the local catalog; drop --grpc")
			}
			d, err := a.draft()
			if err != nil {
				return err
			}

			app, _, err := f.openApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			res, err := app.Ingest.Upsert(cmd.Context(), d)
			if err != nil {
				return err
			}
			verb := "Updated"
			if res.Created {
				verb = "Added"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s (due %s)\n",
				verb, res.Scholarship.ID, res.Scholarship.Title, res.Scholarship.DueDate.Format(model.DateLayout))
			return nil
		},
	}
	cmd.Flags().StringVar(&a.title, "title", "", "announcement title (required)")
	cmd.Flags().StringVar(&a.link, "link", "", "announcement URL (required)")
	cmd.Flags().StringVar(&a.due, "due", "", "deadline, YYYY-MM-DD")
	cmd.Flags().Float64Var(&a.gpa, "gpa", 0, "minimum GPA")
	cmd.Flags().IntVar(&a.income, "income", 0, "highest eligible income percentile; 0 for no cap")
	cmd.Flags().StringVar(&a.residence, "residence", "", "required region of residence; empty for nationwide")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("link")
	return cmd
}
