package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iliyamo/event-space-recommender/internal/availability"
	"github.com/iliyamo/event-space-recommender/internal/extract"
	"github.com/iliyamo/event-space-recommender/internal/model"
	"github.com/iliyamo/event-space-recommender/internal/recommend"
)

func newRecommendCmd() *cobra.Command {
	var (
		chart     string
		sheet     string
		attendees int
		style     string
		limit     int
		rfp       string
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank rooms from a chart for a group, or for every requirement of an RFP",
		Example: `  spacectl recommend --chart room_catalog.json --attendees 75 --style theater
  spacectl recommend --chart capacities.xlsx --rfp rfp.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if chart == "" {
				chart = os.Getenv("CATALOG_PATH")
			}
			if chart == "" {
				return errors.New("no chart: pass --chart or set CATALOG_PATH")
			}
			cat, _, err := loadChart(chart, sheet)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if rfp == "" {
				res, err := recommend.Recommend(recommend.Request{
					AttendeeCount: attendees,
					Style:         model.ParseSeatingStyle(style),
					Limit:         limit,
				}, cat)
				if err != nil {
					return err
				}
				printResult(out, res)
				return nil
			}

			text, err := readDocument(rfp)
			if err != nil {
				return err
			}
			reqs := extract.ParseRequirements(text)
			if len(reqs) == 0 {
				fmt.Fprintln(out, "no meeting room requirements found")
				return nil
			}
			steps := make([]availability.Step, 0, len(reqs))
			for _, r := range reqs {
				step := availability.Step{Requirement: r, Date: availability.WindowFor(r, model.Date{}).Date}
				res, err := recommend.Recommend(recommend.Request{AttendeeCount: r.Attendees, Style: r.Style}, cat)
				if err == nil {
					res = availability.Filter(res, availability.OutdoorMask(res, r.Purpose, step.Date))
					if limit > 0 && len(res.Items) > limit {
						res.Items = res.Items[:limit]
					}
					step.Result = res
				}
				steps = append(steps, step)
			}
			notes := availability.SequenceNotes(steps)
			for i, st := range steps {
				r := st.Requirement
				fmt.Fprintf(out, "%s %s  %s  %d people, %s\n", r.DateText, r.TimeRange, r.AgendaItem, r.Attendees, r.Style)
				printResult(out, st.Result)
				for _, n := range notes[i] {
					fmt.Fprintf(out, "  note: %s\n", n)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&chart, "chart", "", "Capacity chart, JSON or XLSX (default: $CATALOG_PATH)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet of an XLSX chart")
	cmd.Flags().IntVar(&attendees, "attendees", 0, "Number of attendees")
	cmd.Flags().StringVar(&style, "style", "", "Seating style, e.g. theater, classroom, rounds")
	cmd.Flags().IntVar(&limit, "limit", 5, "Maximum rooms per result, 0 for all")
	cmd.Flags().StringVar(&rfp, "rfp", "", "RFP document to take the requirements from")

	return cmd
}

func printResult(w io.Writer, res recommend.Result) {
	if res.Empty() {
		fmt.Fprintln(w, "  no suitable room")
		return
	}
	if res.StyleRelaxed {
		fmt.Fprintln(w, "  style not recognised, all setups considered")
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  RANK\tROOM\tSTYLE\tCAPACITY\tSLACK\tFIT")
	for _, o := range res.Items {
		fmt.Fprintf(tw, "  %d\t%s (%s)\t%s\t%d\t%d\t%s\n", o.Rank, o.Room.Name, o.Room.ID, o.Style, o.Capacity, o.Slack, o.Fit)
	}
	_ = tw.Flush()
}

