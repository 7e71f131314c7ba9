package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iliyamo/event-space-recommender/internal/catalog"
)

func newConvertCmd() *cobra.Command {
	var (
		sheet  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "convert <chart.xlsx>",
		Short: "Convert an XLSX capacity chart to the JSON chart format",
		Long: `Reads a capacity chart spreadsheet and writes the JSON chart that the
server and ingest accept.

The header row must have a Room or Name column. Columns named after a
seating style ("Theater", "Banquet Rounds", "U-Shape", ...) become
capacities; "-", "N/A" and empty cells mark a setup the room does not offer.`,
		Example: `  spacectl convert capacities.xlsx -o room_catalog.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			chart, issues, err := catalog.ReadXLSX(f, sheet)
			printIssues(cmd.ErrOrStderr(), issues)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(chart, "", "  ")
			if err != nil {
				return err
			}
			out = append(out, '\n')

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rooms to %s\n", len(chart.Rooms), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet to read (default: first sheet)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}
