package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/iliyamo/event-space-recommender/internal/document"
	"github.com/iliyamo/event-space-recommender/internal/extract"
)

type extractOutput struct {
	Headers      extract.Headers       `json:"headers"`
	Missing      []extract.FieldName   `json:"missing"`
	Requirements []extract.Requirement `json:"requirements"`
	LooksLikeRFP bool                  `json:"looks_like_rfp"`
}

// readDocument returns the text of a PDF or text file.
func readDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return document.Text(data, path)
}

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <rfp.pdf|rfp.txt>",
		Short: "Extract RFP header fields and meeting room requirements from a file",
		Long: `Runs the header extractor and the requirements parser on a PDF or text RFP
and prints the result as JSON. Fields that could not be found are null.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readDocument(args[0])
			if err != nil {
				return err
			}
			headers := extract.Extract(text)
			out := extractOutput{
				Headers:      headers,
				Missing:      headers.Missing(),
				Requirements: extract.ParseRequirements(text),
				LooksLikeRFP: extract.LooksLikeRFP(text),
			}
			if out.Missing == nil {
				out.Missing = []extract.FieldName{}
			}
			if out.Requirements == nil {
				out.Requirements = []extract.Requirement{}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	return cmd
}
