package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iliyamo/event-space-recommender/internal/catalog"
)

func isXLSX(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

// loadChart builds a catalog from a JSON chart or, by extension, an XLSX
// chart.  Rows the spreadsheet reader rejected are returned with the
// catalog's own issues.
func loadChart(path, sheet string) (*catalog.Catalog, []catalog.Issue, error) {
	if !isXLSX(path) {
		cat, err := catalog.LoadFile(path)
		if err != nil {
			return nil, nil, err
		}
		return cat, cat.Issues(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	chart, sheetIssues, err := catalog.ReadXLSX(f, sheet)
	if err != nil {
		return nil, sheetIssues, err
	}
	src, err := json.Marshal(chart)
	if err != nil {
		return nil, sheetIssues, fmt.Errorf("encode chart: %w", err)
	}
	cat, err := catalog.Build(src)
	if err != nil {
		return nil, sheetIssues, err
	}
	return cat, append(sheetIssues, cat.Issues()...), nil
}

func printIssues(w io.Writer, issues []catalog.Issue) {
	for _, is := range issues {
		name := is.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "row %d (%s): %s\n", is.Row, name, is.Reason)
	}
}
