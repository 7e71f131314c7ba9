// Command spacectl is the operator tool for the recommender: it loads
// capacity charts into MySQL, converts spreadsheet charts, runs the RFP
// extractor on a file and mints admin tokens.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
