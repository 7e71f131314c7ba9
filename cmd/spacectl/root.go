package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/event-space-recommender/internal/config"
	"github.com/iliyamo/event-space-recommender/internal/logger"
)

// NewRootCmd builds the spacectl command tree.
func NewRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "spacectl",
		Short: "Operator tool for the event space recommender",
		Long: `spacectl manages the capacity catalog behind the recommender service.

It ingests capacity charts (JSON or XLSX) into MySQL, converts spreadsheet
charts to the JSON source format, runs the RFP header extractor on a file
and mints admin tokens for the reload endpoint.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional
			config.LoadDotEnv()
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newIngestCmd(&logLevel))
	cmd.AddCommand(newConvertCmd())
	cmd.AddCommand(newExtractCmd())
	cmd.AddCommand(newRecommendCmd())
	cmd.AddCommand(newTokenCmd())

	return cmd
}

// newLogger returns a console logger, or a no-op one when the level is
// "off".
func newLogger(level string) *zap.Logger {
	if level == "off" {
		return zap.NewNop()
	}
	log, err := logger.New(level, "console", "spacectl")
	if err != nil {
		return zap.NewNop()
	}
	return log
}
