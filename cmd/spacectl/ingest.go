package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/event-space-recommender/internal/catalog"
	"github.com/iliyamo/event-space-recommender/internal/config"
	"github.com/iliyamo/event-space-recommender/internal/database"
	"github.com/iliyamo/event-space-recommender/internal/repository"
)

// openDB connects and migrates; tests replace it with sqlmock.
var openDB = func(ctx context.Context, c config.DBConfig) (*sql.DB, error) {
	db, err := database.Open(ctx, c.User, c.Pass, c.Host, c.Port, c.Name)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newIngestCmd(logLevel *string) *cobra.Command {
	var (
		sheet  string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "ingest <chart.json|chart.xlsx>",
		Short: "Validate a capacity chart and store it in MySQL",
		Long: `Validates a capacity chart and replaces the stored catalog with it.

Invalid rows are reported and skipped. The stored rooms are replaced in one
transaction, so a failed ingest leaves the previous catalog untouched. The
database is configured through DB_USER, DB_PASS, DB_HOST, DB_PORT and DB_NAME.`,
		Example: `  # Check a chart without touching the database
  spacectl ingest room_catalog.json --dry-run

  # Load the second sheet of a spreadsheet chart
  spacectl ingest capacities.xlsx --sheet "Function Space"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(*logLevel)
			defer func() { _ = log.Sync() }()

			cat, issues, err := loadChart(args[0], sheet)
			printIssues(cmd.ErrOrStderr(), issues)
			if err != nil {
				var ie *catalog.IngestionError
				if errors.As(err, &ie) {
					printIssues(cmd.ErrOrStderr(), ie.Issues)
				}
				return err
			}
			log.Info("chart validated", zap.String("path", args[0]), zap.Int("rooms", cat.Len()),
				zap.Int("issues", len(issues)), zap.String("version", cat.Version()))

			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%d rooms valid, version %s (dry run)\n", cat.Len(), cat.Version())
				return nil
			}

			dbc := config.LoadDBConfig()
			if !dbc.Configured() {
				return errors.New("database not configured: set DB_USER, DB_HOST and DB_NAME")
			}
			db, err := openDB(cmd.Context(), dbc)
			if err != nil {
				return fmt.Errorf("database: %w", err)
			}
			defer db.Close()

			if err := repository.NewRoomRepo(db).ReplaceAll(cmd.Context(), cat.Rooms(), cat.Version()); err != nil {
				return err
			}
			log.Info("catalog stored", zap.String("version", cat.Version()), zap.Int("rooms", cat.Len()))
			fmt.Fprintf(cmd.OutOrStdout(), "stored %d rooms, version %s\n", cat.Len(), cat.Version())
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet to read from an XLSX chart (default: first sheet)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate only, do not write to the database")

	return cmd
}
