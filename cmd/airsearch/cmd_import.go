package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/airsearch-mcp/internal/importer"
)

var importBatchSize int

var importCmd = &cobra.Command{
	Use:   "import <airports.csv>",
	Short: "Load an OurAirports CSV file into the database",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().IntVar(&importBatchSize, "batch-size", importer.DefaultBatchSize, "rows committed per transaction")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStorage(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	imp := importer.New(store, importer.WithLogger(logger))
	stats, err := imp.ImportFile(cmd.Context(), args[0], &importer.Config{BatchSize: importBatchSize})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imported %d airports in %v (%d batches)\n", stats.RowsImported, stats.Duration.Round(time.Millisecond), stats.Batches)
	if stats.RowsFailed > 0 {
		fmt.Fprintf(out, "Skipped %d rows:\n", stats.RowsFailed)
		for _, msg := range stats.ErrorMessages[:min(len(stats.ErrorMessages), 5)] {
			fmt.Fprintf(out, "  %s\n", msg)
		}
	}
	return nil
}
