package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	candidateuc "github.com/kailas-cloud/shortlist/internal/usecase/candidate"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Precompute embeddings for stored candidates that lack one",
	RunE:  runBackfill,
}

var backfillBatchSize int

func init() {
	backfillCmd.Flags().IntVarP(&backfillBatchSize, "batch-size", "b", candidateuc.DefaultBackfillBatch, "Profiles per embedding request")
	rootCmd.AddCommand(backfillCmd)
}

func runBackfill(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()

	report, err := a.candidates().Backfill(ctx, backfillBatchSize)
	if err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}
	a.logger.Info("Backfill complete",
		zap.Int("scanned", report.Scanned),
		zap.Int("embedded", report.Embedded),
		zap.Int("failed", report.Failed),
	)
	return writeJSONOutput("", report)
}
