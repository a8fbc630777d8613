package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shortlist/internal/usecase/importer"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Validate a JSON array of candidates and upsert it into the store",
	RunE:  runImport,
}

var (
	importFile    string
	importNoEmbed bool
)

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "Path to a JSON array of candidate records (required)")
	importCmd.Flags().BoolVar(&importNoEmbed, "no-embed", false, "Store records without computing embeddings")

	if err := importCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	data, err := os.ReadFile(importFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", importFile, err)
	}

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()

	report, err := importer.New(a.candidates(), a.logger).Import(ctx, data, !importNoEmbed)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	a.logger.Info("Import complete",
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("failed", len(report.Failed)),
	)
	if err := writeJSONOutput("", report); err != nil {
		return err
	}
	if len(report.Failed) > 0 {
		return fmt.Errorf("%d records failed to import", len(report.Failed))
	}
	return nil
}
