package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract structured requirements from a job description",
	RunE:  runExtract,
}

var (
	extractJobPath string
	extractOutput  string
)

func init() {
	extractCmd.Flags().StringVarP(&extractJobPath, "job", "j", "", "Path to a job description text file (required)")
	extractCmd.Flags().StringVarP(&extractOutput, "out", "o", "", "Output file (default: stdout)")

	if err := extractCmd.MarkFlagRequired("job"); err != nil {
		panic(fmt.Sprintf("failed to mark job flag as required: %v", err))
	}

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	job, err := os.ReadFile(extractJobPath)
	if err != nil {
		return fmt.Errorf("failed to read job description %s: %w", extractJobPath, err)
	}

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()

	return writeJSONOutput(extractOutput, a.extractor.Extract(ctx, string(job)))
}
