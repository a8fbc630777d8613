// Package main is the shortlist CLI: the ranking HTTP server plus offline
// ranking, extraction, import and backfill commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "shortlist",
	Short:         "Rank candidate resumes against a job description",
	Long:          "shortlist extracts structured requirements from job descriptions, embeds job and candidate texts and ranks candidates by an explainable composite score.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	flagEnv        string
	flagConfigPath string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnv, "env", "", "Environment name selecting config/{env}.yaml (default: $ENV or local)")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Explicit path to a YAML config file")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
