package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	domcand "github.com/kailas-cloud/shortlist/internal/domain/candidate"
	"github.com/kailas-cloud/shortlist/internal/usecase/importer"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank candidates from a JSON file against a job description",
	Long:  "Offline ranking: reads a job description and a JSON array of candidates, embeds candidates that carry no embedding and prints the top N with score breakdowns.",
	RunE:  runRank,
}

var (
	rankJobPath        string
	rankCandidatesPath string
	rankTopN           int
	rankOutput         string
)

func init() {
	rankCmd.Flags().StringVarP(&rankJobPath, "job", "j", "", "Path to a job description text file (required)")
	rankCmd.Flags().StringVarP(&rankCandidatesPath, "candidates", "c", "", "Path to a JSON array of candidate records (required)")
	rankCmd.Flags().IntVarP(&rankTopN, "top", "n", 0, "Number of candidates to return (default from config)")
	rankCmd.Flags().StringVarP(&rankOutput, "out", "o", "", "Output file (default: stdout)")

	if err := rankCmd.MarkFlagRequired("job"); err != nil {
		panic(fmt.Sprintf("failed to mark job flag as required: %v", err))
	}
	if err := rankCmd.MarkFlagRequired("candidates"); err != nil {
		panic(fmt.Sprintf("failed to mark candidates flag as required: %v", err))
	}

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	job, err := os.ReadFile(rankJobPath)
	if err != nil {
		return fmt.Errorf("failed to read job description %s: %w", rankJobPath, err)
	}
	raw, err := os.ReadFile(rankCandidatesPath)
	if err != nil {
		return fmt.Errorf("failed to read candidates %s: %w", rankCandidatesPath, err)
	}
	cands, err := importer.Parse(raw)
	if err != nil {
		return fmt.Errorf("failed to parse candidates: %w", err)
	}

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()

	cands, err = embedMissing(ctx, a, cands)
	if err != nil {
		return err
	}

	res, err := a.ranker.Rank(ctx, string(job), cands, a.ranker.NormalizeTopN(rankTopN))
	if err != nil {
		return fmt.Errorf("failed to rank candidates: %w", err)
	}
	a.logger.Info("Ranking complete",
		zap.Int("considered", res.Considered),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
		zap.Bool("degraded", res.Degraded),
	)

	// Vectors are bulky and carry no meaning for a reader.
	for i := range res.Items {
		res.Items[i].Candidate.Embedding = nil
	}
	return writeJSONOutput(rankOutput, res)
}

// embedMissing computes profile embeddings for records that carry none.
func embedMissing(ctx context.Context, a *app, cands []domcand.Record) ([]domcand.Record, error) {
	now := time.Now()
	var (
		idx   []int
		texts []string
	)
	for i, c := range cands {
		if _, ok := c.UsableEmbedding(); ok {
			continue
		}
		idx = append(idx, i)
		texts = append(texts, c.CanonicalText(now))
	}
	if len(texts) == 0 {
		return cands, nil
	}

	vecs, err := a.embeddings.EmbedProfiles(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed candidate profiles: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedding provider returned %d vectors for %d profiles", len(vecs), len(texts))
	}
	for j, i := range idx {
		cands[i] = cands[i].WithEmbedding(vecs[j], texts[j])
	}
	a.logger.Info("Embedded candidate profiles", zap.Int("count", len(texts)))
	return cands, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// writeJSONOutput writes v as indented JSON to path, or stdout when path is empty.
func writeJSONOutput(path string, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	out = append(out, '\n')

	if path == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}
