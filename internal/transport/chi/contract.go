package chi

import (
	"context"

	domcand "github.com/kailas-cloud/shortlist/internal/domain/candidate"
	domfb "github.com/kailas-cloud/shortlist/internal/domain/feedback"
	domreq "github.com/kailas-cloud/shortlist/internal/domain/requirement"
	"github.com/kailas-cloud/shortlist/internal/domain/score"
	candidateuc "github.com/kailas-cloud/shortlist/internal/usecase/candidate"
	healthuc "github.com/kailas-cloud/shortlist/internal/usecase/health"
	rankinguc "github.com/kailas-cloud/shortlist/internal/usecase/ranking"
)

// Ranker ranks and scores candidates against a job description.
type Ranker interface {
	Rank(ctx context.Context, jobText string, candidates []domcand.Record, topN int) (rankinguc.Result, error)
	Score(ctx context.Context, jobText string, cand domcand.Record) (domreq.JobRequirement, score.Breakdown, error)
	NormalizeTopN(v any) int
}

// RequirementExtractor derives structured requirements from job text.
type RequirementExtractor interface {
	Extract(ctx context.Context, jobText string) domreq.JobRequirement
}

// TextEmbedder embeds free text.
type TextEmbedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// CandidateStore manages stored candidates.
type CandidateStore interface {
	Upsert(ctx context.Context, rec domcand.Record, embed bool) (domcand.Record, bool, error)
	Get(ctx context.Context, id string) (domcand.Record, error)
	GetMany(ctx context.Context, ids []string) ([]domcand.Record, error)
	List(ctx context.Context, limit int) ([]domcand.Record, error)
	All(ctx context.Context) ([]domcand.Record, error)
	Delete(ctx context.Context, id string) error
	EnsureEmbedding(ctx context.Context, id string, force bool) (domcand.Record, error)
	Backfill(ctx context.Context, batchSize int) (candidateuc.BackfillReport, error)
}

// FeedbackRecorder stores recruiter feedback.
type FeedbackRecorder interface {
	Record(ctx context.Context, candidateID, jobText string, score float64, positive bool) (domfb.Feedback, error)
	ListByCandidate(ctx context.Context, candidateID string, limit int) ([]domfb.Feedback, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
