package ranking

import (
	"context"

	"github.com/kailas-cloud/shortlist/internal/domain/candidate"
	domreq "github.com/kailas-cloud/shortlist/internal/domain/requirement"
	"github.com/kailas-cloud/shortlist/internal/domain/score"
)

// RequirementExtractor turns job text into a structured requirement.
type RequirementExtractor interface {
	Extract(ctx context.Context, jobText string) domreq.JobRequirement
}

// TextEmbedder embeds the job description.
type TextEmbedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Scorer scores one candidate against a requirement and job vector.
type Scorer interface {
	Score(req domreq.JobRequirement, jobVec []float32, cand candidate.Record) (score.Breakdown, error)
}
