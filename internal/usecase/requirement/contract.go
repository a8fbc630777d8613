package requirement

import (
	"context"

	"github.com/kailas-cloud/shortlist/internal/nlp"
)

// Analyzer runs the NLP pipeline over job text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (nlp.Document, error)
}

// FailureCounter counts extraction sub-steps that fell back to empty.
type FailureCounter interface {
	Inc(step string)
}
