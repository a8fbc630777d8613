package feedback

import (
	"context"

	domcand "github.com/kailas-cloud/shortlist/internal/domain/candidate"
	domfb "github.com/kailas-cloud/shortlist/internal/domain/feedback"
)

// Repository defines the storage contract for feedback.
type Repository interface {
	Insert(ctx context.Context, f domfb.Feedback) (domfb.Feedback, error)
	ListByCandidate(ctx context.Context, candidateID string, limit int) ([]domfb.Feedback, error)
}

// CandidateReader confirms that a candidate exists.
type CandidateReader interface {
	Get(ctx context.Context, id string) (domcand.Record, error)
}
