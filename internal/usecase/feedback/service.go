// Package feedback records recruiter verdicts on recommendations.
package feedback

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/shortlist/internal/domain"
	domfb "github.com/kailas-cloud/shortlist/internal/domain/feedback"
)

// Service records and lists feedback. A nil repository disables it.
type Service struct {
	repo       Repository
	candidates CandidateReader
}

// New creates a feedback service. repo may be nil when no feedback store is
// configured; candidates may be nil to skip the existence check.
func New(repo Repository, candidates CandidateReader) *Service {
	return &Service{repo: repo, candidates: candidates}
}

// Enabled reports whether a feedback store is configured.
func (s *Service) Enabled() bool {
	return s.repo != nil
}

// Record stores one verdict for a candidate ranked against jobText.
func (s *Service) Record(ctx context.Context, candidateID, jobText string, score float64, positive bool) (domfb.Feedback, error) {
	if s.repo == nil {
		return domfb.Feedback{}, domain.ErrFeedbackDisabled
	}
	f, err := domfb.New(candidateID, jobText, score, positive)
	if err != nil {
		return domfb.Feedback{}, err
	}
	if s.candidates != nil {
		if _, err := s.candidates.Get(ctx, f.CandidateID); err != nil {
			return domfb.Feedback{}, fmt.Errorf("check candidate: %w", err)
		}
	}

	saved, err := s.repo.Insert(ctx, f)
	if err != nil {
		return domfb.Feedback{}, fmt.Errorf("record feedback: %w", err)
	}
	return saved, nil
}

// ListByCandidate returns feedback for a candidate, newest first.
func (s *Service) ListByCandidate(ctx context.Context, candidateID string, limit int) ([]domfb.Feedback, error) {
	if s.repo == nil {
		return nil, domain.ErrFeedbackDisabled
	}
	items, err := s.repo.ListByCandidate(ctx, candidateID, limit)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return items, nil
}
