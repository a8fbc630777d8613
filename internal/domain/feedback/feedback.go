// Package feedback models recruiter feedback on a recommendation.
package feedback

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/shortlist/internal/domain"
)

// Feedback is one recruiter verdict on a ranked candidate.
type Feedback struct {
	ID             string    `json:"id"`
	CandidateID    string    `json:"candidate_id"`
	JobDescription string    `json:"job_description"`
	Score          float64   `json:"score"`
	Positive       bool      `json:"positive"`
	CreatedAt      time.Time `json:"created_at"`
}

// New validates input and assigns an id. CreatedAt is set by the store.
func New(candidateID, jobDescription string, score float64, positive bool) (Feedback, error) {
	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return Feedback{}, fmt.Errorf("%w: candidate_id is required", domain.ErrInvalidRequest)
	}
	if strings.TrimSpace(jobDescription) == "" {
		return Feedback{}, fmt.Errorf("%w: job_description is required", domain.ErrInvalidRequest)
	}
	return Feedback{
		ID:             uuid.NewString(),
		CandidateID:    candidateID,
		JobDescription: jobDescription,
		Score:          score,
		Positive:       positive,
	}, nil
}
