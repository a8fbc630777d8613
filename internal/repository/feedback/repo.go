// Package feedback stores recruiter feedback on recommendations in PostgreSQL.
package feedback

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/shortlist/internal/db/postgres"
	domfb "github.com/kailas-cloud/shortlist/internal/domain/feedback"
)

const schema = `
CREATE TABLE IF NOT EXISTS recommendation_feedback (
	id              UUID PRIMARY KEY,
	candidate_id    TEXT NOT NULL,
	job_description TEXT NOT NULL,
	score           DOUBLE PRECISION NOT NULL,
	positive        BOOLEAN NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_recommendation_feedback_candidate_id
	ON recommendation_feedback (candidate_id);
CREATE INDEX IF NOT EXISTS idx_recommendation_feedback_created_at
	ON recommendation_feedback (created_at);
`

// Repo implements usecase/feedback.Repository.
type Repo struct {
	db postgres.DB
}

// New creates a feedback repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db}
}

// EnsureSchema creates the table and its indexes if missing.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure feedback schema: %w", err)
	}
	return nil
}

// Insert stores f and returns it with the server-assigned creation time.
func (r *Repo) Insert(ctx context.Context, f domfb.Feedback) (domfb.Feedback, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO recommendation_feedback (id, candidate_id, job_description, score, positive)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		f.ID, f.CandidateID, f.JobDescription, f.Score, f.Positive,
	).Scan(&f.CreatedAt)
	if err != nil {
		return domfb.Feedback{}, fmt.Errorf("insert feedback: %w", err)
	}
	return f, nil
}

// ListByCandidate returns feedback for a candidate, newest first.
// limit <= 0 returns everything.
func (r *Repo) ListByCandidate(ctx context.Context, candidateID string, limit int) ([]domfb.Feedback, error) {
	query := `SELECT id, candidate_id, job_description, score, positive, created_at
	          FROM recommendation_feedback
	          WHERE candidate_id = $1
	          ORDER BY created_at DESC`
	args := []any{candidateID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	out := []domfb.Feedback{}
	for rows.Next() {
		var f domfb.Feedback
		if err := rows.Scan(&f.ID, &f.CandidateID, &f.JobDescription, &f.Score, &f.Positive, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}
	return out, nil
}
