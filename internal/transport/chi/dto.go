package chi

import (
	domcand "github.com/kailas-cloud/shortlist/internal/domain/candidate"
	domfb "github.com/kailas-cloud/shortlist/internal/domain/feedback"
	domreq "github.com/kailas-cloud/shortlist/internal/domain/requirement"
	"github.com/kailas-cloud/shortlist/internal/domain/score"
	rankinguc "github.com/kailas-cloud/shortlist/internal/usecase/ranking"
)

// RankRequest is the body of POST /v1/rank. TopN accepts any JSON value;
// anything that is not a positive integer falls back to the default.
type RankRequest struct {
	JobDescription string           `json:"job_description" validate:"required,notblank"`
	TopN           any              `json:"top_n,omitempty"`
	CandidateIDs   []string         `json:"candidate_ids,omitempty" validate:"omitempty,max=1000,dive,required"`
	Candidates     []domcand.Record `json:"candidates,omitempty" validate:"omitempty,max=1000"`
}

// RankedCandidate is one entry of a ranking response. Vectors are not echoed.
type RankedCandidate struct {
	Rank        int             `json:"rank"`
	CandidateID string          `json:"candidate_id"`
	Contact     domcand.Contact `json:"contact"`
	Score       float64         `json:"score"`
	Breakdown   score.Breakdown `json:"breakdown"`
}

// RankResponse is the body returned by POST /v1/rank.
type RankResponse struct {
	Requirement domreq.JobRequirement `json:"requirement"`
	Items       []RankedCandidate     `json:"items"`
	TopN        int                   `json:"top_n"`
	Considered  int                   `json:"considered"`
	Skipped     int                   `json:"skipped"`
	Failed      int                   `json:"failed"`
	Degraded    bool                  `json:"degraded,omitempty"`
}

// TextRequest carries a single text: job description or free text to embed.
type TextRequest struct {
	Text string `json:"text" validate:"required,notblank"`
}

// EmbeddingResponse is the body returned by POST /v1/embeddings.
// Vector is a float array, or a base64 string of little-endian float32
// values when Encoding is "base64".
type EmbeddingResponse struct {
	Vector     any    `json:"vector"`
	Dimensions int    `json:"dimensions"`
	Encoding   string `json:"encoding"`
}

// ScoreRequest is the body of POST /v1/score.
type ScoreRequest struct {
	JobDescription string          `json:"job_description" validate:"required,notblank"`
	Candidate      *domcand.Record `json:"candidate" validate:"required"`
}

// ScoreResponse is the body returned by POST /v1/score.
type ScoreResponse struct {
	Requirement domreq.JobRequirement `json:"requirement"`
	CandidateID string                `json:"candidate_id"`
	Breakdown   score.Breakdown       `json:"breakdown"`
}

// CandidateResponse is a stored candidate without its vector.
type CandidateResponse struct {
	domcand.Record
	HasEmbedding bool `json:"has_embedding"`
}

// CandidateListResponse is the body returned by GET /v1/candidates.
type CandidateListResponse struct {
	Items []CandidateResponse `json:"items"`
	Count int                 `json:"count"`
}

// FeedbackRequest is the body of POST /v1/feedback.
type FeedbackRequest struct {
	CandidateID    string   `json:"candidate_id" validate:"required,notblank"`
	JobDescription string   `json:"job_description" validate:"required,notblank"`
	Score          *float64 `json:"score" validate:"required,gte=0,lte=1"`
	Positive       *bool    `json:"positive" validate:"required"`
}

// FeedbackListResponse is the body returned by GET /v1/candidates/{id}/feedback.
type FeedbackListResponse struct {
	Items []domfb.Feedback `json:"items"`
}

func rankToResponse(res rankinguc.Result, topN int) RankResponse {
	items := make([]RankedCandidate, len(res.Items))
	for i, it := range res.Items {
		items[i] = RankedCandidate{
			Rank:        it.Rank,
			CandidateID: it.Candidate.ID,
			Contact:     it.Candidate.Contact,
			Score:       it.Breakdown.Composite,
			Breakdown:   it.Breakdown,
		}
	}
	return RankResponse{
		Requirement: res.Requirement,
		Items:       items,
		TopN:        topN,
		Considered:  res.Considered,
		Skipped:     res.Skipped,
		Failed:      res.Failed,
		Degraded:    res.Degraded,
	}
}

func candidateToResponse(rec domcand.Record) CandidateResponse {
	_, ok := rec.UsableEmbedding()
	rec.Embedding = nil
	return CandidateResponse{Record: rec, HasEmbedding: ok}
}
