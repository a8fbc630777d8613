// Package chi exposes the ranking service over HTTP.
package chi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shortlist/internal/domain"
	domcand "github.com/kailas-cloud/shortlist/internal/domain/candidate"
	"github.com/kailas-cloud/shortlist/internal/domain/vector"
	healthuc "github.com/kailas-cloud/shortlist/internal/usecase/health"
)

// Deps are the use cases served over HTTP. Feedback may be nil.
type Deps struct {
	Ranker     Ranker
	Extractor  RequirementExtractor
	Embedder   TextEmbedder
	Candidates CandidateStore
	Feedback   FeedbackRecorder
	Health     HealthChecker
}

// Server holds the HTTP handlers.
type Server struct {
	deps          Deps
	validate      *validator.Validate
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(deps Deps, logger *zap.Logger) *Server {
	return &Server{
		deps:          deps,
		validate:      newValidator(),
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Rank handles POST /v1/rank.
func (s *Server) Rank(w http.ResponseWriter, r *http.Request) {
	var req RankRequest
	if !s.decode(w, r, &req) {
		return
	}

	topN := s.deps.Ranker.NormalizeTopN(req.TopN)
	cands, err := s.rankPool(r, req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.deps.Ranker.Rank(r.Context(), req.JobDescription, cands, topN)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rankToResponse(res, topN))
}

// rankPool picks the candidates to rank: inline ones, the listed ids, or
// every stored candidate.
func (s *Server) rankPool(r *http.Request, req RankRequest) ([]domcand.Record, error) {
	switch {
	case len(req.Candidates) > 0:
		return req.Candidates, nil
	case len(req.CandidateIDs) > 0:
		return s.deps.Candidates.GetMany(r.Context(), req.CandidateIDs)
	default:
		return s.deps.Candidates.All(r.Context())
	}
}

// ExtractRequirements handles POST /v1/requirements.
func (s *Server) ExtractRequirements(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Extractor.Extract(r.Context(), req.Text))
}

// Embed handles POST /v1/embeddings.
func (s *Server) Embed(w http.ResponseWriter, r *http.Request) {
	format := "float"
	if err := queryParam(r, "format", &format); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if format != "float" && format != "base64" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "format must be float or base64")
		return
	}

	var req TextRequest
	if !s.decode(w, r, &req) {
		return
	}

	vec, err := s.deps.Embedder.EmbedText(r.Context(), req.Text)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := EmbeddingResponse{Vector: vec, Dimensions: len(vec), Encoding: format}
	if format == "base64" {
		resp.Vector = vector.EncodeBase64(vec)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Score handles POST /v1/score.
func (s *Server) Score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if !s.decode(w, r, &req) {
		return
	}

	jobReq, b, err := s.deps.Ranker.Score(r.Context(), req.JobDescription, *req.Candidate)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ScoreResponse{
		Requirement: jobReq,
		CandidateID: req.Candidate.ID,
		Breakdown:   b,
	})
}

// UpsertCandidate handles PUT /v1/candidates/{id}. The embedding is computed
// unless ?embed=false.
func (s *Server) UpsertCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	embed := true
	if err := queryParam(r, "embed", &embed); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	var rec domcand.Record
	if !s.decode(w, r, &rec) {
		return
	}
	rec.ID = id

	saved, created, err := s.deps.Candidates.Upsert(r.Context(), rec, embed)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", "/v1/candidates/"+saved.ID)
	}
	writeJSON(w, status, candidateToResponse(saved))
}

// GetCandidate handles GET /v1/candidates/{id}.
func (s *Server) GetCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	rec, err := s.deps.Candidates.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, candidateToResponse(rec))
}

// DeleteCandidate handles DELETE /v1/candidates/{id}.
func (s *Server) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	if err := s.deps.Candidates.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCandidates handles GET /v1/candidates.
func (s *Server) ListCandidates(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if err := queryParam(r, "limit", &limit); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	recs, err := s.deps.Candidates.List(r.Context(), limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]CandidateResponse, len(recs))
	for i, rec := range recs {
		items[i] = candidateToResponse(rec)
	}
	writeJSON(w, http.StatusOK, CandidateListResponse{Items: items, Count: len(items)})
}

// EmbedCandidate handles POST /v1/candidates/{id}/embedding.
func (s *Server) EmbedCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	force := false
	if err := queryParam(r, "force", &force); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	rec, err := s.deps.Candidates.EnsureEmbedding(r.Context(), id, force)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, candidateToResponse(rec))
}

// BackfillEmbeddings handles POST /v1/candidates/backfill.
func (s *Server) BackfillEmbeddings(w http.ResponseWriter, r *http.Request) {
	batchSize := 0
	if err := queryParam(r, "batch_size", &batchSize); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	report, err := s.deps.Candidates.Backfill(r.Context(), batchSize)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// RecordFeedback handles POST /v1/feedback.
func (s *Server) RecordFeedback(w http.ResponseWriter, r *http.Request) {
	if s.deps.Feedback == nil {
		s.handleDomainError(w, r, domain.ErrFeedbackDisabled)
		return
	}

	var req FeedbackRequest
	if !s.decode(w, r, &req) {
		return
	}

	f, err := s.deps.Feedback.Record(r.Context(), req.CandidateID, req.JobDescription, *req.Score, *req.Positive)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// ListFeedback handles GET /v1/candidates/{id}/feedback.
func (s *Server) ListFeedback(w http.ResponseWriter, r *http.Request) {
	if s.deps.Feedback == nil {
		s.handleDomainError(w, r, domain.ErrFeedbackDisabled)
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	limit := 50
	if err := queryParam(r, "limit", &limit); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items, err := s.deps.Feedback.ListByCandidate(r.Context(), id, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FeedbackListResponse{Items: items})
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status healthuc.Status                  `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.deps.Health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: report.Status,
		Checks: report.Checks,
	})
}

// decode reads a JSON body into dst and validates it. On failure it writes
// the error response and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorCodeBadRequest,
				fmt.Sprintf("request body exceeds %d bytes", mbe.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}

	if err := s.validate.Struct(dst); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			// dst is not a struct pointer; nothing to validate
			return true
		}
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, validationMessage(err))
		return false
	}
	return true
}

// newValidator reports fields by their JSON names and knows notblank.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationMessage lists every failed field with its rule.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "validation error: invalid request"
	}
	parts := make([]string, len(verrs))
	for i, fe := range verrs {
		parts[i] = fmt.Sprintf("%s: %s", jsonFieldPath(fe.Namespace()), fe.Tag())
	}
	return "validation error: " + strings.Join(parts, ", ")
}

// jsonFieldPath drops the struct name from a validator namespace.
func jsonFieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
