// Package importer loads candidate records in bulk from a JSON array,
// validated against an embedded JSON schema.
package importer

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shortlist/internal/domain"
	domcand "github.com/kailas-cloud/shortlist/internal/domain/candidate"
	"github.com/kailas-cloud/shortlist/internal/logger"
)

//go:embed schema.json
var schemaJSON string

var schemaLoader = gojsonschema.NewStringLoader(schemaJSON)

// FieldError is a single schema violation.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every schema violation of an import document.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:")
	for i, fe := range e.Errors {
		fmt.Fprintf(&sb, " %d. %s: %s;", i+1, fe.Field, fe.Message)
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// Unwrap makes schema violations match domain.ErrInvalidRequest.
func (e *ValidationError) Unwrap() error {
	return domain.ErrInvalidRequest
}

// Parse validates data and decodes it into candidate records.
func Parse(data []byte) ([]domcand.Record, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	if !result.Valid() {
		verr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			verr.Errors = append(verr.Errors, FieldError{Field: field, Message: desc.Description()})
		}
		return nil, verr
	}

	var recs []domcand.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}

	seen := make(map[string]int, len(recs))
	for i, r := range recs {
		if j, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate candidate id %q at [%d] and [%d]", domain.ErrInvalidRequest, r.ID, j, i)
		}
		seen[r.ID] = i
	}
	return recs, nil
}

// CandidateWriter persists one candidate.
type CandidateWriter interface {
	Upsert(ctx context.Context, rec domcand.Record, embed bool) (domcand.Record, bool, error)
}

// Report summarizes an import run.
type Report struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Failed  []string `json:"failed,omitempty"`
}

// Service imports candidate documents into the store.
type Service struct {
	writer CandidateWriter
	logger *zap.Logger
}

// New creates an import service.
func New(w CandidateWriter, l *zap.Logger) *Service {
	return &Service{writer: w, logger: l}
}

// Import validates data and upserts every record. A record that fails to
// store is reported and skipped; a schema violation rejects the whole file.
func (s *Service) Import(ctx context.Context, data []byte, embed bool) (Report, error) {
	log := logger.FromContextOr(ctx, s.logger)

	recs, err := Parse(data)
	if err != nil {
		return Report{}, err
	}

	var rep Report
	for _, r := range recs {
		if err := ctx.Err(); err != nil {
			return rep, fmt.Errorf("import: %w", err)
		}
		_, created, err := s.writer.Upsert(ctx, r, embed)
		if err != nil {
			log.Warn("Candidate import failed", zap.String("candidate_id", r.ID), zap.Error(err))
			rep.Failed = append(rep.Failed, r.ID)
			continue
		}
		if created {
			rep.Created++
		} else {
			rep.Updated++
		}
	}

	log.Info("Candidate import completed",
		zap.Int("created", rep.Created),
		zap.Int("updated", rep.Updated),
		zap.Int("failed", len(rep.Failed)),
	)
	return rep, nil
}
