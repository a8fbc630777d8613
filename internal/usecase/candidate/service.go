// Package candidate manages stored candidate records and their embeddings.
package candidate

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/shortlist/internal/domain"
	domcand "github.com/kailas-cloud/shortlist/internal/domain/candidate"
	"github.com/kailas-cloud/shortlist/internal/domain/vector"
	"github.com/kailas-cloud/shortlist/internal/logger"
)

// DefaultBackfillBatch is the number of profiles embedded per provider call.
const DefaultBackfillBatch = 32

// BackfillReport summarizes a backfill run.
type BackfillReport struct {
	Scanned  int `json:"scanned"`
	Embedded int `json:"embedded"`
	Failed   int `json:"failed"`
}

// Service handles candidate CRUD and embedding precomputation.
type Service struct {
	repo            Repository
	embedder        ProfileEmbedder
	logger          *zap.Logger
	now             func() time.Time
	defaultPageSize int
	maxPageSize     int
	workers         int
}

// New creates a candidate service.
func New(repo Repository, embedder ProfileEmbedder, l *zap.Logger) *Service {
	return &Service{
		repo:            repo,
		embedder:        embedder,
		logger:          l,
		now:             time.Now,
		defaultPageSize: 100,
		maxPageSize:     1000,
		workers:         4,
	}
}

// WithPagination configures list size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// WithClock overrides the time source used for profile text.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Upsert stores a candidate. With embed set, a record without a usable
// embedding gets one computed from its canonical text before it is saved.
func (s *Service) Upsert(ctx context.Context, rec domcand.Record, embed bool) (domcand.Record, bool, error) {
	rec.ID = strings.TrimSpace(rec.ID)
	if rec.ID == "" {
		return domcand.Record{}, false, fmt.Errorf("%w: candidate id is required", domain.ErrInvalidRequest)
	}
	if len(rec.Embedding) > 0 && !vector.Valid(rec.Embedding) {
		return domcand.Record{}, false, fmt.Errorf(
			"embedding must have %d finite values, got %d: %w",
			vector.Dimensions, len(rec.Embedding), domain.ErrVectorDimMismatch,
		)
	}

	if embed {
		if _, ok := rec.UsableEmbedding(); !ok {
			text := rec.CanonicalText(s.now())
			vec, err := s.embedder.EmbedProfile(ctx, text)
			if err != nil {
				return domcand.Record{}, false, fmt.Errorf("vectorize candidate: %w", err)
			}
			rec = rec.WithEmbedding(vec, text)
		}
	}

	created, err := s.repo.Upsert(ctx, rec)
	if err != nil {
		return domcand.Record{}, false, fmt.Errorf("upsert candidate: %w", err)
	}
	return rec, created, nil
}

// Get returns a candidate by ID.
func (s *Service) Get(ctx context.Context, id string) (domcand.Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return domcand.Record{}, fmt.Errorf("get candidate: %w", err)
	}
	return rec, nil
}

// GetMany returns candidates in ids order. Any unknown id fails the call.
func (s *Service) GetMany(ctx context.Context, ids []string) ([]domcand.Record, error) {
	recs, missing, err := s.repo.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get candidates: %w", err)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrCandidateNotFound, strings.Join(missing, ", "))
	}
	return recs, nil
}

// List returns up to limit candidates. limit <= 0 uses the default page size.
func (s *Service) List(ctx context.Context, limit int) ([]domcand.Record, error) {
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}
	recs, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return recs, nil
}

// All returns every stored candidate.
func (s *Service) All(ctx context.Context) ([]domcand.Record, error) {
	recs, err := s.repo.List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return recs, nil
}

// Delete removes a candidate.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete candidate: %w", err)
	}
	return nil
}

// EnsureEmbedding computes and persists the embedding of a stored candidate.
// A usable embedding whose source text still matches the canonical text is
// kept unless force is set.
func (s *Service) EnsureEmbedding(ctx context.Context, id string, force bool) (domcand.Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return domcand.Record{}, fmt.Errorf("get candidate: %w", err)
	}

	text := rec.CanonicalText(s.now())
	if _, ok := rec.UsableEmbedding(); ok && !force && rec.EmbeddingText == text {
		return rec, nil
	}

	vec, err := s.embedder.EmbedProfile(ctx, text)
	if err != nil {
		return domcand.Record{}, fmt.Errorf("vectorize candidate %s: %w", id, err)
	}
	if err := s.repo.SetEmbedding(ctx, id, vec, text); err != nil {
		return domcand.Record{}, fmt.Errorf("store embedding %s: %w", id, err)
	}
	return rec.WithEmbedding(vec, text), nil
}

// Backfill embeds every stored candidate without a usable embedding,
// batchSize profiles per provider call. A failed batch is logged and counted;
// only cancellation aborts the run.
func (s *Service) Backfill(ctx context.Context, batchSize int) (BackfillReport, error) {
	log := logger.FromContextOr(ctx, s.logger)
	if batchSize <= 0 {
		batchSize = DefaultBackfillBatch
	}

	all, err := s.repo.List(ctx, 0)
	if err != nil {
		return BackfillReport{}, fmt.Errorf("list candidates: %w", err)
	}

	var pending []domcand.Record
	for _, rec := range all {
		if _, ok := rec.UsableEmbedding(); !ok {
			pending = append(pending, rec)
		}
	}
	report := BackfillReport{Scanned: len(all)}
	if len(pending) == 0 {
		return report, nil
	}

	var embedded, failed atomic.Int64
	now := s.now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for start := 0; start < len(pending); start += batchSize {
		batch := pending[start:min(start+batchSize, len(pending))]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n, err := s.backfillBatch(gctx, batch, now)
			embedded.Add(int64(n))
			failed.Add(int64(len(batch) - n))
			if err != nil {
				log.Warn("Backfill batch failed",
					zap.Int("batch_size", len(batch)),
					zap.String("first_id", batch[0].ID),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BackfillReport{}, fmt.Errorf("backfill: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return BackfillReport{}, fmt.Errorf("backfill: %w", err)
	}

	report.Embedded = int(embedded.Load())
	report.Failed = int(failed.Load())
	log.Info("Backfill completed",
		zap.Int("scanned", report.Scanned),
		zap.Int("embedded", report.Embedded),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

// backfillBatch returns how many records of batch were stored.
func (s *Service) backfillBatch(ctx context.Context, batch []domcand.Record, now time.Time) (int, error) {
	texts := make([]string, len(batch))
	for i, rec := range batch {
		texts[i] = rec.CanonicalText(now)
	}

	vecs, err := s.embedder.EmbedProfiles(ctx, texts)
	if err != nil {
		return 0, err
	}
	if len(vecs) != len(batch) {
		return 0, fmt.Errorf("got %d vectors for %d profiles: %w", len(vecs), len(batch), domain.ErrEmbeddingProviderError)
	}

	stored := 0
	var firstErr error
	for i, rec := range batch {
		if !vector.Valid(vecs[i]) {
			if firstErr == nil {
				firstErr = fmt.Errorf("candidate %s: %w", rec.ID, domain.ErrVectorDimMismatch)
			}
			continue
		}
		if err := s.repo.SetEmbedding(ctx, rec.ID, vecs[i], texts[i]); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("candidate %s: %w", rec.ID, err)
			}
			continue
		}
		stored++
	}
	return stored, firstErr
}
