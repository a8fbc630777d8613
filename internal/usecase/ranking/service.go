// Package ranking orders candidates for a job description by composite
// score, with per-candidate explanations.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/shortlist/internal/domain/candidate"
	domreq "github.com/kailas-cloud/shortlist/internal/domain/requirement"
	"github.com/kailas-cloud/shortlist/internal/domain/score"
	"github.com/kailas-cloud/shortlist/internal/logger"
	"github.com/kailas-cloud/shortlist/internal/metrics"
)

// Config bounds ranking requests.
type Config struct {
	DefaultTopN int
	MaxTopN     int
	Workers     int
}

// Item is one ranked candidate. Rank starts at 1.
type Item struct {
	Candidate candidate.Record `json:"candidate"`
	Breakdown score.Breakdown  `json:"score"`
	Rank      int              `json:"rank"`
}

// Result is the outcome of one ranking request.
type Result struct {
	Requirement domreq.JobRequirement `json:"requirement"`
	Items       []Item                `json:"items"`
	// Considered counts candidates with a usable embedding.
	Considered int `json:"considered"`
	// Skipped counts candidates without a usable embedding.
	Skipped int `json:"skipped"`
	// Failed counts candidates whose scoring failed. They rank with a
	// zero composite.
	Failed int `json:"failed"`
	// Degraded is set when the job description could not be embedded and
	// no candidate was scored.
	Degraded bool `json:"degraded,omitempty"`
}

// Service is the ranker.
type Service struct {
	extractor RequirementExtractor
	embedder  TextEmbedder
	scorer    Scorer
	cfg       Config
	logger    *zap.Logger
}

// New creates the ranker. Zero config values fall back to defaults.
func New(extractor RequirementExtractor, embedder TextEmbedder, scorer Scorer, cfg Config, l *zap.Logger) *Service {
	if cfg.DefaultTopN <= 0 {
		cfg.DefaultTopN = DefaultTopN
	}
	if cfg.MaxTopN <= 0 {
		cfg.MaxTopN = DefaultMaxTopN
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &Service{
		extractor: extractor,
		embedder:  embedder,
		scorer:    scorer,
		cfg:       cfg,
		logger:    l,
	}
}

// NormalizeTopN applies the service defaults to a raw top-N value.
func (s *Service) NormalizeTopN(v any) int {
	return NormalizeTopN(v, s.cfg.DefaultTopN, s.cfg.MaxTopN)
}

// Rank scores candidates against jobText and returns the best topN, sorted
// by descending composite score with ties kept in input order.
// Only cancellation is an error. If the job description cannot be embedded
// the result is empty and marked Degraded.
func (s *Service) Rank(ctx context.Context, jobText string, candidates []candidate.Record, topN int) (Result, error) {
	start := time.Now()
	log := logger.FromContextOr(ctx, s.logger)
	topN = s.NormalizeTopN(topN)

	req, jobVec, err := s.prepare(ctx, jobText)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Result{}, err
		}
		metrics.RankingDegradedTotal.WithLabelValues("job_embedding").Inc()
		log.Warn("Job description embedding failed, returning empty ranking",
			zap.Int("candidates", len(candidates)),
			zap.Error(err),
		)
		return Result{Requirement: req, Items: []Item{}, Degraded: true}, nil
	}

	type eligible struct {
		index int
		cand  candidate.Record
	}
	var pool []eligible
	skipped := 0
	for i, c := range candidates {
		if _, ok := c.UsableEmbedding(); !ok {
			skipped++
			log.Debug("Skipping candidate without usable embedding", zap.String("candidate_id", c.ID))
			continue
		}
		pool = append(pool, eligible{index: i, cand: c})
	}

	scored := make([]*Item, len(pool))
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for j, e := range pool {
		j, e := j, e
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := s.scoreOne(req, jobVec, e.cand)
			if err != nil {
				failed.Add(1)
				log.Warn("Candidate scoring failed, ranking with zero score",
					zap.String("candidate_id", e.cand.ID), zap.Error(err))
				b = zeroBreakdown()
			}
			scored[j] = &Item{Candidate: e.cand, Breakdown: b}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("rank: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("rank: %w", err)
	}

	items := make([]Item, 0, len(scored))
	for _, it := range scored {
		items = append(items, *it)
	}
	// pool is in input order, so a stable sort keeps ties in input order.
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].Breakdown.Composite > items[b].Breakdown.Composite
	})
	if len(items) > topN {
		items = items[:topN]
	}
	for i := range items {
		items[i].Rank = i + 1
	}

	metrics.CandidatesTotal.WithLabelValues("skipped").Add(float64(skipped))
	metrics.CandidatesTotal.WithLabelValues("failed").Add(float64(failed.Load()))
	metrics.CandidatesTotal.WithLabelValues("scored").Add(float64(len(pool) - int(failed.Load())))
	metrics.RankingDuration.Observe(time.Since(start).Seconds())

	log.Info("Ranking completed",
		zap.Int("candidates", len(candidates)),
		zap.Int("considered", len(pool)),
		zap.Int("skipped", skipped),
		zap.Int64("failed", failed.Load()),
		zap.Int("returned", len(items)),
		zap.Duration("duration", time.Since(start)),
	)

	return Result{
		Requirement: req,
		Items:       items,
		Considered:  len(pool),
		Skipped:     skipped,
		Failed:      int(failed.Load()),
	}, nil
}

// Score extracts the requirement, embeds the job text and scores a single
// candidate.
func (s *Service) Score(ctx context.Context, jobText string, cand candidate.Record) (domreq.JobRequirement, score.Breakdown, error) {
	req, jobVec, err := s.prepare(ctx, jobText)
	if err != nil {
		return domreq.JobRequirement{}, score.Breakdown{}, err
	}
	b, err := s.scoreOne(req, jobVec, cand)
	if err != nil {
		return domreq.JobRequirement{}, score.Breakdown{}, fmt.Errorf("score candidate %q: %w", cand.ID, err)
	}
	return req, b, nil
}

func (s *Service) prepare(ctx context.Context, jobText string) (domreq.JobRequirement, []float32, error) {
	if err := ctx.Err(); err != nil {
		return domreq.JobRequirement{}, nil, fmt.Errorf("rank: %w", err)
	}
	req := s.extractor.Extract(ctx, jobText)

	jobVec, err := s.embedder.EmbedText(ctx, jobText)
	if err != nil {
		return req, nil, fmt.Errorf("embed job description: %w", err)
	}
	return req, jobVec, nil
}

func zeroBreakdown() score.Breakdown {
	return score.Breakdown{
		Components: map[score.Component]float64{},
		Weights:    map[score.Component]float64{},
		Reasons:    []string{},
	}
}

// scoreOne turns a scorer panic into an error so one bad record cannot take
// down the request.
func (s *Service) scoreOne(req domreq.JobRequirement, jobVec []float32, cand candidate.Record) (b score.Breakdown, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scoring panicked: %v", r)
		}
	}()
	return s.scorer.Score(req, jobVec, cand)
}
