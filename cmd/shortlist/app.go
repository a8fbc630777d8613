package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shortlist/internal/config"
	dbValkey "github.com/kailas-cloud/shortlist/internal/db/valkey"
	"github.com/kailas-cloud/shortlist/internal/domain"
	logpkg "github.com/kailas-cloud/shortlist/internal/logger"
	"github.com/kailas-cloud/shortlist/internal/metrics"
	"github.com/kailas-cloud/shortlist/internal/nlp"
	candidaterepo "github.com/kailas-cloud/shortlist/internal/repository/candidate"
	"github.com/kailas-cloud/shortlist/internal/repository/embcache"
	openaiEmb "github.com/kailas-cloud/shortlist/internal/transport/openai"
	candidateuc "github.com/kailas-cloud/shortlist/internal/usecase/candidate"
	embeddinguc "github.com/kailas-cloud/shortlist/internal/usecase/embedding"
	rankinguc "github.com/kailas-cloud/shortlist/internal/usecase/ranking"
	requirementuc "github.com/kailas-cloud/shortlist/internal/usecase/requirement"
	"github.com/kailas-cloud/shortlist/internal/usecase/scoring"
)

// app is the composition root shared by all commands.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger

	// store is nil for commands that run without Valkey.
	store *dbValkey.Store

	queryEmbedder embeddinguc.Embedder
	embeddings    *embeddinguc.Service
	extractor     *requirementuc.Service
	ranker        *rankinguc.Service
}

// newApp loads config and logger and builds the ranking pipeline. With
// withStore set it also connects to Valkey, which then backs the L2
// embedding cache.
func newApp(ctx context.Context, withStore bool) (*app, error) {
	env := flagEnv
	if env == "" {
		env = config.GetEnv()
	}

	var (
		cfg config.Config
		err error
	)
	if flagConfigPath != "" {
		cfg, err = config.LoadFile(flagConfigPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{env: env, cfg: cfg, logger: logger}

	if withStore {
		if err := a.connectStore(ctx); err != nil {
			a.close()
			return nil, err
		}
	}

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRankingMetrics()

	if err := a.buildPipeline(); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) connectStore(ctx context.Context) error {
	store, err := dbValkey.NewStore(dbValkey.Config{
		Addrs:      a.cfg.Database.Addrs,
		Password:   a.cfg.Database.Password,
		ClientName: "shortlist",
	})
	if err != nil {
		return fmt.Errorf("failed to create database store: %w", err)
	}

	timeout := time.Duration(a.cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return fmt.Errorf("database not ready: %w", err)
	}
	a.store = store
	a.logger.Info("Connected to database", zap.Strings("addrs", a.cfg.Database.Addrs))
	return nil
}

func (a *app) buildPipeline() error {
	// One L1 cache per side: instruction prefixes make the texts differ anyway.
	a.queryEmbedder = a.buildEmbedder(a.cfg.Embedding.QueryInstruction)
	docEmbedder := a.buildEmbedder(a.cfg.Embedding.DocumentInstruction)
	a.embeddings = embeddinguc.NewService(a.queryEmbedder, docEmbedder)
	a.logger.Info("Embedders created",
		zap.String("base_url", a.cfg.Embedding.BaseURL),
		zap.String("model", a.cfg.Embedding.Model),
		zap.Int("dimensions", a.cfg.Embedding.Dimensions),
		zap.Bool("l2_cache", a.store != nil && a.cfg.Cache.L2Enabled),
	)

	pipeline := nlp.New(a.cfg.Extraction.DefaultLanguage, a.cfg.Extraction.ExtraStopWords)
	extractor, err := requirementuc.New(
		pipeline, pipeline.StopWords(), extractionRules(a.cfg.Extraction),
		metrics.ExtractionFailures{}, a.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to build requirement extractor: %w", err)
	}
	a.extractor = extractor

	engine, err := scoring.NewEngine(a.cfg.ScoreWeights(), scoring.WithExperienceCap(a.cfg.Scoring.ExperienceCap))
	if err != nil {
		return fmt.Errorf("failed to build scoring engine: %w", err)
	}

	a.ranker = rankinguc.New(extractor, a.embeddings, engine, rankinguc.Config{
		DefaultTopN: a.cfg.Ranking.DefaultTopN,
		MaxTopN:     a.cfg.Ranking.MaxTopN,
		Workers:     a.cfg.Ranking.Workers,
	}, a.logger)
	return nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction
func (a *app) buildEmbedder(instruction string) embeddinguc.Embedder {
	ec := a.cfg.Embedding
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:       ec.APIKey,
		BaseURL:      ec.BaseURL,
		Model:        ec.Model,
		Dimensions:   ec.Dimensions,
		MaxBatchSize: ec.MaxBatchSize,
		Logger:       a.logger,
	})

	ttl := time.Duration(a.cfg.Cache.TTLSec) * time.Second

	l1 := embcache.NewCache(a.cfg.Cache.Capacity, ttl)
	cacheCfg := embcache.Config{KeyPrefix: a.cfg.Storage.KeyPrefix, TTL: ttl}

	// Pass a nil interface (not a typed nil pointer!) when L2 is off.
	var cached *embcache.CachedEmbedder
	if a.store != nil && a.cfg.Cache.L2Enabled {
		cached = embcache.New(base, l1, a.store, cacheCfg, metrics.EmbeddingCacheTotal, a.logger)
	} else {
		cached = embcache.New(base, l1, nil, cacheCfg, metrics.EmbeddingCacheTotal, a.logger)
	}

	var embedder embeddinguc.Embedder = embeddinguc.NewInstrumentedEmbedder(cached, ec.Model, a.logger)

	// Instruction prefix (outermost, so the cache key includes it)
	if instruction != "" {
		embedder = domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}

// candidates builds the candidate service over the Valkey store.
func (a *app) candidates() *candidateuc.Service {
	repo := candidaterepo.New(a.store, a.cfg.Storage.KeyPrefix)
	return candidateuc.New(repo, a.embeddings, a.logger)
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	_ = a.logger.Sync()
}

func extractionRules(ec config.ExtractionConfig) requirementuc.Rules {
	return requirementuc.DefaultRules().Merge(requirementuc.Rules{
		DefaultLanguage:       ec.DefaultLanguage,
		SkillAnchors:          ec.SkillAnchors,
		YearsPatterns:         ec.YearsPatterns,
		EducationIndicators:   ec.EducationIndicators,
		EducationPhrases:      ec.EducationPhrases,
		LanguageLexicon:       ec.LanguageLexicon,
		CertificationAnchors:  ec.CertificationAnchors,
		CertificationAcronyms: ec.CertificationAcronyms,
		AnchorWindow:          ec.AnchorWindow,
		KeywordTopK:           ec.KeywordTopK,
		MinKeywordLength:      ec.MinKeywordLength,
	})
}

// embeddingHealthChecker adapts the embedder chain to health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func (h embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
