package embcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shortlist/internal/db"
	"github.com/kailas-cloud/shortlist/internal/domain"
	"github.com/kailas-cloud/shortlist/internal/domain/vector"
)

const (
	tierL1 = "l1"
	tierL2 = "l2"
)

// store is the consumer interface for the shared L2 tier (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config controls the L2 tier. KeyPrefix namespaces keys in the shared store.
type Config struct {
	KeyPrefix string
	TTL       time.Duration
}

// CachedEmbedder answers repeated texts from an in-process LRU and, when a
// store is given, from a shared key-value tier that survives restarts.
// Cache failures are logged and never fail a call.
type CachedEmbedder struct {
	inner      domain.Embedder
	l1         *Cache
	l2         store
	cfg        Config
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. l2 can be nil.
// cacheTotal is a counter vec with labels "tier" and "result", passed explicitly.
func New(
	inner domain.Embedder,
	l1 *Cache,
	l2 store,
	cfg Config,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEmbedder {
	return &CachedEmbedder{
		inner:      inner,
		l1:         l1,
		l2:         l2,
		cfg:        cfg,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Embed returns a cached embedding or calls the inner embedder.
// Cache hit: Cached = true, no tokens reported.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := vector.Hash(text)

	if vec, ok := c.lookup(ctx, key); ok {
		return domain.EmbeddingResult{Embedding: vec, Cached: true}, nil
	}

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}

	c.put(ctx, key, result.Embedding)
	return result, nil
}

// BatchEmbed serves cached texts and sends only the misses to the inner
// embedder, each distinct text once.
func (c *CachedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}

	keys := make([]string, len(texts))
	var missTexts []string
	missIdx := map[string][]int{}
	for i, text := range texts {
		keys[i] = vector.Hash(text)
		if idx, pending := missIdx[keys[i]]; pending {
			missIdx[keys[i]] = append(idx, i)
			continue
		}
		if vec, ok := c.lookup(ctx, keys[i]); ok {
			out.Embeddings[i] = vec
			continue
		}
		missIdx[keys[i]] = []int{i}
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	res, err := c.innerBatch(ctx, missTexts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}
	if len(res.Embeddings) != len(missTexts) {
		return domain.BatchEmbeddingResult{}, fmt.Errorf(
			"batch embed: %w: got %d vectors for %d texts",
			domain.ErrEmbeddingProviderError, len(res.Embeddings), len(missTexts))
	}

	for j, text := range missTexts {
		key := vector.Hash(text)
		vec := res.Embeddings[j]
		for k, i := range missIdx[key] {
			if k == 0 {
				out.Embeddings[i] = vec
				continue
			}
			out.Embeddings[i] = cloneVector(vec)
		}
		c.put(ctx, key, vec)
	}
	out.PromptTokens = res.PromptTokens
	out.TotalTokens = res.TotalTokens
	return out, nil
}

// HealthCheck delegates to inner when it supports health checks.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func (c *CachedEmbedder) innerBatch(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if be, ok := c.inner.(domain.BatchEmbedder); ok {
		res, err := be.BatchEmbed(ctx, texts)
		if err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
		}
		return res, nil
	}
	res, err := domain.BatchFallback(ctx, c.inner, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed fallback: %w", err)
	}
	return res, nil
}

func (c *CachedEmbedder) lookup(ctx context.Context, key string) ([]float32, bool) {
	if e, ok := c.l1.Get(key); ok {
		c.incCache(tierL1, "hit")
		return e.Vector, true
	}
	c.incCache(tierL1, "miss")

	if c.l2 == nil {
		return nil, false
	}
	vec, ok := c.getFromStore(ctx, key)
	if !ok {
		c.incCache(tierL2, "miss")
		return nil, false
	}
	c.incCache(tierL2, "hit")
	c.l1.Put(key, vec)
	return vec, true
}

func (c *CachedEmbedder) put(ctx context.Context, key string, vec []float32) {
	c.l1.Put(key, vec)
	if c.l2 == nil {
		return
	}
	if err := c.l2.SetWithTTL(ctx, c.storeKey(key), vector.Encode(vec), c.cfg.TTL); err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedEmbedder) incCache(tier, result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(tier, result).Inc()
	}
}

func (c *CachedEmbedder) storeKey(key string) string {
	return c.cfg.KeyPrefix + "emb_cache:" + key
}

func (c *CachedEmbedder) getFromStore(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.l2.Get(ctx, c.storeKey(key))
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	vec, err := vector.Decode(data)
	if err != nil || !vector.Valid(vec) {
		c.logger.Warn("Discarding malformed cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	return vec, true
}
