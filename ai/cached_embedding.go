package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/neusearch/neusearch/ai/cache"
	"github.com/neusearch/neusearch/ai/metrics"
)

const queryEmbeddingCacheType = "query_embedding"

// cachedEmbeddingService caches single-text embeddings. Batches pass through.
type cachedEmbeddingService struct {
	EmbeddingService
	cache   cache.VectorCache
	ttl     time.Duration
	metrics *metrics.PrometheusExporter
}

// NewCachedEmbeddingService wraps inner with a vector cache.
// A nil cache returns inner unchanged.
func NewCachedEmbeddingService(inner EmbeddingService, c cache.VectorCache, ttl time.Duration, m *metrics.PrometheusExporter) EmbeddingService {
	if c == nil {
		return inner
	}
	return &cachedEmbeddingService{
		EmbeddingService: inner,
		cache:            c,
		ttl:              ttl,
		metrics:          m,
	}
}

func (s *cachedEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	key := s.cacheKey(text)

	vec, err := s.cache.Get(ctx, key)
	switch {
	case err == nil && len(vec) == s.Dimensions():
		s.metrics.RecordCacheHit(queryEmbeddingCacheType)
		return vec, nil
	case err != nil && !errors.Is(err, cache.ErrCacheMiss):
		slog.WarnContext(ctx, "embedding cache read failed", "error", err)
	}
	s.metrics.RecordCacheMiss(queryEmbeddingCacheType)

	vec, err = s.EmbeddingService.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, vec, s.ttl); err != nil {
		slog.WarnContext(ctx, "embedding cache write failed", "error", err)
	}
	return vec, nil
}

func (s *cachedEmbeddingService) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return s.Model() + ":" + hex.EncodeToString(sum[:])
}

// NewVectorCache builds the configured cache backend. "none" yields nil.
func NewVectorCache(ctx context.Context, cfg *CacheConfig) (cache.VectorCache, error) {
	switch cfg.Backend {
	case "none":
		return nil, nil
	case "redis":
		c, err := cache.NewRedisVectorCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis embedding cache: %w", err)
		}
		return c, nil
	case "memory", "":
		return cache.NewMemoryVectorCache(cfg.Size, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}
}
