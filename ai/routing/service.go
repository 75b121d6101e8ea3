package routing

import (
	"context"
	"log/slog"
	"time"

	"github.com/neusearch/neusearch/ai/metrics"
	"github.com/neusearch/neusearch/internal/util"
)

const cacheTypeIntent = "intent"

// Service routes a message: rule -> cache -> llm.
type Service struct {
	ruleMatcher *RuleMatcher
	classifier  *LLMClassifier
	cache       *RouterCache
	metrics     *metrics.PrometheusExporter
}

// Config contains the configuration for the router service.
type Config struct {
	// Classifier is optional. Without it every non-greeting is a product query.
	Classifier  *LLMClassifier
	RuleMatcher *RuleMatcher
	EnableCache bool
	Cache       CacheConfig
	Metrics     *metrics.PrometheusExporter
}

// NewService creates a new router service.
func NewService(cfg Config) *Service {
	matcher := cfg.RuleMatcher
	if matcher == nil {
		matcher = NewRuleMatcher()
	}
	svc := &Service{
		ruleMatcher: matcher,
		classifier:  cfg.Classifier,
		metrics:     cfg.Metrics,
	}
	if cfg.EnableCache && cfg.Classifier != nil {
		svc.cache = NewRouterCache(cfg.Cache)
	}
	return svc
}

// ClassifyIntent implements IntentClassifier. Classifier failures fall
// through to a product query and are never returned.
func (s *Service) ClassifyIntent(ctx context.Context, input string) Decision {
	start := time.Now()

	if s.ruleMatcher.IsGreeting(input) {
		return Decision{Intent: IntentGreeting, Source: SourceRule}
	}

	if s.classifier == nil {
		return Decision{Intent: IntentProduct, Source: SourceDefault}
	}

	if s.cache != nil {
		if intent, ok := s.cache.Get(input); ok {
			s.metrics.RecordCacheHit(cacheTypeIntent)
			return Decision{Intent: intent, Source: SourceCache}
		}
		s.metrics.RecordCacheMiss(cacheTypeIntent)
	}

	intent, err := s.classifier.Classify(ctx, input)
	if err != nil {
		slog.WarnContext(ctx, "intent classification failed, continuing with product search",
			"request_id", util.RequestID(ctx),
			"input", truncate(input, 50),
			"error", err,
			"latency_ms", time.Since(start).Milliseconds(),
		)
		return Decision{Intent: IntentProduct, Source: SourceDefault}
	}

	if s.cache != nil {
		s.cache.Set(input, intent)
	}
	return Decision{Intent: intent, Source: SourceLLM}
}

// IsListAll reports whether input asks for the whole catalog.
func (s *Service) IsListAll(input string) bool {
	return s.ruleMatcher.IsListAll(input)
}

var _ IntentClassifier = (*Service)(nil)
