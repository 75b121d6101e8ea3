package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/neusearch/neusearch/ai"
	"github.com/neusearch/neusearch/ai/cache"
	"github.com/neusearch/neusearch/ai/core/llm"
	"github.com/neusearch/neusearch/ai/core/retrieval"
	"github.com/neusearch/neusearch/ai/metrics"
	"github.com/neusearch/neusearch/ai/routing"
	"github.com/neusearch/neusearch/internal/profile"
	"github.com/neusearch/neusearch/server/service/catalog"
	"github.com/neusearch/neusearch/server/service/chat"
	"github.com/neusearch/neusearch/server/service/ingest"
	"github.com/neusearch/neusearch/store"
)

// Components is the wired service graph shared by the HTTP server and the CLI.
type Components struct {
	Metrics        *metrics.PrometheusExporter
	Embedder       ai.EmbeddingService
	ChatService    *chat.Service
	IngestService  *ingest.Service
	CatalogService *catalog.Service

	vectorCache cache.VectorCache
}

// NewComponents builds embedder, LLM clients, router, retriever and the
// domain services from profile. Without a chat LLM the assistant still
// answers greetings, but product queries fail with ai.ErrGenerationUnavailable.
func NewComponents(ctx context.Context, profile *profile.Profile, s *store.Store, m *metrics.PrometheusExporter) (*Components, error) {
	aiConfig := ai.NewConfigFromProfile(profile)
	if err := aiConfig.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid AI config")
	}

	embedder, err := ai.NewEmbeddingService(&aiConfig.Embedding)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create embedding service")
	}
	vectorCache, err := ai.NewVectorCache(ctx, &aiConfig.Cache)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create embedding cache")
	}
	queryEmbedder := ai.NewCachedEmbeddingService(embedder, vectorCache, aiConfig.Cache.TTL, m)
	slog.Info("embedding service initialized",
		"provider", aiConfig.Embedding.Provider,
		"model", embedder.Model(),
		"dimensions", embedder.Dimensions(),
		"cache", aiConfig.Cache.Backend,
	)

	var chatLLM, generalLLM ai.LLMService
	var classifier *routing.LLMClassifier
	if aiConfig.Enabled {
		if chatLLM, err = ai.NewLLMService(&aiConfig.LLM); err != nil {
			return nil, errors.Wrap(err, "failed to create LLM service")
		}
		if generalLLM, err = ai.NewGeneralLLMService(&aiConfig.LLM); err != nil {
			return nil, errors.Wrap(err, "failed to create general LLM service")
		}
		if aiConfig.Intent.Enabled {
			intentLLM, err := ai.NewIntentLLMService(&aiConfig.LLM, &aiConfig.Intent)
			if err != nil {
				return nil, errors.Wrap(err, "failed to create intent LLM service")
			}
			classifier = routing.NewLLMClassifier(intentLLM, aiConfig.Intent.Model, m)
		}
		slog.Info("LLM service initialized",
			"provider", aiConfig.LLM.Provider,
			"model", aiConfig.LLM.Model,
			"intent_classifier", classifier != nil,
		)
		go warmup(chatLLM)
	} else {
		slog.Warn("AI features disabled: no LLM API key configured",
			"provider", aiConfig.LLM.Provider,
		)
	}

	router := routing.NewService(routing.Config{
		Classifier:  classifier,
		EnableCache: true,
		Metrics:     m,
	})
	retriever := retrieval.NewHybridRetriever(queryEmbedder, s, retrieval.Config{
		Limit:       profile.RetrievalLimit,
		MaxDistance: profile.RetrievalMaxDistance,
	}, m)
	generator := ai.NewResponseGenerator(chatLLM, generalLLM, aiConfig.LLM.Model, m)

	catalogService, err := catalog.NewService(s)
	if err != nil {
		return nil, err
	}

	return &Components{
		Metrics:  m,
		Embedder: embedder,
		ChatService: chat.NewService(chat.Config{
			Router:    router,
			Retriever: retriever,
			Generator: generator,
			Catalog:   s,
			Limit:     profile.RetrievalLimit,
			Metrics:   m,
		}),
		IngestService: ingest.NewService(s, embedder, ingest.Config{
			Concurrency:   profile.IngestConcurrency,
			RatePerSecond: profile.IngestRatePerSec,
		}, m),
		CatalogService: catalogService,
		vectorCache:    vectorCache,
	}, nil
}

// Close releases the embedding cache connection.
func (c *Components) Close() error {
	if c.vectorCache == nil {
		return nil
	}
	return c.vectorCache.Close()
}

// warmup pre-opens the LLM connection so the first turn is not slower.
func warmup(svc ai.LLMService) {
	w, ok := svc.(llm.Warmer)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	w.Warmup(ctx)
}
