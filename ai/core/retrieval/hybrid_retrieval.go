// Package retrieval combines vector similarity search with a keyword filter.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/neusearch/neusearch/ai/keyword"
	"github.com/neusearch/neusearch/ai/metrics"
	"github.com/neusearch/neusearch/internal/util"
	"github.com/neusearch/neusearch/store"
)

// MaxQueryLength bounds the query size accepted by Retrieve.
const MaxQueryLength = 1000

// Retrieval modes reported in metrics and logs.
const (
	ModeVector          = "vector"
	ModeKeywordFiltered = "keyword_filtered"
	ModeDegraded        = "degraded"
)

// Embedder is the capability "embed text".
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// ProductSearcher runs nearest-neighbour queries over products.
type ProductSearcher interface {
	VectorSearch(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.ProductWithDistance, error)
}

// Config tunes the retriever.
type Config struct {
	Limit       int     // default result count when the caller passes 0
	MaxDistance float64 // 0 disables the distance cut-off
	StopWords   keyword.StopWords
}

// HybridRetriever embeds the query, takes the nearest products and keeps
// those matching the query keyword.
//
// When no keyword can be extracted the vector results are returned as is.
// When a keyword is extracted but matches none of them, the result is empty.
type HybridRetriever struct {
	embedder Embedder
	searcher ProductSearcher
	config   Config
	metrics  *metrics.PrometheusExporter
}

// NewHybridRetriever creates a hybrid retriever.
func NewHybridRetriever(embedder Embedder, searcher ProductSearcher, cfg Config, m *metrics.PrometheusExporter) *HybridRetriever {
	if cfg.Limit <= 0 {
		cfg.Limit = 3
	}
	if cfg.StopWords == nil {
		cfg.StopWords = keyword.DefaultStopWords()
	}
	return &HybridRetriever{
		embedder: embedder,
		searcher: searcher,
		config:   cfg,
		metrics:  m,
	}
}

// Retrieve returns at most limit products in ascending distance order.
// Embedding failures degrade to an empty result; store failures are returned.
func (r *HybridRetriever) Retrieve(ctx context.Context, query string, limit int) ([]*store.ProductWithDistance, error) {
	if n := utf8.RuneCountInString(query); n > MaxQueryLength {
		return nil, fmt.Errorf("query too long: %d characters (max %d)", n, MaxQueryLength)
	}
	if limit <= 0 {
		limit = r.config.Limit
	}
	requestID := util.RequestID(ctx)

	// The embedding call and keyword extraction are independent.
	var vector []float32
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vec, err := r.embedder.Embed(gctx, query)
		if err != nil {
			slog.WarnContext(ctx, "query embedding unavailable, skipping vector search",
				"request_id", requestID,
				"error", err,
			)
			r.metrics.RecordEmbeddingFailure("query")
			return nil
		}
		vector = vec
		return nil
	})
	kw, hasKeyword := keyword.Extract(query, r.config.StopWords)
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if vector == nil {
		r.metrics.RecordRetrieval(ModeDegraded, 0)
		return []*store.ProductWithDistance{}, nil
	}

	candidates, err := r.searcher.VectorSearch(ctx, &store.VectorSearchOptions{
		Vector:      vector,
		Model:       r.embedder.Model(),
		Limit:       limit,
		MaxDistance: r.config.MaxDistance,
	})
	if err != nil {
		slog.ErrorContext(ctx, "vector search failed",
			"request_id", requestID,
			"error", err,
		)
		return nil, fmt.Errorf("vector search: %w", err)
	}

	mode := ModeVector
	results := candidates
	if hasKeyword {
		mode = ModeKeywordFiltered
		results = FilterByKeyword(candidates, kw)
	}
	results = truncateResults(results, limit)

	slog.InfoContext(ctx, "hybrid retrieval completed",
		"request_id", requestID,
		"mode", mode,
		"keyword", kw,
		"candidates", len(candidates),
		"result_count", len(results),
	)
	r.metrics.RecordRetrieval(mode, len(results))

	return results, nil
}

// FilterByKeyword keeps the products whose name, category or description
// contains kw or one of its singular forms, case-insensitively. Order is kept.
func FilterByKeyword(products []*store.ProductWithDistance, kw string) []*store.ProductWithDistance {
	forms := keyword.Forms(strings.ToLower(kw))
	filtered := make([]*store.ProductWithDistance, 0, len(products))
	for _, p := range products {
		if matchesAny(p.Product, forms) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func matchesAny(p *store.Product, forms []string) bool {
	fields := []string{
		strings.ToLower(p.Name),
		strings.ToLower(p.Category),
		strings.ToLower(p.Description),
	}
	for _, f := range fields {
		for _, form := range forms {
			if strings.Contains(f, form) {
				return true
			}
		}
	}
	return false
}

// truncateResults cuts results to limit.
func truncateResults(results []*store.ProductWithDistance, limit int) []*store.ProductWithDistance {
	if limit <= 0 || len(results) <= limit {
		return results
	}
	return results[:limit]
}
