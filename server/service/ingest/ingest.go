// Package ingest maintains the product catalog and its embeddings.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/neusearch/neusearch/ai/metrics"
	"github.com/neusearch/neusearch/internal/util"
	"github.com/neusearch/neusearch/store"
)

var (
	// ErrNoProducts is returned by IngestAll on an empty catalog.
	ErrNoProducts = errors.New("no products found")
	// ErrInvalidProduct is returned by AddProduct when validation fails.
	ErrInvalidProduct = errors.New("invalid product")
)

// Embedder is the capability "embed text".
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// Store is the part of the product store ingestion writes to.
type Store interface {
	CreateProduct(ctx context.Context, create *store.Product) (*store.Product, error)
	ListProducts(ctx context.Context, find *store.FindProduct) ([]*store.Product, error)
	CountProducts(ctx context.Context) (int, error)
	DeleteAllProducts(ctx context.Context) error
	UpsertProductEmbedding(ctx context.Context, embedding *store.ProductEmbedding) (*store.ProductEmbedding, error)
	ListProductsWithoutEmbedding(ctx context.Context, model string, limit int) ([]*store.Product, error)
}

// CreateProduct is the input of AddProduct.
type CreateProduct struct {
	Name        string
	Category    string
	Price       float64
	Description string
}

// Report summarizes an ingestion run.
type Report struct {
	RunID           string
	Processed       int
	TotalEmbeddings int
	Failed          int
	Duration        time.Duration
}

// Config tunes ingestion throughput.
type Config struct {
	Concurrency   int     // parallel embedding calls, default 4
	RatePerSecond float64 // embedding calls per second, <= 0 means unlimited
}

// Service adds products and (re)computes their embeddings.
type Service struct {
	store    Store
	embedder Embedder
	config   Config
	metrics  *metrics.PrometheusExporter
}

// NewService creates an ingestion service.
func NewService(s Store, embedder Embedder, cfg Config, m *metrics.PrometheusExporter) *Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Service{
		store:    s,
		embedder: embedder,
		config:   cfg,
		metrics:  m,
	}
}

// AddProduct validates and inserts a product. The product has no embedding
// until the next ingestion run.
func (s *Service) AddProduct(ctx context.Context, create *CreateProduct) (*store.Product, error) {
	if create == nil {
		return nil, fmt.Errorf("%w: empty request", ErrInvalidProduct)
	}
	name := strings.TrimSpace(create.Name)
	category := strings.TrimSpace(create.Category)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case category == "":
		return nil, fmt.Errorf("%w: category is required", ErrInvalidProduct)
	case math.IsNaN(create.Price) || math.IsInf(create.Price, 0) || create.Price < 0:
		return nil, fmt.Errorf("%w: price must be a non-negative number", ErrInvalidProduct)
	}

	product, err := s.store.CreateProduct(ctx, &store.Product{
		Name:        name,
		Category:    category,
		Price:       create.Price,
		Description: strings.TrimSpace(create.Description),
	})
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	slog.InfoContext(ctx, "product added",
		"request_id", util.RequestID(ctx),
		"product_id", product.ID,
		"name", product.Name,
	)
	return product, nil
}

// IngestAll embeds every product, overwriting existing vectors for the
// current model.
func (s *Service) IngestAll(ctx context.Context) (*Report, error) {
	products, err := s.store.ListProducts(ctx, &store.FindProduct{})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if len(products) == 0 {
		return nil, ErrNoProducts
	}
	return s.run(ctx, "all", products)
}

// IngestMissing embeds only products without a vector for the current model.
// limit <= 0 uses the store default of 100.
func (s *Service) IngestMissing(ctx context.Context, limit int) (*Report, error) {
	products, err := s.store.ListProductsWithoutEmbedding(ctx, s.embedder.Model(), limit)
	if err != nil {
		return nil, fmt.Errorf("list products without embedding: %w", err)
	}
	return s.run(ctx, "missing", products)
}

// ClearAll deletes every product and embedding. It returns the number of
// products removed.
func (s *Service) ClearAll(ctx context.Context) (int, error) {
	count, err := s.store.CountProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if err := s.store.DeleteAllProducts(ctx); err != nil {
		return 0, fmt.Errorf("delete products: %w", err)
	}
	slog.InfoContext(ctx, "catalog cleared",
		"request_id", util.RequestID(ctx),
		"deleted", count,
	)
	return count, nil
}

// run embeds products with bounded parallelism. A failed embedding is counted
// and skipped; a store error aborts the run.
func (s *Service) run(ctx context.Context, kind string, products []*store.Product) (*Report, error) {
	start := time.Now()
	runID := util.GenUUID()
	model := s.embedder.Model()

	limit := rate.Inf
	if s.config.RatePerSecond > 0 {
		limit = rate.Limit(s.config.RatePerSecond)
	}
	limiter := rate.NewLimiter(limit, 1)

	slog.InfoContext(ctx, "ingestion started",
		"run_id", runID,
		"kind", kind,
		"model", model,
		"products", len(products),
	)

	var embedded, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)
	for _, p := range products {
		p := p
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}
			vec, err := s.embedder.Embed(gctx, Content(p))
			if err != nil {
				failed.Add(1)
				slog.WarnContext(gctx, "product embedding failed",
					"run_id", runID,
					"product_id", p.ID,
					"error", err,
				)
				return nil
			}
			if _, err := s.store.UpsertProductEmbedding(gctx, &store.ProductEmbedding{
				ProductID: p.ID,
				Model:     model,
				Embedding: vec,
			}); err != nil {
				return fmt.Errorf("store embedding for product %d: %w", p.ID, err)
			}
			embedded.Add(1)
			return nil
		})
	}
	err := g.Wait()

	report := &Report{
		RunID:           runID,
		Processed:       len(products),
		TotalEmbeddings: int(embedded.Load()),
		Failed:          int(failed.Load()),
		Duration:        time.Since(start),
	}
	s.metrics.RecordIngest(report.TotalEmbeddings, report.Failed)

	if err != nil {
		slog.ErrorContext(ctx, "ingestion aborted",
			"run_id", runID,
			"embedded", report.TotalEmbeddings,
			"error", err,
		)
		return nil, err
	}
	slog.InfoContext(ctx, "ingestion completed",
		"run_id", runID,
		"kind", kind,
		"processed", report.Processed,
		"embedded", report.TotalEmbeddings,
		"failed", report.Failed,
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report, nil
}

// Content is the text embedded for a product.
func Content(p *store.Product) string {
	return fmt.Sprintf("Product: %s\nCategory: %s\nPrice: $%.2f\nDescription: %s",
		p.Name, p.Category, p.Price, p.Description)
}
