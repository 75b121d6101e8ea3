// Package chat answers one shopping-assistant turn.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/neusearch/neusearch/ai"
	"github.com/neusearch/neusearch/ai/core/retrieval"
	"github.com/neusearch/neusearch/ai/metrics"
	"github.com/neusearch/neusearch/ai/routing"
	"github.com/neusearch/neusearch/internal/util"
	"github.com/neusearch/neusearch/store"
)

// ErrInvalidQuery is returned for an empty or oversized query.
var ErrInvalidQuery = errors.New("invalid query")

const (
	GreetingReply     = "Hello! I'm NeuSearch AI, your shopping assistant. I help you find the best products using AI search. What are you looking for today?"
	EmptyCatalogReply = "I'm sorry, we don't have any products in our store right now."

	// ListAllLimit caps the products returned for a "list all" request.
	ListAllLimit = 10
)

// Routes reported in metrics and logs.
const (
	RouteGreeting = "greeting"
	RouteGeneral  = "general"
	RouteEmpty    = "empty_catalog"
	RouteListAll  = "list_all"
	RouteProduct  = "product"
)

// Router decides how a turn is answered.
type Router interface {
	ClassifyIntent(ctx context.Context, input string) routing.Decision
	IsListAll(input string) bool
}

// Retriever finds the products relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int) ([]*store.ProductWithDistance, error)
}

// Generator writes the answer text.
type Generator interface {
	Generate(ctx context.Context, query string, products []*store.Product) (*ai.Response, error)
	GenerateGeneral(ctx context.Context, query string) string
}

// Catalog is the read side of the product store used by chat.
type Catalog interface {
	CountProducts(ctx context.Context) (int, error)
	ListProducts(ctx context.Context, find *store.FindProduct) ([]*store.Product, error)
}

// Response is the answer to one turn. Products are detached copies with no
// timestamps or embeddings.
type Response struct {
	Text     string
	Products []*store.Product
	Route    string
}

// Service composes routing, retrieval and generation.
type Service struct {
	router    Router
	retriever Retriever
	generator Generator
	catalog   Catalog
	limit     int
	metrics   *metrics.PrometheusExporter
}

// Config wires a chat Service.
type Config struct {
	Router    Router
	Retriever Retriever
	Generator Generator
	Catalog   Catalog
	Limit     int // products passed to the generator, default 3
	Metrics   *metrics.PrometheusExporter
}

// NewService creates a chat service. Router may be nil, in which case
// every message is treated as a product query.
func NewService(cfg Config) *Service {
	if cfg.Router == nil {
		cfg.Router = routing.NewService(routing.Config{})
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 3
	}
	return &Service{
		router:    cfg.Router,
		retriever: cfg.Retriever,
		generator: cfg.Generator,
		catalog:   cfg.Catalog,
		limit:     cfg.Limit,
		metrics:   cfg.Metrics,
	}
}

// Chat answers query. Order: greeting, intent, empty catalog, list all,
// then retrieval and generation.
func (s *Service) Chat(ctx context.Context, query string) (*Response, error) {
	start := time.Now()
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", ErrInvalidQuery)
	}
	if utf8.RuneCountInString(query) > retrieval.MaxQueryLength {
		return nil, fmt.Errorf("%w: query exceeds %d characters", ErrInvalidQuery, retrieval.MaxQueryLength)
	}

	resp, err := s.answer(ctx, query)
	route := RouteProduct
	if resp != nil {
		route = resp.Route
	}
	s.metrics.RecordChatRequest(route, time.Since(start), err == nil)

	if err != nil {
		slog.ErrorContext(ctx, "chat turn failed",
			"request_id", util.RequestID(ctx),
			"route", route,
			"error", err,
			"latency_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}
	slog.InfoContext(ctx, "chat turn answered",
		"request_id", util.RequestID(ctx),
		"route", route,
		"products", len(resp.Products),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

func (s *Service) answer(ctx context.Context, query string) (*Response, error) {
	decision := s.router.ClassifyIntent(ctx, query)
	switch decision.Intent {
	case routing.IntentGreeting:
		return &Response{Text: GreetingReply, Products: []*store.Product{}, Route: RouteGreeting}, nil
	case routing.IntentGeneral:
		return &Response{
			Text:     s.generator.GenerateGeneral(ctx, query),
			Products: []*store.Product{},
			Route:    RouteGeneral,
		}, nil
	}

	count, err := s.catalog.CountProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if count == 0 {
		return &Response{Text: EmptyCatalogReply, Products: []*store.Product{}, Route: RouteEmpty}, nil
	}

	if s.router.IsListAll(query) {
		return s.listAll(ctx, count)
	}

	hits, err := s.retriever.Retrieve(ctx, query, s.limit)
	if err != nil {
		return nil, fmt.Errorf("retrieve products: %w", err)
	}
	products := make([]*store.Product, 0, len(hits))
	for _, h := range hits {
		products = append(products, snapshot(h.Product))
	}

	generated, err := s.generator.Generate(ctx, query, products)
	if err != nil {
		return nil, err
	}
	return &Response{Text: generated.Text, Products: products, Route: RouteProduct}, nil
}

func (s *Service) listAll(ctx context.Context, total int) (*Response, error) {
	limit := ListAllLimit
	list, err := s.catalog.ListProducts(ctx, &store.FindProduct{Limit: &limit})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	products := make([]*store.Product, 0, len(list))
	for _, p := range list {
		products = append(products, snapshot(p))
	}
	return &Response{
		Text:     fmt.Sprintf("Here are all our products (%d total):", total),
		Products: products,
		Route:    RouteListAll,
	}, nil
}

func snapshot(p *store.Product) *store.Product {
	return &store.Product{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Price:       p.Price,
		Description: p.Description,
	}
}
