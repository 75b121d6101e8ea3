// Package catalog lists products, optionally narrowed by a CEL expression.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/neusearch/neusearch/ai/cache"
	"github.com/neusearch/neusearch/store"
)

// ErrInvalidFilter is returned for an expression that does not compile to a bool.
var ErrInvalidFilter = errors.New("invalid filter")

// Lister reads products from the store.
type Lister interface {
	ListProducts(ctx context.Context, find *store.FindProduct) ([]*store.Product, error)
}

// Service lists the catalog. Filters are expressions over name, category,
// price and description, e.g. `price < 100 && category == "Footwear"`.
type Service struct {
	lister   Lister
	env      *cel.Env
	programs *cache.LRUCache[string, cel.Program]
}

// NewService creates a catalog service.
func NewService(lister Lister) (*Service, error) {
	env, err := cel.NewEnv(
		cel.Variable("name", cel.StringType),
		cel.Variable("category", cel.StringType),
		cel.Variable("price", cel.DoubleType),
		cel.Variable("description", cel.StringType),
		// Lets `price < 100` compare a double with an int literal.
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Service{
		lister:   lister,
		env:      env,
		programs: cache.NewLRUCache[string, cel.Program](100, time.Hour),
	}, nil
}

// List returns every product matching filter in id order. An empty filter matches all.
func (s *Service) List(ctx context.Context, filter string) ([]*store.Product, error) {
	filter = strings.TrimSpace(filter)

	var program cel.Program
	if filter != "" {
		p, err := s.compile(filter)
		if err != nil {
			return nil, err
		}
		program = p
	}

	products, err := s.lister.ListProducts(ctx, &store.FindProduct{})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if program == nil {
		return products, nil
	}

	matched := make([]*store.Product, 0, len(products))
	for _, p := range products {
		out, _, err := program.ContextEval(ctx, map[string]any{
			"name":        p.Name,
			"category":    p.Category,
			"price":       p.Price,
			"description": p.Description,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		if ok, isBool := out.Value().(bool); isBool && ok {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (s *Service) compile(filter string) (cel.Program, error) {
	if p, ok := s.programs.Get(filter); ok {
		return p, nil
	}

	ast, issues := s.env.Compile(filter)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("%w: expression must evaluate to a bool, got %s", ErrInvalidFilter, ast.OutputType())
	}
	program, err := s.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	s.programs.Set(filter, program, 0)
	return program, nil
}
