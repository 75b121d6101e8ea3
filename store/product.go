package store

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Product is a catalog item. Its vectors live in ProductEmbedding, one row per model.
type Product struct {
	ID          int32
	Name        string
	Category    string
	Price       float64
	Description string
	CreatedTs   int64
	UpdatedTs   int64
}

// FindProduct is the find condition for products.
type FindProduct struct {
	ID       *int32
	Category *string
	Limit    *int
	Offset   *int
}

// ProductEmbedding is the vector of a product for one embedding model.
type ProductEmbedding struct {
	ProductID int32
	Model     string
	Embedding []float32
	CreatedTs int64
	UpdatedTs int64
}

// FindProductsWithoutEmbedding is the find condition for products not yet embedded.
type FindProductsWithoutEmbedding struct {
	Model string
	Limit int
}

// ProductWithDistance is a vector search hit.
type ProductWithDistance struct {
	Product  *Product
	Distance float64 // cosine distance, 0 = identical direction, 2 = opposite
}

// VectorSearchOptions represents the options for product vector search.
type VectorSearchOptions struct {
	Vector      []float32
	Model       string
	Limit       int
	MaxDistance float64 // 0 disables the cut-off
}

// Validate validates the VectorSearchOptions.
func (o *VectorSearchOptions) Validate() error {
	if len(o.Vector) == 0 {
		return errors.Errorf("vector cannot be empty")
	}
	if o.Model == "" {
		return errors.Errorf("model cannot be empty")
	}
	if o.Limit < 0 {
		return errors.Errorf("limit cannot be negative: %d", o.Limit)
	}
	if o.Limit == 0 {
		o.Limit = 10
	}
	if o.Limit > 1000 {
		return errors.Errorf("limit too large (max 1000): %d", o.Limit)
	}
	if o.MaxDistance < 0 || o.MaxDistance > 2 {
		return errors.Errorf("max distance out of range [0, 2]: %v", o.MaxDistance)
	}
	return nil
}

func (s *Store) CreateProduct(ctx context.Context, create *Product) (*Product, error) {
	return s.driver.CreateProduct(ctx, create)
}

func (s *Store) ListProducts(ctx context.Context, find *FindProduct) ([]*Product, error) {
	return s.driver.ListProducts(ctx, find)
}

// GetProduct returns the product with id, or ErrNotFound.
func (s *Store) GetProduct(ctx context.Context, id int32) (*Product, error) {
	list, err := s.driver.ListProducts(ctx, &FindProduct{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "product %d", id)
	}
	return list[0], nil
}

func (s *Store) CountProducts(ctx context.Context) (int, error) {
	return s.driver.CountProducts(ctx)
}

// DeleteAllProducts removes every product together with its embeddings.
func (s *Store) DeleteAllProducts(ctx context.Context) error {
	return s.driver.DeleteAllProducts(ctx)
}

// UpsertProductEmbedding stores the vector of a product, replacing any
// previous vector for the same model.
func (s *Store) UpsertProductEmbedding(ctx context.Context, embedding *ProductEmbedding) (*ProductEmbedding, error) {
	return s.driver.UpsertProductEmbedding(ctx, embedding)
}

// ListProductsWithoutEmbedding returns products that have no vector for model.
func (s *Store) ListProductsWithoutEmbedding(ctx context.Context, model string, limit int) ([]*Product, error) {
	return s.driver.FindProductsWithoutEmbedding(ctx, &FindProductsWithoutEmbedding{
		Model: model,
		Limit: limit,
	})
}

// VectorSearch returns the nearest products to opts.Vector by cosine
// distance, closest first. Products without a vector for opts.Model are skipped.
func (s *Store) VectorSearch(ctx context.Context, opts *VectorSearchOptions) ([]*ProductWithDistance, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return s.driver.VectorSearch(ctx, opts)
}
