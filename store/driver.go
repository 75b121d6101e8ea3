package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error
	Dialect() string

	// Product model related methods.
	CreateProduct(ctx context.Context, create *Product) (*Product, error)
	ListProducts(ctx context.Context, find *FindProduct) ([]*Product, error)
	CountProducts(ctx context.Context) (int, error)
	DeleteAllProducts(ctx context.Context) error

	// ProductEmbedding model related methods.
	UpsertProductEmbedding(ctx context.Context, embedding *ProductEmbedding) (*ProductEmbedding, error)
	FindProductsWithoutEmbedding(ctx context.Context, find *FindProductsWithoutEmbedding) ([]*Product, error)
	VectorSearch(ctx context.Context, opts *VectorSearchOptions) ([]*ProductWithDistance, error)
}
