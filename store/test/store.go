// Package test builds migrated stores for tests in other packages.
package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/neusearch/neusearch/internal/profile"
	"github.com/neusearch/neusearch/store"
	"github.com/neusearch/neusearch/store/db"
)

// NewTestingStore returns a migrated SQLite store in a temp dir.
// It is closed when the test ends.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()

	dir := t.TempDir()
	p := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		Data:   dir,
		DSN:    filepath.Join(dir, "neusearch_test.db"),
	}
	driver, err := db.NewDBDriver(p)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}

	s := store.New(driver, p)
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// SeedProduct inserts a product and, when vec is non-nil, its embedding for model.
func SeedProduct(ctx context.Context, t *testing.T, s *store.Store, p *store.Product, model string, vec []float32) *store.Product {
	t.Helper()

	created, err := s.CreateProduct(ctx, p)
	if err != nil {
		t.Fatalf("failed to create product %q: %v", p.Name, err)
	}
	if vec != nil {
		if _, err := s.UpsertProductEmbedding(ctx, &store.ProductEmbedding{
			ProductID: created.ID,
			Model:     model,
			Embedding: vec,
		}); err != nil {
			t.Fatalf("failed to embed product %q: %v", p.Name, err)
		}
	}
	return created
}
