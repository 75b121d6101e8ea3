package ingest

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neusearch/neusearch/ai"
	"github.com/neusearch/neusearch/ai/mocks"
	"github.com/neusearch/neusearch/store"
	teststore "github.com/neusearch/neusearch/store/test"
)

// flakyEmbedder fails for any content containing failOn.
type flakyEmbedder struct {
	*mocks.MockEmbedding
	failOn string
}

func (f *flakyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return nil, ai.ErrEmbeddingUnavailable
	}
	return f.MockEmbedding.Embed(ctx, text)
}

func newService(t *testing.T, embedder Embedder) (*Service, *store.Store) {
	t.Helper()
	s := teststore.NewTestingStore(context.Background(), t)
	return NewService(s, embedder, Config{Concurrency: 2, RatePerSecond: 1000}, nil), s
}

func addCatalog(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()
	for _, p := range []*CreateProduct{
		{Name: "Nike Air Max 270", Category: "Footwear", Price: 150, Description: "Comfortable running shoes"},
		{Name: "Coffee Maker", Category: "Appliances", Price: 89.99, Description: "Drip coffee"},
		{Name: "Gaming Laptop", Category: "Electronics", Price: 1299, Description: "RTX graphics"},
	} {
		_, err := svc.AddProduct(ctx, p)
		require.NoError(t, err)
	}
}

func TestContent(t *testing.T) {
	got := Content(&store.Product{Name: "Coffee Maker", Category: "Appliances", Price: 89.99, Description: "Drip coffee"})
	assert.Equal(t, "Product: Coffee Maker\nCategory: Appliances\nPrice: $89.99\nDescription: Drip coffee", got)
}

func TestAddProduct(t *testing.T) {
	svc, s := newService(t, mocks.NewMockEmbedding(2))
	ctx := context.Background()

	p, err := svc.AddProduct(ctx, &CreateProduct{Name: "  Trail Shoe ", Category: "Footwear", Price: 0})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "Trail Shoe", p.Name)

	for name, bad := range map[string]*CreateProduct{
		"nil":            nil,
		"empty name":     {Name: " ", Category: "Footwear", Price: 1},
		"empty category": {Name: "Shoe", Price: 1},
		"negative price": {Name: "Shoe", Category: "Footwear", Price: -1},
		"nan price":      {Name: "Shoe", Category: "Footwear", Price: math.NaN()},
	} {
		_, err := svc.AddProduct(ctx, bad)
		assert.ErrorIs(t, err, ErrInvalidProduct, name)
	}

	count, err := s.CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIngestAll_EmptyCatalog(t *testing.T) {
	svc, _ := newService(t, mocks.NewMockEmbedding(2))

	_, err := svc.IngestAll(context.Background())
	require.ErrorIs(t, err, ErrNoProducts)
}

func TestIngestAll(t *testing.T) {
	embedder := mocks.NewMockEmbedding(2)
	svc, s := newService(t, embedder)
	addCatalog(t, svc)
	ctx := context.Background()

	report, err := svc.IngestAll(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 3, report.TotalEmbeddings)
	assert.Zero(t, report.Failed)

	missing, err := s.ListProductsWithoutEmbedding(ctx, embedder.Model(), 0)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestIngestAll_ReingestOverwrites(t *testing.T) {
	embedder := mocks.NewMockEmbedding(2)
	svc, s := newService(t, embedder)
	addCatalog(t, svc)
	ctx := context.Background()

	first, err := svc.IngestAll(ctx)
	require.NoError(t, err)
	second, err := svc.IngestAll(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)

	results, err := s.VectorSearch(ctx, &store.VectorSearchOptions{
		Vector: []float32{1, 0},
		Model:  embedder.Model(),
		Limit:  10,
	})
	require.NoError(t, err)
	assert.Len(t, results, 3, "one vector per product and model")
}

func TestIngestAll_PartialFailure(t *testing.T) {
	embedder := &flakyEmbedder{MockEmbedding: mocks.NewMockEmbedding(2), failOn: "Coffee Maker"}
	svc, s := newService(t, embedder)
	addCatalog(t, svc)
	ctx := context.Background()

	report, err := svc.IngestAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 2, report.TotalEmbeddings)
	assert.Equal(t, 1, report.Failed)

	missing, err := s.ListProductsWithoutEmbedding(ctx, embedder.Model(), 0)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "Coffee Maker", missing[0].Name)

	embedder.failOn = ""
	report, err = svc.IngestMissing(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.TotalEmbeddings)
}

func TestIngestMissing_NothingToDo(t *testing.T) {
	svc, _ := newService(t, mocks.NewMockEmbedding(2))

	report, err := svc.IngestMissing(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, report.Processed)
	assert.Zero(t, report.TotalEmbeddings)
}

func TestIngestAll_Canceled(t *testing.T) {
	svc, _ := newService(t, mocks.NewMockEmbedding(2))
	addCatalog(t, svc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.IngestAll(ctx)
	require.Error(t, err)
}

func TestClearAll(t *testing.T) {
	embedder := mocks.NewMockEmbedding(2)
	svc, s := newService(t, embedder)
	addCatalog(t, svc)
	ctx := context.Background()
	_, err := svc.IngestAll(ctx)
	require.NoError(t, err)

	deleted, err := svc.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	count, err := s.CountProducts(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = svc.IngestAll(ctx)
	assert.True(t, errors.Is(err, ErrNoProducts))
}
