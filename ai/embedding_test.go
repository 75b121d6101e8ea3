package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newEmbeddingServer fakes the OpenAI-compatible /embeddings endpoint.
func newEmbeddingServer(t *testing.T, dims int, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		var body struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
			return
		}

		data := make([]map[string]any, len(body.Input))
		for i := range body.Input {
			vec := make([]float32, dims)
			vec[0] = float32(i + 1)
			data[i] = map[string]any{"object": "embedding", "index": i, "embedding": vec}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  body.Model,
			"usage":  map[string]any{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEmbeddingService_Embed(t *testing.T) {
	srv := newEmbeddingServer(t, 4, http.StatusOK)
	svc, err := NewEmbeddingService(&EmbeddingConfig{
		Provider:   "openai",
		Model:      "text-embedding-3-small",
		APIKey:     "k",
		BaseURL:    srv.URL,
		Dimensions: 4,
	})
	require.NoError(t, err)

	vec, err := svc.Embed(context.Background(), "blue gym shoes")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0, 0}, vec)
	assert.Equal(t, 4, svc.Dimensions())
	assert.Equal(t, "text-embedding-3-small", svc.Model())

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, float32(2), vecs[1][0])
}

func TestEmbeddingService_Unavailable(t *testing.T) {
	srv := newEmbeddingServer(t, 4, http.StatusServiceUnavailable)
	svc, err := NewEmbeddingService(&EmbeddingConfig{
		Provider: "openai", Model: "m", APIKey: "k", BaseURL: srv.URL, Dimensions: 4,
	})
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "shoes")
	require.ErrorIs(t, err, ErrEmbeddingUnavailable)
}

func TestEmbeddingService_DimensionMismatch(t *testing.T) {
	srv := newEmbeddingServer(t, 8, http.StatusOK)
	svc, err := NewEmbeddingService(&EmbeddingConfig{
		Provider: "openai", Model: "m", APIKey: "k", BaseURL: srv.URL, Dimensions: 4,
	})
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "shoes")
	require.ErrorIs(t, err, ErrEmbeddingUnavailable)
	assert.Contains(t, err.Error(), "expected 4 dimensions")
}

func TestEmbeddingService_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	svc, err := NewEmbeddingService(&EmbeddingConfig{
		Provider: "openai", Model: "m", APIKey: "k", BaseURL: srv.URL, Dimensions: 4,
		Timeout: 50 * time.Millisecond,
	})
	require.NoError(t, err)

	start := time.Now()
	_, err = svc.Embed(context.Background(), "shoes")
	require.ErrorIs(t, err, ErrEmbeddingUnavailable)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewEmbeddingService_Validation(t *testing.T) {
	_, err := NewEmbeddingService(&EmbeddingConfig{Provider: "openai", Model: "m", Dimensions: 0})
	require.Error(t, err)

	_, err = NewEmbeddingService(&EmbeddingConfig{Provider: "openai", Dimensions: 4})
	require.Error(t, err)

	svc, err := NewEmbeddingService(&EmbeddingConfig{Provider: "hash", Dimensions: 16})
	require.NoError(t, err)
	assert.Equal(t, "sha256-hash-16", svc.Model())

	wider, err := NewEmbeddingService(&EmbeddingConfig{Provider: "hash", Dimensions: 32})
	require.NoError(t, err)
	assert.NotEqual(t, svc.Model(), wider.Model(), "vectors of another size get their own model key")
}
