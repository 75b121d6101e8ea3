package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neusearch/neusearch/internal/profile"
	teststore "github.com/neusearch/neusearch/store/test"
)

func offlineProfile() *profile.Profile {
	return &profile.Profile{
		Mode:                "dev",
		Driver:              "sqlite",
		Version:             "0.1.0",
		LLMProvider:         "groq",
		LLMModel:            "llama3-8b-8192",
		EmbeddingProvider:   "hash",
		EmbeddingModel:      "sha256-hash",
		EmbeddingDimensions: 8,
		CacheBackend:        "memory",
		CacheSize:           10,
		CacheTTL:            60,
		RetrievalLimit:      3,
		IngestConcurrency:   2,
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ctx := context.Background()
	s, err := NewServer(ctx, offlineProfile(), teststore.NewTestingStore(ctx, t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.components.Close() })
	return s
}

func TestServer_HealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"0.1.0"`)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"query":"hello"}`)))
	// Missing content type: echo cannot bind the body.
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"query":"hello"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "NeuSearch AI")

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `neusearch_ai_chat_requests_total{route="greeting",status="success"} 1`)
}

func TestServer_ProductQueryWithoutLLM(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.components.IngestService.AddProduct(ctx, nil)
	require.Error(t, err)

	req := httptest.NewRequest(http.MethodPost, "/admin/add-product",
		strings.NewReader(`{"name":"Coffee Maker","category":"Appliances","price":49.99}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/ingest-all", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"query":"coffee"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestNewComponents_InvalidConfig(t *testing.T) {
	p := offlineProfile()
	p.CacheBackend = "memcached"
	_, err := NewComponents(context.Background(), p, teststore.NewTestingStore(context.Background(), t), nil)
	require.Error(t, err)
}
