package frontend

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStaticDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>neusearch</html>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o644))
	return dir
}

func serve(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestServe_SPAFallback(t *testing.T) {
	e := echo.New()
	require.True(t, NewFrontendService(newStaticDir(t)).Serve(e))

	rec := serve(e, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "neusearch")

	rec = serve(e, http.MethodGet, "/some/client/route")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "neusearch")
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get(echo.HeaderCacheControl))

	rec = serve(e, http.MethodGet, "/assets/app.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderCacheControl), "immutable")
}

func TestServe_APIPathsNotShadowed(t *testing.T) {
	e := echo.New()
	e.GET("/health", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	require.True(t, NewFrontendService(newStaticDir(t)).Serve(e))

	rec := serve(e, http.MethodGet, "/health")
	assert.Equal(t, "ok", rec.Body.String())

	rec = serve(e, http.MethodGet, "/admin/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServe_SimilarClientRoutesFallBackToIndex(t *testing.T) {
	e := echo.New()
	e.POST("/chat", func(c echo.Context) error { return c.String(http.StatusOK, "chat") })
	e.GET("/admin/products", func(c echo.Context) error { return c.String(http.StatusOK, "products") })
	require.True(t, NewFrontendService(newStaticDir(t)).Serve(e))

	for _, path := range []string{"/chats", "/admin-panel", "/healthz", "/metrics-dashboard"} {
		rec := serve(e, http.MethodGet, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "neusearch", path)
	}

	rec := serve(e, http.MethodPost, "/chat")
	assert.Equal(t, "chat", rec.Body.String())

	rec = serve(e, http.MethodGet, "/admin/products")
	assert.Equal(t, "products", rec.Body.String())
}

func TestIsAPIPath(t *testing.T) {
	assert.True(t, isAPIPath("/chat"))
	assert.True(t, isAPIPath("/admin/products/42"))
	assert.True(t, isAPIPath("/metrics"))
	assert.False(t, isAPIPath("/chats"))
	assert.False(t, isAPIPath("/admin-panel"))
	assert.False(t, isAPIPath("/"))
}

func TestServe_Disabled(t *testing.T) {
	assert.False(t, NewFrontendService("").Serve(echo.New()))
	assert.False(t, NewFrontendService(t.TempDir()).Serve(echo.New()))
}
