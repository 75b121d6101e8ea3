// Package frontend serves the built single-page app from a directory.
package frontend

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/neusearch/neusearch/internal/util"
)

// apiPrefixes are never answered by the static handler.
var apiPrefixes = []string{"/chat", "/admin", "/health", "/metrics"}

// isAPIPath matches a prefix exactly or as a parent segment, so client
// routes such as /chats or /admin-panel still reach the SPA.
func isAPIPath(path string) bool {
	for _, p := range apiPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

type FrontendService struct {
	StaticDir string
}

func NewFrontendService(staticDir string) *FrontendService {
	return &FrontendService{StaticDir: staticDir}
}

// Serve mounts the static handler when StaticDir holds an index.html.
// It reports whether anything was mounted.
func (s *FrontendService) Serve(e *echo.Echo) bool {
	if s.StaticDir == "" {
		return false
	}
	if _, err := os.Stat(filepath.Join(s.StaticDir, "index.html")); err != nil {
		slog.Warn("static dir has no index.html, frontend disabled", "dir", s.StaticDir, "error", err)
		return false
	}

	skipper := func(c echo.Context) bool {
		path := c.Request().URL.Path
		if isAPIPath(path) {
			return true
		}

		c.Response().Header().Set("X-Content-Type-Options", "nosniff")

		ext := filepath.Ext(path)
		if ext == "" || path == "/index.html" {
			c.Response().Header().Set(echo.HeaderCacheControl, "no-cache, no-store, must-revalidate")
			return false
		}
		if util.HasPrefixes(path, "/assets/") {
			c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=31536000, immutable")
		} else {
			c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
		}
		return false
	}

	gzipSkipper := func(c echo.Context) bool {
		return isAPIPath(c.Request().URL.Path)
	}
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:   5,
		Skipper: gzipSkipper,
	}))
	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Filesystem: http.Dir(s.StaticDir),
		HTML5:      true,
		Skipper:    skipper,
	}))
	return true
}
