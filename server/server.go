// Package server hosts the HTTP API, metrics and the optional frontend.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/neusearch/neusearch/ai/metrics"
	"github.com/neusearch/neusearch/internal/profile"
	"github.com/neusearch/neusearch/internal/util"
	apiv1 "github.com/neusearch/neusearch/server/router/api/v1"
	"github.com/neusearch/neusearch/server/router/frontend"
	"github.com/neusearch/neusearch/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	components *Components
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	m := metrics.NewPrometheusExporter(metrics.DefaultConfig())
	components, err := NewComponents(ctx, profile, store, m)
	if err != nil {
		return nil, err
	}

	s := &Server{
		Profile:    profile,
		Store:      store,
		components: components,
	}

	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(middleware.Recover())
	echoServer.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: util.GenShortID,
		RequestIDHandler: func(c echo.Context, id string) {
			c.SetRequest(c.Request().WithContext(util.WithRequestID(c.Request().Context(), id)))
		},
	}))
	echoServer.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health" || c.Request().URL.Path == "/metrics"
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slog.InfoContext(c.Request().Context(), "http request",
				"request_id", v.RequestID,
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
			)
			return nil
		},
	}))
	s.echoServer = echoServer

	echoServer.GET("/metrics", echo.WrapHandler(m.Handler()))

	apiV1Service := apiv1.NewAPIV1Service(profile, components.ChatService, components.IngestService, components.CatalogService)
	apiV1Service.RegisterRoutes(echoServer)

	if frontend.NewFrontendService(profile.StaticDir).Serve(echoServer) {
		slog.Info("serving frontend", "dir", profile.StaticDir)
	}

	return s, nil
}

// Handler exposes the router for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

func (s *Server) Start(_ context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	go func() {
		if err := s.echoServer.Start(address); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start echo server", "error", err)
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	slog.Info("server shutting down")

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	if err := s.components.Close(); err != nil {
		slog.Error("failed to close embedding cache", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close database", "error", err)
	}

	slog.Info("server stopped properly")
}
