// Package v1 exposes the chat and admin JSON endpoints.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/neusearch/neusearch/internal/profile"
	"github.com/neusearch/neusearch/server/service/catalog"
	"github.com/neusearch/neusearch/server/service/chat"
	"github.com/neusearch/neusearch/server/service/ingest"
)

// APIV1Service holds the domain services behind the HTTP handlers.
type APIV1Service struct {
	Profile *profile.Profile

	ChatService    *chat.Service
	IngestService  *ingest.Service
	CatalogService *catalog.Service
}

func NewAPIV1Service(profile *profile.Profile, chatService *chat.Service, ingestService *ingest.Service, catalogService *catalog.Service) *APIV1Service {
	return &APIV1Service{
		Profile:        profile,
		ChatService:    chatService,
		IngestService:  ingestService,
		CatalogService: catalogService,
	}
}

// RegisterRoutes mounts the API on echoServer. Browsers on any origin may call it.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	corsHandler := middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(_ string) (bool, error) {
			return true, nil
		},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
	})

	echoServer.GET("/health", s.Health)

	apiGroup := echoServer.Group("", corsHandler)
	apiGroup.POST("/chat", s.Chat)

	adminGroup := echoServer.Group("/admin", corsHandler)
	adminGroup.POST("/add-product", s.AddProduct)
	adminGroup.POST("/ingest-all", s.IngestAll)
	adminGroup.POST("/ingest-missing", s.IngestMissing)
	adminGroup.GET("/products", s.ListProducts)
	adminGroup.DELETE("/products", s.ClearProducts)
}

// Health reports liveness and the running version.
func (s *APIV1Service) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": s.Profile.Version,
	})
}
