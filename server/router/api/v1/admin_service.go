package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/neusearch/neusearch/server/service/ingest"
)

// AddProduct handles POST /admin/add-product.
func (s *APIV1Service) AddProduct(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	product, err := s.IngestService.AddProduct(c.Request().Context(), &ingest.CreateProduct{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, convertProductFromStore(product))
}

// IngestAll handles POST /admin/ingest-all.
func (s *APIV1Service) IngestAll(c echo.Context) error {
	report, err := s.IngestService.IngestAll(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, convertReport("Successfully ingested all products", report))
}

// IngestMissing handles POST /admin/ingest-missing[?limit=N].
func (s *APIV1Service) IngestMissing(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return badRequest(c, "limit must be a non-negative integer")
		}
		limit = n
	}

	report, err := s.IngestService.IngestMissing(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, convertReport("Successfully ingested missing products", report))
}

// ListProducts handles GET /admin/products[?filter=CEL].
func (s *APIV1Service) ListProducts(c echo.Context) error {
	products, err := s.CatalogService.List(c.Request().Context(), c.QueryParam("filter"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, productListResponse{Products: convertProductsFromStore(products)})
}

// ClearProducts handles DELETE /admin/products.
func (s *APIV1Service) ClearProducts(c echo.Context) error {
	deleted, err := s.IngestService.ClearAll(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: fmt.Sprintf("Deleted %d products", deleted)})
}

func convertReport(message string, report *ingest.Report) ingestResponse {
	return ingestResponse{
		Message:           message,
		RunID:             report.RunID,
		ProcessedProducts: report.Processed,
		TotalEmbeddings:   report.TotalEmbeddings,
		FailedProducts:    report.Failed,
	}
}
