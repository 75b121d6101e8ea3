package v1

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/neusearch/neusearch/ai"
	"github.com/neusearch/neusearch/internal/util"
	"github.com/neusearch/neusearch/server/service/catalog"
	"github.com/neusearch/neusearch/server/service/chat"
	"github.com/neusearch/neusearch/server/service/ingest"
	"github.com/neusearch/neusearch/store"
)

// User-visible messages. Internal error text never leaves the server.
const (
	msgChatFailed    = "I'm sorry, I encountered an error. Please try again."
	msgInternalError = "internal server error"
)

// writeError maps a service error to a status code and the uniform error body.
func writeError(c echo.Context, err error) error {
	status, message := http.StatusInternalServerError, msgInternalError
	switch {
	case errors.Is(err, chat.ErrInvalidQuery),
		errors.Is(err, ingest.ErrInvalidProduct),
		errors.Is(err, catalog.ErrInvalidFilter):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, ingest.ErrNoProducts), errors.Is(err, store.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, ai.ErrGenerationUnavailable):
		status, message = http.StatusBadGateway, msgChatFailed
	case errors.Is(err, context.DeadlineExceeded):
		status, message = http.StatusGatewayTimeout, msgChatFailed
	}

	ctx := c.Request().Context()
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed",
			"request_id", util.RequestID(ctx),
			"path", c.Path(),
			"status", status,
			"error", err,
		)
	}
	return c.JSON(status, errorResponse{Error: message})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: message})
}
