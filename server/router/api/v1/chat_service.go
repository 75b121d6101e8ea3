package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Chat answers POST /chat {query}.
func (s *APIV1Service) Chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	resp, err := s.ChatService.Chat(c.Request().Context(), req.Query)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, chatResponse{
		Response: resp.Text,
		Products: convertProductsFromStore(resp.Products),
	})
}
