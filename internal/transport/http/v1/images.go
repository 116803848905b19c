package v1

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"invoicechat/backend/internal/adapter/imagestore"
)

// UploadImage stores one attachment image and returns its URL.
// POST /v1/images (multipart, field "file")
func (h *Handler) UploadImage(c echo.Context) error {
	ctx := c.Request().Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file field is required"})
	}
	if fileHeader.Size > imagestore.MaxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "image exceeds 10MB limit"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to open upload"})
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, imagestore.MaxUploadBytes+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to read upload"})
	}
	if len(content) > imagestore.MaxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "image exceeds 10MB limit"})
	}

	contentType := fileHeader.Header.Get("Content-Type")
	url, err := h.service.UploadImage(ctx, content, contentType, fileHeader.Filename)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
