package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// ListVersions returns the preview history with the active version marked.
// GET /v1/sessions/:session_id/versions
func (h *Handler) ListVersions(c echo.Context) error {
	ctx := c.Request().Context()

	previews, active, err := h.service.ListVersions(ctx, c.Param("session_id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"versions":       previews,
		"active_version": active,
	})
}

// SelectVersion restores an earlier preview version as a new active version.
// POST /v1/sessions/:session_id/versions/:version/select
func (h *Handler) SelectVersion(c echo.Context) error {
	ctx := c.Request().Context()

	version, err := strconv.Atoi(c.Param("version"))
	if err != nil || version < 1 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid version"})
	}

	result, err := h.service.SelectVersion(ctx, c.Param("session_id"), version)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
