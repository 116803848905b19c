package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// CreateSessionRequest starts an empty session.
type CreateSessionRequest struct {
	ClientID string `json:"client_id,omitempty"`
	Title    string `json:"title,omitempty"`
}

// AppendEventRequest appends a free-text history line.
type AppendEventRequest struct {
	Content string `json:"content"`
}

// CreateSession starts an empty session.
// POST /v1/sessions
func (h *Handler) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	session, err := h.service.StartSession(ctx, req.ClientID, req.Title)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, session)
}

// ListSessions lists session summaries.
// GET /v1/sessions?client_id=&include_archived=&limit=
func (h *Handler) ListSessions(c echo.Context) error {
	ctx := c.Request().Context()

	includeArchived, _ := strconv.ParseBool(c.QueryParam("include_archived"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	sessions, err := h.service.ListSessions(ctx, c.QueryParam("client_id"), includeArchived, limit)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"sessions": sessions,
	})
}

// GetSession returns a session with messages, previews, and state.
// GET /v1/sessions/:session_id
func (h *Handler) GetSession(c echo.Context) error {
	ctx := c.Request().Context()

	detail, err := h.service.GetSessionDetail(ctx, c.Param("session_id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// DeleteSession removes a session and its history.
// DELETE /v1/sessions/:session_id
func (h *Handler) DeleteSession(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.service.DeleteSession(ctx, c.Param("session_id")); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// ArchiveSession hides a session from the default list.
// POST /v1/sessions/:session_id/archive
func (h *Handler) ArchiveSession(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.service.SetArchived(ctx, c.Param("session_id"), true); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// RestoreSession brings an archived session back.
// POST /v1/sessions/:session_id/restore
func (h *Handler) RestoreSession(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.service.SetArchived(ctx, c.Param("session_id"), false); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// AppendEvent records a system message in the session history.
// POST /v1/sessions/:session_id/event
func (h *Handler) AppendEvent(c echo.Context) error {
	ctx := c.Request().Context()

	var req AppendEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "content is required"})
	}

	msg, err := h.service.AppendEvent(ctx, c.Param("session_id"), req.Content)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, msg)
}

// CancelPending drops a parked turn without creating the client.
// POST /v1/sessions/:session_id/cancel-pending
func (h *Handler) CancelPending(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.service.CancelPendingRetry(ctx, c.Param("session_id")); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}
