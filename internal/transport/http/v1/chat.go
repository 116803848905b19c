package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"invoicechat/backend/internal/domain"
	"invoicechat/backend/internal/service"
)

// ConfirmRequest commits a preview version as an invoice.
type ConfirmRequest struct {
	SessionID string `json:"session_id"`
	Version   int    `json:"version,omitempty"` // 0 commits the active version
}

// CreateClientRequest creates a client and replays the parked turn.
type CreateClientRequest struct {
	SessionID      string  `json:"session_id"`
	Name           string  `json:"name"`
	Email          string  `json:"email,omitempty"`
	DefaultRate    float64 `json:"default_rate,omitempty"`
	TemplateType   string  `json:"template_type,omitempty"`
	InvoicePrefix  string  `json:"invoice_prefix,omitempty"`
	CompanyContext string  `json:"company_context,omitempty"`
}

// Chat submits one conversational turn.
// POST /v1/chat
func (h *Handler) Chat(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.TurnRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	result, err := h.service.HandleTurn(ctx, req)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// ConfirmInvoice commits the active (or named) preview version.
// POST /v1/chat/confirm
func (h *Handler) ConfirmInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	var req ConfirmRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.SessionID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "session_id is required"})
	}

	result, err := h.service.Confirm(ctx, req.SessionID, req.Version)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// CreateClientAndRetry creates the missing client and replays the parked turn.
// POST /v1/chat/create-client
func (h *Handler) CreateClientAndRetry(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateClientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.SessionID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "session_id is required"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	result, err := h.service.CreateClientAndRetry(ctx, req.SessionID, service.CreateClientParams{
		Name:           req.Name,
		Email:          req.Email,
		DefaultRate:    req.DefaultRate,
		TemplateType:   domain.TemplateType(req.TemplateType),
		InvoicePrefix:  req.InvoicePrefix,
		CompanyContext: req.CompanyContext,
	})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
