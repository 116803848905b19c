package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"invoicechat/backend/internal/domain"
	"invoicechat/backend/internal/service"
)

// ClientRequest carries the fields for creating a client directly.
type ClientRequest struct {
	Name           string  `json:"name"`
	Email          string  `json:"email,omitempty"`
	DefaultRate    float64 `json:"default_rate,omitempty"`
	TemplateType   string  `json:"template_type,omitempty"`
	InvoicePrefix  string  `json:"invoice_prefix,omitempty"`
	CompanyContext string  `json:"company_context,omitempty"`
}

// CreateClient creates a billing client outside the chat flow.
// POST /v1/clients
func (h *Handler) CreateClient(c echo.Context) error {
	ctx := c.Request().Context()

	var req ClientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	client, err := h.service.CreateClient(ctx, service.CreateClientParams{
		Name:           req.Name,
		Email:          req.Email,
		DefaultRate:    req.DefaultRate,
		TemplateType:   domain.TemplateType(req.TemplateType),
		InvoicePrefix:  req.InvoicePrefix,
		CompanyContext: req.CompanyContext,
	})
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, client)
}

// ListClients returns all clients.
// GET /v1/clients
func (h *Handler) ListClients(c echo.Context) error {
	ctx := c.Request().Context()

	clients, err := h.service.ListClients(ctx)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"clients": clients,
	})
}

// GetClient returns one client.
// GET /v1/clients/:client_id
func (h *Handler) GetClient(c echo.Context) error {
	ctx := c.Request().Context()

	client, err := h.service.GetClient(ctx, c.Param("client_id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, client)
}
