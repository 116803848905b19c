package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"invoicechat/backend/internal/domain"
)

// InvoiceStatusRequest moves an invoice through its lifecycle.
type InvoiceStatusRequest struct {
	Status string `json:"status"`
}

// ListInvoices returns invoices, optionally filtered.
// GET /v1/invoices?client_id=&session_id=
func (h *Handler) ListInvoices(c echo.Context) error {
	ctx := c.Request().Context()

	invoices, err := h.service.ListInvoices(ctx, c.QueryParam("client_id"), c.QueryParam("session_id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"invoices": invoices,
	})
}

// GetInvoice returns one invoice.
// GET /v1/invoices/:invoice_id
func (h *Handler) GetInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	invoice, err := h.service.GetInvoice(ctx, c.Param("invoice_id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, invoice)
}

// UpdateInvoiceStatus updates an invoice's lifecycle status.
// POST /v1/invoices/:invoice_id/status
func (h *Handler) UpdateInvoiceStatus(c echo.Context) error {
	ctx := c.Request().Context()

	var req InvoiceStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Status == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "status is required"})
	}

	invoice, err := h.service.UpdateInvoiceStatus(ctx, c.Param("invoice_id"), domain.InvoiceStatus(req.Status))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, invoice)
}
