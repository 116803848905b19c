// Package v1 provides the HTTP handlers for the invoice chat API.
package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"invoicechat/backend/internal/domain"
	"invoicechat/backend/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Chat API
	e.POST("/v1/chat", h.Chat)
	e.POST("/v1/chat/confirm", h.ConfirmInvoice)
	e.POST("/v1/chat/create-client", h.CreateClientAndRetry)

	// Session API
	e.POST("/v1/sessions", h.CreateSession)
	e.GET("/v1/sessions", h.ListSessions)
	e.GET("/v1/sessions/:session_id", h.GetSession)
	e.DELETE("/v1/sessions/:session_id", h.DeleteSession)
	e.POST("/v1/sessions/:session_id/archive", h.ArchiveSession)
	e.POST("/v1/sessions/:session_id/restore", h.RestoreSession)
	e.POST("/v1/sessions/:session_id/event", h.AppendEvent)
	e.POST("/v1/sessions/:session_id/cancel-pending", h.CancelPending)

	// Preview version API
	e.GET("/v1/sessions/:session_id/versions", h.ListVersions)
	e.POST("/v1/sessions/:session_id/versions/:version/select", h.SelectVersion)

	// Attachments
	e.POST("/v1/images", h.UploadImage)

	// Quick invoice API
	e.POST("/v1/quick-invoice", h.QuickInvoice)
	e.POST("/v1/quick-invoice/parse-hours", h.ParseHours)
	e.POST("/v1/quick-invoice/extract-image", h.ExtractHours)

	// Client API
	e.POST("/v1/clients", h.CreateClient)
	e.GET("/v1/clients", h.ListClients)
	e.GET("/v1/clients/:client_id", h.GetClient)

	// Invoice API
	e.GET("/v1/invoices", h.ListInvoices)
	e.GET("/v1/invoices/:invoice_id", h.GetInvoice)
	e.POST("/v1/invoices/:invoice_id/status", h.UpdateInvoiceStatus)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// errorJSON maps service errors to HTTP responses.
func errorJSON(c echo.Context, err error) error {
	var commitErr *domain.CommitError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrClientNotFound),
		errors.Is(err, domain.ErrInvoiceNotFound),
		errors.Is(err, domain.ErrUnknownVersion):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrSessionBusy):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidTurn),
		errors.Is(err, domain.ErrTooManyAttachments),
		errors.Is(err, domain.ErrNothingToConfirm),
		errors.Is(err, domain.ErrNoPendingRetry):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.As(err, &commitErr):
		status := http.StatusUnprocessableEntity
		if commitErr.Err != nil {
			status = http.StatusBadGateway
		}
		return c.JSON(status, map[string]string{"error": commitErr.Reason})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
