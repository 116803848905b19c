package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"invoicechat/backend/internal/service"
)

// ParseHoursRequest parses pasted hours text across a billing period.
type ParseHoursRequest struct {
	Text      string `json:"text"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// ExtractHoursRequest extracts hours from a timesheet image.
type ExtractHoursRequest struct {
	ImageURL  string `json:"image_url"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// QuickInvoiceRequest creates an invoice directly from extracted hours.
type QuickInvoiceRequest struct {
	ClientID     string                    `json:"client_id"`
	HoursEntries []service.QuickHoursEntry `json:"hours_entries"`
	Rate         float64                   `json:"rate,omitempty"`
	StartDate    string                    `json:"start_date"`
	EndDate      string                    `json:"end_date"`
	Notes        string                    `json:"notes,omitempty"`
}

// ParseHours parses hours pasted as text ("5, 5, 0, 0, 7").
// POST /v1/quick-invoice/parse-hours
func (h *Handler) ParseHours(c echo.Context) error {
	var req ParseHoursRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Text == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "text is required"})
	}

	parsed, err := service.ParseHoursText(req.Text, req.StartDate, req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, parsed)
}

// ExtractHours extracts dated hours from a timesheet image.
// POST /v1/quick-invoice/extract-image
func (h *Handler) ExtractHours(c echo.Context) error {
	ctx := c.Request().Context()

	var req ExtractHoursRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	parsed, err := h.service.ExtractHoursFromImage(ctx, req.ImageURL, req.StartDate, req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, parsed)
}

// QuickInvoice creates and commits an invoice in one step.
// POST /v1/quick-invoice
func (h *Handler) QuickInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	var req QuickInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.ClientID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "client_id is required"})
	}

	result, err := h.service.QuickInvoice(ctx, service.QuickInvoiceParams{
		ClientID:     req.ClientID,
		HoursEntries: req.HoursEntries,
		Rate:         req.Rate,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Notes:        req.Notes,
	})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}
