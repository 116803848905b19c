package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"invoicechat/backend/internal/domain"
)

// Client calls the document rendering service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new render client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type renderRequest struct {
	InvoiceNumber string              `json:"invoice_number"`
	ClientName    string              `json:"client_name"`
	ClientEmail   string              `json:"client_email,omitempty"`
	InvoiceType   domain.TemplateType `json:"invoice_type"`
	Date          string              `json:"date"`
	HoursEntries  []domain.HoursEntry `json:"hours_entries,omitempty"`
	LineItems     []domain.LineItem   `json:"line_items,omitempty"`
	TotalCents    int64               `json:"total_cents"`
	Notes         string              `json:"notes,omitempty"`
}

// CreateDocument implements Renderer.
func (c *Client) CreateDocument(ctx context.Context, preview *domain.Preview, client *domain.Client) (*Document, error) {
	req := renderRequest{
		InvoiceNumber: preview.Draft.InvoiceNumber,
		ClientName:    client.Name,
		ClientEmail:   client.Email,
		InvoiceType:   preview.Draft.InvoiceType,
		Date:          preview.Draft.Date,
		HoursEntries:  preview.Draft.HoursEntries,
		LineItems:     preview.Draft.LineItems,
		TotalCents:    preview.Draft.TotalCents,
		Notes:         preview.Draft.Notes,
	}

	body, err := json.Marshal(&req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal render request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/documents", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("render request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read render response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("render service returned %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var doc Document
	if err := json.Unmarshal(respBody, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse render response: %w", err)
	}
	if doc.DocumentID == "" {
		return nil, fmt.Errorf("render response missing document_id")
	}
	return &doc, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
