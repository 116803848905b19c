package domain

import (
	"fmt"
	"time"
)

// HoursEntry is one dated block of hours on an hourly draft.
type HoursEntry struct {
	Date        string  `json:"date"` // YYYY-MM-DD
	Hours       float64 `json:"hours"`
	RateCents   int64   `json:"rate_cents"`
	AmountCents int64   `json:"amount_cents"`
	Description string  `json:"description,omitempty"`
}

// LineItem is one quantity-times-rate line on a non-hourly draft.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	RateCents   int64   `json:"rate_cents"`
	AmountCents int64   `json:"amount_cents"`
}

// Draft is the structured content of one candidate invoice.
type Draft struct {
	ClientID           string       `json:"client_id"`
	ClientName         string       `json:"client_name"`
	InvoiceNumber      string       `json:"invoice_number"`
	InvoiceType        TemplateType `json:"invoice_type"`
	Date               string       `json:"date"` // YYYY-MM-DD
	ServicePeriodStart string       `json:"service_period_start,omitempty"`
	ServicePeriodEnd   string       `json:"service_period_end,omitempty"`
	HoursEntries       []HoursEntry `json:"hours_entries,omitempty"`
	LineItems          []LineItem   `json:"line_items,omitempty"`
	TotalCents         int64        `json:"total_cents"`
	Notes              string       `json:"notes,omitempty"`
}

// Preview is one immutable ledger entry: a versioned draft plus its origin.
// "Editing" a preview always produces a new version.
type Preview struct {
	SessionID string    `json:"session_id"`
	Version   int       `json:"version"`
	Draft     Draft     `json:"draft"`
	MessageID string    `json:"message_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Digest returns a one-line summary of the preview for bounded conversation
// context, mirroring what the extraction prompt receives instead of raw JSON.
func (p Preview) Digest() string {
	return fmt.Sprintf("[preview v%d: %s - %s, %s]",
		p.Version, p.Draft.ClientName, FormatUSD(p.Draft.TotalCents), p.Draft.InvoiceNumber)
}
