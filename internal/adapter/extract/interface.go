// Package extract abstracts the natural-language extraction capability that
// turns a conversation turn into a structured invoice draft.
package extract

import (
	"context"

	"invoicechat/backend/internal/domain"
)

// ResultKind discriminates the extraction outcome.
type ResultKind string

const (
	KindClarification ResultKind = "clarification"
	KindDraft         ResultKind = "draft"
	KindFailure       ResultKind = "failure"
)

// HistoryEntry is one prior turn in the bounded conversation window. Turns
// that produced a preview carry a compact digest appended to Content, never
// the raw draft JSON.
type HistoryEntry struct {
	Role    domain.Role
	Content string
}

// InvoiceSummary describes an invoice already committed in this session.
type InvoiceSummary struct {
	InvoiceNumber string
	TotalCents    int64
	Status        domain.InvoiceStatus
}

// TurnContext is everything the capability sees for one turn.
type TurnContext struct {
	// ClientContext describes the resolved client's billing defaults
	// (rate, template, prefix), empty when no client is bound yet.
	ClientContext string
	History       []HistoryEntry
	// CurrentDraft is the active preview, present so revision turns can be
	// interpreted as modifications.
	CurrentDraft    *domain.Draft
	SessionInvoices []InvoiceSummary
	Text            string
}

// HoursData is an extracted hours entry; amounts are in dollars as the
// capability reports them.
type HoursData struct {
	Date        string  `json:"date,omitempty"`
	Hours       float64 `json:"hours"`
	Rate        float64 `json:"rate,omitempty"` // 0 = use client default
	Description string  `json:"description,omitempty"`
}

// ItemData is an extracted line item.
type ItemData struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
}

// DraftData is the structured extraction output before client resolution and
// pricing are applied.
type DraftData struct {
	ClientName         string      `json:"client_name,omitempty"`
	InvoiceType        string      `json:"invoice_type,omitempty"`
	Date               string      `json:"date,omitempty"`
	ServicePeriodStart string      `json:"service_period_start,omitempty"`
	ServicePeriodEnd   string      `json:"service_period_end,omitempty"`
	HoursEntries       []HoursData `json:"hours_entries,omitempty"`
	LineItems          []ItemData  `json:"line_items,omitempty"`
	Notes              string      `json:"notes,omitempty"`
}

// Result is the tagged extraction outcome: exactly one of Question, Draft or
// Reason is meaningful, selected by Kind.
type Result struct {
	Kind     ResultKind
	Question string
	Draft    *DraftData
	Reason   string
}

// Extractor defines the extraction capability contract. Implementations may
// block on external latency; the core never retries a call automatically.
type Extractor interface {
	Extract(ctx context.Context, turn TurnContext, attachments []string) (*Result, error)
}

// Ensure both implementations satisfy the interface.
var (
	_ Extractor = (*Client)(nil)
	_ Extractor = (*MockClient)(nil)
)
