package domain

import "time"

// Client represents a billable client in the directory.
type Client struct {
	ClientID         string       `json:"client_id"`
	Name             string       `json:"name"`
	Email            string       `json:"email,omitempty"`
	DefaultRateCents int64        `json:"default_rate_cents"`
	TemplateType     TemplateType `json:"template_type"`
	InvoicePrefix    string       `json:"invoice_prefix"`
	CompanyContext   string       `json:"company_context,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// SuggestedClient is the creation payload proposed when a stated client
// reference has no directory match.
type SuggestedClient struct {
	Name         string       `json:"name"`
	TemplateType TemplateType `json:"template_type"`
	RateCents    int64        `json:"rate_cents,omitempty"`
}
