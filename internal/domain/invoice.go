package domain

import "time"

// Invoice is a committed document: the result of confirming one preview
// version. Its SourceVersion linkage is permanent even as the session's
// ledger grows past it.
type Invoice struct {
	InvoiceID     string        `json:"invoice_id"`
	SessionID     string        `json:"session_id,omitempty"`
	SourceVersion int           `json:"source_version,omitempty"`
	ClientID      string        `json:"client_id"`
	InvoiceNumber string        `json:"invoice_number"`
	Date          string        `json:"date"` // YYYY-MM-DD
	TotalCents    int64         `json:"total_cents"`
	Status        InvoiceStatus `json:"status"`
	ArtifactURL   string        `json:"artifact_url,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
