// Package domain defines the core domain models for the invoice chat backend.
package domain

// Role represents the sender of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TemplateType represents the billing template kind of a client.
type TemplateType string

const (
	TemplateHourly  TemplateType = "hourly"
	TemplateTuition TemplateType = "tuition"
	TemplateProject TemplateType = "project"
)

// ValidTemplateType reports whether t is a known template kind.
func ValidTemplateType(t TemplateType) bool {
	switch t {
	case TemplateHourly, TemplateTuition, TemplateProject:
		return true
	}
	return false
}

// InvoiceStatus represents the lifecycle status of a committed invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusGenerated InvoiceStatus = "generated"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
)

// TurnStatus represents the outcome of one conversation turn.
type TurnStatus string

const (
	TurnStatusPreview        TurnStatus = "preview"
	TurnStatusClarification  TurnStatus = "clarification_needed"
	TurnStatusClientNotFound TurnStatus = "client_not_found"
	TurnStatusInvoiceCreated TurnStatus = "invoice_created"
	TurnStatusError          TurnStatus = "error"
)

// SessionState is the drafting state of a session, projected from
// {messages, ledger, active version, commit}.
type SessionState string

const (
	SessionStateEmpty         SessionState = "EMPTY"
	SessionStateDrafting      SessionState = "DRAFTING"
	SessionStatePreviewReady  SessionState = "PREVIEW_READY"
	SessionStateClientPending SessionState = "CLIENT_PENDING"
	SessionStateCommitted     SessionState = "COMMITTED"
)
