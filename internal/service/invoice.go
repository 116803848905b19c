package service

import (
	"context"
	"fmt"
	"log"

	"invoicechat/backend/internal/domain"
)

// GetInvoice returns one invoice.
func (s *Service) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	invoice, err := s.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		return nil, domain.ErrInvoiceNotFound
	}
	return invoice, nil
}

// ListInvoices returns invoices, optionally filtered by client or session.
func (s *Service) ListInvoices(ctx context.Context, clientID, sessionID string) ([]domain.Invoice, error) {
	return s.store.ListInvoices(ctx, clientID, sessionID)
}

// UpdateInvoiceStatus moves an invoice through its lifecycle and announces
// the change in the originating session.
func (s *Service) UpdateInvoiceStatus(ctx context.Context, invoiceID string, status domain.InvoiceStatus) (*domain.Invoice, error) {
	switch status {
	case domain.InvoiceStatusDraft, domain.InvoiceStatusGenerated, domain.InvoiceStatusSent, domain.InvoiceStatusPaid:
	default:
		return nil, fmt.Errorf("unknown invoice status %q", status)
	}

	updated, err := s.store.UpdateInvoiceStatus(ctx, invoiceID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update invoice status: %w", err)
	}
	if !updated {
		return nil, domain.ErrInvoiceNotFound
	}

	invoice, err := s.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload invoice: %w", err)
	}

	if invoice.SessionID != "" {
		content := fmt.Sprintf("Invoice %s marked as %s.", invoice.InvoiceNumber, status)
		if _, err := s.AppendEvent(ctx, invoice.SessionID, content); err != nil {
			// The status change is committed; a missing history line is
			// not worth failing the request over.
			log.Printf("WARN: failed to record status event for %s: %v", invoiceID, err)
		}
	}
	return invoice, nil
}
