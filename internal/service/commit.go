package service

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"invoicechat/backend/internal/domain"
	"invoicechat/backend/internal/ledger"
)

// Confirm commits a preview version as an invoice. Version 0 commits the
// active version. Committing the same version again returns the invoice
// already created for it without producing a second document.
func (s *Service) Confirm(ctx context.Context, sessionID string, version int) (*domain.TurnResult, error) {
	release, err := s.locks.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}

	previews, err := s.store.GetPreviews(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load previews: %w", err)
	}
	led := ledger.Load(sessionID, previews, session.ActiveVersion)

	if version == 0 {
		version = led.ActiveVersion()
	}
	if version == 0 {
		return nil, domain.ErrNothingToConfirm
	}
	preview, err := led.Get(version)
	if err != nil {
		return nil, err
	}

	// Idempotent replay: a version commits at most once.
	existing, err := s.store.GetInvoiceBySourceVersion(ctx, sessionID, version)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing invoice: %w", err)
	}
	if existing != nil {
		return confirmResult(session, existing), nil
	}

	client, err := s.store.GetClient(ctx, preview.Draft.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	if client == nil {
		return nil, domain.ErrClientNotFound
	}

	// Numbers are assigned at preview time, so the draft's number can already
	// be committed: a restored version carries its source's number verbatim,
	// and sibling previews drafted before any commit share one. Confirming an
	// unchanged restored copy replays the original commit; anything else gets
	// a fresh number.
	byNumber, err := s.store.GetInvoiceByNumber(ctx, preview.Draft.InvoiceNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing invoice: %w", err)
	}
	if byNumber != nil {
		if byNumber.SessionID == sessionID {
			source, err := led.Get(byNumber.SourceVersion)
			if err == nil && reflect.DeepEqual(source.Draft, preview.Draft) {
				return confirmResult(session, byNumber), nil
			}
		}
		number, err := s.nextInvoiceNumber(ctx, client, time.Now().UTC())
		if err != nil {
			return nil, err
		}
		preview.Draft.InvoiceNumber = number
	}

	decision, reason, err := s.policyEngine.Evaluate(ctx, map[string]interface{}{
		"client_id":      client.ClientID,
		"invoice_number": preview.Draft.InvoiceNumber,
		"total_cents":    preview.Draft.TotalCents,
		"entry_count":    len(preview.Draft.HoursEntries) + len(preview.Draft.LineItems),
		"invoice_type":   string(preview.Draft.InvoiceType),
	})
	if err != nil {
		return nil, fmt.Errorf("policy evaluation failed: %w", err)
	}
	if decision != "allow" {
		if reason == "" {
			reason = fmt.Sprintf("commit blocked by billing policy (%s)", decision)
		}
		return nil, &domain.CommitError{Reason: reason}
	}

	doc, err := s.renderer.CreateDocument(ctx, &preview, client)
	if err != nil {
		return nil, &domain.CommitError{Reason: "document creation failed", Err: err}
	}

	now := time.Now().UTC()
	invoice := &domain.Invoice{
		InvoiceID:     doc.DocumentID,
		SessionID:     sessionID,
		SourceVersion: version,
		ClientID:      client.ClientID,
		InvoiceNumber: preview.Draft.InvoiceNumber,
		Date:          preview.Draft.Date,
		TotalCents:    preview.Draft.TotalCents,
		Status:        domain.InvoiceStatusGenerated,
		ArtifactURL:   doc.ArtifactURL,
		Notes:         preview.Draft.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.CreateInvoice(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	content := fmt.Sprintf("Invoice %s created for %s: %s.",
		invoice.InvoiceNumber, client.Name, domain.FormatUSD(invoice.TotalCents))
	if err := s.appendAssistant(ctx, sessionID, content, 0, now); err != nil {
		return nil, err
	}

	session.UpdatedAt = now
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	result := confirmResult(session, invoice)
	result.Message = content
	return result, nil
}

func confirmResult(session *domain.Session, invoice *domain.Invoice) *domain.TurnResult {
	return &domain.TurnResult{
		Status:        domain.TurnStatusInvoiceCreated,
		SessionID:     session.SessionID,
		Message:       fmt.Sprintf("Invoice %s created: %s.", invoice.InvoiceNumber, domain.FormatUSD(invoice.TotalCents)),
		Invoice:       invoice,
		ActiveVersion: invoice.SourceVersion,
	}
}
