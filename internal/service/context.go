package service

import (
	"context"
	"fmt"
	"strings"

	"invoicechat/backend/internal/adapter/extract"
	"invoicechat/backend/internal/domain"
	"invoicechat/backend/internal/ledger"
)

// buildTurnContext assembles what the extraction capability sees for one
// turn: the client's billing defaults, a bounded history window with preview
// digests in place of raw draft JSON, the active draft, and invoices already
// created in the session.
func (s *Service) buildTurnContext(ctx context.Context, session *domain.Session, client *domain.Client, led *ledger.Ledger, text string) (extract.TurnContext, error) {
	turn := extract.TurnContext{Text: text}

	if client != nil {
		turn.ClientContext = clientContext(client)
	}

	if active := led.Active(); active != nil {
		draft := active.Draft
		turn.CurrentDraft = &draft
	}

	messages, err := s.store.GetMessages(ctx, session.SessionID, 0)
	if err != nil {
		return turn, fmt.Errorf("failed to load history: %w", err)
	}
	if window := s.config.HistoryWindow; window > 0 && len(messages) > window {
		messages = messages[len(messages)-window:]
	}
	for _, msg := range messages {
		content := msg.Content
		if msg.Role == domain.RoleAssistant && msg.PreviewVersion > 0 {
			if preview, err := led.Get(msg.PreviewVersion); err == nil {
				content = strings.TrimSpace(content + "\n" + preview.Digest())
			}
		}
		turn.History = append(turn.History, extract.HistoryEntry{
			Role:    msg.Role,
			Content: content,
		})
	}

	invoices, err := s.store.ListInvoices(ctx, "", session.SessionID)
	if err != nil {
		return turn, fmt.Errorf("failed to load session invoices: %w", err)
	}
	for _, inv := range invoices {
		turn.SessionInvoices = append(turn.SessionInvoices, extract.InvoiceSummary{
			InvoiceNumber: inv.InvoiceNumber,
			TotalCents:    inv.TotalCents,
			Status:        inv.Status,
		})
	}

	return turn, nil
}

func clientContext(c *domain.Client) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", c.Name)
	fmt.Fprintf(&b, "Billing template: %s\n", c.TemplateType)
	if c.DefaultRateCents > 0 {
		fmt.Fprintf(&b, "Default rate: %s/hour\n", domain.FormatUSD(c.DefaultRateCents))
	}
	if c.CompanyContext != "" {
		fmt.Fprintf(&b, "Notes: %s\n", c.CompanyContext)
	}
	return b.String()
}
