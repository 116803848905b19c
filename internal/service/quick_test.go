package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicechat/backend/internal/adapter/extract"
	"invoicechat/backend/internal/adapter/render"
	"invoicechat/backend/internal/domain"
)

func TestParseHoursText(t *testing.T) {
	parsed, err := ParseHoursText("5, 5, 0, 0, 7, 5, 7", "2026-08-03", "2026-08-09")
	require.NoError(t, err)

	require.Len(t, parsed.Entries, 7)
	assert.Equal(t, "2026-08-03", parsed.Entries[0].Date)
	assert.Equal(t, 5.0, parsed.Entries[0].Hours)
	assert.Equal(t, "2026-08-09", parsed.Entries[6].Date)
	assert.Equal(t, 29.0, parsed.TotalHours)
}

func TestParseHoursTextLabeled(t *testing.T) {
	parsed, err := ParseHoursText("Mon: 4.5, Tue: 8, Wed: 0", "2026-08-03", "2026-08-05")
	require.NoError(t, err)

	require.Len(t, parsed.Entries, 3)
	assert.Equal(t, 4.5, parsed.Entries[0].Hours)
	assert.Equal(t, 12.5, parsed.TotalHours)
}

func TestParseHoursTextStopsAtPeriodEnd(t *testing.T) {
	parsed, err := ParseHoursText("5 5 5 5 5", "2026-08-03", "2026-08-04")
	require.NoError(t, err)

	require.Len(t, parsed.Entries, 2)
	assert.Equal(t, 10.0, parsed.TotalHours)
}

func TestParseHoursTextRejectsBadInput(t *testing.T) {
	_, err := ParseHoursText("no numbers here", "2026-08-03", "2026-08-09")
	assert.Error(t, err)

	_, err = ParseHoursText("5, 5", "not-a-date", "2026-08-09")
	assert.Error(t, err)

	_, err = ParseHoursText("5, 5", "2026-08-09", "2026-08-03")
	assert.Error(t, err)
}

func TestQuickInvoiceCreatesCommittedInvoice(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	client := createTestClient(t, s, "Acme Corp", 50)

	result, err := s.QuickInvoice(ctx, QuickInvoiceParams{
		ClientID: client.ClientID,
		HoursEntries: []QuickHoursEntry{
			{Date: "2026-08-03", Hours: 5},
			{Date: "2026-08-04", Hours: 0},
			{Date: "2026-08-05", Hours: 7},
		},
		StartDate: "2026-08-03",
		EndDate:   "2026-08-05",
	})
	require.NoError(t, err)

	require.NotNil(t, result.Invoice)
	assert.Equal(t, 12.0, result.TotalHours)
	// Hours are priced at the client default rate when no rate is given.
	assert.Equal(t, int64(60000), result.Invoice.TotalCents)
	assert.Equal(t, 600.0, result.TotalAmount)
	assert.Equal(t, domain.InvoiceStatusGenerated, result.Invoice.Status)

	// The backing session records the preview and the commit.
	detail, err := s.GetSessionDetail(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStateCommitted, detail.State)
	assert.Equal(t, "Invoice: Acme Corp", detail.Session.Title)
	require.Len(t, detail.Previews, 1)
	assert.Equal(t, result.Invoice.SourceVersion, detail.Previews[0].Version)
}

func TestQuickInvoiceExplicitRate(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	client := createTestClient(t, s, "Acme Corp", 50)

	result, err := s.QuickInvoice(ctx, QuickInvoiceParams{
		ClientID:     client.ClientID,
		HoursEntries: []QuickHoursEntry{{Date: "2026-08-03", Hours: 10}},
		Rate:         75,
		StartDate:    "2026-08-03",
		EndDate:      "2026-08-03",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(75000), result.Invoice.TotalCents)
}

func TestQuickInvoiceUnknownClient(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	_, err := s.QuickInvoice(ctx, QuickInvoiceParams{
		ClientID:     "missing",
		HoursEntries: []QuickHoursEntry{{Date: "2026-08-03", Hours: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
}

func TestQuickInvoiceRequiresHours(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	client := createTestClient(t, s, "Acme Corp", 50)

	_, err := s.QuickInvoice(ctx, QuickInvoiceParams{ClientID: client.ClientID})
	assert.Error(t, err)
}

func TestExtractHoursFromImage(t *testing.T) {
	ctx := context.Background()
	stub := &stubExtractor{result: &extract.Result{
		Kind: extract.KindDraft,
		Draft: &extract.DraftData{
			HoursEntries: []extract.HoursData{
				{Date: "2026-08-03", Hours: 6},
				{Date: "2026-08-04", Hours: 4},
			},
			Notes: "Extracted 2 days",
		},
	}}
	s := newTestServiceWith(t, stub, render.NewMockRenderer())

	parsed, err := s.ExtractHoursFromImage(ctx, "mock://images/timesheet.png", "2026-08-03", "2026-08-09")
	require.NoError(t, err)
	require.Len(t, parsed.Entries, 2)
	assert.Equal(t, 10.0, parsed.TotalHours)
	assert.Equal(t, "Extracted 2 days", parsed.Notes)
}

func TestExtractHoursFromImageFailure(t *testing.T) {
	ctx := context.Background()
	stub := &stubExtractor{result: &extract.Result{Kind: extract.KindFailure, Reason: "unreadable image"}}
	s := newTestServiceWith(t, stub, render.NewMockRenderer())

	_, err := s.ExtractHoursFromImage(ctx, "mock://images/timesheet.png", "2026-08-03", "2026-08-09")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreadable image")
}
