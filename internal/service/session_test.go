package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicechat/backend/internal/domain"
)

func TestArchiveHidesSessionFromDefaultList(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	first := startPreviewSession(t, s)

	require.NoError(t, s.SetArchived(ctx, first.SessionID, true))

	visible, err := s.ListSessions(ctx, "", false, 0)
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := s.ListSessions(ctx, "", true, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Archived)

	// Archived sessions keep their history and stay confirmable.
	result, err := s.Confirm(ctx, first.SessionID, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.TurnStatusInvoiceCreated, result.Status)

	require.NoError(t, s.SetArchived(ctx, first.SessionID, false))
	visible, err = s.ListSessions(ctx, "", false, 0)
	require.NoError(t, err)
	assert.Len(t, visible, 1)
}

func TestAppendEventRecordsSystemMessage(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	first := startPreviewSession(t, s)

	msg, err := s.AppendEvent(ctx, first.SessionID, "Invoice ACM-2026-001 marked as sent.")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAssistant, msg.Role)
	assert.Zero(t, msg.PreviewVersion)

	detail, err := s.GetSessionDetail(ctx, first.SessionID)
	require.NoError(t, err)
	last := detail.Messages[len(detail.Messages)-1]
	assert.Equal(t, msg.MessageID, last.MessageID)

	// An event never touches the ledger.
	assert.Len(t, detail.Previews, 1)
}

func TestCancelPendingRetry(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	first, err := s.HandleTurn(ctx, domain.TurnRequest{
		Content: "Bill Acme Corp for 10 hours at $50",
	})
	require.NoError(t, err)
	require.Equal(t, domain.TurnStatusClientNotFound, first.Status)

	require.NoError(t, s.CancelPendingRetry(ctx, first.SessionID))

	detail, err := s.GetSessionDetail(ctx, first.SessionID)
	require.NoError(t, err)
	assert.Nil(t, detail.Session.PendingRetry)
	assert.Equal(t, domain.SessionStateEmpty, detail.State)

	err = s.CancelPendingRetry(ctx, first.SessionID)
	assert.ErrorIs(t, err, domain.ErrNoPendingRetry)
}

func TestPendingRetryLastParkWins(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	first, err := s.HandleTurn(ctx, domain.TurnRequest{
		Content: "Bill Acme Corp for 10 hours at $50",
	})
	require.NoError(t, err)
	require.Equal(t, domain.TurnStatusClientNotFound, first.Status)

	second, err := s.HandleTurn(ctx, domain.TurnRequest{
		SessionID: first.SessionID,
		Content:   "Bill Globex for 2 hours at $80",
	})
	require.NoError(t, err)
	require.Equal(t, domain.TurnStatusClientNotFound, second.Status)

	detail, err := s.GetSessionDetail(ctx, first.SessionID)
	require.NoError(t, err)
	require.NotNil(t, detail.Session.PendingRetry)
	assert.Equal(t, "Bill Globex for 2 hours at $80", detail.Session.PendingRetry.Text)

	// Creating the later client replays the later turn.
	result, err := s.CreateClientAndRetry(ctx, first.SessionID, CreateClientParams{
		Name:        "Globex",
		DefaultRate: 80,
	})
	require.NoError(t, err)
	require.Equal(t, domain.TurnStatusPreview, result.Status)
	assert.Equal(t, int64(16000), result.Preview.Draft.TotalCents)
}

func TestDeleteSessionRemovesHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	first := startPreviewSession(t, s)

	require.NoError(t, s.DeleteSession(ctx, first.SessionID))

	_, err := s.GetSessionDetail(ctx, first.SessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	err = s.DeleteSession(ctx, first.SessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestCreateClientAndRetryWithoutPark(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	session, err := s.StartSession(ctx, "", "fresh")
	require.NoError(t, err)

	_, err = s.CreateClientAndRetry(ctx, session.SessionID, CreateClientParams{Name: "Acme Corp"})
	assert.ErrorIs(t, err, domain.ErrNoPendingRetry)
}

func TestStartSessionDefaultTitles(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	client := createTestClient(t, s, "Acme Corp", 50)

	bound, err := s.StartSession(ctx, client.ClientID, "")
	require.NoError(t, err)
	assert.Equal(t, "Chat with Acme Corp", bound.Title)

	unbound, err := s.StartSession(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, "New Chat", unbound.Title)
}

func TestStartSessionWithUnknownClient(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	_, err := s.StartSession(ctx, "missing", "title")
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
}
