package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"invoicechat/backend/internal/domain"
	"invoicechat/backend/internal/ledger"
)

// StartSession creates an empty session, optionally pre-bound to a client.
func (s *Service) StartSession(ctx context.Context, clientID, title string) (*domain.Session, error) {
	if clientID != "" {
		client, err := s.store.GetClient(ctx, clientID)
		if err != nil {
			return nil, fmt.Errorf("failed to load client: %w", err)
		}
		if client == nil {
			return nil, domain.ErrClientNotFound
		}
		if title == "" {
			title = fmt.Sprintf("Chat with %s", client.Name)
		}
	}
	if title == "" {
		title = defaultSessionTitle
	}

	now := time.Now().UTC()
	session := &domain.Session{
		SessionID: uuid.New().String(),
		ClientID:  clientID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// ListSessions returns session summaries, newest first. Archived sessions
// are excluded unless asked for.
func (s *Service) ListSessions(ctx context.Context, clientID string, includeArchived bool, limit int) ([]domain.SessionInfo, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.store.ListSessions(ctx, clientID, includeArchived, limit)
}

// GetSessionDetail returns a session with its messages, preview history, and
// projected drafting state.
func (s *Service) GetSessionDetail(ctx context.Context, sessionID string) (*domain.SessionDetail, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}

	messages, err := s.store.GetMessages(ctx, sessionID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	previews, err := s.store.GetPreviews(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load previews: %w", err)
	}
	invoices, err := s.store.ListInvoices(ctx, "", sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}

	detail := &domain.SessionDetail{
		Session:  *session,
		State:    domain.ProjectState(session, len(previews), len(invoices) > 0),
		Messages: messages,
		Previews: previews,
	}
	if session.ClientID != "" {
		client, err := s.store.GetClient(ctx, session.ClientID)
		if err != nil {
			return nil, fmt.Errorf("failed to load client: %w", err)
		}
		detail.ClientRef = client
	}
	return detail, nil
}

// DeleteSession removes a session and everything hanging off it.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return domain.ErrSessionNotFound
	}
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.locks.forget(sessionID)
	return nil
}

// SetArchived archives or restores a session. Archived sessions keep their
// full history and stay confirmable.
func (s *Service) SetArchived(ctx context.Context, sessionID string, archived bool) error {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return domain.ErrSessionNotFound
	}
	if session.Archived == archived {
		return nil
	}
	session.Archived = archived
	session.UpdatedAt = time.Now().UTC()
	return s.store.UpdateSession(ctx, session)
}

// AppendEvent records a system-originated assistant message, e.g. a status
// change announced from outside the conversation.
func (s *Service) AppendEvent(ctx context.Context, sessionID, content string) (*domain.Message, error) {
	if content == "" {
		return nil, domain.ErrInvalidTurn
	}
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}

	now := time.Now().UTC()
	msg := &domain.Message{
		MessageID: "msg_" + uuid.New().String()[:8],
		SessionID: sessionID,
		Role:      domain.RoleAssistant,
		Content:   content,
		CreatedAt: now,
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save event message: %w", err)
	}
	session.UpdatedAt = now
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	return msg, nil
}

// ListVersions returns the session's full preview history with the active
// version marked.
func (s *Service) ListVersions(ctx context.Context, sessionID string) ([]domain.Preview, int, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, 0, domain.ErrSessionNotFound
	}
	previews, err := s.store.GetPreviews(ctx, sessionID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load previews: %w", err)
	}
	return previews, session.ActiveVersion, nil
}

// SelectVersion restores an earlier preview version. The restored content is
// appended as a new version and becomes active; nothing is rewritten.
func (s *Service) SelectVersion(ctx context.Context, sessionID string, version int) (*domain.TurnResult, error) {
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

	now := time.Now().UTC()
	msgID := "msg_" + uuid.New().String()[:8]
	restored, err := led.Restore(version, msgID, now)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreatePreview(ctx, &restored); err != nil {
		return nil, fmt.Errorf("failed to save restored preview: %w", err)
	}

	content := fmt.Sprintf("Restored preview v%d as v%d: total %s (%s).",
		version, restored.Version, domain.FormatUSD(restored.Draft.TotalCents), restored.Draft.InvoiceNumber)
	msg := &domain.Message{
		MessageID:      msgID,
		SessionID:      sessionID,
		Role:           domain.RoleAssistant,
		Content:        content,
		PreviewVersion: restored.Version,
		CreatedAt:      now,
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}

	session.ActiveVersion = restored.Version
	session.UpdatedAt = now
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return &domain.TurnResult{
		Status:        domain.TurnStatusPreview,
		SessionID:     sessionID,
		Message:       content,
		Preview:       &restored,
		ActiveVersion: restored.Version,
	}, nil
}

// CancelPendingRetry drops a parked turn without creating the client.
func (s *Service) CancelPendingRetry(ctx context.Context, sessionID string) error {
	release, err := s.locks.acquire(sessionID)
	if err != nil {
		return err
	}
	defer release()

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return domain.ErrSessionNotFound
	}
	if session.PendingRetry == nil {
		return domain.ErrNoPendingRetry
	}
	session.PendingRetry = nil
	session.UpdatedAt = time.Now().UTC()
	return s.store.UpdateSession(ctx, session)
}
