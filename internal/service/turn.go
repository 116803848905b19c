package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"invoicechat/backend/internal/adapter/extract"
	"invoicechat/backend/internal/domain"
	"invoicechat/backend/internal/ledger"
)

// defaultSessionTitle is the placeholder title for sessions opened by a chat
// turn. It is replaced once a preview binds the session to a client.
const defaultSessionTitle = "New Chat"

// HandleTurn processes one conversational turn. An empty SessionID starts a
// new session. Turns for a session are serialized; a second turn arriving
// while one is in flight is rejected with ErrSessionBusy.
func (s *Service) HandleTurn(ctx context.Context, req domain.TurnRequest) (*domain.TurnResult, error) {
	text := strings.TrimSpace(req.Content)
	if text == "" && len(req.ImageURLs) == 0 {
		return nil, domain.ErrInvalidTurn
	}
	if len(req.ImageURLs) > domain.MaxTurnAttachments {
		return nil, domain.ErrTooManyAttachments
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	release, err := s.locks.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	now := time.Now().UTC()
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		if req.SessionID != "" {
			return nil, domain.ErrSessionNotFound
		}
		session = &domain.Session{
			SessionID: sessionID,
			Title:     defaultSessionTitle,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.store.CreateSession(ctx, session); err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
	}

	userMsg := &domain.Message{
		MessageID: "msg_" + uuid.New().String()[:8],
		SessionID: sessionID,
		Role:      domain.RoleUser,
		Content:   req.Content,
		ImageURLs: req.ImageURLs,
		CreatedAt: now,
	}
	if err := s.store.CreateMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	return s.processTurn(ctx, session, text, req.ImageURLs)
}

// processTurn runs resolution, extraction, and preview production for text
// that has already been recorded as a user message. The retry path after
// client creation re-enters here without appending a second user message.
func (s *Service) processTurn(ctx context.Context, session *domain.Session, text string, attachments []string) (*domain.TurnResult, error) {
	now := time.Now().UTC()

	previews, err := s.store.GetPreviews(ctx, session.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load previews: %w", err)
	}
	led := ledger.Load(session.SessionID, previews, session.ActiveVersion)

	client, suggested, err := s.resolveFromText(ctx, session, text)
	if err != nil {
		return nil, err
	}
	if suggested != nil {
		return s.parkForClient(ctx, session, text, attachments, suggested)
	}

	turnCtx, err := s.buildTurnContext(ctx, session, client, led, text)
	if err != nil {
		return nil, err
	}

	result, err := s.extractor.Extract(ctx, turnCtx, attachments)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	switch result.Kind {
	case extract.KindClarification:
		if err := s.appendAssistant(ctx, session.SessionID, result.Question, 0, now); err != nil {
			return nil, err
		}
		return &domain.TurnResult{
			Status:        domain.TurnStatusClarification,
			SessionID:     session.SessionID,
			Message:       result.Question,
			ActiveVersion: led.ActiveVersion(),
		}, nil

	case extract.KindFailure:
		msg := "I ran into a problem processing that. Please try again."
		log.Printf("ERROR: extraction failure for session %s: %s", session.SessionID, result.Reason)
		if err := s.appendAssistant(ctx, session.SessionID, msg, 0, now); err != nil {
			return nil, err
		}
		return &domain.TurnResult{
			Status:        domain.TurnStatusError,
			SessionID:     session.SessionID,
			Message:       msg,
			ActiveVersion: led.ActiveVersion(),
		}, nil

	case extract.KindDraft:
		if client == nil {
			client, suggested, err = s.resolveByName(ctx, result.Draft.ClientName, text)
			if err != nil {
				return nil, err
			}
			if suggested != nil {
				return s.parkForClient(ctx, session, text, attachments, suggested)
			}
			if client == nil {
				question := "Which client is this invoice for?"
				if err := s.appendAssistant(ctx, session.SessionID, question, 0, now); err != nil {
					return nil, err
				}
				return &domain.TurnResult{
					Status:        domain.TurnStatusClarification,
					SessionID:     session.SessionID,
					Message:       question,
					ActiveVersion: led.ActiveVersion(),
				}, nil
			}
		}
		return s.producePreview(ctx, session, led, result.Draft, client, now)

	default:
		return nil, fmt.Errorf("unexpected extraction result kind %q", result.Kind)
	}
}

// producePreview prices the draft, appends an immutable preview version, and
// records the assistant message carrying it.
func (s *Service) producePreview(ctx context.Context, session *domain.Session, led *ledger.Ledger, data *extract.DraftData, client *domain.Client, now time.Time) (*domain.TurnResult, error) {
	draft, err := s.buildDraft(ctx, data, client, now)
	if err != nil {
		return nil, err
	}

	msgID := "msg_" + uuid.New().String()[:8]
	preview := led.Append(draft, msgID, now)
	if err := s.store.CreatePreview(ctx, &preview); err != nil {
		return nil, fmt.Errorf("failed to save preview: %w", err)
	}

	content := fmt.Sprintf("Invoice preview v%d for %s: total %s (%s). Say \"confirm\" to create it, or tell me what to change.",
		preview.Version, client.Name, domain.FormatUSD(draft.TotalCents), draft.InvoiceNumber)
	assistantMsg := &domain.Message{
		MessageID:      msgID,
		SessionID:      session.SessionID,
		Role:           domain.RoleAssistant,
		Content:        content,
		PreviewVersion: preview.Version,
		CreatedAt:      now,
	}
	if err := s.store.CreateMessage(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}

	session.ClientID = client.ClientID
	session.ActiveVersion = preview.Version
	session.PendingRetry = nil
	if session.Title == "" || session.Title == defaultSessionTitle {
		session.Title = fmt.Sprintf("Invoice: %s", client.Name)
	}
	session.UpdatedAt = now
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return &domain.TurnResult{
		Status:        domain.TurnStatusPreview,
		SessionID:     session.SessionID,
		Message:       content,
		Preview:       &preview,
		ActiveVersion: preview.Version,
	}, nil
}

// parkForClient records the unresolved turn so it can be replayed once the
// client exists. A later park replaces an earlier one.
func (s *Service) parkForClient(ctx context.Context, session *domain.Session, text string, attachments []string, suggested *domain.SuggestedClient) (*domain.TurnResult, error) {
	now := time.Now().UTC()
	session.PendingRetry = &domain.PendingRetry{
		Text:        text,
		Attachments: attachments,
	}
	session.UpdatedAt = now
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to park turn: %w", err)
	}

	content := fmt.Sprintf("I couldn't find a client named %q. Create them to continue with this invoice.", suggested.Name)
	if err := s.appendAssistant(ctx, session.SessionID, content, 0, now); err != nil {
		return nil, err
	}

	return &domain.TurnResult{
		Status:          domain.TurnStatusClientNotFound,
		SessionID:       session.SessionID,
		Message:         content,
		SuggestedClient: suggested,
		ActiveVersion:   session.ActiveVersion,
	}, nil
}

func (s *Service) appendAssistant(ctx context.Context, sessionID, content string, previewVersion int, now time.Time) error {
	msg := &domain.Message{
		MessageID:      "msg_" + uuid.New().String()[:8],
		SessionID:      sessionID,
		Role:           domain.RoleAssistant,
		Content:        content,
		PreviewVersion: previewVersion,
		CreatedAt:      now,
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return fmt.Errorf("failed to save assistant message: %w", err)
	}
	return nil
}
