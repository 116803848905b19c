package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"invoicechat/backend/internal/domain"
)

// CreateClientParams are the fields accepted when creating a client.
type CreateClientParams struct {
	Name           string
	Email          string
	DefaultRate    float64 // dollars per hour
	TemplateType   domain.TemplateType
	InvoicePrefix  string
	CompanyContext string
}

// CreateClient creates a billing client.
func (s *Service) CreateClient(ctx context.Context, params CreateClientParams) (*domain.Client, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, fmt.Errorf("client name is required")
	}
	templateType := params.TemplateType
	if templateType == "" {
		templateType = domain.TemplateHourly
	}
	if !domain.ValidTemplateType(templateType) {
		return nil, fmt.Errorf("unknown template type %q", templateType)
	}

	existing, err := s.store.GetClientByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check client name: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("client %q already exists", name)
	}

	now := time.Now().UTC()
	client := &domain.Client{
		ClientID:         uuid.New().String(),
		Name:             name,
		Email:            params.Email,
		DefaultRateCents: domain.DollarsToCents(params.DefaultRate),
		TemplateType:     templateType,
		InvoicePrefix:    strings.ToUpper(strings.TrimSpace(params.InvoicePrefix)),
		CompanyContext:   params.CompanyContext,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.CreateClient(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to save client: %w", err)
	}
	return client, nil
}

// GetClient returns one client.
func (s *Service) GetClient(ctx context.Context, clientID string) (*domain.Client, error) {
	client, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	if client == nil {
		return nil, domain.ErrClientNotFound
	}
	return client, nil
}

// ListClients returns all clients.
func (s *Service) ListClients(ctx context.Context) ([]domain.Client, error) {
	return s.store.ListClients(ctx)
}

// CreateClientAndRetry creates the missing client and replays the session's
// parked turn against it. The parked text is not re-recorded; the original
// user message already carries it.
func (s *Service) CreateClientAndRetry(ctx context.Context, sessionID string, params CreateClientParams) (*domain.TurnResult, error) {
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
	if session.PendingRetry == nil {
		return nil, domain.ErrNoPendingRetry
	}

	client, err := s.CreateClient(ctx, params)
	if err != nil {
		return nil, err
	}

	parked := *session.PendingRetry
	session.ClientID = client.ClientID
	session.PendingRetry = nil
	session.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return s.processTurn(ctx, session, parked.Text, parked.Attachments)
}
