package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"invoicechat/backend/internal/domain"
)

var (
	statedClientPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bbill\s+(.+?)\s+for\b`),
		regexp.MustCompile(`(?i)\binvoice\s+(?:for\s+)?(.+?)(?:\s+for\b|[,.]|$)`),
		regexp.MustCompile(`(?i)\bcharge\s+(.+?)\s+for\b`),
	}

	// Legal suffixes ignored when comparing client names.
	nameSuffixPattern = regexp.MustCompile(`(?i)[,\s]+(llc|inc|corp|corporation|ltd|co)\.?$`)
)

// resolveFromText binds a client for the turn. Resolution order: the
// session's bound client, then an existing client named in the text, then a
// stated-but-unknown name which yields a suggestion for creation. A text
// that names no client resolves to neither.
func (s *Service) resolveFromText(ctx context.Context, session *domain.Session, text string) (*domain.Client, *domain.SuggestedClient, error) {
	if session.ClientID != "" {
		client, err := s.store.GetClient(ctx, session.ClientID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load session client: %w", err)
		}
		if client != nil {
			return client, nil, nil
		}
	}

	stated := statedClientName(text)
	if stated != "" {
		client, err := s.matchClient(ctx, stated)
		if err != nil {
			return nil, nil, err
		}
		if client != nil {
			return client, nil, nil
		}
		return nil, &domain.SuggestedClient{
			Name:         stated,
			TemplateType: suggestTemplate(text),
		}, nil
	}

	// No explicit statement; an existing client name appearing anywhere in
	// the text still binds.
	client, err := s.scanForKnownClient(ctx, text)
	if err != nil {
		return nil, nil, err
	}
	return client, nil, nil
}

// resolveByName re-runs resolution against a name the extraction capability
// reported, for turns where the command grammar saw no client.
func (s *Service) resolveByName(ctx context.Context, name, text string) (*domain.Client, *domain.SuggestedClient, error) {
	if name == "" {
		return nil, nil, nil
	}
	client, err := s.matchClient(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	if client != nil {
		return client, nil, nil
	}
	return nil, &domain.SuggestedClient{
		Name:         name,
		TemplateType: suggestTemplate(text),
	}, nil
}

// matchClient looks a name up exactly, then with legal suffixes stripped, then
// as a substring of an existing client name.
func (s *Service) matchClient(ctx context.Context, name string) (*domain.Client, error) {
	client, err := s.store.GetClientByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up client: %w", err)
	}
	if client != nil {
		return client, nil
	}

	normalized := normalizeName(name)
	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	for i := range clients {
		if normalizeName(clients[i].Name) == normalized {
			return &clients[i], nil
		}
	}
	for i := range clients {
		existing := strings.ToLower(clients[i].Name)
		if strings.Contains(existing, strings.ToLower(name)) || strings.Contains(strings.ToLower(name), existing) {
			return &clients[i], nil
		}
	}
	return nil, nil
}

func (s *Service) scanForKnownClient(ctx context.Context, text string) (*domain.Client, error) {
	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	lower := strings.ToLower(text)
	for i := range clients {
		if strings.Contains(lower, strings.ToLower(clients[i].Name)) {
			return &clients[i], nil
		}
	}
	return nil, nil
}

func statedClientName(text string) string {
	for _, pattern := range statedClientPatterns {
		if match := pattern.FindStringSubmatch(text); match != nil {
			name := strings.TrimSpace(match[1])
			name = strings.Trim(name, `"'`)
			if name != "" && !looksLikeQuantity(name) {
				return name
			}
		}
	}
	return ""
}

// looksLikeQuantity filters out captures like "10 hours" from phrases such as
// "invoice for 10 hours".
func looksLikeQuantity(name string) bool {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return true
	}
	first := fields[0]
	for _, r := range first {
		if r < '0' || r > '9' {
			if r == '.' || r == '$' {
				continue
			}
			return false
		}
	}
	return true
}

func normalizeName(name string) string {
	name = nameSuffixPattern.ReplaceAllString(name, "")
	return strings.ToLower(strings.TrimSpace(name))
}

// suggestTemplate guesses a billing template from the turn wording.
func suggestTemplate(text string) domain.TemplateType {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "tutor") || strings.Contains(lower, "lesson") || strings.Contains(lower, "tuition"):
		return domain.TemplateTuition
	case strings.Contains(lower, "project") || strings.Contains(lower, "fixed"):
		return domain.TemplateProject
	default:
		return domain.TemplateHourly
	}
}
