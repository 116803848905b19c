package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicechat/backend/internal/domain"
)

func TestResolverExactAndCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	created := createTestClient(t, s, "Acme Corp", 50)

	session := &domain.Session{SessionID: "s1"}

	client, suggested, err := s.resolveFromText(ctx, session, "bill acme corp for 3 hours")
	require.NoError(t, err)
	assert.Nil(t, suggested)
	require.NotNil(t, client)
	assert.Equal(t, created.ClientID, client.ClientID)
}

func TestResolverStripsLegalSuffix(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	created := createTestClient(t, s, "Globex LLC", 75)

	client, err := s.matchClient(ctx, "Globex")
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, created.ClientID, client.ClientID)
}

func TestResolverSessionClientWins(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	bound := createTestClient(t, s, "Acme Corp", 50)
	createTestClient(t, s, "Globex LLC", 75)

	session := &domain.Session{SessionID: "s1", ClientID: bound.ClientID}
	client, suggested, err := s.resolveFromText(ctx, session, "bill Globex for 2 hours")
	require.NoError(t, err)
	assert.Nil(t, suggested)
	assert.Equal(t, bound.ClientID, client.ClientID)
}

func TestResolverUnknownNameSuggestsCreation(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	session := &domain.Session{SessionID: "s1"}
	client, suggested, err := s.resolveFromText(ctx, session, "bill Initech for 5 tutoring lessons")
	require.NoError(t, err)
	assert.Nil(t, client)
	require.NotNil(t, suggested)
	assert.Equal(t, "Initech", suggested.Name)
	assert.Equal(t, domain.TemplateTuition, suggested.TemplateType)
}

func TestResolverMentionWithoutCommandBinds(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	created := createTestClient(t, s, "Acme Corp", 50)

	session := &domain.Session{SessionID: "s1"}
	client, suggested, err := s.resolveFromText(ctx, session, "same as last month for Acme Corp please")
	require.NoError(t, err)
	assert.Nil(t, suggested)
	require.NotNil(t, client)
	assert.Equal(t, created.ClientID, client.ClientID)
}

func TestResolverIgnoresQuantityCapture(t *testing.T) {
	name := statedClientName("invoice for 10 hours of work")
	assert.Equal(t, "", name)
}

func TestSuggestTemplate(t *testing.T) {
	assert.Equal(t, domain.TemplateTuition, suggestTemplate("piano lessons for May"))
	assert.Equal(t, domain.TemplateProject, suggestTemplate("the website project, fixed fee"))
	assert.Equal(t, domain.TemplateHourly, suggestTemplate("bill them for 10 hours"))
}
