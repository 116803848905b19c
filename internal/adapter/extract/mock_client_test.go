package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicechat/backend/internal/domain"
)

func TestMockClientBillCommand(t *testing.T) {
	m := NewMockClient()

	result, err := m.Extract(context.Background(), TurnContext{
		Text: "Bill Acme Corp for 10 hours at $50",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, KindDraft, result.Kind)
	require.NotNil(t, result.Draft)

	assert.Equal(t, "Acme Corp", result.Draft.ClientName)
	assert.Equal(t, "hourly", result.Draft.InvoiceType)
	require.Len(t, result.Draft.HoursEntries, 1)
	assert.Equal(t, 10.0, result.Draft.HoursEntries[0].Hours)
	assert.Equal(t, 50.0, result.Draft.HoursEntries[0].Rate)
}

func TestMockClientBillCommandDefaultRate(t *testing.T) {
	m := NewMockClient()

	result, err := m.Extract(context.Background(), TurnContext{
		Text: "bill Acme for 4 hours",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, KindDraft, result.Kind)
	require.Len(t, result.Draft.HoursEntries, 1)

	// Rate zero means the client's default rate applies downstream.
	assert.Equal(t, 0.0, result.Draft.HoursEntries[0].Rate)
}

func TestMockClientRevisionKeepsClientAndRate(t *testing.T) {
	m := NewMockClient()

	current := &domain.Draft{
		ClientName:  "Acme Corp",
		InvoiceType: domain.TemplateHourly,
		Date:        "2026-03-01",
		HoursEntries: []domain.HoursEntry{{
			Date:        "2026-03-01",
			Hours:       10,
			RateCents:   5000,
			Description: "Consulting services",
		}},
	}

	result, err := m.Extract(context.Background(), TurnContext{
		CurrentDraft: current,
		Text:         "make it 12 hours",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, KindDraft, result.Kind)
	require.Len(t, result.Draft.HoursEntries, 1)

	assert.Equal(t, "Acme Corp", result.Draft.ClientName)
	assert.Equal(t, 12.0, result.Draft.HoursEntries[0].Hours)
	assert.Equal(t, 50.0, result.Draft.HoursEntries[0].Rate)
}

func TestMockClientAmbiguousTextAsksClarification(t *testing.T) {
	m := NewMockClient()

	result, err := m.Extract(context.Background(), TurnContext{
		Text: "hello there",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, KindClarification, result.Kind)
	assert.NotEmpty(t, result.Question)
}
