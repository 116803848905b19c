package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"invoicechat/backend/internal/domain"
)

// MockClient is a deterministic extractor used in tests and local
// development. It understands a small command grammar instead of calling a
// model:
//
//	"Bill Acme for 10 hours at $50"  -> new hourly draft
//	"make it 12 hours"               -> modification of the current draft
//	anything else                    -> clarification question
type MockClient struct{}

// NewMockClient creates a new mock extraction client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

var (
	billPattern  = regexp.MustCompile(`(?i)\bbill\s+(.+?)\s+for\s+([\d.]+)\s+hours?(?:\s+at\s+\$?([\d.]+))?`)
	hoursPattern = regexp.MustCompile(`(?i)([\d.]+)\s+hours?`)
)

// Extract implements Extractor.
func (m *MockClient) Extract(_ context.Context, turn TurnContext, _ []string) (*Result, error) {
	today := time.Now().Format("2006-01-02")

	if match := billPattern.FindStringSubmatch(turn.Text); match != nil {
		hours, err := strconv.ParseFloat(match[2], 64)
		if err != nil {
			return &Result{Kind: KindClarification, Question: "How many hours should I bill?"}, nil
		}
		var rate float64
		if match[3] != "" {
			rate, err = strconv.ParseFloat(match[3], 64)
			if err != nil {
				return &Result{Kind: KindClarification, Question: "What hourly rate should I use?"}, nil
			}
		}
		return &Result{
			Kind: KindDraft,
			Draft: &DraftData{
				ClientName:  strings.TrimSpace(match[1]),
				InvoiceType: "hourly",
				Date:        today,
				HoursEntries: []HoursData{{
					Date:        today,
					Hours:       hours,
					Rate:        rate,
					Description: "Consulting services",
				}},
			},
		}, nil
	}

	if turn.CurrentDraft != nil {
		if match := hoursPattern.FindStringSubmatch(turn.Text); match != nil {
			hours, err := strconv.ParseFloat(match[1], 64)
			if err == nil {
				draft := reviseHours(turn.CurrentDraft, hours, today)
				return &Result{Kind: KindDraft, Draft: draft}, nil
			}
		}
	}

	return &Result{
		Kind:     KindClarification,
		Question: "Who should I bill, and for how many hours?",
	}, nil
}

// reviseHours rebuilds the draft with a single hours entry carrying the new
// quantity while keeping the client and rate from the existing draft.
func reviseHours(current *domain.Draft, hours float64, today string) *DraftData {
	draft := &DraftData{
		ClientName:         current.ClientName,
		InvoiceType:        string(current.InvoiceType),
		Date:               current.Date,
		ServicePeriodStart: current.ServicePeriodStart,
		ServicePeriodEnd:   current.ServicePeriodEnd,
		Notes:              current.Notes,
	}
	entry := HoursData{Date: today, Hours: hours, Description: "Consulting services"}
	if len(current.HoursEntries) > 0 {
		prev := current.HoursEntries[0]
		entry.Date = prev.Date
		entry.Rate = float64(prev.RateCents) / 100
		entry.Description = prev.Description
	}
	draft.HoursEntries = []HoursData{entry}
	return draft
}
