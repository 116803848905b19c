package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"

	"invoicechat/backend/internal/adapter/extract"
	"invoicechat/backend/internal/domain"
	"invoicechat/backend/internal/ledger"
)

// QuickHoursEntry is one day of work in the streamlined invoice flow.
type QuickHoursEntry struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
}

// ParsedHours is the result of hours extraction from text or an image.
type ParsedHours struct {
	Entries    []QuickHoursEntry `json:"hours_entries"`
	TotalHours float64           `json:"total_hours"`
	Notes      string            `json:"notes,omitempty"`
}

var hoursNumberPattern = regexp.MustCompile(`[\d.]+`)

// ParseHoursText parses pasted hours over a date range. Numbers may be comma
// or space separated, or carry day labels ("Mon: 5, Tue: 5"); the nth number
// is the nth day of the period.
func ParseHoursText(text, startDate, endDate string) (*ParsedHours, error) {
	start, end, err := parsePeriod(startDate, endDate)
	if err != nil {
		return nil, err
	}

	var hours []float64
	for _, raw := range hoursNumberPattern.FindAllString(text, -1) {
		h, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		hours = append(hours, h)
	}
	if len(hours) == 0 {
		return nil, fmt.Errorf("no hours found in text")
	}

	parsed := &ParsedHours{}
	day := start
	for _, h := range hours {
		if day.After(end) {
			break
		}
		parsed.Entries = append(parsed.Entries, QuickHoursEntry{
			Date:  day.Format("2006-01-02"),
			Hours: h,
		})
		parsed.TotalHours += h
		day = day.AddDate(0, 0, 1)
	}
	parsed.Notes = fmt.Sprintf("Parsed %d days from text input", len(parsed.Entries))
	return parsed, nil
}

// ExtractHoursFromImage runs the extraction capability over a timesheet
// image and returns the dated hours it reports.
func (s *Service) ExtractHoursFromImage(ctx context.Context, imageURL, startDate, endDate string) (*ParsedHours, error) {
	if imageURL == "" {
		return nil, fmt.Errorf("image_url is required")
	}
	start, end, err := parsePeriod(startDate, endDate)
	if err != nil {
		return nil, err
	}

	turnCtx := extract.TurnContext{
		Text: fmt.Sprintf("Extract the work hours between %s and %s from the attached timesheet image. Report one entry per dated day.",
			start.Format("2006-01-02"), end.Format("2006-01-02")),
	}
	result, err := s.extractor.Extract(ctx, turnCtx, []string{imageURL})
	if err != nil {
		return nil, fmt.Errorf("hours extraction failed: %w", err)
	}
	switch result.Kind {
	case extract.KindDraft:
		parsed := &ParsedHours{Notes: result.Draft.Notes}
		for _, h := range result.Draft.HoursEntries {
			parsed.Entries = append(parsed.Entries, QuickHoursEntry{Date: h.Date, Hours: h.Hours})
			parsed.TotalHours += h.Hours
		}
		return parsed, nil
	case extract.KindClarification:
		return nil, fmt.Errorf("hours extraction needs clarification: %s", result.Question)
	default:
		return nil, fmt.Errorf("hours extraction failed: %s", result.Reason)
	}
}

// QuickInvoiceParams creates an invoice directly from pre-extracted hours.
type QuickInvoiceParams struct {
	ClientID     string
	HoursEntries []QuickHoursEntry
	Rate         float64 // dollars per hour, 0 = client default
	StartDate    string
	EndDate      string
	Notes        string
}

// QuickInvoiceResult is the outcome of the streamlined creation flow.
type QuickInvoiceResult struct {
	Invoice     *domain.Invoice `json:"invoice"`
	SessionID   string          `json:"session_id"`
	TotalHours  float64         `json:"total_hours"`
	TotalAmount float64         `json:"total_amount"`
}

// QuickInvoice creates and commits an invoice in one step from hours that
// were already extracted. It records a backing session with the preview so
// the invoice keeps its version linkage and shows up in session history.
func (s *Service) QuickInvoice(ctx context.Context, params QuickInvoiceParams) (*QuickInvoiceResult, error) {
	client, err := s.store.GetClient(ctx, params.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	if client == nil {
		return nil, domain.ErrClientNotFound
	}
	if len(params.HoursEntries) == 0 {
		return nil, fmt.Errorf("at least one hours entry is required")
	}

	data := &extract.DraftData{
		ClientName:         client.Name,
		InvoiceType:        string(client.TemplateType),
		ServicePeriodStart: params.StartDate,
		ServicePeriodEnd:   params.EndDate,
		Notes:              params.Notes,
	}
	var totalHours float64
	for _, e := range params.HoursEntries {
		data.HoursEntries = append(data.HoursEntries, extract.HoursData{
			Date:  e.Date,
			Hours: e.Hours,
			Rate:  params.Rate,
		})
		totalHours += e.Hours
	}

	now := time.Now().UTC()
	session := &domain.Session{
		SessionID: uuid.New().String(),
		ClientID:  client.ClientID,
		Title:     defaultSessionTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	led := ledger.New(session.SessionID)
	turn, err := s.producePreview(ctx, session, led, data, client, now)
	if err != nil {
		return nil, err
	}

	result, err := s.Confirm(ctx, session.SessionID, turn.Preview.Version)
	if err != nil {
		return nil, err
	}

	return &QuickInvoiceResult{
		Invoice:     result.Invoice,
		SessionID:   session.SessionID,
		TotalHours:  totalHours,
		TotalAmount: domain.CentsToDollars(result.Invoice.TotalCents),
	}, nil
}

func parsePeriod(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date: %w", err)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date is before start_date")
	}
	return start, end, nil
}
