package service

import (
	"context"
	"time"

	"invoicechat/backend/internal/adapter/extract"
	"invoicechat/backend/internal/domain"
)

// buildDraft prices the extraction output against the client's defaults and
// assigns an invoice number. Rates arrive in dollars; everything downstream
// is integer cents.
func (s *Service) buildDraft(ctx context.Context, data *extract.DraftData, client *domain.Client, now time.Time) (domain.Draft, error) {
	draft := domain.Draft{
		ClientID:           client.ClientID,
		ClientName:         client.Name,
		InvoiceType:        draftType(data.InvoiceType, client),
		Date:               data.Date,
		ServicePeriodStart: data.ServicePeriodStart,
		ServicePeriodEnd:   data.ServicePeriodEnd,
		Notes:              data.Notes,
	}
	if draft.Date == "" {
		draft.Date = now.Format("2006-01-02")
	}

	for _, h := range data.HoursEntries {
		rateCents := domain.DollarsToCents(h.Rate)
		if rateCents == 0 {
			rateCents = client.DefaultRateCents
		}
		entry := domain.HoursEntry{
			Date:        h.Date,
			Hours:       h.Hours,
			RateCents:   rateCents,
			Description: h.Description,
		}
		if entry.Date == "" {
			entry.Date = draft.Date
		}
		entry.AmountCents = domain.LineAmountCents(h.Hours, rateCents)
		draft.HoursEntries = append(draft.HoursEntries, entry)
	}

	for _, item := range data.LineItems {
		rateCents := domain.DollarsToCents(item.Rate)
		draft.LineItems = append(draft.LineItems, domain.LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			RateCents:   rateCents,
			AmountCents: domain.LineAmountCents(item.Quantity, rateCents),
		})
	}

	draft.TotalCents = domain.ComputeTotalCents(draft.HoursEntries, draft.LineItems)

	number, err := s.nextInvoiceNumber(ctx, client, now)
	if err != nil {
		return domain.Draft{}, err
	}
	draft.InvoiceNumber = number

	return draft, nil
}

func draftType(extracted string, client *domain.Client) domain.TemplateType {
	t := domain.TemplateType(extracted)
	if domain.ValidTemplateType(t) {
		return t
	}
	if domain.ValidTemplateType(client.TemplateType) {
		return client.TemplateType
	}
	return domain.TemplateHourly
}
