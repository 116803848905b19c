package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"invoicechat/backend/internal/domain"
)

// nextInvoiceNumber produces the next number for a client in the form
// PREFIX-YEAR-SEQ, e.g. ACM-2026-003. The sequence continues from the
// client's highest existing number for the year. If the candidate collides
// with a number issued to another client, a letter suffix is appended.
func (s *Service) nextInvoiceNumber(ctx context.Context, client *domain.Client, now time.Time) (string, error) {
	prefix := client.InvoicePrefix
	if prefix == "" {
		prefix = derivePrefix(client.Name)
	}
	year := now.Year()

	pattern := fmt.Sprintf("%s-%d-%%", prefix, year)
	existing, err := s.store.ListInvoiceNumbers(ctx, client.ClientID, pattern)
	if err != nil {
		return "", fmt.Errorf("failed to list invoice numbers: %w", err)
	}

	seq := 0
	for _, num := range existing {
		parts := strings.Split(num, "-")
		if len(parts) != 3 {
			continue
		}
		tail := strings.TrimRightFunc(parts[2], unicode.IsLetter)
		n, err := strconv.Atoi(tail)
		if err != nil {
			continue
		}
		if n > seq {
			seq = n
		}
	}

	candidate := fmt.Sprintf("%s-%d-%03d", prefix, year, seq+1)
	for suffix := 0; ; suffix++ {
		trial := candidate
		if suffix > 0 {
			trial = candidate + string(rune('A'+suffix-1))
		}
		taken, err := s.store.InvoiceNumberExists(ctx, trial)
		if err != nil {
			return "", fmt.Errorf("failed to check invoice number: %w", err)
		}
		if !taken {
			return trial, nil
		}
		if suffix >= 26 {
			return "", fmt.Errorf("exhausted suffixes for %s", candidate)
		}
	}
}

// derivePrefix builds a three-letter prefix from the client name initials,
// padded from the first word when the name is short.
func derivePrefix(name string) string {
	var letters []rune
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) {
				letters = append(letters, unicode.ToUpper(r))
				break
			}
		}
	}
	if len(letters) >= 3 {
		return string(letters[:3])
	}

	for _, word := range strings.Fields(name) {
		for i, r := range word {
			if i == 0 || !unicode.IsLetter(r) {
				continue
			}
			letters = append(letters, unicode.ToUpper(r))
			if len(letters) == 3 {
				return string(letters)
			}
		}
		break
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	return string(letters[:3])
}
