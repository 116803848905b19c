package domain

import (
	"fmt"
	"math"
)

// Amounts are carried as integer cents. Line amounts round half-up to the
// cent, so a draft total is always recomputable from its entries.

// LineAmountCents returns quantity * rate rounded to the cent.
func LineAmountCents(quantity float64, rateCents int64) int64 {
	return int64(math.Round(quantity * float64(rateCents)))
}

// ComputeTotalCents sums the entry amounts of a draft. Totals are never
// edited independently of the entries that produce them.
func ComputeTotalCents(hours []HoursEntry, items []LineItem) int64 {
	var total int64
	for _, e := range hours {
		total += e.AmountCents
	}
	for _, it := range items {
		total += it.AmountCents
	}
	return total
}

// DollarsToCents converts a decimal dollar amount to cents.
func DollarsToCents(dollars float64) int64 {
	return int64(math.Round(dollars * 100))
}

// CentsToDollars converts cents back to a decimal dollar amount.
func CentsToDollars(cents int64) float64 {
	return float64(cents) / 100
}

// FormatUSD renders cents as a dollar string, e.g. 50000 -> "$500.00".
func FormatUSD(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
