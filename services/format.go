package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RoundCents rounds amount half away from zero to 2 decimal places using
// decimal arithmetic, so 0.125 rounds to 0.13 rather than 0.12.
func RoundCents(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}

// FormatCurrency formats a float64 amount as US dollars with thousands
// separators and exactly 2 decimal places (e.g., $1,234,567.89).
func FormatCurrency(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)

	negative := d.IsNegative()
	if negative {
		d = d.Neg()
	}

	raw := d.StringFixed(2)
	parts := strings.SplitN(raw, ".", 2)

	result := "$" + applyThousandsGrouping(parts[0]) + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

// FormatQuantity renders a quantity without trailing zeros ("2", "2.5").
func FormatQuantity(q float64) string {
	return decimal.NewFromFloat(q).Round(2).String()
}

// applyThousandsGrouping inserts a comma every 3 digits from the right.
func applyThousandsGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
