package util

import (
	"math"
	"strconv"
)

// ToCents converts a currency amount to integer cents, rounding half away
// from zero so 12.345 becomes 1235.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromCents converts integer cents back to a currency amount.
func FromCents(cents int64) float64 {
	return float64(cents) / 100.0
}

// FormatCents renders cents as a fixed two-decimal string for display.
func FormatCents(cents int64) string {
	return strconv.FormatFloat(float64(cents)/100.0, 'f', 2, 64)
}

// Round2 rounds to two decimal places.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Percentage returns round(part/total*100, 2), or 0 when total is 0.
func Percentage(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return Round2(float64(part) / float64(total) * 100)
}
