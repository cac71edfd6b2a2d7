package helpers

import (
	"fmt"
	"math"
)

// FormatPnL formats a profit/loss amount as a dollar figure with thousand
// separators, e.g. -12345.6 -> "-$12,345.60"
func FormatPnL(amount float64) string {
	negative := amount < 0
	abs := math.Abs(amount)

	whole := int64(abs)
	cents := int64(math.Round((abs - float64(whole)) * 100))
	if cents == 100 {
		whole++
		cents = 0
	}

	str := fmt.Sprintf("%d", whole)
	length := len(str)

	// Insert comma thousand separators
	var result string
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result += ","
		}
		result += string(digit)
	}

	if negative {
		return fmt.Sprintf("-$%s.%02d", result, cents)
	}
	return fmt.Sprintf("$%s.%02d", result, cents)
}

// FormatCoefficient formats a correlation coefficient with explicit sign,
// e.g. 0.724 -> "+0.72"
func FormatCoefficient(r float64) string {
	return fmt.Sprintf("%+.2f", r)
}

// FormatWinRate formats a percentage win rate to one decimal place
func FormatWinRate(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}
