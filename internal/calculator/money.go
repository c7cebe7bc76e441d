package calculator

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// maxCurrency bounds parsed currency values so cents fit in an int64.
var maxCurrency = decimal.NewFromInt(math.MaxInt64 / 1000)

// ToCents parses a decimal currency string such as "12.34" into cents,
// rounding half away from zero. Anything that is not a finite number in range
// yields 0.
func ToCents(s string) int64 {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	if d.Abs().GreaterThan(maxCurrency) {
		return 0
	}
	return d.Shift(2).Round(0).IntPart()
}

// FloatToCents converts a currency amount to cents. Non-finite values yield 0.
func FloatToCents(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > maxAmountCents/100 {
		return 0
	}
	return decimal.NewFromFloat(v).Shift(2).Round(0).IntPart()
}

// FormatCents renders cents as a fixed two-decimal string, e.g. 1234 -> "12.34".
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
