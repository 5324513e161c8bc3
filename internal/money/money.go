// Package money provides euro rounding and Portuguese price-string parsing.
package money

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var nonPriceRe = regexp.MustCompile(`[^\d.]`)

// Round2 rounds v to 2 decimal places. Monetary fields are rounded only at
// the point of output, never during intermediate accumulation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatEUR formats an amount the way it is shown to the household,
// e.g. 2.49 -> "€2.49".
func FormatEUR(v float64) string {
	return fmt.Sprintf("€%.2f", v)
}

// ParseEUR converts a Portuguese-format price string to a float value.
// Examples: "2,49 €" -> 2.49, "1.299,00 €" -> 1299.00, "0,99" -> 0.99.
// Returns false when the string holds no parsable amount.
func ParseEUR(s string) (float64, bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(s, "€", ""))
	if cleaned == "" {
		return 0, false
	}

	// PT format: dot as thousands separator, comma as decimal separator.
	switch {
	case strings.Contains(cleaned, ",") && strings.Contains(cleaned, "."):
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case strings.Contains(cleaned, ","):
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	cleaned = nonPriceRe.ReplaceAllString(cleaned, "")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
