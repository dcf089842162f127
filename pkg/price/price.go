// Package price parses the display prices carried by catalog records.
package price

import (
	"strconv"
	"strings"
	"unicode"
)

// Parse strips currency symbols, letters, whitespace and thousands
// separators ("₹1,299.00" -> 1299). A dot directly after letters closes an
// abbreviation ("Rs.450") and is dropped; any other dot is a decimal point
// ("$.99" -> 0.99). Anything left that is not a plain decimal number is
// reported as unparseable.
func Parse(raw string) (float64, bool) {
	var b strings.Builder
	afterLetter := false
	for _, r := range raw {
		switch {
		case r == '.' && afterLetter:
			afterLetter = false
		case unicode.IsDigit(r) || r == '.':
			b.WriteRune(r)
			afterLetter = false
		case unicode.IsLetter(r):
			afterLetter = true
		case r == ',' || unicode.IsSpace(r) || unicode.Is(unicode.Sc, r):
			afterLetter = false
		default:
			return 0, false
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// Ptr is Parse for nullable columns.
func Ptr(raw string) *float64 {
	if value, ok := Parse(raw); ok {
		return &value
	}
	return nil
}
