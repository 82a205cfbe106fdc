// Package money extracts rupee amounts from the free-text budget fields the
// portals publish, e.g. "₹ 3,50,000", "3.5 Lakh", "1.2 Crore".
package money

import (
	"strconv"
	"strings"
)

const (
	crore = 1_00_00_000
	lakh  = 1_00_000
)

// ParseINR returns the amount in rupees, or false when the text holds no
// parseable figure. It never fails hard: thousands separators and currency
// markers are stripped, and "crore"/"lakh"/"lac" multiply the leading number.
func ParseINR(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	text = strings.ReplaceAll(text, ",", "")
	text = strings.ReplaceAll(text, "₹", "")
	text = strings.ReplaceAll(text, "Rs.", "")
	text = strings.TrimSpace(text)

	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "crore") || strings.Contains(lower, "cr"):
		if num, ok := leadingNumber(text); ok {
			return num * crore, true
		}
		return 0, false
	case strings.Contains(lower, "lakh") || strings.Contains(lower, "lac"):
		if num, ok := leadingNumber(text); ok {
			return num * lakh, true
		}
		return 0, false
	}
	return leadingNumber(text)
}

// leadingNumber keeps digits and the decimal point and parses the residue.
func leadingNumber(text string) (float64, bool) {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	num, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return num, true
}
