// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"strings"
)

// FormatBRL formats an amount in Brazilian reais with two decimal places,
// e.g. "R$ 9625.00".
func FormatBRL(amount float64) string {
	return fmt.Sprintf("R$ %.2f", amount)
}

// FormatBRLGrouped formats reais with Brazilian digit grouping,
// e.g. "R$ 1.234.567,89".
func FormatBRLGrouped(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")
	intPart := parts[0]
	decPart := parts[1]

	result := "R$ " + groupThousands(intPart) + "," + decPart
	if negative {
		result = "-" + result
	}
	return result
}

// groupThousands inserts dots every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	s = s[:n-3]
	for len(s) > 3 {
		result = s[len(s)-3:] + "." + result
		s = s[:len(s)-3]
	}
	return s + "." + result
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}
