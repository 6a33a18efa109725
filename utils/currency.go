package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatPeso formats an amount the way the front desk shows it.
// Example: 1250 -> "₱1,250", 37.5 -> "₱37.50"
func FormatPeso(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	formatted := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(formatted, ".")
	integerPart, decimalPart := parts[0], parts[1]

	// Tambahkan pemisah ribuan
	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}

	out := sign + "₱" + strings.Join(groups, ",")
	if math.Mod(amount, 1) != 0 {
		out += "." + decimalPart
	}
	return out
}
