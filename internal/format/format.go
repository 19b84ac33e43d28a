// Package format renders prices and discounts for display.
package format

import (
	"math"
	"strconv"
	"strings"
)

// Rupees formats amount in Indian digit grouping, e.g. "₹1,25,000".
// Fractions are rounded to whole rupees.
func Rupees(amount float64) string {
	return "₹" + groupIndian(int64(math.Round(amount)))
}

// groupIndian groups the last three digits, then every two digits before them.
func groupIndian(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	if len(s) > 3 {
		head, tail := s[:len(s)-3], s[len(s)-3:]
		var parts []string
		for len(head) > 2 {
			parts = append([]string{head[len(head)-2:]}, parts...)
			head = head[:len(head)-2]
		}
		parts = append([]string{head}, parts...)
		s = strings.Join(parts, ",") + "," + tail
	}
	if neg {
		return "-" + s
	}
	return s
}

// Compact renders a price bound in short form: "₹50K", "₹1.5L".
func Compact(amount float64) string {
	switch {
	case amount >= 100000:
		return "₹" + trimZero(amount/100000) + "L"
	case amount >= 1000:
		return "₹" + trimZero(amount/1000) + "K"
	default:
		return Rupees(amount)
	}
}

func trimZero(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}

// DiscountPercent returns the rounded saving against original, or 0 when there
// is no original price or it does not exceed price.
func DiscountPercent(price float64, original *float64) int {
	if original == nil || *original <= 0 || *original <= price {
		return 0
	}
	ratio := price / *original
	return int(math.Round((1 - ratio) * 100))
}
