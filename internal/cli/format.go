// Package cli provides the command-line interface for the profiler.
package cli

import (
	"fmt"
	"strings"
	"time"
)

// FormatPrice formats a price with two decimals.
func FormatPrice(price float64) string {
	return fmt.Sprintf("%.2f", price)
}

// FormatDate formats a trading date.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatVolume formats volume in Indian compact form (lakhs, crores).
func FormatVolume(volume float64) string {
	switch {
	case volume >= 10000000:
		return fmt.Sprintf("%.2f Cr", volume/10000000)
	case volume >= 100000:
		return fmt.Sprintf("%.2f L", volume/100000)
	case volume >= 1000:
		return fmt.Sprintf("%.2f K", volume/1000)
	default:
		return fmt.Sprintf("%.0f", volume)
	}
}

// FormatQuantity formats an integer quantity with Indian grouping
// (1,00,00,000 rather than 10,000,000).
func FormatQuantity(qty int64) string {
	return formatIndianNumber(fmt.Sprintf("%d", qty))
}

func formatIndianNumber(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	// first group of 3 from the right, then groups of 2
	result := s[n-3:]
	s = s[:n-3]

	for len(s) > 0 {
		if len(s) >= 2 {
			result = s[len(s)-2:] + "," + result
			s = s[:len(s)-2]
		} else {
			result = s + "," + result
			s = ""
		}
	}

	return result
}

// volumeBar renders a fixed-width histogram bar scaled against maxVolume.
func volumeBar(volume, maxVolume float64, width int) string {
	if maxVolume <= 0 {
		return strings.Repeat(" ", width)
	}
	filled := int(volume / maxVolume * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat(" ", width-filled)
}
