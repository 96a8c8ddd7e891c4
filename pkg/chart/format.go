package chart

import (
	"strconv"
	"strings"
)

// FormatValue renders a tick label with a precision that depends on the
// span of the axis it belongs to.
func FormatValue(v, span float64) string {
	return strconv.FormatFloat(v, 'f', decimals(span), 64)
}

func decimals(span float64) int {
	switch {
	case span > 10000:
		return 0
	case span > 1000:
		return 1
	case span > 100:
		return 2
	case span > 10:
		return 3
	case span > 0.01:
		return 4
	case span > 0.001:
		return 5
	case span > 0.0001:
		return 6
	case span > 0.00001:
		return 7
	}
	return 8
}

// formatShortest renders v in the shortest form that parses back to v.
func formatShortest(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func labelLine(title, fallback, value, unit string) string {
	if title == "" {
		title = fallback
	}
	return strings.TrimRight(title+": "+value+" "+unit, " ")
}
