package model

import (
	"math"
	"strconv"
	"strings"
)

// RemToPx converts a rem value to pixels, truncated to 2 decimal places with
// trailing zeros trimmed. Returns false when the value is not numeric.
func RemToPx(value string, baseFontSize float64) (string, bool) {
	v, ok := parseUnitValue(value, "rem")
	if !ok {
		return "", false
	}
	if baseFontSize <= 0 {
		baseFontSize = 16
	}
	return truncateDecimals(v*baseFontSize, 2), true
}

// PxToRem converts a pixel value to rem, truncated to 4 decimal places with
// trailing zeros trimmed. Returns false when the value is not numeric.
func PxToRem(value string, baseFontSize float64) (string, bool) {
	v, ok := parseUnitValue(value, "px")
	if !ok {
		return "", false
	}
	if baseFontSize <= 0 {
		baseFontSize = 16
	}
	return truncateDecimals(v/baseFontSize, 4), true
}

func parseUnitValue(value, unit string) (float64, bool) {
	s := strings.TrimSpace(value)
	s = strings.TrimSuffix(s, unit)
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// truncateDecimals truncates (not rounds) v to the given number of decimal
// places and trims trailing zeros and a dangling decimal point.
func truncateDecimals(v float64, places int) string {
	shift := math.Pow(10, float64(places))
	t := math.Trunc(v*shift) / shift
	s := strconv.FormatFloat(t, 'f', places, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}
