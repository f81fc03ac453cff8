// Package formatting parses loosely structured text: byte sizes from
// configuration and JSON documents embedded in model output.
package formatting

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

var units = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// FormatBytes renders n with base-1024 units, e.g. "1.5 MB".
func FormatBytes(n int64, precision int) string {
	precision = max(precision, 0)
	if n < 1024 {
		return strconv.FormatInt(n, 10) + " B"
	}

	size := float64(n)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	return strconv.FormatFloat(size, 'f', precision, 64) + " " + units[i]
}

// ParseBytes parses sizes such as "50MB", "2 mb", "1.5GiB" or "4096".
// Units are base-1024 and case-insensitive; a bare number is bytes.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	number, unit := s, ""
	if split >= 0 {
		number, unit = s[:split], strings.TrimSpace(s[split:])
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil || number == "" {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	exp, ok := unitExponent(unit)
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit: %q", unit)
	}
	return int64(value * math.Pow(1024, float64(exp))), nil
}

func unitExponent(unit string) (int, bool) {
	unit = strings.ToUpper(unit)
	if unit == "" {
		return 0, true
	}
	// KiB, MiB, ... are accepted as aliases.
	if len(unit) == 3 && unit[1] == 'I' {
		unit = unit[:1] + unit[2:]
	}
	for i, u := range units {
		if u == unit {
			return i, true
		}
	}
	return 0, false
}
