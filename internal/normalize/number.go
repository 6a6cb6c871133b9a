package normalize

import (
	"strconv"
	"strings"
)

// Money parses a currency cell, tolerating thousands separators and
// surrounding whitespace. Unparseable values default to 0; cost fields
// are never a reason to drop a row.
func Money(raw string) float64 {
	s := cleanNumeric(raw)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// Count parses an integer cell, falling back to def when empty or invalid.
func Count(raw string, def int) int {
	s := cleanNumeric(raw)
	if s == "" {
		return def
	}
	// Excel frequently renders counts as floats ("3.0").
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return int(v)
}

func cleanNumeric(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}
