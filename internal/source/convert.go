package source

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// CleanCell removes common export artifacts from a cell value:
//   - Trims whitespace
//   - Removes Excel formula prefix (="...")
//   - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

// isMissing reports whether a cleaned cell carries no value.
func isMissing(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "null", "none", "na", "n/a":
		return true
	}
	return false
}

// normalizeNumber strips thousands separators and validates the result.
func normalizeNumber(s string) (string, bool) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "_", "")
	return s, numericRegex.MatchString(s)
}

// ParseSentinelInt parses an integer cell. Missing cells return 0, the
// "unknown" sentinel. Whole-valued decimals such as "1998.0" are accepted
// because spreadsheet exports often write integers that way.
func ParseSentinelInt(cell string) (int, bool) {
	s := CleanCell(cell)
	if isMissing(s) {
		return 0, true
	}
	s, ok := normalizeNumber(s)
	if !ok {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// ParseAge parses a reader age. Missing cells return NaN.
func ParseAge(cell string) (float64, bool) {
	s := CleanCell(cell)
	if isMissing(s) {
		return math.NaN(), true
	}
	s, ok := normalizeNumber(s)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
