package utils

import (
	"regexp"
	"strings"
	"time"
)

// -----------------------------------------------------------------------------

const (
	// DateLayout is the wire format for dates in queries, tables and charts.
	DateLayout = "2006-01-02"

	// MinUsableRecords is the smallest series the forecaster accepts.
	MinUsableRecords = 2

	DaysPerYear = 365
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.\-=^]{0,19}$`)

// -----------------------------------------------------------------------------

// NormalizeSymbol trims and upper-cases a ticker typed by a user.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// -----------------------------------------------------------------------------

// IsValidSymbol reports whether an already normalized ticker is well formed.
func IsValidSymbol(symbol string) bool {
	return symbolPattern.MatchString(symbol)
}

// -----------------------------------------------------------------------------

// TruncateDay drops the clock part of t, keeping it in UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
