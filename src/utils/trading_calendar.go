package utils

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// TradingCalendar calculates trading days using scmhub/calendar.
type TradingCalendar struct {
	Calendar   *calendar.Calendar
	Fallback   bool
	AlwaysOpen bool // crypto pairs trade every day
	Timezone   *time.Location
}

// Yahoo suffix to ISO 10383 MIC, see scmhub/calendar for supported codes.
var suffixMIC = map[string]string{
	".L":  "xlon",
	".PA": "xpar",
	".DE": "xfra",
	".AS": "xams",
	".BR": "xbru",
	".MI": "xmil",
	".MC": "xmad",
	".ST": "xsto",
	".CO": "xcse",
	".HE": "xhel",
	".VI": "xwbo",
	".SW": "xswx",
	".TO": "xtse",
	".V":  "xtsx",
	".T":  "xtks",
	".HK": "xhkg",
	".AX": "xasx",
	".KS": "xkrx",
	".TW": "xtai",
	".SS": "xshg",
	".SZ": "xshe",
}

// -----------------------------------------------------------------------------

// GetCalendar maps a ticker to its exchange calendar. Unknown suffixes and
// futures (=F) use NYSE.
func GetCalendar(symbol string) *TradingCalendar {
	symbol = NormalizeSymbol(symbol)
	if strings.HasSuffix(symbol, "-USD") || strings.HasSuffix(symbol, "-EUR") {
		return &TradingCalendar{AlwaysOpen: true, Timezone: time.UTC}
	}

	mic := "xnys"
	if i := strings.LastIndex(symbol, "."); i > 0 {
		if m, ok := suffixMIC[symbol[i:]]; ok {
			mic = m
		}
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil {
		cal = calendar.GetCalendar("xnys")
	}

	if cal == nil {
		nyLoc, _ := time.LoadLocation("America/New_York")
		if nyLoc == nil {
			nyLoc = time.UTC
		}
		return &TradingCalendar{Fallback: true, Timezone: nyLoc}
	}

	return &TradingCalendar{Calendar: cal, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.AlwaysOpen {
		return true
	}
	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	// Dates are calendar days; reinterpret them in the exchange zone so the
	// library does not shift them across midnight.
	y, m, d := date.Date()
	local := time.Date(y, m, d, 12, 0, 0, 0, tc.Timezone)
	return tc.Calendar.IsBusinessDay(local)
}

// -----------------------------------------------------------------------------

// IsOpenOnMinute checks if the market is open at a specific minute.
func (tc *TradingCalendar) IsOpenOnMinute(t time.Time) bool {
	if tc.AlwaysOpen {
		return true
	}
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}
		hour, minute := t.Hour(), t.Minute()
		// 9:30 - 16:00 NY Time
		return (hour > 9 || (hour == 9 && minute >= 30)) && hour < 16
	}

	return tc.Calendar.IsOpen(t)
}

// -----------------------------------------------------------------------------

// TradingDaysAfter returns the trading days strictly after last, up to and
// including the first trading day on or after last+horizonDays.
func (tc *TradingCalendar) TradingDaysAfter(last time.Time, horizonDays int) []time.Time {
	last = TruncateDay(last)
	target := last.AddDate(0, 0, horizonDays)

	var days []time.Time
	for d := last.AddDate(0, 0, 1); ; d = d.AddDate(0, 0, 1) {
		if !tc.IsTradingDay(d) {
			continue
		}
		days = append(days, d)
		if !d.Before(target) {
			return days
		}
	}
}
