package utils

import (
	"sync"
	"time"

	"stock-forecaster/src/logger"
)

// MarketScheduler caches one calendar per ticker and answers open/closed
// questions for the status line of the page.
type MarketScheduler struct {
	Calendars map[string]*TradingCalendar
	Logger    *logger.Logger
	now       func() time.Time
	mu        sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMarketScheduler(symbols []string, l *logger.Logger) *MarketScheduler {
	ms := &MarketScheduler{
		Calendars: make(map[string]*TradingCalendar),
		Logger:    l,
		now:       time.Now,
	}
	ms.MapSymbolsToCalendars(symbols)
	return ms
}

// -----------------------------------------------------------------------------

// MapSymbolsToCalendars replaces the tracked symbols
func (ms *MarketScheduler) MapSymbolsToCalendars(symbols []string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.Calendars = make(map[string]*TradingCalendar)
	for _, symbol := range symbols {
		ms.Calendars[NormalizeSymbol(symbol)] = GetCalendar(symbol)
	}

	ms.Logger.Debug("MarketScheduler: Mapped %d symbols to calendars.", len(symbols))
}

// -----------------------------------------------------------------------------

// CalendarFor returns the calendar of symbol, loading it on first use.
func (ms *MarketScheduler) CalendarFor(symbol string) *TradingCalendar {
	symbol = NormalizeSymbol(symbol)

	ms.mu.RLock()
	cal, ok := ms.Calendars[symbol]
	ms.mu.RUnlock()
	if ok {
		return cal
	}

	cal = GetCalendar(symbol)
	ms.mu.Lock()
	ms.Calendars[symbol] = cal
	ms.mu.Unlock()
	return cal
}

// -----------------------------------------------------------------------------

// IsMarketOpen reports whether the exchange of symbol is open right now.
func (ms *MarketScheduler) IsMarketOpen(symbol string) bool {
	return ms.CalendarFor(symbol).IsOpenOnMinute(ms.now().UTC())
}

// -----------------------------------------------------------------------------

// AnyMarketOpen checks if ANY tracked markets are currently open
func (ms *MarketScheduler) AnyMarketOpen() bool {
	now := ms.now().UTC()

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	for _, cal := range ms.Calendars {
		if cal.IsOpenOnMinute(now) {
			return true
		}
	}
	return false
}
