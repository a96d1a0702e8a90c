package utils

import (
	"testing"
	"time"

	"stock-forecaster/src/logger"
	"stock-forecaster/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestSymbolValidation(t *testing.T) {
	for _, s := range []string{"AAPL", "BTC-USD", "GC=F", "^GSPC", "VOD.L", "ZZZNOTREAL"} {
		assert.True(t, IsValidSymbol(s), s)
	}
	for _, s := range []string{"", "aapl", "AA PL", "<script>", "TOOLONGSYMBOLNAMEEXCEEDS"} {
		assert.False(t, IsValidSymbol(s), s)
	}
	assert.Equal(t, "AAPL", NormalizeSymbol("  aapl "))
}

func TestNormalizeBarsSortsDedupsAndComputesChange(t *testing.T) {
	bars := []models.MPriceBar{
		{Date: day("2024-01-03"), Close: 110},
		{Date: day("2024-01-02"), Close: 100},
		{Date: day("2024-01-03").Add(5 * time.Hour), Close: 121},
		{Date: day("2024-01-04"), Close: 0},
	}

	out := NormalizeBars(bars)
	require.Len(t, out, 2)
	assert.Equal(t, day("2024-01-02"), out[0].Date)
	assert.Equal(t, 121.0, out[1].Close)
	assert.Zero(t, out[0].PricePercentChange)
	assert.InDelta(t, 0.21, out[1].PricePercentChange, 1e-9)
}

func TestTradingDaysAfterSkipsWeekends(t *testing.T) {
	cal := &TradingCalendar{Fallback: true, Timezone: time.UTC}

	// Friday 2024-01-05 plus 3 days lands on Monday
	days := cal.TradingDaysAfter(day("2024-01-05"), 3)
	require.Len(t, days, 1)
	assert.Equal(t, day("2024-01-08"), days[0])

	days = cal.TradingDaysAfter(day("2024-01-05"), 10)
	assert.False(t, days[len(days)-1].Before(day("2024-01-15")))
	for _, d := range days {
		assert.NotEqual(t, time.Saturday, d.Weekday())
		assert.NotEqual(t, time.Sunday, d.Weekday())
	}
}

func TestCryptoCalendarAlwaysOpen(t *testing.T) {
	cal := GetCalendar("btc-usd")
	assert.True(t, cal.AlwaysOpen)
	assert.True(t, cal.IsTradingDay(day("2024-01-06")))
	assert.Len(t, cal.TradingDaysAfter(day("2024-01-05"), 7), 7)
}

func TestExchangeCalendarHolidays(t *testing.T) {
	cal := GetCalendar("AAPL")
	assert.False(t, cal.IsTradingDay(day("2024-12-25")))
	assert.True(t, cal.IsTradingDay(day("2024-12-24")))
}

func TestMarketSchedulerUsesClock(t *testing.T) {
	ms := NewMarketScheduler([]string{"AAPL"}, logger.NewNopLogger())
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	ms.now = func() time.Time { return time.Date(2024, 3, 12, 11, 0, 0, 0, ny) }
	assert.True(t, ms.IsMarketOpen("AAPL"))
	assert.True(t, ms.AnyMarketOpen())

	ms.now = func() time.Time { return time.Date(2024, 3, 10, 11, 0, 0, 0, ny) }
	assert.False(t, ms.IsMarketOpen("AAPL"))
	assert.True(t, ms.IsMarketOpen("BTC-USD"))
}
