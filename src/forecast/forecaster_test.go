package forecast

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"stock-forecaster/src/helpers"
	"stock-forecaster/src/logger"
	"stock-forecaster/src/metrics"
	"stock-forecaster/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticHistory builds weekday closes with a trend, a yearly wave and noise.
func syntheticHistory(symbol string, start time.Time, days int, seed uint64) *models.MHistory {
	r := rand.New(rand.NewPCG(seed, seed+1))
	h := &models.MHistory{Symbol: symbol, Source: "test"}
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		t := float64(i)
		price := 30 + 0.04*t + 5*math.Sin(2*math.Pi*t/365.25) + r.NormFloat64()
		h.Bars = append(h.Bars, models.MPriceBar{Symbol: symbol, Date: d, Close: price})
	}
	h.Start, h.End = h.Bars[0].Date, h.Bars[len(h.Bars)-1].Date
	return h
}

func newForecaster(freq string) *Forecaster {
	cfg := models.MForecastConfig{
		Frequency:             freq,
		ChangepointCount:      25,
		ChangepointRange:      0.8,
		ChangepointPriorScale: 0.05,
		SeasonalityPriorScale: 10,
		YearlyOrder:           10,
		WeeklyOrder:           3,
		IntervalWidth:         0.8,
	}
	return NewForecaster(cfg, nil, logger.NewNopLogger(), metrics.New())
}

func TestForecastDateCoverage(t *testing.T) {
	h := syntheticHistory("AAPL", time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), 4*365, 1)
	fc, err := newForecaster(FrequencyCalendar).Forecast(context.Background(), h, 365)
	require.NoError(t, err)

	first := h.Bars[0].Date
	last := h.Bars[len(h.Bars)-1].Date
	require.Len(t, fc.Points, len(h.Bars)+365)
	assert.True(t, fc.Points[0].Date.Equal(first))
	assert.False(t, fc.Points[len(fc.Points)-1].Date.Before(last.AddDate(0, 0, 365)))
	assert.Equal(t, 365, fc.HorizonDays)
}

func TestForecastBoundsOrdered(t *testing.T) {
	h := syntheticHistory("MSFT", time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC), 6*365, 7)
	fc, err := newForecaster(FrequencyCalendar).Forecast(context.Background(), h, 730)
	require.NoError(t, err)

	for _, p := range fc.Points {
		require.LessOrEqual(t, p.Lower, p.Predicted, p.Date)
		require.LessOrEqual(t, p.Predicted, p.Upper, p.Date)
		assert.InDelta(t, p.Predicted, p.Trend+p.Weekly+p.Yearly, 1e-6)
	}

	// uncertainty grows past the last observation
	n := len(h.Bars)
	atEnd := fc.Points[n-1].Upper - fc.Points[n-1].Lower
	atHorizon := fc.Points[len(fc.Points)-1].Upper - fc.Points[len(fc.Points)-1].Lower
	assert.GreaterOrEqual(t, atHorizon, atEnd)
}

func TestForecastTracksTrend(t *testing.T) {
	h := syntheticHistory("TREND", time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC), 5*365, 3)
	fc, err := newForecaster(FrequencyCalendar).Forecast(context.Background(), h, 30)
	require.NoError(t, err)

	// in-sample fit should be close to the data on average
	var sum float64
	for i, b := range h.Bars {
		sum += math.Abs(fc.Points[i].Predicted - b.Close)
	}
	assert.Less(t, sum/float64(len(h.Bars)), 2.0)

	require.Len(t, fc.WeeklyProfile, 7)
	assert.Equal(t, "Sunday", fc.WeeklyProfile[0].Label)
	require.Len(t, fc.YearlyProfile, 365)
}

func TestForecastTradingFrequency(t *testing.T) {
	h := syntheticHistory("AAPL", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 2*365, 5)
	fc, err := newForecaster(FrequencyTrading).Forecast(context.Background(), h, 60)
	require.NoError(t, err)

	last := h.Bars[len(h.Bars)-1].Date
	future := fc.Points[len(h.Bars):]
	require.NotEmpty(t, future)
	assert.Less(t, len(future), 60)
	assert.False(t, future[len(future)-1].Date.Before(last.AddDate(0, 0, 60)))
	for _, p := range future {
		assert.NotEqual(t, time.Saturday, p.Date.Weekday())
		assert.NotEqual(t, time.Sunday, p.Date.Weekday())
	}
}

func TestForecastShortHistoryDisablesSeasonality(t *testing.T) {
	h := &models.MHistory{Symbol: "NEW", Bars: []models.MPriceBar{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 10},
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Close: 11},
		{Date: time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), Close: 12},
	}}
	fc, err := newForecaster(FrequencyCalendar).Forecast(context.Background(), h, 10)
	require.NoError(t, err)
	assert.Len(t, fc.Points, 13)
	assert.Nil(t, fc.WeeklyProfile)
	assert.Nil(t, fc.YearlyProfile)
}

func TestForecastDegenerateInputs(t *testing.T) {
	f := newForecaster(FrequencyCalendar)
	ctx := context.Background()
	d := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	cases := map[string]struct {
		history *models.MHistory
		horizon int
	}{
		"nil history":  {nil, 30},
		"one record":   {&models.MHistory{Bars: []models.MPriceBar{{Date: d, Close: 1}}}, 30},
		"zero horizon": {syntheticHistory("X", d, 100, 1), 0},
		"nan close": {&models.MHistory{Bars: []models.MPriceBar{
			{Date: d, Close: 1}, {Date: d.AddDate(0, 0, 1), Close: math.NaN()},
		}}, 30},
		"same date": {&models.MHistory{Bars: []models.MPriceBar{
			{Date: d, Close: 1}, {Date: d, Close: 2},
		}}, 30},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.Forecast(ctx, tc.history, tc.horizon)
			var fcErr *helpers.ForecastError
			assert.ErrorAs(t, err, &fcErr)
		})
	}
}

func TestForecastCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newForecaster(FrequencyCalendar).Forecast(ctx, syntheticHistory("X", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 60, 1), 10)
	assert.ErrorIs(t, err, context.Canceled)
}
