package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dailyDates(n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
	}
	return out
}

func TestFitRecoversLinearTrend(t *testing.T) {
	dates := dailyDates(200)
	y := make([]float64, len(dates))
	for i := range y {
		y[i] = 50 + 0.5*float64(i)
	}

	m, err := Fit(dates, y, DefaultParams())
	require.NoError(t, err)

	future := []time.Time{dates[len(dates)-1].AddDate(0, 0, 10)}
	got := m.Predict(future)[0]
	assert.InDelta(t, 50+0.5*209, got.Predicted, 2.5)
}

func TestChangepointsStayInRange(t *testing.T) {
	dates := dailyDates(100)
	y := make([]float64, len(dates))
	for i := range y {
		y[i] = float64(i % 10)
	}

	m, err := Fit(dates, y, DefaultParams())
	require.NoError(t, err)
	require.Len(t, m.changepoints, 25)
	for _, c := range m.changepoints {
		assert.Greater(t, c, 0.0)
		assert.LessOrEqual(t, c, 0.8)
	}
}

func TestFitFewPointsHasNoChangepoints(t *testing.T) {
	m, err := Fit(dailyDates(2), []float64{1, 2}, DefaultParams())
	require.NoError(t, err)
	assert.Empty(t, m.changepoints)
	assert.False(t, m.HasWeekly())
	assert.False(t, m.HasYearly())
}

func TestFitRejectsBadInput(t *testing.T) {
	_, err := Fit(dailyDates(1), []float64{1}, DefaultParams())
	assert.ErrorIs(t, err, ErrTooFewPoints)

	_, err = Fit(dailyDates(3), []float64{1, 2}, DefaultParams())
	assert.Error(t, err)

	d := dailyDates(3)
	d[1], d[2] = d[2], d[1]
	_, err = Fit(d, []float64{1, 2, 3}, DefaultParams())
	assert.Error(t, err)

	p := DefaultParams()
	p.IntervalWidth = 1
	_, err = Fit(dailyDates(3), []float64{1, 2, 3}, p)
	assert.Error(t, err)
}

func TestFitConstantSeries(t *testing.T) {
	dates := dailyDates(30)
	y := make([]float64, len(dates))
	for i := range y {
		y[i] = 42
	}
	m, err := Fit(dates, y, DefaultParams())
	require.NoError(t, err)

	for _, c := range m.Predict(dates) {
		assert.InDelta(t, 42, c.Predicted, 0.5)
		assert.LessOrEqual(t, c.Lower, c.Upper)
	}
}
