package core

import (
	"math"

	"stock-forecaster/src/models"
)

// tradingDaysPerYear annualizes daily volatility.
const tradingDaysPerYear = 252

// -----------------------------------------------------------------------------

// Summarize computes the headline numbers of a price series.
func Summarize(bars []models.MPriceBar) *models.MSummary {
	if len(bars) == 0 {
		return &models.MSummary{}
	}

	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	high, low := math.Inf(-1), math.Inf(1)
	for i, b := range bars {
		closes[i] = b.Close
		volumes[i] = b.Volume
		high = math.Max(high, math.Max(b.High, b.Close))
		if b.Low > 0 {
			low = math.Min(low, b.Low)
		}
		low = math.Min(low, b.Close)
	}

	avgVol, _ := CalculateMeanStd(volumes)
	_, dailyVol := CalculateMeanStd(CalculateLogReturns(closes))

	return &models.MSummary{
		Records:              len(bars),
		FirstClose:           closes[0],
		LastClose:            closes[len(closes)-1],
		High:                 high,
		Low:                  low,
		ChangePercent:        CalculateChangePercent(closes[len(closes)-1], closes[0]),
		AnnualizedVolatility: dailyVol * math.Sqrt(tradingDaysPerYear),
		AverageVolume:        avgVol,
		VolumeAnomaly:        CalculateAnomalyRatio(volumes[len(volumes)-1], avgVol),
	}
}

// -----------------------------------------------------------------------------

// ApplyFitQuality compares the in-sample predictions with the actual closes.
// fitted must be aligned with actual; extra fitted values are ignored.
func ApplyFitQuality(s *models.MSummary, actual, fitted []float64) {
	n := min(len(actual), len(fitted))
	if n == 0 {
		return
	}

	var absErr, pctErr float64
	pctCount := 0
	for i := 0; i < n; i++ {
		diff := math.Abs(actual[i] - fitted[i])
		absErr += diff
		if actual[i] != 0 {
			pctErr += diff / math.Abs(actual[i])
			pctCount++
		}
	}

	s.FitMAE = absErr / float64(n)
	if pctCount > 0 {
		s.FitMAPE = pctErr / float64(pctCount)
	}
	s.FitCorrelation = CalculateCorrelation(actual[:n], fitted[:n])
}

// -----------------------------------------------------------------------------

// CalculateChangePercent returns the relative change as a fraction.
func CalculateChangePercent(current, previous float64) float64 {
	if previous == 0 {
		return 0.0
	}
	return (current - previous) / previous
}

// -----------------------------------------------------------------------------

// CalculateAnomalyRatio compares the latest volume with the average. Series
// without volume (indices, some futures) report 1.
func CalculateAnomalyRatio(currentVol, avgVol float64) float64 {
	if avgVol <= 0 {
		return 1.0
	}
	return currentVol / avgVol
}
