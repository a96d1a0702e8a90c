package core

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// -----------------------------------------------------------------------------

// CalculateMeanStd returns the mean and the sample standard deviation. A
// single value has a deviation of 0.
func CalculateMeanStd(data []float64) (float64, float64) {
	switch len(data) {
	case 0:
		return 0, 0
	case 1:
		return data[0], 0
	}
	return stat.MeanStdDev(data, nil)
}

// -----------------------------------------------------------------------------

// CalculateCorrelation is the Pearson coefficient, 0 when either side is
// constant or the lengths differ.
func CalculateCorrelation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// -----------------------------------------------------------------------------

// CalculateLogReturns turns a price series into day over day log returns.
// Non-positive prices break the chain and are skipped.
func CalculateLogReturns(prices []float64) []float64 {
	out := make([]float64, 0, len(prices))
	for i := 1; i < len(prices); i++ {
		if prices[i] <= 0 || prices[i-1] <= 0 {
			continue
		}
		out = append(out, math.Log(prices[i]/prices[i-1]))
	}
	return out
}
