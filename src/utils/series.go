package utils

import (
	"sort"

	"stock-forecaster/src/models"
)

// -----------------------------------------------------------------------------

// NormalizeBars sorts bars by date, keeps the last bar of each day, drops
// non-positive closes and fills PricePercentChange from the previous close.
func NormalizeBars(bars []models.MPriceBar) []models.MPriceBar {
	if len(bars) == 0 {
		return bars
	}

	sorted := make([]models.MPriceBar, 0, len(bars))
	for _, b := range bars {
		if b.Close <= 0 {
			continue
		}
		b.Date = TruncateDay(b.Date)
		sorted = append(sorted, b)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	out := sorted[:0]
	for _, b := range sorted {
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}

	for i := range out {
		out[i].PricePercentChange = 0
		if i > 0 && out[i-1].Close > 0 {
			out[i].PricePercentChange = (out[i].Close - out[i-1].Close) / out[i-1].Close
		}
	}
	return out
}
