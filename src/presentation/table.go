package presentation

import (
	"math"

	"stock-forecaster/src/models"
	"stock-forecaster/src/utils"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// RecentRows formats the last n bars, oldest first. Prices keep two
// decimals, volume gets thousands separators.
func RecentRows(bars []models.MPriceBar, n int) []models.MTableRow {
	if n <= 0 || len(bars) == 0 {
		return nil
	}
	if n > len(bars) {
		n = len(bars)
	}

	tail := bars[len(bars)-n:]
	rows := make([]models.MTableRow, len(tail))
	for i, b := range tail {
		rows[i] = models.MTableRow{
			Date:   b.Date.Format(utils.DateLayout),
			Open:   price(b.Open),
			High:   price(b.High),
			Low:    price(b.Low),
			Close:  price(b.Close),
			Volume: humanize.Comma(int64(math.Round(b.Volume))),
			Change: percent(b.PricePercentChange),
		}
	}
	return rows
}

func price(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func percent(v float64) string {
	d := decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100))
	s := d.StringFixed(2) + "%"
	if d.IsPositive() {
		return "+" + s
	}
	return s
}
