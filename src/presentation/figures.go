package presentation

import (
	"fmt"

	"stock-forecaster/src/models"
	"stock-forecaster/src/utils"
)

const (
	bandFill        = "rgba(68, 68, 68, 0.3)"
	transparentLine = "rgba(0,0,0,0)"
)

func priceLayout(title string) map[string]any {
	return map[string]any{
		"title":  map[string]any{"text": title},
		"xaxis":  map[string]any{"title": map[string]any{"text": "Date"}},
		"yaxis":  map[string]any{"title": map[string]any{"text": "Price (USD)"}},
		"height": 480,
	}
}

func dates(bars []models.MPriceBar) ([]string, []float64) {
	x := make([]string, len(bars))
	y := make([]float64, len(bars))
	for i, b := range bars {
		x[i] = b.Date.Format(utils.DateLayout)
		y[i] = b.Close
	}
	return x, y
}

// -----------------------------------------------------------------------------

// HistoricalFigure is a single close price line over the history.
func HistoricalFigure(symbol string, bars []models.MPriceBar) *models.MFigure {
	x, y := dates(bars)
	return &models.MFigure{
		Data: []models.MTrace{{
			X: x, Y: y, Mode: "lines", Type: "scatter", Name: "Close Price",
		}},
		Layout: priceLayout(fmt.Sprintf("%s Historical Stock Prices", symbol)),
	}
}

// -----------------------------------------------------------------------------

// ForecastFigure overlays history, the forecast line and a shaded band
// between the lower and upper bounds. The lower bound trace fills up to the
// upper one, so it must follow it.
func ForecastFigure(symbol string, bars []models.MPriceBar, fc *models.MForecast) *models.MFigure {
	hx, hy := dates(bars)

	n := len(fc.Points)
	fx := make([]string, n)
	yhat := make([]float64, n)
	upper := make([]float64, n)
	lower := make([]float64, n)
	for i, p := range fc.Points {
		fx[i] = p.Date.Format(utils.DateLayout)
		yhat[i], upper[i], lower[i] = p.Predicted, p.Upper, p.Lower
	}

	show := true
	return &models.MFigure{
		Data: []models.MTrace{
			{X: hx, Y: hy, Mode: "lines", Type: "scatter", Name: "Historical Prices"},
			{X: fx, Y: yhat, Mode: "lines", Type: "scatter", Name: "Forecast", Line: map[string]any{"color": "blue"}},
			{X: fx, Y: upper, Mode: "lines", Type: "scatter", Name: "Upper Bound",
				Line: map[string]any{"width": 0, "color": transparentLine}, ShowLegend: &show},
			{X: fx, Y: lower, Mode: "lines", Type: "scatter", Name: "Lower Bound",
				Line: map[string]any{"width": 0, "color": transparentLine}, Fill: "tonexty", FillColor: bandFill, ShowLegend: &show},
		},
		Layout: priceLayout(fmt.Sprintf("%s Price Forecast with Historical Prices", symbol)),
	}
}

// -----------------------------------------------------------------------------

// ComponentsFigure stacks the trend and the seasonal shapes in one figure
// with a subplot per component.
func ComponentsFigure(fc *models.MForecast) *models.MFigure {
	n := len(fc.Points)
	tx := make([]string, n)
	trend := make([]float64, n)
	for i, p := range fc.Points {
		tx[i] = p.Date.Format(utils.DateLayout)
		trend[i] = p.Trend
	}

	traces := []models.MTrace{{X: tx, Y: trend, Mode: "lines", Type: "scatter", Name: "trend", XAxis: "x", YAxis: "y"}}
	layout := map[string]any{
		"title":      map[string]any{"text": "Forecast Components"},
		"showlegend": false,
		"xaxis":      map[string]any{"title": map[string]any{"text": "ds"}},
		"yaxis":      map[string]any{"title": map[string]any{"text": "trend"}},
	}

	rows := 1
	for _, comp := range []struct {
		name    string
		profile []models.MSeasonalPoint
	}{
		{"weekly", fc.WeeklyProfile},
		{"yearly", fc.YearlyProfile},
	} {
		if len(comp.profile) == 0 {
			continue
		}
		rows++
		x := make([]string, len(comp.profile))
		y := make([]float64, len(comp.profile))
		for i, p := range comp.profile {
			x[i], y[i] = p.Label, p.Value
		}
		axis := fmt.Sprintf("%d", rows)
		traces = append(traces, models.MTrace{X: x, Y: y, Mode: "lines", Type: "scatter", Name: comp.name, XAxis: "x" + axis, YAxis: "y" + axis})
		layout["xaxis"+axis] = map[string]any{"title": map[string]any{"text": comp.name}, "type": "category"}
		layout["yaxis"+axis] = map[string]any{"title": map[string]any{"text": comp.name}}
	}

	layout["grid"] = map[string]any{"rows": rows, "columns": 1, "pattern": "independent"}
	layout["height"] = 300 * rows
	return &models.MFigure{Data: traces, Layout: layout}
}
