package forecast

import (
	"context"
	"fmt"
	"time"

	"stock-forecaster/src/helpers"
	"stock-forecaster/src/logger"
	"stock-forecaster/src/metrics"
	"stock-forecaster/src/models"
	"stock-forecaster/src/utils"
)

const (
	FrequencyCalendar = "calendar"
	FrequencyTrading  = "trading"
)

// Forecaster fits a fresh Model per request and extends it over the horizon.
type Forecaster struct {
	Params    Params
	Frequency string
	Scheduler *utils.MarketScheduler
	Logger    *logger.Logger
	Metrics   *metrics.Recorder
}

// -----------------------------------------------------------------------------

func NewForecaster(cfg models.MForecastConfig, sched *utils.MarketScheduler, log *logger.Logger, rec *metrics.Recorder) *Forecaster {
	freq := cfg.Frequency
	if freq == "" {
		freq = FrequencyCalendar
	}
	return &Forecaster{
		Params:    ParamsFromConfig(cfg),
		Frequency: freq,
		Scheduler: sched,
		Logger:    log,
		Metrics:   rec,
	}
}

// -----------------------------------------------------------------------------

// Forecast returns one point per historical date plus the future dates. Any
// failure, including a panic inside the model, is a *helpers.ForecastError.
func (f *Forecaster) Forecast(ctx context.Context, history *models.MHistory, horizonDays int) (fc *models.MForecast, err error) {
	defer func() {
		if r := recover(); r != nil {
			fc, err = nil, helpers.NewForecastError(fmt.Errorf("model panicked: %v", r))
		}
	}()

	if horizonDays <= 0 {
		return nil, helpers.NewForecastError(fmt.Errorf("horizon must be positive, got %d", horizonDays))
	}
	if history == nil || len(history.Bars) < utils.MinUsableRecords {
		return nil, helpers.NewForecastError(ErrTooFewPoints)
	}
	if err := ctx.Err(); err != nil {
		return nil, helpers.NewForecastError(err)
	}

	started := time.Now()

	dates := make([]time.Time, len(history.Bars))
	closes := make([]float64, len(history.Bars))
	for i, b := range history.Bars {
		dates[i] = utils.TruncateDay(b.Date)
		closes[i] = b.Close
	}

	model, err := Fit(dates, closes, f.Params)
	if err != nil {
		return nil, helpers.NewForecastError(err)
	}

	future := f.futureDates(history.Symbol, dates[len(dates)-1], horizonDays)
	all := make([]time.Time, 0, len(dates)+len(future))
	all = append(all, dates...)
	all = append(all, future...)

	comps := model.Predict(all)
	points := make([]models.MForecastPoint, len(comps))
	for i, c := range comps {
		points[i] = models.MForecastPoint{
			Date:      c.Date,
			Predicted: c.Predicted,
			Lower:     c.Lower,
			Upper:     c.Upper,
			Trend:     c.Trend,
			Weekly:    c.Weekly,
			Yearly:    c.Yearly,
		}
	}

	elapsed := time.Since(started)
	f.Metrics.RecordForecast(elapsed.Seconds())
	f.Logger.Info("Forecast %s: %d history + %d future points in %v (yearly=%t weekly=%t)",
		history.Symbol, len(dates), len(future), elapsed.Round(time.Millisecond), model.HasYearly(), model.HasWeekly())

	return &models.MForecast{
		Symbol:        history.Symbol,
		HorizonDays:   horizonDays,
		Points:        points,
		WeeklyProfile: model.WeeklyProfile(),
		YearlyProfile: model.YearlyProfile(),
	}, nil
}

// -----------------------------------------------------------------------------

// futureDates lists the dates after last. Calendar frequency yields exactly
// horizonDays daily dates; trading frequency walks exchange sessions until
// last+horizonDays is reached.
func (f *Forecaster) futureDates(symbol string, last time.Time, horizonDays int) []time.Time {
	if f.Frequency == FrequencyTrading {
		var cal *utils.TradingCalendar
		if f.Scheduler != nil {
			cal = f.Scheduler.CalendarFor(symbol)
		} else {
			cal = utils.GetCalendar(symbol)
		}
		return cal.TradingDaysAfter(last, horizonDays)
	}

	out := make([]time.Time, horizonDays)
	for i := range out {
		out[i] = last.AddDate(0, 0, i+1)
	}
	return out
}
