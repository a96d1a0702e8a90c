package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stock-forecaster/src/analysis/core"
	"stock-forecaster/src/helpers"
	"stock-forecaster/src/interfaces"
	"stock-forecaster/src/logger"
	"stock-forecaster/src/metrics"
	"stock-forecaster/src/models"
	"stock-forecaster/src/presentation"
	"stock-forecaster/src/utils"
)

const (
	NoDataMessage      = "No data available for the selected stock. Please try another stock or check your internet connection."
	predictionErrorFmt = "Error in prediction: %v"

	outcomeOK            = "ok"
	outcomeNoData        = "no_data"
	outcomeForecastError = "forecast_error"
)

// ForecastFacade runs the whole page pipeline for one request: resolve the
// ticker, load history, forecast, and build what the UI renders.
type ForecastFacade struct {
	Config     *models.MConfig
	History    interfaces.IHistoryProvider
	Forecaster interfaces.IForecaster
	Scheduler  *utils.MarketScheduler
	Logger     *logger.Logger
	Metrics    *metrics.Recorder

	aboutHTML string
	now       func() time.Time
}

// -----------------------------------------------------------------------------

func NewForecastFacade(
	cfg *models.MConfig,
	history interfaces.IHistoryProvider,
	fc interfaces.IForecaster,
	sched *utils.MarketScheduler,
	log *logger.Logger,
	rec *metrics.Recorder,
) *ForecastFacade {
	about, err := presentation.RenderMarkdown(cfg.UI.AboutMarkdown)
	if err != nil {
		log.Warning("About panel could not be rendered: %v", err)
	}

	return &ForecastFacade{
		Config:     cfg,
		History:    history,
		Forecaster: fc,
		Scheduler:  sched,
		Logger:     log,
		Metrics:    rec,
		aboutHTML:  about,
		now:        time.Now,
	}
}

// -----------------------------------------------------------------------------

// Instruments is the example list for the selector.
func (f *ForecastFacade) Instruments() []models.MInstrument {
	if len(f.Config.UI.Instruments) == 0 {
		return models.DefaultInstruments()
	}
	return f.Config.UI.Instruments
}

// -----------------------------------------------------------------------------

// ResolveSymbol picks the manual entry when present, else the selected
// example, else the first instrument.
func (f *ForecastFacade) ResolveSymbol(selected, manual string) string {
	if s := utils.NormalizeSymbol(manual); s != "" {
		return s
	}
	if s := utils.NormalizeSymbol(selected); s != "" {
		return s
	}
	return utils.NormalizeSymbol(f.Instruments()[0].Symbol)
}

// -----------------------------------------------------------------------------

// ValidateRequest is the strict check used by the JSON API. The HTML page
// uses BuildPage directly, which falls back to defaults instead.
func (f *ForecastFacade) ValidateRequest(req models.MPageRequest) error {
	fcCfg := f.Config.Forecast
	if req.Years != 0 && (req.Years < fcCfg.MinYears || req.Years > fcCfg.MaxYears) {
		return helpers.NewValidationError("years must be between %d and %d, got %d", fcCfg.MinYears, fcCfg.MaxYears, req.Years)
	}
	if !req.Start.IsZero() && !req.End.IsZero() && req.End.Before(req.Start) {
		return helpers.NewValidationError("end %s is before start %s", req.End.Format(utils.DateLayout), req.Start.Format(utils.DateLayout))
	}
	if s := f.ResolveSymbol(req.Symbol, req.ManualSymbol); !utils.IsValidSymbol(s) {
		return helpers.NewValidationError("invalid ticker %q", s)
	}
	return nil
}

// -----------------------------------------------------------------------------

// BuildPage never fails. Every problem ends up in the returned Messages and
// the parts that could not be built are left nil.
func (f *ForecastFacade) BuildPage(ctx context.Context, req models.MPageRequest) *models.MPageResult {
	res := &models.MPageResult{
		Symbol:      f.ResolveSymbol(req.Symbol, req.ManualSymbol),
		Years:       f.resolveYears(req.Years),
		AboutHTML:   f.aboutHTML,
		GeneratedAt: f.now().Unix(),
	}
	if res.Years != req.Years && req.Years != 0 {
		res.AddMessage(models.LevelInfo, fmt.Sprintf(
			"Years of prediction must be between %d and %d; using %d.",
			f.Config.Forecast.MinYears, f.Config.Forecast.MaxYears, res.Years))
	}
	res.HorizonDays = res.Years * utils.DaysPerYear
	res.DisplayName = f.displayName(res.Symbol)
	if f.Scheduler != nil {
		res.MarketOpen = f.Scheduler.IsMarketOpen(res.Symbol)
	}

	start, end := f.resolveRange(req)
	res.Start = start.Format(utils.DateLayout)
	res.End = end.Format(utils.DateLayout)

	f.Logger.Info("Building page for %s (%s..%s, %d years)", res.Symbol, res.Start, res.End, res.Years)

	history, err := f.History.LoadHistory(ctx, res.Symbol, start, end)
	if err != nil {
		var dataErr *helpers.DataUnavailableError
		if errors.As(err, &dataErr) {
			res.Attempts = dataErr.Attempts
		}
		f.Logger.Warning("History for %s unavailable: %v", res.Symbol, err)
		res.AddMessage(models.LevelWarning, NoDataMessage)
		f.Metrics.RecordPage(outcomeNoData)
		return res
	}

	res.Source = history.Source
	res.FromCache = history.FromCache
	res.Attempts = history.Attempts
	res.RecentRows = presentation.RecentRows(history.Bars, f.Config.UI.RecentRows)
	res.Historical = presentation.HistoricalFigure(res.Symbol, history.Bars)
	res.Summary = core.Summarize(history.Bars)

	fc, err := f.Forecaster.Forecast(ctx, history, res.HorizonDays)
	if err != nil {
		f.Logger.Error("Forecast for %s failed: %v", res.Symbol, err)
		res.AddMessage(models.LevelError, fmt.Sprintf(predictionErrorFmt, predictionCause(err)))
		f.Metrics.RecordPage(outcomeForecastError)
		return res
	}

	res.Forecast = fc
	applyFit(res.Summary, history.Bars, fc)
	res.ForecastChart = presentation.ForecastFigure(res.Symbol, history.Bars, fc)
	res.Components = presentation.ComponentsFigure(fc)
	f.Metrics.RecordPage(outcomeOK)
	return res
}

// -----------------------------------------------------------------------------

func (f *ForecastFacade) resolveYears(years int) int {
	c := f.Config.Forecast
	if years < c.MinYears || years > c.MaxYears {
		return c.DefaultYears
	}
	return years
}

func (f *ForecastFacade) resolveRange(req models.MPageRequest) (time.Time, time.Time) {
	start := req.Start
	if start.IsZero() {
		// validated at startup
		start, _ = time.Parse(utils.DateLayout, f.Config.DataSource.StartDate)
	}
	end := req.End
	if end.IsZero() {
		end = f.now()
	}
	return utils.TruncateDay(start), utils.TruncateDay(end)
}

func (f *ForecastFacade) displayName(symbol string) string {
	for _, inst := range f.Instruments() {
		if utils.NormalizeSymbol(inst.Symbol) == symbol {
			return inst.Label()
		}
	}
	return symbol
}

func applyFit(s *models.MSummary, bars []models.MPriceBar, fc *models.MForecast) {
	n := min(len(bars), len(fc.Points))
	actual := make([]float64, n)
	fitted := make([]float64, n)
	for i := 0; i < n; i++ {
		actual[i] = bars[i].Close
		fitted[i] = fc.Points[i].Predicted
	}
	core.ApplyFitQuality(s, actual, fitted)
}

// predictionCause strips the generic wrapper so the page shows the reason.
func predictionCause(err error) error {
	var fcErr *helpers.ForecastError
	if errors.As(err, &fcErr) && fcErr.Cause != nil {
		return fcErr.Cause
	}
	return err
}

// -----------------------------------------------------------------------------

// MarketStatus reports the open state of every example instrument.
func (f *ForecastFacade) MarketStatus() models.MMarketStatus {
	status := models.MMarketStatus{Timestamp: f.now().Unix(), Open: make(map[string]bool)}
	if f.Scheduler == nil {
		return status
	}
	for _, inst := range f.Instruments() {
		open := f.Scheduler.IsMarketOpen(inst.Symbol)
		status.Open[utils.NormalizeSymbol(inst.Symbol)] = open
		status.AnyOpen = status.AnyOpen || open
	}
	return status
}
