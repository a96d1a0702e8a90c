package datasource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stock-forecaster/src/helpers"
	"stock-forecaster/src/interfaces"
	"stock-forecaster/src/logger"
	"stock-forecaster/src/metrics"
	"stock-forecaster/src/models"
	"stock-forecaster/src/utils"
)

// FallbackSourceManager asks its sources in order and returns the first
// usable series. The first source is the primary.
type FallbackSourceManager struct {
	Sources []interfaces.IDataSource
	Logger  *logger.Logger
	Metrics *metrics.Recorder
}

// -----------------------------------------------------------------------------

func NewFallbackSourceManager(sources []interfaces.IDataSource, log *logger.Logger, rec *metrics.Recorder) *FallbackSourceManager {
	return &FallbackSourceManager{
		Sources: sources,
		Logger:  log,
		Metrics: rec,
	}
}

// -----------------------------------------------------------------------------

// Name returns the source names joined in fallback order
func (m *FallbackSourceManager) Name() string {
	names := make([]string, 0, len(m.Sources))
	for _, s := range m.Sources {
		names = append(names, s.Name())
	}
	return strings.Join(names, ">")
}

// -----------------------------------------------------------------------------

// LoadHistory tries every source with the same symbol and range. A source
// that errors or returns fewer than two bars counts as a failed attempt. When
// all fail the result is a *helpers.DataUnavailableError.
func (m *FallbackSourceManager) LoadHistory(ctx context.Context, symbol string, start, end time.Time) (*models.MHistory, error) {
	symbol = utils.NormalizeSymbol(symbol)
	start, end = utils.TruncateDay(start), utils.TruncateDay(end)

	if !utils.IsValidSymbol(symbol) {
		return nil, helpers.NewDataUnavailableError(symbol, []models.MFetchAttempt{{Source: "validation", Reason: "malformed ticker"}})
	}
	if end.Before(start) {
		return nil, helpers.NewDataUnavailableError(symbol, []models.MFetchAttempt{{Source: "validation", Reason: "end date before start date"}})
	}

	attempts := make([]models.MFetchAttempt, 0, len(m.Sources))
	for _, src := range m.Sources {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, models.MFetchAttempt{Source: src.Name(), Reason: err.Error()})
			break
		}

		bars, err := m.fetch(ctx, src, symbol, start, end)
		attempt := models.MFetchAttempt{Source: src.Name(), Records: len(bars)}

		switch {
		case err != nil:
			attempt.Reason = err.Error()
		case len(bars) < utils.MinUsableRecords:
			attempt.Reason = fmt.Sprintf("only %d records", len(bars))
		default:
			attempt.Success = true
		}
		attempts = append(attempts, attempt)

		if !attempt.Success {
			m.Metrics.RecordFetch(src.Name(), "failure")
			m.Logger.Warning("Source %s failed for %s: %s", src.Name(), symbol, attempt.Reason)
			continue
		}

		m.Metrics.RecordFetch(src.Name(), "success")
		m.Logger.Info("Loaded %d bars for %s from %s", len(bars), symbol, src.Name())
		return &models.MHistory{
			Symbol:   symbol,
			Start:    start,
			End:      end,
			Bars:     bars,
			Source:   src.Name(),
			Attempts: attempts,
		}, nil
	}

	return nil, helpers.NewDataUnavailableError(symbol, attempts)
}

// -----------------------------------------------------------------------------

// fetch isolates one source so a panic in a parser becomes a failed attempt.
func (m *FallbackSourceManager) fetch(ctx context.Context, src interfaces.IDataSource, symbol string, start, end time.Time) (bars []models.MPriceBar, err error) {
	defer func() {
		if r := recover(); r != nil {
			bars, err = nil, fmt.Errorf("source %s panicked: %v", src.Name(), r)
		}
	}()
	return src.FetchHistory(ctx, symbol, start, end)
}
