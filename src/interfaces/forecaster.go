package interfaces

import (
	"context"

	"stock-forecaster/src/models"
)

// IForecaster fits a model on a history and projects it horizonDays ahead.
type IForecaster interface {
	Forecast(ctx context.Context, history *models.MHistory, horizonDays int) (*models.MForecast, error)
}
