package interfaces

import (
	"context"
	"time"

	"stock-forecaster/src/models"
)

// -----------------------------------------------------------------------------
// IDataSource fetches daily history for one symbol from one provider.
// -----------------------------------------------------------------------------

type IDataSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchHistory returns daily bars in [start, end], oldest first.
	// An unknown symbol yields an error or an empty slice.
	FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]models.MPriceBar, error)
}

// -----------------------------------------------------------------------------
// IHistoryProvider is the acquisition step as seen by the pipeline.
// -----------------------------------------------------------------------------

type IHistoryProvider interface {
	LoadHistory(ctx context.Context, symbol string, start, end time.Time) (*models.MHistory, error)
}
