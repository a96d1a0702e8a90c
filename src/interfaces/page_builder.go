package interfaces

import (
	"context"

	"stock-forecaster/src/models"
)

// -----------------------------------------------------------------------------
// IPageBuilder runs the forecast pipeline for the HTTP and websocket layer.
// -----------------------------------------------------------------------------

type IPageBuilder interface {

	// BuildPage never fails; problems are reported in the result messages.
	BuildPage(ctx context.Context, req models.MPageRequest) *models.MPageResult

	// ValidateRequest rejects parameters the JSON API answers with 400.
	ValidateRequest(req models.MPageRequest) error

	Instruments() []models.MInstrument

	MarketStatus() models.MMarketStatus
}
