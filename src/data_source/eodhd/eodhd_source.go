package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"stock-forecaster/src/interfaces"
	"stock-forecaster/src/logger"
	"stock-forecaster/src/models"
	"stock-forecaster/src/utils"
)

const DefaultBaseURL = "https://eodhd.com"

// EODHDSource reads end-of-day prices from eodhd.com. It needs an API key.
type EODHDSource struct {
	SourceConfig models.MSourceConfig
	Network      interfaces.INetworkManager
	Logger       *logger.Logger
	baseURL      string
}

type eodRow struct {
	Date          string   `json:"date"`
	Open          float64  `json:"open"`
	High          float64  `json:"high"`
	Low           float64  `json:"low"`
	Close         float64  `json:"close"`
	AdjustedClose *float64 `json:"adjusted_close"`
	Volume        float64  `json:"volume"`
}

// -----------------------------------------------------------------------------

func NewEODHDSource(sourceCfg models.MSourceConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *EODHDSource {
	base := sourceCfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &EODHDSource{
		SourceConfig: sourceCfg,
		Network:      netMgr,
		Logger:       log,
		baseURL:      strings.TrimRight(base, "/"),
	}
}

// -----------------------------------------------------------------------------

func (s *EODHDSource) Name() string {
	return "eodhd"
}

// -----------------------------------------------------------------------------

// MapSymbol turns a bare US ticker into the EODHD form (AAPL -> AAPL.US).
// Tickers that already carry an exchange suffix pass through.
func MapSymbol(symbol string) string {
	switch {
	case strings.HasSuffix(symbol, "-USD"):
		return symbol + ".CC"
	case strings.HasSuffix(symbol, "=F"):
		return strings.TrimSuffix(symbol, "=F") + ".COMM"
	case strings.Contains(symbol, "."):
		return symbol
	}
	return symbol + ".US"
}

// -----------------------------------------------------------------------------

func (s *EODHDSource) FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]models.MPriceBar, error) {
	if s.SourceConfig.APIKey == "" {
		return nil, fmt.Errorf("eodhd api key is not configured")
	}

	params := map[string]string{
		"api_token": s.SourceConfig.APIKey,
		"fmt":       "json",
		"period":    "d",
		"from":      start.Format(utils.DateLayout),
		"to":        end.Format(utils.DateLayout),
	}
	endpoint := fmt.Sprintf("%s/api/eod/%s", s.baseURL, url.PathEscape(MapSymbol(symbol)))

	body, err := s.Network.Get(ctx, endpoint, params)
	if err != nil {
		return nil, fmt.Errorf("network error for %s: %w", symbol, err)
	}

	var rows []eodRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	bars := make([]models.MPriceBar, 0, len(rows))
	for _, r := range rows {
		date, err := time.Parse(utils.DateLayout, r.Date)
		if err != nil {
			continue
		}
		closeVal := r.Close
		if r.AdjustedClose != nil && *r.AdjustedClose > 0 {
			closeVal = *r.AdjustedClose
		}
		bars = append(bars, models.MPriceBar{
			Symbol: symbol,
			Date:   date,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  closeVal,
			Volume: r.Volume,
		})
	}

	bars = utils.NormalizeBars(bars)
	s.Logger.Debug("Fetched %s from eodhd: %d bars", symbol, len(bars))
	return bars, nil
}
