package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stock-forecaster/src/interfaces"
	"stock-forecaster/src/logger"
	"stock-forecaster/src/models"
	"stock-forecaster/src/utils"
)

const DefaultBaseURL = "https://query1.finance.yahoo.com"

// YahooFinanceSource reads daily bars from the v8 chart endpoint.
type YahooFinanceSource struct {
	SourceConfig models.MSourceConfig
	Network      interfaces.INetworkManager
	Logger       *logger.Logger
	baseURL      string
}

// -----------------------------------------------------------------------------

func NewYahooFinanceSource(sourceCfg models.MSourceConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *YahooFinanceSource {
	base := sourceCfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &YahooFinanceSource{
		SourceConfig: sourceCfg,
		Network:      netMgr,
		Logger:       log,
		baseURL:      strings.TrimRight(base, "/"),
	}
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) Name() string {
	return "yahoo"
}

// -----------------------------------------------------------------------------

// FetchHistory requests [start, end] inclusive. period2 is exclusive on the
// Yahoo side so one day is added.
func (s *YahooFinanceSource) FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]models.MPriceBar, error) {
	params := map[string]string{
		"period1":        strconv.FormatInt(utils.TruncateDay(start).Unix(), 10),
		"period2":        strconv.FormatInt(utils.TruncateDay(end).AddDate(0, 0, 1).Unix(), 10),
		"interval":       "1d",
		"includePrePost": "false",
		"events":         "div,splits",
	}

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", s.baseURL, url.PathEscape(symbol))

	respBytes, err := s.Network.Get(ctx, endpoint, params)
	if err != nil {
		return nil, fmt.Errorf("network error for %s: %w", symbol, err)
	}

	return s.parseChartResponse(symbol, respBytes)
}

// -----------------------------------------------------------------------------

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency     string `json:"currency"`
				Symbol       string `json:"symbol"`
				ExchangeName string `json:"exchangeName"`
				Timezone     string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Open   []*float64 `json:"open"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) parseChartResponse(symbol string, data []byte) ([]models.MPriceBar, error) {
	var resp chartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s - %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}

	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no result in response for %s", symbol)
	}

	result := resp.Chart.Result[0]
	if len(result.Timestamp) == 0 {
		return nil, nil
	}
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data in response for %s", symbol)
	}

	quote := result.Indicators.Quote[0]
	n := len(result.Timestamp)
	if len(quote.Close) != n || len(quote.Open) != n || len(quote.High) != n || len(quote.Low) != n || len(quote.Volume) != n {
		return nil, fmt.Errorf("data alignment error for %s", symbol)
	}

	// Daily bars are stamped at the exchange open; the calendar day in the
	// exchange zone is the trading date.
	loc := time.UTC
	if result.Meta.Timezone != "" {
		if l, err := time.LoadLocation(result.Meta.Timezone); err == nil {
			loc = l
		}
	}

	bars := make([]models.MPriceBar, 0, n)
	skipped := 0
	for i, ts := range result.Timestamp {
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil || quote.Close[i] == nil {
			skipped++
			continue
		}
		volume := 0.0
		if quote.Volume[i] != nil {
			volume = *quote.Volume[i]
		}

		y, m, d := time.Unix(ts, 0).In(loc).Date()
		bars = append(bars, models.MPriceBar{
			Symbol: symbol,
			Date:   time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
			Open:   *quote.Open[i],
			High:   *quote.High[i],
			Low:    *quote.Low[i],
			Close:  *quote.Close[i],
			Volume: volume,
		})
	}

	bars = utils.NormalizeBars(bars)
	s.Logger.Debug("Fetched %s: %d bars (%d null rows skipped)", symbol, len(bars), skipped)
	return bars, nil
}
