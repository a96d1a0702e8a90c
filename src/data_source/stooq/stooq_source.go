package stooq

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"stock-forecaster/src/interfaces"
	"stock-forecaster/src/logger"
	"stock-forecaster/src/models"
	"stock-forecaster/src/utils"
)

const DefaultBaseURL = "https://stooq.com"

// Yahoo exchange suffixes and their stooq equivalents.
var suffixMap = map[string]string{
	".L":  ".uk",
	".DE": ".de",
	".F":  ".de",
	".T":  ".jp",
	".HK": ".hk",
}

// StooqSource downloads daily bars as CSV from stooq.com.
type StooqSource struct {
	SourceConfig models.MSourceConfig
	Network      interfaces.INetworkManager
	Logger       *logger.Logger
	baseURL      string
}

// -----------------------------------------------------------------------------

func NewStooqSource(sourceCfg models.MSourceConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *StooqSource {
	base := sourceCfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &StooqSource{
		SourceConfig: sourceCfg,
		Network:      netMgr,
		Logger:       log,
		baseURL:      strings.TrimRight(base, "/"),
	}
}

// -----------------------------------------------------------------------------

func (s *StooqSource) Name() string {
	return "stooq"
}

// -----------------------------------------------------------------------------

// MapSymbol converts a Yahoo style ticker to the stooq naming scheme:
// AAPL -> aapl.us, BTC-USD -> btcusd, GC=F -> gc.f, VOD.L -> vod.uk.
func MapSymbol(symbol string) string {
	sym := strings.ToUpper(symbol)
	switch {
	case strings.HasPrefix(sym, "^"):
		return strings.ToLower(sym)
	case strings.HasSuffix(sym, "=F"):
		return strings.ToLower(strings.TrimSuffix(sym, "=F")) + ".f"
	case strings.HasSuffix(sym, "=X"):
		return strings.ToLower(strings.TrimSuffix(sym, "=X"))
	case strings.Count(sym, "-") == 1 && len(sym) > 4 && isCurrency(sym[strings.Index(sym, "-")+1:]):
		return strings.ToLower(strings.ReplaceAll(sym, "-", ""))
	}

	if i := strings.LastIndex(sym, "."); i > 0 {
		if mapped, ok := suffixMap[sym[i:]]; ok {
			return strings.ToLower(sym[:i]) + mapped
		}
		return strings.ToLower(sym)
	}
	return strings.ToLower(sym) + ".us"
}

func isCurrency(s string) bool {
	switch s {
	case "USD", "EUR", "GBP", "JPY", "USDT":
		return true
	}
	return false
}

// -----------------------------------------------------------------------------

func (s *StooqSource) FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]models.MPriceBar, error) {
	params := map[string]string{
		"s":  MapSymbol(symbol),
		"d1": start.Format("20060102"),
		"d2": end.Format("20060102"),
		"i":  "d",
	}

	body, err := s.Network.Get(ctx, s.baseURL+"/q/d/l/", params)
	if err != nil {
		return nil, fmt.Errorf("network error for %s: %w", symbol, err)
	}

	return s.parseCSV(symbol, body)
}

// -----------------------------------------------------------------------------

func (s *StooqSource) parseCSV(symbol string, body []byte) ([]models.MPriceBar, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.HasPrefix(trimmed, []byte("No data")) {
		return nil, fmt.Errorf("stooq has no data for %s", symbol)
	}

	r := csv.NewReader(bytes.NewReader(trimmed))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{"date", "open", "high", "low", "close"} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("unexpected csv header %v for %s", header, symbol)
		}
	}

	var bars []models.MPriceBar
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		bar, ok := parseRow(symbol, rec, idx)
		if !ok {
			s.Logger.Debug("Skipping malformed stooq row for %s: %v", symbol, rec)
			continue
		}
		bars = append(bars, bar)
	}

	bars = utils.NormalizeBars(bars)
	s.Logger.Debug("Fetched %s from stooq: %d bars", symbol, len(bars))
	return bars, nil
}

// -----------------------------------------------------------------------------

func parseRow(symbol string, rec []string, idx map[string]int) (models.MPriceBar, bool) {
	field := func(name string) (float64, bool) {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return 0, false
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
		return v, err == nil
	}

	if idx["date"] >= len(rec) {
		return models.MPriceBar{}, false
	}
	date, err := time.Parse(utils.DateLayout, strings.TrimSpace(rec[idx["date"]]))
	if err != nil {
		return models.MPriceBar{}, false
	}

	open, ok1 := field("open")
	high, ok2 := field("high")
	low, ok3 := field("low")
	closeVal, ok4 := field("close")
	if !(ok1 && ok2 && ok3 && ok4) {
		return models.MPriceBar{}, false
	}
	volume, _ := field("volume")

	return models.MPriceBar{
		Symbol: symbol,
		Date:   date,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closeVal,
		Volume: volume,
	}, true
}
