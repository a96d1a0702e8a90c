package stooq

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stock-forecaster/src/logger"
	"stock-forecaster/src/models"
	"stock-forecaster/src/network"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapSymbol(t *testing.T) {
	cases := map[string]string{
		"AAPL":     "aapl.us",
		"BRK-B":    "brk-b.us",
		"BTC-USD":  "btcusd",
		"GC=F":     "gc.f",
		"EURUSD=X": "eurusd",
		"VOD.L":    "vod.uk",
		"^SPX":     "^spx",
	}
	for in, want := range cases {
		assert.Equal(t, want, MapSymbol(in), in)
	}
}

func newSource(t *testing.T, handler http.HandlerFunc) *StooqSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &models.MConfig{Network: models.MNetworkConfig{RequestTimeout: 5}}
	nm := network.NewNetworkManager(cfg, logger.NewNopLogger())
	return NewStooqSource(models.MSourceConfig{Name: "stooq", BaseURL: srv.URL}, nm, logger.NewNopLogger())
}

func TestFetchHistoryParsesCSV(t *testing.T) {
	src := newSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/q/d/l/", r.URL.Path)
		assert.Equal(t, "aapl.us", r.URL.Query().Get("s"))
		assert.Equal(t, "20240101", r.URL.Query().Get("d1"))
		assert.Equal(t, "20240105", r.URL.Query().Get("d2"))
		_, _ = w.Write([]byte("Date,Open,High,Low,Close,Volume\n" +
			"2024-01-03,184.2,185.8,183.4,184.25,58414500\n" +
			"2024-01-02,187.1,188.4,183.8,185.64,82488700\n" +
			"bogus,row\n"))
	})

	bars, err := src.FetchHistory(context.Background(), "AAPL",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, "2024-01-02", bars[0].Date.Format("2006-01-02"))
	assert.Equal(t, 184.25, bars[1].Close)
	assert.Equal(t, "AAPL", bars[1].Symbol)
}

func TestFetchHistoryNoData(t *testing.T) {
	src := newSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("No data"))
	})

	_, err := src.FetchHistory(context.Background(), "ZZZNOTREAL", time.Now().AddDate(-1, 0, 0), time.Now())
	assert.Error(t, err)
}
