package datasource

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"stock-forecaster/src/helpers"
	"stock-forecaster/src/interfaces"
	"stock-forecaster/src/logger"
	"stock-forecaster/src/metrics"
	"stock-forecaster/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetchCall struct {
	symbol     string
	start, end time.Time
}

type fakeSource struct {
	name  string
	bars  []models.MPriceBar
	err   error
	panic bool

	mu    sync.Mutex
	calls []fetchCall
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchHistory(_ context.Context, symbol string, start, end time.Time) ([]models.MPriceBar, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fetchCall{symbol, start, end})
	f.mu.Unlock()
	if f.panic {
		panic("parser exploded")
	}
	return f.bars, f.err
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func makeBars(n int) []models.MPriceBar {
	bars := make([]models.MPriceBar, n)
	d := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = models.MPriceBar{Date: d.AddDate(0, 0, i), Close: 100 + float64(i)}
	}
	return bars
}

var (
	rangeStart = time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	rangeEnd   = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

func newManager(sources ...interfaces.IDataSource) *FallbackSourceManager {
	return NewFallbackSourceManager(sources, logger.NewNopLogger(), metrics.New())
}

func TestPrimarySuccessSkipsSecondary(t *testing.T) {
	primary := &fakeSource{name: "yahoo", bars: makeBars(10)}
	secondary := &fakeSource{name: "stooq", bars: makeBars(10)}

	h, err := newManager(primary, secondary).LoadHistory(context.Background(), "aapl", rangeStart, rangeEnd)
	require.NoError(t, err)
	assert.Equal(t, "yahoo", h.Source)
	assert.Equal(t, "AAPL", h.Symbol)
	assert.Len(t, h.Bars, 10)
	assert.Zero(t, secondary.callCount())
}

func TestPrimaryFailureFallsBackWithSameArguments(t *testing.T) {
	primary := &fakeSource{name: "yahoo", err: errors.New("http 503")}
	secondary := &fakeSource{name: "stooq", bars: makeBars(5)}

	h, err := newManager(primary, secondary).LoadHistory(context.Background(), "AAPL", rangeStart, rangeEnd)
	require.NoError(t, err)
	assert.Equal(t, "stooq", h.Source)

	require.Len(t, h.Attempts, 2)
	assert.False(t, h.Attempts[0].Success)
	assert.Contains(t, h.Attempts[0].Reason, "503")
	assert.True(t, h.Attempts[1].Success)

	require.Equal(t, 1, primary.callCount())
	require.Equal(t, 1, secondary.callCount())
	assert.Equal(t, primary.calls[0], secondary.calls[0])
}

func TestShortSeriesCountsAsFailure(t *testing.T) {
	primary := &fakeSource{name: "yahoo", bars: makeBars(1)}
	secondary := &fakeSource{name: "stooq", bars: makeBars(3)}

	h, err := newManager(primary, secondary).LoadHistory(context.Background(), "AAPL", rangeStart, rangeEnd)
	require.NoError(t, err)
	assert.Equal(t, "stooq", h.Source)
	assert.Equal(t, "only 1 records", h.Attempts[0].Reason)
}

func TestAllSourcesFailIsDataUnavailable(t *testing.T) {
	primary := &fakeSource{name: "yahoo", err: errors.New("not found")}
	secondary := &fakeSource{name: "stooq", bars: nil}

	_, err := newManager(primary, secondary).LoadHistory(context.Background(), "ZZZNOTREAL", rangeStart, rangeEnd)
	var dataErr *helpers.DataUnavailableError
	require.ErrorAs(t, err, &dataErr)
	assert.Equal(t, "ZZZNOTREAL", dataErr.Symbol)
	assert.Len(t, dataErr.Attempts, 2)
}

func TestPanickingSourceIsContained(t *testing.T) {
	primary := &fakeSource{name: "yahoo", panic: true}
	secondary := &fakeSource{name: "stooq", bars: makeBars(4)}

	h, err := newManager(primary, secondary).LoadHistory(context.Background(), "AAPL", rangeStart, rangeEnd)
	require.NoError(t, err)
	assert.Equal(t, "stooq", h.Source)
	assert.Contains(t, h.Attempts[0].Reason, "panicked")
}

func TestMalformedSymbolSkipsNetwork(t *testing.T) {
	primary := &fakeSource{name: "yahoo", bars: makeBars(4)}

	_, err := newManager(primary).LoadHistory(context.Background(), "NOT A TICKER!", rangeStart, rangeEnd)
	var dataErr *helpers.DataUnavailableError
	require.ErrorAs(t, err, &dataErr)
	assert.Zero(t, primary.callCount())
}

func TestManagerName(t *testing.T) {
	m := newManager(&fakeSource{name: "yahoo"}, &fakeSource{name: "stooq"})
	assert.Equal(t, "yahoo>stooq", m.Name())
}

func TestBuildSources(t *testing.T) {
	cfg := &models.MConfig{DataSource: models.MDataSourceConfig{Sources: []models.MSourceConfig{
		{Name: "yahoo"}, {Name: "stooq"}, {Name: "eodhd", APIKey: "k"},
	}}}
	sources, err := BuildSources(cfg, nil, logger.NewNopLogger())
	require.NoError(t, err)
	require.Len(t, sources, 3)
	assert.Equal(t, "yahoo", sources[0].Name())
	assert.Equal(t, "stooq", sources[1].Name())
	assert.Equal(t, "eodhd", sources[2].Name())

	cfg.DataSource.Sources = []models.MSourceConfig{{Name: "bloomberg"}}
	_, err = BuildSources(cfg, nil, logger.NewNopLogger())
	assert.Error(t, err)
}
