package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestNewConfigDefaultsWithoutFile(t *testing.T) {
	cfg, err := NewConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8501, cfg.Port)
	assert.Equal(t, "2010-01-01", cfg.DataSource.StartDate)
	assert.Equal(t, 2, cfg.Forecast.DefaultYears)
	assert.Equal(t, 1, cfg.Forecast.MinYears)
	assert.Equal(t, 3, cfg.Forecast.MaxYears)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	require.Len(t, cfg.DataSource.Sources, 2)
	assert.Equal(t, "yahoo", cfg.DataSource.Sources[0].Name)
	assert.Equal(t, "stooq", cfg.DataSource.Sources[1].Name)
	assert.NotEmpty(t, cfg.UI.Instruments)
}

func TestNewConfigReadsYAML(t *testing.T) {
	path := writeYAML(t, `
name: test-app
port: 9000
log_level: DEBUG
data_source:
  start_date: "2015-06-01"
  sources:
    - name: stooq
forecast:
  default_years: 3
`)
	cfg, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "test-app", cfg.Name)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "2015-06-01", cfg.DataSource.StartDate)
	require.Len(t, cfg.DataSource.Sources, 1)
	assert.Equal(t, 3, cfg.Forecast.DefaultYears)
}

func TestNewConfigEnvOverrides(t *testing.T) {
	t.Setenv("SF_PORT", "9100")
	t.Setenv("SF_LOG_LEVEL", "error")
	t.Setenv("SF_CACHE_BACKEND", "layered")
	t.Setenv("EODHD_API_KEY", "demo")

	cfg, err := NewConfig("")
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "ERROR", cfg.LogLevel)
	assert.Equal(t, "layered", cfg.Cache.Backend)
	require.Len(t, cfg.DataSource.Sources, 3)
	assert.Equal(t, "eodhd", cfg.DataSource.Sources[2].Name)
	assert.Equal(t, "demo", cfg.DataSource.Sources[2].APIKey)
}

func TestNewConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"low port":        "port: 80\n",
		"bad level":       "log_level: LOUD\n",
		"unknown source":  "data_source:\n  sources:\n    - name: bloomberg\n",
		"bad start date":  "data_source:\n  start_date: yesterday\n",
		"eodhd needs key": "data_source:\n  sources:\n    - name: eodhd\n",
		"duplicate":       "data_source:\n  sources:\n    - name: yahoo\n    - name: yahoo\n",
		"years order":     "forecast:\n  min_years: 2\n  max_years: 1\n  default_years: 2\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewConfig(writeYAML(t, body))
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg, err := NewConfig("")
	require.NoError(t, err)
	cfg.Name = "saved"

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "saved", loaded.Name)
	assert.Equal(t, cfg.UI.Instruments, loaded.UI.Instruments)
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestShippedDefaultConfigIsValid(t *testing.T) {
	cfg, err := NewConfig(filepath.Join("..", "..", "config", "default.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 50051, cfg.GrpcPort)
	assert.Equal(t, "0 6 * * 1-5", cfg.Cache.PurgeCron)
	require.Len(t, cfg.UI.Instruments, 9)
	assert.Equal(t, "GC=F", cfg.UI.Instruments[8].Symbol)
}
