package models

import "time"

// Message levels shown on the page.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// MPageRequest is the input of one pipeline run. Start and End are optional.
type MPageRequest struct {
	Symbol       string    `json:"symbol"`
	ManualSymbol string    `json:"manual_symbol"`
	Years        int       `json:"years"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
}

// MRunCommand is what a websocket client sends to re-run the pipeline.
type MRunCommand struct {
	Command      string `json:"command"`
	Symbol       string `json:"symbol"`
	ManualSymbol string `json:"manual_symbol"`
	Years        int    `json:"years"`
}

type MMessage struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// MTableRow is one formatted row of the recent data table.
type MTableRow struct {
	Date   string `json:"date"`
	Open   string `json:"open"`
	High   string `json:"high"`
	Low    string `json:"low"`
	Close  string `json:"close"`
	Volume string `json:"volume"`
	Change string `json:"change"`
}

// MTrace and MFigure are serialized as plotly data and layout objects.
type MTrace struct {
	X          []string       `json:"x"`
	Y          []float64      `json:"y"`
	Mode       string         `json:"mode,omitempty"`
	Type       string         `json:"type,omitempty"`
	Name       string         `json:"name"`
	Line       map[string]any `json:"line,omitempty"`
	Fill       string         `json:"fill,omitempty"`
	FillColor  string         `json:"fillcolor,omitempty"`
	ShowLegend *bool          `json:"showlegend,omitempty"`
	XAxis      string         `json:"xaxis,omitempty"`
	YAxis      string         `json:"yaxis,omitempty"`
}

type MFigure struct {
	Data   []MTrace       `json:"data"`
	Layout map[string]any `json:"layout"`
}

// MPageResult is everything the UI renders for one run. Charts that could not
// be produced are nil; Messages explains why.
type MPageResult struct {
	Symbol        string          `json:"symbol"`
	DisplayName   string          `json:"display_name,omitempty"`
	Years         int             `json:"years"`
	HorizonDays   int             `json:"horizon_days"`
	Start         string          `json:"start"`
	End           string          `json:"end"`
	Source        string          `json:"source,omitempty"`
	FromCache     bool            `json:"from_cache"`
	Attempts      []MFetchAttempt `json:"attempts,omitempty"`
	RecentRows    []MTableRow     `json:"recent_rows,omitempty"`
	Historical    *MFigure        `json:"historical,omitempty"`
	ForecastChart *MFigure        `json:"forecast_chart,omitempty"`
	Components    *MFigure        `json:"components,omitempty"`
	Forecast      *MForecast      `json:"forecast,omitempty"`
	Summary       *MSummary       `json:"summary,omitempty"`
	Messages      []MMessage      `json:"messages"`
	MarketOpen    bool            `json:"market_open"`
	AboutHTML     string          `json:"about_html"`
	GeneratedAt   int64           `json:"generated_at"`
}

func (r *MPageResult) AddMessage(level, text string) {
	r.Messages = append(r.Messages, MMessage{Level: level, Text: text})
}

// HasLevel reports whether any message of the given level was recorded.
func (r *MPageResult) HasLevel(level string) bool {
	for _, m := range r.Messages {
		if m.Level == level {
			return true
		}
	}
	return false
}

// MMarketStatus is pushed to every websocket session on a schedule.
type MMarketStatus struct {
	Timestamp int64           `json:"timestamp"`
	Open      map[string]bool `json:"open"`
	AnyOpen   bool            `json:"any_open"`
}

// MEnvelope wraps every websocket message. Type is "result", "status",
// "pong" or "error".
type MEnvelope struct {
	Type    string      `json:"type"`
	Session string      `json:"session,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// MSummary describes the loaded history and, once a forecast exists, how well
// the model reproduces it in sample.
type MSummary struct {
	Records              int     `json:"records"`
	FirstClose           float64 `json:"first_close"`
	LastClose            float64 `json:"last_close"`
	High                 float64 `json:"high"`
	Low                  float64 `json:"low"`
	ChangePercent        float64 `json:"change_percent"`
	AnnualizedVolatility float64 `json:"annualized_volatility"`
	AverageVolume        float64 `json:"average_volume"`
	VolumeAnomaly        float64 `json:"volume_anomaly"`
	FitMAE               float64 `json:"fit_mae,omitempty"`
	FitMAPE              float64 `json:"fit_mape,omitempty"`
	FitCorrelation       float64 `json:"fit_correlation,omitempty"`
}
