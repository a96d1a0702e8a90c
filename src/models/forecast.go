package models

import "time"

// MForecastPoint is one row of the model output. Trend, Weekly and Yearly are
// the additive components of Predicted.
type MForecastPoint struct {
	Date      time.Time `json:"date"`
	Predicted float64   `json:"predicted"`
	Lower     float64   `json:"lower"`
	Upper     float64   `json:"upper"`
	Trend     float64   `json:"trend"`
	Weekly    float64   `json:"weekly"`
	Yearly    float64   `json:"yearly"`
}

// MSeasonalPoint is one sample of a seasonal component shape.
type MSeasonalPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type MForecast struct {
	Symbol        string           `json:"symbol"`
	HorizonDays   int              `json:"horizon_days"`
	Points        []MForecastPoint `json:"points"`
	WeeklyProfile []MSeasonalPoint `json:"weekly_profile,omitempty"`
	YearlyProfile []MSeasonalPoint `json:"yearly_profile,omitempty"`
}
