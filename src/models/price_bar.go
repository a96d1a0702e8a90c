package models

import "time"

// MPriceBar is one daily record of a price series.
type MPriceBar struct {
	Symbol             string    `json:"symbol"`
	Date               time.Time `json:"date"`
	Open               float64   `json:"open"`
	High               float64   `json:"high"`
	Low                float64   `json:"low"`
	Close              float64   `json:"close"`
	Volume             float64   `json:"volume"`
	PricePercentChange float64   `json:"price_percent_change"`
}

// MFetchAttempt records the outcome of asking one provider for history.
type MFetchAttempt struct {
	Source  string `json:"source"`
	Success bool   `json:"success"`
	Records int    `json:"records"`
	Reason  string `json:"reason,omitempty"`
}

// MHistory is the result of the acquisition step.
type MHistory struct {
	Symbol    string          `json:"symbol"`
	Start     time.Time       `json:"start"`
	End       time.Time       `json:"end"`
	Bars      []MPriceBar     `json:"bars"`
	Source    string          `json:"source"`
	Attempts  []MFetchAttempt `json:"attempts,omitempty"`
	FromCache bool            `json:"from_cache"`
}
