package models

import "fmt"

// MInstrument is a selectable ticker with an optional display name.
type MInstrument struct {
	Symbol string `yaml:"symbol" json:"symbol" validate:"required"`
	Name   string `yaml:"name" json:"name,omitempty"`
}

// Label is the text shown in the example selector, e.g. "Apple (AAPL)".
func (i MInstrument) Label() string {
	if i.Name == "" {
		return i.Symbol
	}
	return fmt.Sprintf("%s (%s)", i.Name, i.Symbol)
}

// DefaultInstruments is used when the configuration lists none.
func DefaultInstruments() []MInstrument {
	return []MInstrument{
		{Name: "Google", Symbol: "GOOG"},
		{Name: "Apple", Symbol: "AAPL"},
		{Name: "Microsoft", Symbol: "MSFT"},
		{Name: "Tesla", Symbol: "TSLA"},
		{Name: "Amazon", Symbol: "AMZN"},
		{Name: "NVIDIA", Symbol: "NVDA"},
		{Name: "Meta-Facebook", Symbol: "META"},
		{Name: "Bitcoin USD", Symbol: "BTC-USD"},
		{Name: "Gold", Symbol: "GC=F"},
	}
}
