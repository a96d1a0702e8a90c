package presentation

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// DefaultAbout is shown when the configuration has no about text.
const DefaultAbout = `### About the App
- This Stock Prediction App uses historical stock data to generate future price forecasts.
- Data sourced from Yahoo Finance, with Stooq as a fallback provider.
- Predictions come from an additive trend and seasonality model fitted per request.

**Disclaimer:** Stock predictions are probabilistic and should not be considered financial advice.
`

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderMarkdown converts the about panel to HTML. Raw HTML in the source is
// dropped by goldmark's default renderer.
func RenderMarkdown(source string) (string, error) {
	if source == "" {
		source = DefaultAbout
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
