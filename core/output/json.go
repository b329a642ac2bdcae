package output

import (
	"encoding/json"
	"io"

	"vsc-rating/core/diff"
	"vsc-rating/core/rating"
	"vsc-rating/core/ratecard"
)

// JSONFormatter renders indented JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format returns the format type
func (f *JSONFormatter) Format() Format { return FormatJSON }

func (f *JSONFormatter) encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Outcome renders a quote or an ineligibility record.
func (f *JSONFormatter) Outcome(w io.Writer, out rating.Outcome) error {
	return f.encode(w, newOutcomeView(out))
}

// Options renders the priceable coverage choices.
func (f *JSONFormatter) Options(w io.Writer, product string, opts rating.Options) error {
	return f.encode(w, newOptionsView(product, opts))
}

// RateCards renders rate card metadata.
func (f *JSONFormatter) RateCards(w io.Writer, cards []ratecard.Metadata) error {
	if cards == nil {
		cards = []ratecard.Metadata{}
	}
	return f.encode(w, cards)
}

// Verification renders integrity results.
func (f *JSONFormatter) Verification(w io.Writer, results []ratecard.VerifyResult) error {
	return f.encode(w, newVerifyViews(results))
}

// Diff renders a rate card comparison.
func (f *JSONFormatter) Diff(w io.Writer, d *diff.Result) error {
	return f.encode(w, newDiffView(d))
}
