package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"vsc-rating/core/coverage"
	"vsc-rating/core/diff"
	"vsc-rating/core/rating"
	"vsc-rating/core/ratecard"
)

// CLIFormatter renders for a terminal.
type CLIFormatter struct {
	noColor bool
}

// NewCLIFormatter creates a terminal formatter.
func NewCLIFormatter(noColor bool) *CLIFormatter {
	return &CLIFormatter{noColor: noColor}
}

// Format returns the format type
func (f *CLIFormatter) Format() Format { return FormatCLI }

// Outcome renders a quote breakdown or the ineligibility reasons.
func (f *CLIFormatter) Outcome(out io.Writer, o rating.Outcome) error {
	w := newTermWriter(out, f.noColor)
	switch {
	case o.Quote != nil:
		f.quote(w, o.Quote)
	case o.Ineligible != nil:
		f.ineligible(w, o.Ineligible)
	}
	return w.err
}

func (f *CLIFormatter) quote(w *termWriter, q *rating.QuoteBreakdown) {
	w.header(fmt.Sprintf("Quote %s (%s)", q.Product, q.Provider))
	w.subHeader(describeFactors(q.Factors))

	t := w.newTable("Item", "Amount").alignRight(1)
	t.addRow("Base premium", money(q.BasePremium))
	for _, l := range q.SurchargeLines {
		t.addRow(fmt.Sprintf("%s (%s)", l.Label, l.Kind), money(l.Amount))
	}
	t.addRow("Premium before tax", money(q.PremiumBeforeTax))
	t.addRow(fmt.Sprintf("Taxes (%s)", percent(q.TaxRate)), money(q.Taxes))
	t.addRow("Fees", money(q.Fees))
	t.addFooter("Total premium", money(q.TotalPremium))
	t.render()

	for _, m := range q.Factors.Multipliers {
		w.note("  %s: %s x%s", m.Factor, m.Band, m.Multiplier)
	}
	w.success("Quote %s rated %s", q.QuoteID, q.RatedAt.Format(time.RFC3339))
	if q.RateCardVersion != "" {
		w.note("rate card %s (%s)", q.RateCardVersion, shortHash(q.RateCardHash))
	}
}

func (f *CLIFormatter) ineligible(w *termWriter, in *rating.IneligibilityResult) {
	w.header(fmt.Sprintf("Not eligible: %s (%s)", in.Product, in.Provider))
	w.subHeader(describeFactors(in.Factors))
	for _, r := range in.Eligibility.Reasons {
		w.failure("%s", r.Message)
	}
	if in.Eligibility.AllowSpecialQuote {
		w.warning("Eligible for special quote review")
	} else {
		w.note("Special quote not available")
	}
}

func describeFactors(f rating.Factors) string {
	s := fmt.Sprintf("class %s, %s miles, %d years old, %d months / %s",
		f.Class, f.Bracket, f.VehicleAge, f.TermMonths, distanceLabel(f.Distance))
	if f.Region != "" {
		s += ", " + f.Region
	}
	return s
}

func distanceLabel(d coverage.Distance) string {
	if d.IsUnlimited() {
		return "unlimited miles"
	}
	return d.String() + " miles"
}

// Options renders one row per term with its distances.
func (f *CLIFormatter) Options(out io.Writer, product string, opts rating.Options) error {
	w := newTermWriter(out, f.noColor)
	w.header("Coverage options for " + product)
	if len(opts.TermLengths) == 0 {
		w.warning("No coverage can be priced for this vehicle")
		return w.err
	}
	t := w.newTable("Term (months)", "Distances").alignRight(0)
	for _, term := range opts.TermLengths {
		t.addRow(strconv.Itoa(term), joinDistances(opts.ByTerm[term]))
	}
	t.render()
	return w.err
}

func joinDistances(ds []coverage.Distance) string {
	keys := make([]string, len(ds))
	for i, d := range ds {
		keys[i] = d.String()
	}
	return strings.Join(keys, ", ")
}

// RateCards renders stored rate card versions.
func (f *CLIFormatter) RateCards(out io.Writer, cards []ratecard.Metadata) error {
	w := newTermWriter(out, f.noColor)
	w.header("Rate cards")
	if len(cards) == 0 {
		w.warning("No rate cards loaded")
		return w.err
	}
	t := w.newTable("Provider", "Product", "Version", "Effective", "Priced", "Hash", "")
	for _, c := range cards {
		active := ""
		if c.Active {
			active = "active"
		}
		effective := ""
		if !c.EffectiveAt.IsZero() {
			effective = c.EffectiveAt.Format("2006-01-02")
		}
		t.addRow(c.Provider, c.Product, c.Version, effective,
			fmt.Sprintf("%d/%d", c.Priced, c.Cells), shortHash(c.ContentHash), active)
	}
	t.render()
	return w.err
}

// Verification renders integrity results, one line per table.
func (f *CLIFormatter) Verification(out io.Writer, results []ratecard.VerifyResult) error {
	w := newTermWriter(out, f.noColor)
	w.header("Rate card verification")
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			w.failure("%s: %v", r.ID, r.Err)
			continue
		}
		w.success("%s", r.ID)
	}
	if failed > 0 {
		w.warning("%d of %d rate cards failed verification", failed, len(results))
	}
	return w.err
}

// Diff renders changed, added and removed cells, then the summary.
func (f *CLIFormatter) Diff(out io.Writer, d *diff.Result) error {
	w := newTermWriter(out, f.noColor)
	w.header("Rate card diff")
	w.subHeader(d.Before + " -> " + d.After)
	rows := diffRows(d)
	if len(rows) == 0 {
		w.success("No changes (%d cells compared)", d.Unchanged)
		return w.err
	}
	t := w.newTable("Cell", "Change", "Before", "After", "Move").alignRight(2, 3, 4)
	for _, r := range rows {
		t.addRow(r.Key, r.Change, r.Before, r.After, signedPercent(r.Percent))
	}
	t.render()
	w.note("%d added, %d removed, %d changed (%d up, %d down), %d unchanged",
		len(d.Added), len(d.Removed), len(d.Changed), d.Increased, d.Decreased, d.Unchanged)
	return w.err
}
