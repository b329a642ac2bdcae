package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"vsc-rating/core/diff"
	"vsc-rating/core/rating"
	"vsc-rating/core/ratecard"
)

// MarkdownFormatter renders GitHub-flavored markdown, suitable for
// pasting into a ticket for the special-quote workflow.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a markdown formatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format returns the format type
func (f *MarkdownFormatter) Format() Format { return FormatMarkdown }

type mdBuilder struct {
	strings.Builder
}

func (b *mdBuilder) line(format string, args ...any) {
	fmt.Fprintf(&b.Builder, format+"\n", args...)
}

func (b *mdBuilder) table(headers []string, rows [][]string) {
	b.line("| %s |", strings.Join(headers, " | "))
	seps := make([]string, len(headers))
	for i := range seps {
		seps[i] = "---"
	}
	b.line("| %s |", strings.Join(seps, " | "))
	for _, r := range rows {
		escaped := make([]string, len(r))
		for i, c := range r {
			escaped[i] = strings.ReplaceAll(c, "|", `\|`)
		}
		b.line("| %s |", strings.Join(escaped, " | "))
	}
}

func (b *mdBuilder) flush(w io.Writer) error {
	_, err := io.WriteString(w, b.String())
	return err
}

// Outcome renders a quote or an ineligibility record.
func (f *MarkdownFormatter) Outcome(w io.Writer, out rating.Outcome) error {
	var b mdBuilder
	switch {
	case out.Quote != nil:
		q := out.Quote
		b.line("## Quote `%s`", q.QuoteID)
		b.line("")
		b.line("**%s** from %s, %s", q.Product, q.Provider, describeFactors(q.Factors))
		b.line("")
		rows := [][]string{{"Base premium", money(q.BasePremium)}}
		for _, l := range q.SurchargeLines {
			rows = append(rows, []string{fmt.Sprintf("%s (%s)", l.Label, l.Kind), money(l.Amount)})
		}
		rows = append(rows,
			[]string{"Premium before tax", money(q.PremiumBeforeTax)},
			[]string{fmt.Sprintf("Taxes (%s)", percent(q.TaxRate)), money(q.Taxes)},
			[]string{"Fees", money(q.Fees)},
			[]string{"**Total premium**", "**" + money(q.TotalPremium) + "**"},
		)
		b.table([]string{"Item", "Amount"}, rows)
		if len(q.Factors.Multipliers) > 0 {
			b.line("")
			for _, m := range q.Factors.Multipliers {
				b.line("- %s: %s x%s", m.Factor, m.Band, m.Multiplier)
			}
		}
		b.line("")
		b.line("_Rated %s", q.RatedAt.Format(time.RFC3339)+suffix(q.RateCardVersion)+"_")
	case out.Ineligible != nil:
		in := out.Ineligible
		b.line("## Not eligible: %s", in.Product)
		b.line("")
		b.line("%s, %s", in.Provider, describeFactors(in.Factors))
		b.line("")
		for _, r := range in.Eligibility.Reasons {
			b.line("- `%s` %s", r.Code, r.Message)
		}
		b.line("")
		if in.Eligibility.AllowSpecialQuote {
			b.line("Special quote review: **available**")
		} else {
			b.line("Special quote review: not available")
		}
	}
	return b.flush(w)
}

func suffix(version string) string {
	if version == "" {
		return ""
	}
	return " from rate card " + version
}

// Options renders the priceable coverage choices.
func (f *MarkdownFormatter) Options(w io.Writer, product string, opts rating.Options) error {
	var b mdBuilder
	b.line("## Coverage options for %s", product)
	b.line("")
	if len(opts.TermLengths) == 0 {
		b.line("No coverage can be priced for this vehicle.")
		return b.flush(w)
	}
	var rows [][]string
	for _, term := range opts.TermLengths {
		rows = append(rows, []string{strconv.Itoa(term), joinDistances(opts.ByTerm[term])})
	}
	b.table([]string{"Term (months)", "Distances"}, rows)
	return b.flush(w)
}

// RateCards renders rate card metadata.
func (f *MarkdownFormatter) RateCards(w io.Writer, cards []ratecard.Metadata) error {
	var b mdBuilder
	b.line("## Rate cards")
	b.line("")
	var rows [][]string
	for _, c := range cards {
		active := ""
		if c.Active {
			active = "yes"
		}
		rows = append(rows, []string{c.Provider, c.Product, c.Version,
			fmt.Sprintf("%d/%d", c.Priced, c.Cells), "`" + shortHash(c.ContentHash) + "`", active})
	}
	b.table([]string{"Provider", "Product", "Version", "Priced", "Hash", "Active"}, rows)
	return b.flush(w)
}

// Verification renders integrity results.
func (f *MarkdownFormatter) Verification(w io.Writer, results []ratecard.VerifyResult) error {
	var b mdBuilder
	b.line("## Rate card verification")
	b.line("")
	for _, r := range results {
		if r.Err != nil {
			b.line("- [ ] %s: %v", r.ID, r.Err)
			continue
		}
		b.line("- [x] %s", r.ID)
	}
	return b.flush(w)
}

// Diff renders a rate card comparison.
func (f *MarkdownFormatter) Diff(w io.Writer, d *diff.Result) error {
	var b mdBuilder
	b.line("## Rate card diff: `%s` -> `%s`", d.Before, d.After)
	b.line("")
	rows := diffRows(d)
	if len(rows) == 0 {
		b.line("No changes.")
		return b.flush(w)
	}
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		table = append(table, []string{"`" + r.Key + "`", r.Change, r.Before, r.After, signedPercent(r.Percent)})
	}
	b.table([]string{"Cell", "Change", "Before", "After", "Move"}, table)
	b.line("")
	b.line("%d added, %d removed, %d changed, %d unchanged", len(d.Added), len(d.Removed), len(d.Changed), d.Unchanged)
	return b.flush(w)
}
