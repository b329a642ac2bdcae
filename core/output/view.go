package output

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"vsc-rating/core/diff"
	"vsc-rating/core/eligibility"
	"vsc-rating/core/rating"
	"vsc-rating/core/ratecard"
)

// money renders an amount with exactly two decimal places.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// percent renders a rate such as 0.0625 as "6.25%".
func percent(rate decimal.Decimal) string {
	return rate.Shift(2).String() + "%"
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// The views below fix the wire shape of machine output. Money is always a
// two-place string so consumers never see float rounding.

type lineView struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Kind   string `json:"kind"`
	Amount string `json:"amount"`
}

type multiplierView struct {
	Factor     string `json:"factor"`
	Band       string `json:"band"`
	Multiplier string `json:"multiplier"`
}

type factorsView struct {
	Class       string           `json:"class"`
	Bracket     string           `json:"bracket"`
	VehicleAge  int              `json:"vehicle_age"`
	TermMonths  int              `json:"term_months"`
	Distance    string           `json:"distance"`
	Region      string           `json:"region,omitempty"`
	Multipliers []multiplierView `json:"multipliers,omitempty"`
}

type quoteView struct {
	QuoteID             string      `json:"quote_id"`
	Product             string      `json:"product"`
	Provider            string      `json:"provider"`
	Strategy            string      `json:"strategy"`
	BasePremium         string      `json:"base_premium"`
	MandatorySurcharges string      `json:"mandatory_surcharges"`
	OptionalSurcharges  string      `json:"optional_surcharges"`
	Surcharges          []lineView  `json:"surcharges,omitempty"`
	PremiumBeforeTax    string      `json:"premium_before_tax"`
	TaxRate             string      `json:"tax_rate"`
	Taxes               string      `json:"taxes"`
	Fees                string      `json:"fees"`
	TotalPremium        string      `json:"total_premium"`
	Factors             factorsView `json:"factors"`
	RateCardVersion     string      `json:"rate_card_version,omitempty"`
	RateCardHash        string      `json:"rate_card_hash,omitempty"`
	RatedAt             time.Time   `json:"rated_at"`
}

type ineligibleView struct {
	Product           string               `json:"product"`
	Provider          string               `json:"provider"`
	Reasons           []eligibility.Reason `json:"reasons"`
	AllowSpecialQuote bool                 `json:"allow_special_quote"`
	Factors           factorsView          `json:"factors"`
}

type outcomeView struct {
	Eligible   bool            `json:"eligible"`
	Quote      *quoteView      `json:"quote,omitempty"`
	Ineligible *ineligibleView `json:"ineligible,omitempty"`
}

type optionsView struct {
	Product     string              `json:"product"`
	TermLengths []int               `json:"term_lengths"`
	Distances   []string            `json:"distances"`
	ByTerm      map[string][]string `json:"by_term,omitempty"`
}

type verifyView struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func newFactorsView(f rating.Factors) factorsView {
	v := factorsView{
		Class:      f.Class.String(),
		Bracket:    f.Bracket.String(),
		VehicleAge: f.VehicleAge,
		TermMonths: f.TermMonths,
		Distance:   f.Distance.String(),
		Region:     f.Region,
	}
	for _, m := range f.Multipliers {
		v.Multipliers = append(v.Multipliers, multiplierView{
			Factor:     m.Factor,
			Band:       m.Band,
			Multiplier: m.Multiplier.String(),
		})
	}
	return v
}

func newOutcomeView(out rating.Outcome) outcomeView {
	v := outcomeView{Eligible: out.Eligible()}
	if q := out.Quote; q != nil {
		qv := &quoteView{
			QuoteID:             q.QuoteID,
			Product:             q.Product,
			Provider:            q.Provider,
			Strategy:            q.Strategy.String(),
			BasePremium:         money(q.BasePremium),
			MandatorySurcharges: money(q.MandatorySurcharges),
			OptionalSurcharges:  money(q.OptionalSurcharges),
			PremiumBeforeTax:    money(q.PremiumBeforeTax),
			TaxRate:             q.TaxRate.String(),
			Taxes:               money(q.Taxes),
			Fees:                money(q.Fees),
			TotalPremium:        money(q.TotalPremium),
			Factors:             newFactorsView(q.Factors),
			RateCardVersion:     q.RateCardVersion,
			RateCardHash:        q.RateCardHash,
			RatedAt:             q.RatedAt,
		}
		for _, l := range q.SurchargeLines {
			qv.Surcharges = append(qv.Surcharges, lineView{
				Code: l.Code, Label: l.Label, Kind: string(l.Kind), Amount: money(l.Amount),
			})
		}
		v.Quote = qv
	}
	if in := out.Ineligible; in != nil {
		reasons := in.Eligibility.Reasons
		if reasons == nil {
			reasons = []eligibility.Reason{}
		}
		v.Ineligible = &ineligibleView{
			Product:           in.Product,
			Provider:          in.Provider,
			Reasons:           reasons,
			AllowSpecialQuote: in.Eligibility.AllowSpecialQuote,
			Factors:           newFactorsView(in.Factors),
		}
	}
	return v
}

func newOptionsView(product string, opts rating.Options) optionsView {
	v := optionsView{
		Product:     product,
		TermLengths: append([]int{}, opts.TermLengths...),
		Distances:   []string{},
	}
	for _, d := range opts.Distances {
		v.Distances = append(v.Distances, d.String())
	}
	if len(opts.ByTerm) > 0 {
		v.ByTerm = make(map[string][]string, len(opts.ByTerm))
		for term, ds := range opts.ByTerm {
			keys := make([]string, 0, len(ds))
			for _, d := range ds {
				keys = append(keys, d.String())
			}
			v.ByTerm[strconv.Itoa(term)] = keys
		}
	}
	return v
}

func newVerifyViews(results []ratecard.VerifyResult) []verifyView {
	views := make([]verifyView, 0, len(results))
	for _, r := range results {
		v := verifyView{ID: r.ID, OK: r.Err == nil}
		if r.Err != nil {
			v.Error = r.Err.Error()
		}
		views = append(views, v)
	}
	return views
}

type cellDiffView struct {
	Key     string `json:"key"`
	Change  string `json:"change"`
	Before  string `json:"before,omitempty"`
	After   string `json:"after,omitempty"`
	Delta   string `json:"delta,omitempty"`
	Percent string `json:"percent,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

type diffView struct {
	Before    string         `json:"before"`
	After     string         `json:"after"`
	Added     []cellDiffView `json:"added"`
	Removed   []cellDiffView `json:"removed"`
	Changed   []cellDiffView `json:"changed"`
	Unchanged int            `json:"unchanged"`
	Increased int            `json:"increased"`
	Decreased int            `json:"decreased"`
}

func newCellDiffView(c *diff.CellDiff) cellDiffView {
	v := cellDiffView{
		Key:    c.Key.String(),
		Change: c.ChangeType.String(),
		Before: c.Before,
		After:  c.After,
		Reason: c.Reason,
	}
	if c.Priced {
		v.Delta = money(c.Delta)
		v.Percent = c.Percent.StringFixed(2)
	}
	return v
}

func newDiffView(d *diff.Result) diffView {
	v := diffView{
		Before:    d.Before,
		After:     d.After,
		Added:     []cellDiffView{},
		Removed:   []cellDiffView{},
		Changed:   []cellDiffView{},
		Unchanged: d.Unchanged,
		Increased: d.Increased,
		Decreased: d.Decreased,
	}
	for _, c := range d.Added {
		v.Added = append(v.Added, newCellDiffView(c))
	}
	for _, c := range d.Removed {
		v.Removed = append(v.Removed, newCellDiffView(c))
	}
	for _, c := range d.Changed {
		v.Changed = append(v.Changed, newCellDiffView(c))
	}
	return v
}

// diffRows flattens a diff into display rows: changed, added, removed.
func diffRows(d *diff.Result) []cellDiffView {
	v := newDiffView(d)
	rows := make([]cellDiffView, 0, len(v.Changed)+len(v.Added)+len(v.Removed))
	rows = append(rows, v.Changed...)
	rows = append(rows, v.Added...)
	return append(rows, v.Removed...)
}

func signedPercent(p string) string {
	if p == "" {
		return ""
	}
	if p[0] != '-' {
		p = "+" + p
	}
	return p + "%"
}
