// Package rating - turns a vehicle, a coverage selection and a customer
// into either a priced quote or an ineligibility record.
// Every strategy ends in the same surcharge and tax/fee steps.
package rating

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"vsc-rating/core/catalog"
	"vsc-rating/core/coverage"
	"vsc-rating/core/eligibility"
	"vsc-rating/core/surcharge"
	"vsc-rating/core/vehicle"
)

// Customer is the customer-side rating input.
type Customer struct {
	// Region is the tax jurisdiction code, e.g. a US state.
	Region string `json:"region"`
	// DriverAge is used by multiplier products only.
	DriverAge int `json:"driver_age,omitempty"`
}

// Request is a single rating request.
type Request struct {
	Product  string             `json:"product"`
	Vehicle  vehicle.Descriptor `json:"vehicle"`
	Coverage coverage.Selection `json:"coverage"`
	Customer Customer           `json:"customer"`
}

// AppliedMultiplier records one factor of a multiplier quote.
type AppliedMultiplier struct {
	Factor     string          `json:"factor"`
	Band       string          `json:"band"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// Factors are the resolved rating inputs.
type Factors struct {
	Class       vehicle.Class       `json:"class"`
	Bracket     vehicle.Bracket     `json:"bracket"`
	VehicleAge  int                 `json:"vehicle_age"`
	TermMonths  int                 `json:"term_months"`
	Distance    coverage.Distance   `json:"distance"`
	Region      string              `json:"region,omitempty"`
	Multipliers []AppliedMultiplier `json:"multipliers,omitempty"`
}

// QuoteBreakdown is a fully priced quote. It is produced fresh per call
// and never mutated.
type QuoteBreakdown struct {
	QuoteID  string           `json:"quote_id"`
	Product  string           `json:"product"`
	Provider string           `json:"provider"`
	Strategy catalog.Strategy `json:"strategy"`

	BasePremium         decimal.Decimal  `json:"base_premium"`
	MandatorySurcharges decimal.Decimal  `json:"mandatory_surcharges"`
	OptionalSurcharges  decimal.Decimal  `json:"optional_surcharges"`
	SurchargeLines      []surcharge.Line `json:"surcharge_lines,omitempty"`
	PremiumBeforeTax    decimal.Decimal  `json:"premium_before_tax"`
	TaxRate             decimal.Decimal  `json:"tax_rate"`
	Taxes               decimal.Decimal  `json:"taxes"`
	Fees                decimal.Decimal  `json:"fees"`
	TotalPremium        decimal.Decimal  `json:"total_premium"`

	Factors Factors `json:"factors"`

	// Rate card provenance, table strategy only.
	RateCardVersion string `json:"rate_card_version,omitempty"`
	RateCardHash    string `json:"rate_card_hash,omitempty"`

	RatedAt time.Time `json:"rated_at"`
}

// IneligibilityResult is handed to the special-quote workflow when
// Eligibility.AllowSpecialQuote is set.
type IneligibilityResult struct {
	Product     string             `json:"product"`
	Provider    string             `json:"provider"`
	Eligibility eligibility.Result `json:"eligibility"`
	Factors     Factors            `json:"factors"`
}

// Outcome holds exactly one of Quote or Ineligible.
type Outcome struct {
	Quote      *QuoteBreakdown      `json:"quote,omitempty"`
	Ineligible *IneligibilityResult `json:"ineligible,omitempty"`
}

// Eligible reports whether the outcome is a priced quote.
func (o Outcome) Eligible() bool {
	return o.Quote != nil
}

// Strategy rates requests for one product.
type Strategy interface {
	Kind() catalog.Strategy
	Rate(ctx context.Context, req Request) (Outcome, error)
}

// Options are the coverage choices that can be priced for a vehicle.
type Options struct {
	TermLengths []int                       `json:"term_lengths"`
	Distances   []coverage.Distance         `json:"distances"`
	ByTerm      map[int][]coverage.Distance `json:"by_term,omitempty"`
}
