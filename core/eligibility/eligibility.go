// Package eligibility - business eligibility gating for a vehicle and
// coverage selection. Checks accumulate reasons; nothing short-circuits
// except the rate check, which only runs for otherwise eligible vehicles.
package eligibility

import (
	"fmt"
	"time"

	"vsc-rating/core/ratecard"
	"vsc-rating/core/vehicle"
)

// Code identifies why a vehicle is ineligible.
type Code string

const (
	CodeModelYearInvalid Code = "model_year_invalid"
	CodeVehicleTooOld    Code = "vehicle_too_old"
	CodeMileageExceeded  Code = "mileage_exceeded"
	CodeClassIneligible  Code = "class_ineligible"
	CodeRateUnavailable  Code = "rate_unavailable"
)

// Reason is one failed check.
type Reason struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`

	// Categorical reasons can never be overridden by a special quote.
	Categorical bool `json:"categorical"`
}

// Result is the outcome of an eligibility check.
type Result struct {
	Eligible          bool     `json:"eligible"`
	Reasons           []Reason `json:"reasons,omitempty"`
	AllowSpecialQuote bool     `json:"allow_special_quote"`

	// Resolved rating inputs, set even when ineligible.
	Class      vehicle.Class   `json:"class"`
	Bracket    vehicle.Bracket `json:"bracket"`
	VehicleAge int             `json:"vehicle_age"`
}

// WithReason returns a copy of r with reason appended and the verdict
// recomputed.
func (r Result) WithReason(reason Reason) Result {
	reasons := make([]Reason, len(r.Reasons), len(r.Reasons)+1)
	copy(reasons, r.Reasons)
	r.Reasons = append(reasons, reason)
	r.finalize()
	return r
}

// Has reports whether a reason with the given code was recorded.
func (r Result) Has(code Code) bool {
	for _, reason := range r.Reasons {
		if reason.Code == code {
			return true
		}
	}
	return false
}

// Messages returns the reason messages in order.
func (r Result) Messages() []string {
	out := make([]string, len(r.Reasons))
	for i, reason := range r.Reasons {
		out[i] = reason.Message
	}
	return out
}

func (r *Result) finalize() {
	r.Eligible = len(r.Reasons) == 0
	r.AllowSpecialQuote = false
	if r.Eligible {
		return
	}
	for _, reason := range r.Reasons {
		if reason.Categorical {
			return
		}
	}
	r.AllowSpecialQuote = true
}

// RateUnavailable builds the reason for a combination with no price.
func RateUnavailable(format string, args ...any) Reason {
	return Reason{Code: CodeRateUnavailable, Message: fmt.Sprintf(format, args...)}
}

// UnavailableReason describes a missing rate by naming the first missing axis.
func UnavailableReason(k ratecard.Key, axis ratecard.Axis) Reason {
	var what string
	switch axis {
	case ratecard.AxisClass:
		what = fmt.Sprintf("vehicle class %s", k.Class)
	case ratecard.AxisTerm:
		what = fmt.Sprintf("a %d-month term for class %s", k.TermMonths, k.Class)
	case ratecard.AxisBracket:
		what = fmt.Sprintf("mileage bracket %s at %d months for class %s", k.Bracket, k.TermMonths, k.Class)
	default:
		what = fmt.Sprintf("coverage distance %s (class %s, %d months, %s miles)",
			k.Distance, k.Class, k.TermMonths, k.Bracket)
	}
	return RateUnavailable("no rate available for %s", what)
}

// Limits are the eligibility thresholds.
type Limits struct {
	MinModelYear  int
	MaxVehicleAge int
	MaxMileage    int
}

// DefaultLimits returns the standard underwriting limits.
func DefaultLimits() Limits {
	return Limits{
		MinModelYear:  1990,
		MaxVehicleAge: 15,
		MaxMileage:    vehicle.MaxRatedMileage,
	}
}

// RateProbe reports which rate-table axis a key is missing on.
// *ratecard.Table implements it.
type RateProbe interface {
	Probe(k ratecard.Key) ratecard.Axis
}

// Checker evaluates eligibility. It is safe for concurrent use.
type Checker struct {
	limits Limits
	now    func() time.Time
	rates  RateProbe
}

// Option configures a Checker.
type Option func(*Checker)

// WithClock injects the clock used for the current year.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) { c.now = now }
}

// WithLimits overrides the default limits.
func WithLimits(l Limits) Option {
	return func(c *Checker) { c.limits = l }
}

// WithRateTable binds the checker to a rate table, enabling the rate check.
func WithRateTable(rates RateProbe) Option {
	return func(c *Checker) { c.rates = rates }
}

// NewChecker creates a checker with default limits and the system clock.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{limits: DefaultLimits(), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
