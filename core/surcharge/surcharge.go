// Package surcharge - additive flat surcharges on top of the base premium.
package surcharge

import (
	"strings"

	"github.com/shopspring/decimal"

	"vsc-rating/core/coverage"
	"vsc-rating/core/vehicle"
	"vsc-rating/internal/errors"
)

// Kind separates surcharges the vehicle forces from ones the customer chose.
type Kind string

const (
	KindMandatory Kind = "mandatory"
	KindOptional  Kind = "optional"
)

// Line is one applied surcharge.
type Line struct {
	Code   string          `json:"code"`
	Label  string          `json:"label"`
	Kind   Kind            `json:"kind"`
	Amount decimal.Decimal `json:"amount"`
}

// Breakdown is the full surcharge result for one quote.
type Breakdown struct {
	Lines     []Line          `json:"lines,omitempty"`
	Mandatory decimal.Decimal `json:"mandatory"`
	Optional  decimal.Decimal `json:"optional"`
}

// Total returns mandatory plus optional.
func (b Breakdown) Total() decimal.Decimal {
	return b.Mandatory.Add(b.Optional)
}

// Schedule holds the flat surcharge amounts.
type Schedule struct {
	FourWheelDrive    decimal.Decimal
	Diesel            decimal.Decimal
	Turbo             decimal.Decimal
	Commercial        decimal.Decimal
	LiftKit           decimal.Decimal
	EcoPackage        decimal.Decimal
	TechnologyPackage decimal.Decimal
	OilChange         map[coverage.OilChangeTier]decimal.Decimal
}

// DefaultSchedule returns the standard amounts.
func DefaultSchedule() Schedule {
	return Schedule{
		FourWheelDrive:    decimal.NewFromInt(150),
		Diesel:            decimal.NewFromInt(200),
		Turbo:             decimal.NewFromInt(175),
		Commercial:        decimal.NewFromInt(300),
		LiftKit:           decimal.NewFromInt(250),
		EcoPackage:        decimal.NewFromInt(125),
		TechnologyPackage: decimal.NewFromInt(150),
		OilChange: map[coverage.OilChangeTier]decimal.Decimal{
			coverage.OilChange6:  decimal.NewFromInt(450),
			coverage.OilChange8:  decimal.NewFromInt(575),
			coverage.OilChange10: decimal.NewFromInt(700),
		},
	}
}

// Validate rejects negative amounts and missing oil change tiers.
func (s Schedule) Validate() error {
	amounts := map[string]decimal.Decimal{
		"four_wheel_drive":   s.FourWheelDrive,
		"diesel":             s.Diesel,
		"turbo":              s.Turbo,
		"commercial":         s.Commercial,
		"lift_kit":           s.LiftKit,
		"eco_package":        s.EcoPackage,
		"technology_package": s.TechnologyPackage,
	}
	for name, amt := range amounts {
		if amt.IsNegative() {
			return errors.Newf(errors.TypeConfig, "surcharge %s must be non-negative, got %s", name, amt)
		}
	}
	for _, tier := range coverage.OilChangeTiers() {
		amt, ok := s.OilChange[tier]
		if !ok {
			return errors.Newf(errors.TypeConfig, "oil change tier %s has no amount", tier.Key())
		}
		if amt.IsNegative() {
			return errors.Newf(errors.TypeConfig, "oil change tier %s must be non-negative, got %s", tier.Key(), amt)
		}
	}
	return nil
}

var (
	fourWheelDriveTerms = []string{"4wd", "awd", "4x4", "four wheel", "all wheel", "4 wheel"}
	dieselTerms         = []string{"diesel"}
	turboTerms          = []string{"turbo", "supercharg"}
)

// matchesAny reports whether any term occurs in the attribute, ignoring
// case and treating '-' as a space ("All-Wheel Drive" matches "all wheel").
func matchesAny(attr string, terms []string) bool {
	s := strings.ToLower(strings.ReplaceAll(attr, "-", " "))
	if strings.TrimSpace(s) == "" {
		return false
	}
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

// Calculator applies a surcharge schedule.
type Calculator struct {
	schedule Schedule
}

// NewCalculator creates a calculator over a schedule.
func NewCalculator(schedule Schedule) *Calculator {
	return &Calculator{schedule: schedule}
}

// Calculate sums mandatory and optional surcharges. The selection must
// already be validated; an unknown oil change tier is malformed input.
func (c *Calculator) Calculate(v vehicle.Descriptor, sel coverage.Selection) (Breakdown, error) {
	var b Breakdown
	b.Mandatory = decimal.Zero
	b.Optional = decimal.Zero

	add := func(code, label string, kind Kind, amount decimal.Decimal) {
		b.Lines = append(b.Lines, Line{Code: code, Label: label, Kind: kind, Amount: amount})
		if kind == KindMandatory {
			b.Mandatory = b.Mandatory.Add(amount)
		} else {
			b.Optional = b.Optional.Add(amount)
		}
	}

	s := c.schedule
	if matchesAny(v.Drivetrain, fourWheelDriveTerms) {
		add("four_wheel_drive", "4WD/AWD", KindMandatory, s.FourWheelDrive)
	}
	if matchesAny(v.FuelType, dieselTerms) {
		add("diesel", "Diesel engine", KindMandatory, s.Diesel)
	}
	if matchesAny(v.Engine, turboTerms) {
		add("turbo", "Turbo/supercharged engine", KindMandatory, s.Turbo)
	}

	if sel.Commercial {
		add("commercial", "Commercial use", KindOptional, s.Commercial)
	}
	if sel.LiftKit {
		add("lift_kit", "Lift kit", KindOptional, s.LiftKit)
	}
	if sel.EcoPackage {
		add("eco_package", "Eco package", KindOptional, s.EcoPackage)
	}
	if sel.TechnologyPackage {
		add("technology_package", "Technology package", KindOptional, s.TechnologyPackage)
	}
	if sel.OilChange != coverage.OilChangeNone {
		amt, ok := s.OilChange[sel.OilChange]
		if !ok {
			return Breakdown{}, errors.Inputf("unknown oil change tier %d", int(sel.OilChange))
		}
		add("oil_change_"+sel.OilChange.Key(), "Oil changes ("+sel.OilChange.String()+")", KindOptional, amt)
	}
	return b, nil
}
