// Package coverage - the canonical coverage selection and the one-step
// normalizer that turns loosely keyed boundary input into it.
package coverage

import (
	"vsc-rating/core/vehicle"
	"vsc-rating/internal/errors"
)

// Selection is the customer's chosen coverage. It is created per request
// and treated as immutable.
type Selection struct {
	TermMonths int      `json:"term_months"`
	Distance   Distance `json:"distance"`

	// ClassOverride replaces the classifier's result for an eligible
	// vehicle. It can never rescue an INELIGIBLE vehicle.
	ClassOverride *vehicle.Class `json:"class_override,omitempty"`

	Commercial        bool          `json:"commercial,omitempty"`
	LiftKit           bool          `json:"lift_kit,omitempty"`
	EcoPackage        bool          `json:"eco_package,omitempty"`
	TechnologyPackage bool          `json:"technology_package,omitempty"`
	OilChange         OilChangeTier `json:"oil_change,omitempty"`
}

// Validate rejects selections that cannot be rated at all.
func (s Selection) Validate() error {
	if s.TermMonths <= 0 {
		return errors.Inputf("term length must be positive, got %d", s.TermMonths)
	}
	if s.Distance.IsZero() {
		return errors.Input("coverage distance is required")
	}
	if !s.OilChange.Valid() {
		return errors.Inputf("unknown oil change tier %d", int(s.OilChange))
	}
	if s.ClassOverride != nil && !s.ClassOverride.IsRated() {
		return errors.Inputf("class override must be A, B or C, got %q", *s.ClassOverride)
	}
	return nil
}

// ResolveClass applies the override on top of the classified class.
func (s Selection) ResolveClass(classified vehicle.Class) vehicle.Class {
	if classified == vehicle.ClassIneligible || s.ClassOverride == nil {
		return classified
	}
	return *s.ClassOverride
}

// OptionalAddOns lists the selected optional add-ons by schedule key.
func (s Selection) OptionalAddOns() []string {
	var out []string
	if s.Commercial {
		out = append(out, "commercial")
	}
	if s.LiftKit {
		out = append(out, "lift_kit")
	}
	if s.EcoPackage {
		out = append(out, "eco_package")
	}
	if s.TechnologyPackage {
		out = append(out, "technology_package")
	}
	return out
}
