// Package vehicle - vehicle descriptors, rating classes and mileage brackets.
// Everything here is pure and deterministic.
package vehicle

import (
	"strconv"
	"strings"

	"vsc-rating/internal/errors"
)

// Descriptor describes the vehicle being rated. It is created by the caller
// (from a VIN decode or manual entry) and treated as immutable.
type Descriptor struct {
	VIN        string `json:"vin,omitempty"`
	Make       string `json:"make"`
	Model      string `json:"model,omitempty"`
	ModelYear  string `json:"model_year"`
	Mileage    int    `json:"mileage"`
	Drivetrain string `json:"drivetrain,omitempty"`
	FuelType   string `json:"fuel_type,omitempty"`
	Engine     string `json:"engine,omitempty"`
}

// Validate fails fast on shapes that cannot be rated at all.
// Out-of-range but well-formed values (old model years, high mileage)
// are business ineligibility, not validation failures.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Make) == "" {
		return errors.Input("vehicle make is required")
	}
	if d.Mileage < 0 {
		return errors.Inputf("vehicle mileage must be non-negative, got %d", d.Mileage)
	}
	return nil
}

// Year parses the model year.
func (d Descriptor) Year() (int, error) {
	return strconv.Atoi(strings.TrimSpace(d.ModelYear))
}

// Class returns the rating class of the described vehicle.
func (d Descriptor) Class() Class {
	return Classify(d.Make, d.Model)
}

// Bracket returns the mileage bracket of the described vehicle.
func (d Descriptor) Bracket() Bracket {
	return BracketFor(d.Mileage)
}
