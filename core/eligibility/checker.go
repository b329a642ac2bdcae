package eligibility

import (
	"fmt"
	"strings"

	"vsc-rating/core/coverage"
	"vsc-rating/core/ratecard"
	"vsc-rating/core/vehicle"
)

// Check runs every check in order and accumulates the reasons.
// Malformed input is returned as an INPUT_ERROR instead of a result.
func (c *Checker) Check(v vehicle.Descriptor, sel coverage.Selection) (Result, error) {
	if err := v.Validate(); err != nil {
		return Result{}, err
	}
	if err := sel.Validate(); err != nil {
		return Result{}, err
	}

	currentYear := c.now().Year()
	res := Result{
		Class:   sel.ResolveClass(v.Class()),
		Bracket: v.Bracket(),
	}

	// 1. model year
	year, err := v.Year()
	yearValid := err == nil && year >= c.limits.MinModelYear && year <= currentYear+1
	if !yearValid {
		res.Reasons = append(res.Reasons, Reason{
			Code: CodeModelYearInvalid,
			Message: fmt.Sprintf("model year %q is not between %d and %d",
				v.ModelYear, c.limits.MinModelYear, currentYear+1),
		})
	}

	// 2. age, only meaningful for a valid year
	if yearValid {
		res.VehicleAge = currentYear - year
		if res.VehicleAge > c.limits.MaxVehicleAge {
			res.Reasons = append(res.Reasons, Reason{
				Code: CodeVehicleTooOld,
				Message: fmt.Sprintf("vehicle is %d years old; the maximum age is %d years",
					res.VehicleAge, c.limits.MaxVehicleAge),
			})
		}
	}

	// 3. mileage
	if v.Mileage > c.limits.MaxMileage {
		res.Reasons = append(res.Reasons, Reason{
			Code: CodeMileageExceeded,
			Message: fmt.Sprintf("odometer reading %d exceeds the maximum of %d miles",
				v.Mileage, c.limits.MaxMileage),
		})
	}

	// 4. class
	if res.Class == vehicle.ClassIneligible {
		res.Reasons = append(res.Reasons, Reason{
			Code:        CodeClassIneligible,
			Message:     fmt.Sprintf("%s is not eligible for coverage", strings.TrimSpace(v.Make+" "+v.Model)),
			Categorical: true,
		})
	}

	// 5. rate availability
	if len(res.Reasons) == 0 && c.rates != nil {
		k := ratecard.Key{
			Class:      res.Class,
			TermMonths: sel.TermMonths,
			Bracket:    res.Bracket,
			Distance:   sel.Distance,
		}
		if axis := c.rates.Probe(k); axis != ratecard.AxisNone {
			res.Reasons = append(res.Reasons, UnavailableReason(k, axis))
		}
	}

	res.finalize()
	return res, nil
}
