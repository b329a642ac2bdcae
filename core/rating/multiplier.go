package rating

import (
	"context"
	"fmt"
	"strings"

	"vsc-rating/core/catalog"
	"vsc-rating/core/eligibility"
	"vsc-rating/internal/errors"
)

// MultiplierStrategy prices base premium times one multiplier per factor.
// Each factor takes the first band whose predicate holds.
type MultiplierStrategy struct {
	product *catalog.Product
	checker *eligibility.Checker
	pricer  pricer
}

// Kind returns the strategy kind
func (s *MultiplierStrategy) Kind() catalog.Strategy {
	return catalog.StrategyMultiplier
}

// Rate runs the vehicle eligibility checks, confirms the product sells the
// selected term and distance, applies the factors and finishes with
// surcharges, tax and fees.
func (s *MultiplierStrategy) Rate(_ context.Context, req Request) (Outcome, error) {
	if req.Customer.DriverAge <= 0 {
		return Outcome{}, errors.Inputf("driver age is required to rate %s", s.product.ID)
	}

	res, err := s.checker.Check(req.Vehicle, req.Coverage)
	if err != nil {
		return Outcome{}, err
	}
	factors := baseFactors(req, res)
	if !res.Eligible {
		return ineligible(s.product, res, factors), nil
	}

	if !s.product.OffersTerm(req.Coverage.TermMonths) {
		res = res.WithReason(eligibility.RateUnavailable("%s does not offer a %d-month term",
			s.product.ID, req.Coverage.TermMonths))
	}
	if !s.product.OffersDistance(req.Coverage.Distance) {
		res = res.WithReason(eligibility.RateUnavailable("%s does not offer coverage distance %s",
			s.product.ID, req.Coverage.Distance))
	}
	if !res.Eligible {
		return ineligible(s.product, res, factors), nil
	}

	vars := bandVars(req, factors)
	premium := s.product.BasePremium
	for _, f := range s.product.Factors {
		band, ok, err := f.Select(vars)
		if err != nil {
			return Outcome{}, errors.Config(fmt.Sprintf("product %s", s.product.ID), err)
		}
		if !ok {
			return Outcome{}, errors.Newf(errors.TypeConfig,
				"product %s: no %s band matches %v", s.product.ID, f.Name, vars)
		}
		premium = premium.Mul(band.Multiplier)
		factors.Multipliers = append(factors.Multipliers, AppliedMultiplier{
			Factor:     f.Name,
			Band:       band.Label,
			Multiplier: band.Multiplier,
		})
	}

	q, err := s.pricer.quote(s.product, req, premium, factors, nil)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Quote: q}, nil
}

func bandVars(req Request, f Factors) map[string]any {
	return map[string]any{
		catalog.VarDriverAge:    int64(req.Customer.DriverAge),
		catalog.VarVehicleAge:   int64(f.VehicleAge),
		catalog.VarRegion:       strings.ToUpper(strings.TrimSpace(req.Customer.Region)),
		catalog.VarTermMonths:   int64(f.TermMonths),
		catalog.VarDistance:     int64(f.Distance.Miles()),
		catalog.VarUnlimited:    f.Distance.IsUnlimited(),
		catalog.VarVehicleClass: f.Class.String(),
		catalog.VarMileage:      int64(req.Vehicle.Mileage),
	}
}
