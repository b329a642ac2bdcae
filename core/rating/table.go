package rating

import (
	"context"

	"vsc-rating/core/catalog"
	"vsc-rating/core/eligibility"
	"vsc-rating/core/ratecard"
	"vsc-rating/internal/errors"
)

// TableStrategy prices from a multi-dimensional rate card.
type TableStrategy struct {
	product *catalog.Product
	table   *ratecard.Table
	checker *eligibility.Checker
	pricer  pricer
}

// Kind returns the strategy kind
func (s *TableStrategy) Kind() catalog.Strategy {
	return catalog.StrategyTable
}

// Table returns the rate card the strategy prices from.
func (s *TableStrategy) Table() *ratecard.Table {
	return s.table
}

// Rate classifies, brackets, checks eligibility against the bound rate
// card, looks up the premium and finishes with surcharges, tax and fees.
func (s *TableStrategy) Rate(_ context.Context, req Request) (Outcome, error) {
	res, err := s.checker.Check(req.Vehicle, req.Coverage)
	if err != nil {
		return Outcome{}, err
	}
	factors := baseFactors(req, res)
	if !res.Eligible {
		return ineligible(s.product, res, factors), nil
	}

	k := ratecard.Key{
		Class:      res.Class,
		TermMonths: req.Coverage.TermMonths,
		Bracket:    res.Bracket,
		Distance:   req.Coverage.Distance,
	}
	base, ok := s.table.Lookup(k)
	if !ok {
		// The checker probes the same table.
		return Outcome{}, errors.Internal("rate for "+k.String()+" vanished after eligibility", nil)
	}

	q, err := s.pricer.quote(s.product, req, base, factors, s.table)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Quote: q}, nil
}
