package rating

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"vsc-rating/core/catalog"
	"vsc-rating/core/determinism"
	"vsc-rating/core/eligibility"
	"vsc-rating/core/ratecard"
	"vsc-rating/core/surcharge"
	"vsc-rating/core/taxfee"
)

// pricer is the tail every strategy shares: surcharges, then tax and fees.
type pricer struct {
	surcharges *surcharge.Calculator
	taxfee     *taxfee.Calculator
	now        func() time.Time
	newID      func() string
}

func defaultPricer() pricer {
	return pricer{
		surcharges: surcharge.NewCalculator(surcharge.DefaultSchedule()),
		taxfee:     taxfee.NewCalculator(taxfee.BuiltinTaxTable(), taxfee.DefaultFeeSchedule()),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

func (p pricer) quote(product *catalog.Product, req Request, base decimal.Decimal, factors Factors, table *ratecard.Table) (*QuoteBreakdown, error) {
	sb, err := p.surcharges.Calculate(req.Vehicle, req.Coverage)
	if err != nil {
		return nil, err
	}

	base = determinism.Round2(base)
	tf := p.taxfee.Apply(base.Add(sb.Total()), req.Customer.Region)

	q := &QuoteBreakdown{
		QuoteID:             p.newID(),
		Product:             product.ID,
		Provider:            product.Provider,
		Strategy:            product.Strategy,
		BasePremium:         base,
		MandatorySurcharges: sb.Mandatory,
		OptionalSurcharges:  sb.Optional,
		SurchargeLines:      sb.Lines,
		PremiumBeforeTax:    tf.PremiumBeforeTax,
		TaxRate:             tf.TaxRate,
		Taxes:               tf.Taxes,
		Fees:                tf.Fees,
		TotalPremium:        tf.Total,
		Factors:             factors,
		RatedAt:             p.now().UTC(),
	}
	if table != nil {
		q.RateCardVersion = table.Version.String()
		q.RateCardHash = table.ContentHash.Hex()
	}
	return q, nil
}

func ineligible(product *catalog.Product, res eligibility.Result, factors Factors) Outcome {
	return Outcome{Ineligible: &IneligibilityResult{
		Product:     product.ID,
		Provider:    product.Provider,
		Eligibility: res,
		Factors:     factors,
	}}
}

func baseFactors(req Request, res eligibility.Result) Factors {
	return Factors{
		Class:      res.Class,
		Bracket:    res.Bracket,
		VehicleAge: res.VehicleAge,
		TermMonths: req.Coverage.TermMonths,
		Distance:   req.Coverage.Distance,
		Region:     req.Customer.Region,
	}
}
