// Package taxfee - the single tax and fee step every rating strategy ends in.
// Tax = round2(premium * rate(region));
// Fee = round2(flat + min(premium * processing rate, processing cap)).
package taxfee

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"vsc-rating/core/determinism"
	"vsc-rating/internal/errors"
)

// TaxTable maps region codes to tax rates with a default fallback.
type TaxTable struct {
	defaultRate decimal.Decimal
	rates       map[string]decimal.Decimal
}

// NewTaxTable creates a table. Region keys are matched case-insensitively.
func NewTaxTable(defaultRate decimal.Decimal, rates map[string]decimal.Decimal) (*TaxTable, error) {
	if defaultRate.IsNegative() {
		return nil, errors.Newf(errors.TypeConfig, "default tax rate must be non-negative, got %s", defaultRate)
	}
	t := &TaxTable{defaultRate: defaultRate, rates: make(map[string]decimal.Decimal, len(rates))}
	for region, rate := range rates {
		key := regionKey(region)
		if key == "" {
			return nil, errors.New(errors.TypeConfig, "tax table has an empty region code")
		}
		if rate.IsNegative() {
			return nil, errors.Newf(errors.TypeConfig, "tax rate for %s must be non-negative, got %s", region, rate)
		}
		if _, dup := t.rates[key]; dup {
			return nil, errors.Newf(errors.TypeConfig, "tax table lists region %s twice", region)
		}
		t.rates[key] = rate
	}
	return t, nil
}

func regionKey(region string) string {
	return cases.Fold().String(strings.TrimSpace(region))
}

// Rate returns the rate for a region. Empty or unmapped regions get the
// default rate.
func (t *TaxTable) Rate(region string) decimal.Decimal {
	if rate, ok := t.rates[regionKey(region)]; ok {
		return rate
	}
	return t.defaultRate
}

// DefaultRate returns the fallback rate.
func (t *TaxTable) DefaultRate() decimal.Decimal {
	return t.defaultRate
}

// Regions returns the mapped region keys, sorted.
func (t *TaxTable) Regions() []string {
	return determinism.SortedKeys(t.rates, func(a, b string) bool { return a < b })
}

// builtinRates is the static US state table.
var builtinRates = map[string]string{
	"TX": "0.0625",
	"MA": "0.0625",
	"IL": "0.0625",
	"CA": "0.0725",
	"FL": "0.06",
	"NY": "0.04",
	"OR": "0",
	"DE": "0",
	"MT": "0",
	"NH": "0",
	"AK": "0",
}

// DefaultTaxRate is applied to regions not in the table.
var DefaultTaxRate = decimal.RequireFromString("0.06")

// BuiltinTaxTable returns the static US state table.
func BuiltinTaxTable() *TaxTable {
	rates := make(map[string]decimal.Decimal, len(builtinRates))
	for region, rate := range builtinRates {
		rates[region] = decimal.RequireFromString(rate)
	}
	t, err := NewTaxTable(DefaultTaxRate, rates)
	if err != nil {
		panic(err)
	}
	return t
}

// taxFile is the YAML form of a tax table:
//
//	default_rate: 0.06
//	regions:
//	  TX: 0.0625
type taxFile struct {
	DefaultRate *decimal.Decimal           `yaml:"default_rate"`
	Regions     map[string]decimal.Decimal `yaml:"regions"`
}

// ParseTaxTable decodes a YAML tax table. A missing default_rate keeps
// DefaultTaxRate.
func ParseTaxTable(data []byte) (*TaxTable, error) {
	var f taxFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Config("tax table is not valid YAML", err)
	}
	def := DefaultTaxRate
	if f.DefaultRate != nil {
		def = *f.DefaultRate
	}
	return NewTaxTable(def, f.Regions)
}

// LoadTaxTable reads a YAML tax table file.
func LoadTaxTable(path string) (*TaxTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Config(fmt.Sprintf("cannot read tax table %s", path), err)
	}
	return ParseTaxTable(data)
}

// FeeSchedule is the flat plus capped processing fee.
type FeeSchedule struct {
	Flat           decimal.Decimal
	ProcessingRate decimal.Decimal
	ProcessingCap  decimal.Decimal
}

// DefaultFeeSchedule returns $50 flat plus 2% processing capped at $75.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		Flat:           decimal.NewFromInt(50),
		ProcessingRate: decimal.RequireFromString("0.02"),
		ProcessingCap:  decimal.NewFromInt(75),
	}
}

// Validate rejects negative components.
func (f FeeSchedule) Validate() error {
	if f.Flat.IsNegative() || f.ProcessingRate.IsNegative() || f.ProcessingCap.IsNegative() {
		return errors.Newf(errors.TypeConfig, "fee schedule must be non-negative (flat %s, rate %s, cap %s)",
			f.Flat, f.ProcessingRate, f.ProcessingCap)
	}
	return nil
}

// Fee computes the fee for a premium.
func (f FeeSchedule) Fee(premium decimal.Decimal) decimal.Decimal {
	processing := determinism.MinDecimal(premium.Mul(f.ProcessingRate), f.ProcessingCap)
	return determinism.Round2(f.Flat.Add(processing))
}

// Result is the tax and fee outcome.
type Result struct {
	PremiumBeforeTax decimal.Decimal `json:"premium_before_tax"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	Taxes            decimal.Decimal `json:"taxes"`
	Fees             decimal.Decimal `json:"fees"`
	Total            decimal.Decimal `json:"total"`
}

// Calculator applies tax and fees.
type Calculator struct {
	taxes *TaxTable
	fees  FeeSchedule
}

// NewCalculator creates a calculator.
func NewCalculator(taxes *TaxTable, fees FeeSchedule) *Calculator {
	return &Calculator{taxes: taxes, fees: fees}
}

// Apply computes taxes, fees and the total for a pre-tax premium.
func (c *Calculator) Apply(premiumBeforeTax decimal.Decimal, region string) Result {
	premium := determinism.Round2(premiumBeforeTax)
	rate := c.taxes.Rate(region)
	tax := determinism.Round2(premium.Mul(rate))
	fee := c.fees.Fee(premium)
	return Result{
		PremiumBeforeTax: premium,
		TaxRate:          rate,
		Taxes:            tax,
		Fees:             fee,
		Total:            premium.Add(tax).Add(fee),
	}
}
