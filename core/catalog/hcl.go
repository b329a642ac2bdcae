package catalog

import (
	"fmt"
	"math/big"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"

	"vsc-rating/core/coverage"
	"vsc-rating/internal/errors"
)

// catalogFile is the HCL form of the catalog:
//
//	product "powertrain-plus" {
//	  provider  = "acme-warranty"
//	  strategy  = "table"
//	  rate_card = "powertrain"
//	}
//
//	product "mobility-flex" {
//	  provider     = "northstar"
//	  strategy     = "multiplier"
//	  base_premium = "900.00"
//	  terms        = [12, 24, 36]
//	  distances    = [24000, "36,000", "unlimited"]
//
//	  factor "driver_age" {
//	    band {
//	      when       = "driver_age < 25"
//	      multiplier = "1.35"
//	    }
//	  }
//	}
type catalogFile struct {
	Products []productBlock `hcl:"product,block"`
}

type productBlock struct {
	ID              string        `hcl:"id,label"`
	Provider        string        `hcl:"provider"`
	Name            string        `hcl:"name,optional"`
	Strategy        string        `hcl:"strategy"`
	RateCard        string        `hcl:"rate_card,optional"`
	RateCardVersion string        `hcl:"rate_card_version,optional"`
	BasePremium     string        `hcl:"base_premium,optional"`
	Terms           []int         `hcl:"terms,optional"`
	Distances       cty.Value     `hcl:"distances,optional"`
	Factors         []factorBlock `hcl:"factor,block"`
}

type factorBlock struct {
	Name  string      `hcl:"name,label"`
	Bands []bandBlock `hcl:"band,block"`
}

type bandBlock struct {
	When       string `hcl:"when"`
	Label      string `hcl:"label,optional"`
	Multiplier string `hcl:"multiplier"`
}

// Load reads a catalog file.
func Load(path string) (*Catalog, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Config(fmt.Sprintf("cannot read catalog %s", path), err)
	}
	return Parse(src, path)
}

// Parse decodes HCL catalog source.
func Parse(src []byte, filename string) (*Catalog, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diagError(filename, diags)
	}

	var cf catalogFile
	if diags := gohcl.DecodeBody(file.Body, nil, &cf); diags.HasErrors() {
		return nil, diagError(filename, diags)
	}

	products := make([]*Product, 0, len(cf.Products))
	for _, pb := range cf.Products {
		p, err := pb.product()
		if err != nil {
			return nil, errors.Config(fmt.Sprintf("%s: product %q", filename, pb.ID), err)
		}
		products = append(products, p)
	}
	return New(products...)
}

func diagError(filename string, diags hcl.Diagnostics) error {
	var msgs []string
	for _, diag := range diags {
		if diag.Severity != hcl.DiagError {
			continue
		}
		line := 0
		if diag.Subject != nil {
			line = diag.Subject.Start.Line
		}
		msgs = append(msgs, fmt.Sprintf("line %d: %s: %s", line, diag.Summary, diag.Detail))
	}
	return errors.Config(fmt.Sprintf("invalid catalog %s", filename), diags).
		WithContext("diagnostics", strings.Join(msgs, "; "))
}

func (pb productBlock) product() (*Product, error) {
	p := &Product{
		ID:              strings.TrimSpace(pb.ID),
		Provider:        strings.TrimSpace(pb.Provider),
		Name:            pb.Name,
		Strategy:        Strategy(strings.ToLower(strings.TrimSpace(pb.Strategy))),
		RateCard:        strings.TrimSpace(pb.RateCard),
		RateCardVersion: strings.TrimSpace(pb.RateCardVersion),
		Terms:           append([]int(nil), pb.Terms...),
	}
	if p.Name == "" {
		p.Name = p.ID
	}
	if p.Strategy == StrategyTable && p.RateCard == "" {
		p.RateCard = p.ID
	}

	if pb.BasePremium != "" {
		base, err := decimal.NewFromString(strings.TrimSpace(pb.BasePremium))
		if err != nil {
			return nil, fmt.Errorf("invalid base_premium %q", pb.BasePremium)
		}
		p.BasePremium = base
	}

	sort.Ints(p.Terms)
	raws, err := distanceKeys(pb.Distances)
	if err != nil {
		return nil, err
	}
	for _, raw := range raws {
		d, err := coverage.ParseDistance(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid distance %q: %w", raw, err)
		}
		p.Distances = append(p.Distances, d)
	}
	sort.Slice(p.Distances, func(i, j int) bool { return p.Distances[i].Less(p.Distances[j]) })

	for _, fb := range pb.Factors {
		f := Factor{Name: fb.Name}
		for _, bb := range fb.Bands {
			m, err := decimal.NewFromString(strings.TrimSpace(bb.Multiplier))
			if err != nil {
				return nil, fmt.Errorf("factor %q: invalid multiplier %q", fb.Name, bb.Multiplier)
			}
			band, err := NewBand(bb.When, bb.Label, m)
			if err != nil {
				return nil, fmt.Errorf("factor %q: %w", fb.Name, err)
			}
			f.Bands = append(f.Bands, band)
		}
		p.Factors = append(p.Factors, f)
	}
	return p, nil
}

// distanceKeys flattens the distances attribute, which may mix bare numbers
// with strings such as "36,000" or "unlimited".
func distanceKeys(v cty.Value) ([]string, error) {
	if v.IsNull() {
		return nil, nil
	}
	ty := v.Type()
	if !ty.IsTupleType() && !ty.IsListType() {
		return nil, fmt.Errorf("distances must be a list, got %s", ty.FriendlyName())
	}
	keys := make([]string, 0, v.LengthInt())
	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		switch {
		case ev.IsNull():
			return nil, fmt.Errorf("distances cannot contain null")
		case ev.Type() == cty.Number:
			n, acc := ev.AsBigFloat().Int64()
			if acc != big.Exact {
				return nil, fmt.Errorf("distance %s is not a whole number of miles", ev.AsBigFloat().String())
			}
			keys = append(keys, strconv.FormatInt(n, 10))
		case ev.Type() == cty.String:
			keys = append(keys, ev.AsString())
		default:
			return nil, fmt.Errorf("distance must be a number or string, got %s", ev.Type().FriendlyName())
		}
	}
	return keys, nil
}
