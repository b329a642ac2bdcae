// Package catalog - the product catalog.
// Each product names its provider and the rating strategy that prices it.
// The catalog is the single place that decides which strategy rates a
// product; nothing else switches on provider names.
package catalog

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"vsc-rating/core/coverage"
	"vsc-rating/internal/errors"
)

// Strategy names a rating algorithm.
type Strategy string

const (
	// StrategyTable prices from a multi-dimensional rate card.
	StrategyTable Strategy = "table"
	// StrategyMultiplier prices a base premium times banded factors.
	StrategyMultiplier Strategy = "multiplier"
)

// String returns string representation
func (s Strategy) String() string {
	return string(s)
}

// Product is one sellable contract.
type Product struct {
	ID       string
	Provider string
	Name     string
	Strategy Strategy

	// Table strategy. RateCard defaults to the product id. An empty
	// RateCardVersion means the latest version.
	RateCard        string
	RateCardVersion string

	// Multiplier strategy.
	BasePremium decimal.Decimal
	Terms       []int
	Distances   []coverage.Distance
	Factors     []Factor
}

// OffersTerm reports whether a multiplier product sells the term.
func (p *Product) OffersTerm(months int) bool {
	for _, t := range p.Terms {
		if t == months {
			return true
		}
	}
	return false
}

// OffersDistance reports whether a multiplier product sells the distance.
func (p *Product) OffersDistance(d coverage.Distance) bool {
	for _, o := range p.Distances {
		if o == d {
			return true
		}
	}
	return false
}

// Catalog is the set of known products.
type Catalog struct {
	products map[string]*Product
}

// New creates a catalog from products. Duplicate ids are rejected.
func New(products ...*Product) (*Catalog, error) {
	c := &Catalog{products: make(map[string]*Product, len(products))}
	for _, p := range products {
		key := productKey(p.ID)
		if _, dup := c.products[key]; dup {
			return nil, errors.Newf(errors.TypeConfig, "product %q defined twice", p.ID)
		}
		c.products[key] = p
	}
	if errs := c.Validate(DefaultValidationRules()); len(errs) > 0 {
		return nil, errors.Newf(errors.TypeConfig, "invalid catalog: %v", errs)
	}
	return c, nil
}

func productKey(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Get returns a product by id, case-insensitively.
func (c *Catalog) Get(id string) (*Product, error) {
	p, ok := c.products[productKey(id)]
	if !ok {
		return nil, errors.NotFound("product", id)
	}
	return p, nil
}

// Products returns all products sorted by id.
func (c *Catalog) Products() []*Product {
	out := make([]*Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Stats returns catalog statistics
func (c *Catalog) Stats() Stats {
	stats := Stats{ByStrategy: make(map[Strategy]int)}
	providers := make(map[string]bool)
	for _, p := range c.products {
		stats.Total++
		stats.ByStrategy[p.Strategy]++
		providers[p.Provider] = true
	}
	stats.Providers = len(providers)
	return stats
}

// Stats holds catalog statistics
type Stats struct {
	Total      int
	Providers  int
	ByStrategy map[Strategy]int
}
