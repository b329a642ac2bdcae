// Package catalog - Catalog validation
// Ensures every product carries what its strategy needs.
package catalog

import (
	"fmt"
)

// ValidationRule is a catalog validation rule
type ValidationRule func(*Product) error

// DefaultValidationRules returns the standard validation rules
func DefaultValidationRules() []ValidationRule {
	return []ValidationRule{
		validateIdentity,
		validateStrategy,
		validateTableProduct,
		validateMultiplierProduct,
	}
}

// Validate checks a catalog against validation rules
func (c *Catalog) Validate(rules []ValidationRule) []error {
	var errs []error
	for _, p := range c.Products() {
		for _, rule := range rules {
			if err := rule(p); err != nil {
				errs = append(errs, fmt.Errorf("product %s: %w", p.ID, err))
			}
		}
	}
	return errs
}

func validateIdentity(p *Product) error {
	if p.ID == "" || p.Provider == "" {
		return fmt.Errorf("id and provider are required")
	}
	return nil
}

func validateStrategy(p *Product) error {
	switch p.Strategy {
	case StrategyTable, StrategyMultiplier:
		return nil
	}
	return fmt.Errorf("unknown strategy %q (want %q or %q)", p.Strategy, StrategyTable, StrategyMultiplier)
}

// validateTableProduct ensures table products do not carry multiplier settings
func validateTableProduct(p *Product) error {
	if p.Strategy != StrategyTable {
		return nil
	}
	if len(p.Factors) > 0 || len(p.Terms) > 0 || len(p.Distances) > 0 || !p.BasePremium.IsZero() {
		return fmt.Errorf("table products take their terms, distances and premiums from the rate card")
	}
	return nil
}

// validateMultiplierProduct ensures multiplier products are fully specified
func validateMultiplierProduct(p *Product) error {
	if p.Strategy != StrategyMultiplier {
		return nil
	}
	if !p.BasePremium.IsPositive() {
		return fmt.Errorf("base_premium must be positive")
	}
	if len(p.Terms) == 0 || len(p.Distances) == 0 {
		return fmt.Errorf("terms and distances are required")
	}
	for _, t := range p.Terms {
		if t <= 0 {
			return fmt.Errorf("term %d must be positive", t)
		}
	}
	seen := make(map[string]bool)
	for _, f := range p.Factors {
		if seen[f.Name] {
			return fmt.Errorf("factor %q defined twice", f.Name)
		}
		seen[f.Name] = true
		if len(f.Bands) == 0 {
			return fmt.Errorf("factor %q has no bands", f.Name)
		}
		for _, b := range f.Bands {
			if b.Multiplier.IsNegative() {
				return fmt.Errorf("factor %q band %q has a negative multiplier", f.Name, b.When)
			}
		}
	}
	return nil
}
