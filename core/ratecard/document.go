package ratecard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"vsc-rating/core/coverage"
	"vsc-rating/core/determinism"
	"vsc-rating/core/vehicle"
	"vsc-rating/internal/errors"
)

const unavailableMarker = "unavailable"

// Document is the on-disk form of a rate card:
//
//	provider: acme-warranty
//	product: powertrain-plus
//	version: 1.2.0
//	effective_date: 2025-01-01
//	content_hash: 3f1c...   # optional, checked at load
//	rates:
//	  B:                  # class
//	    36:               # term months
//	      15001-50000:    # mileage bracket
//	        60,000: 1287.00
//	        unlimited: unavailable
type Document struct {
	Provider      string                                           `yaml:"provider"`
	Product       string                                           `yaml:"product"`
	Version       string                                           `yaml:"version"`
	EffectiveDate string                                           `yaml:"effective_date"`
	ContentHash   string                                           `yaml:"content_hash,omitempty"`
	Rates         map[string]map[string]map[string]map[string]cell `yaml:"rates"`
}

// cell decodes a premium, null or the unavailable marker.
type cell Cell

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *cell) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: rate cell must be a scalar", n.Line)
	}
	v := strings.ToLower(strings.TrimSpace(n.Value))
	if n.ShortTag() == "!!null" || v == unavailableMarker || v == "n/a" || v == "-" {
		*c = cell(Unavailable)
		return nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(v, ",", ""))
	if err != nil {
		return fmt.Errorf("line %d: invalid premium %q", n.Line, n.Value)
	}
	*c = cell(Price(d))
	return nil
}

// Parse decodes a YAML rate card document and builds the sealed table.
func Parse(data []byte, origin string) (*Table, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Config(fmt.Sprintf("rate card %s is not valid YAML", origin), err).
			WithContext("origin", origin)
	}
	return doc.Build(origin)
}

// Build converts the document into a sealed table.
func (d Document) Build(origin string) (*Table, error) {
	fail := func(format string, args ...any) error {
		return errors.Newf(errors.TypeConfig, "rate card %s: "+format, append([]any{origin}, args...)...).
			WithContext("origin", origin)
	}

	version, err := semver.NewVersion(strings.TrimSpace(d.Version))
	if err != nil {
		return nil, fail("invalid version %q: %v", d.Version, err)
	}

	b := NewBuilder(strings.TrimSpace(d.Provider), strings.TrimSpace(d.Product), version).WithOrigin(origin)
	if d.EffectiveDate != "" {
		eff, err := time.Parse(time.DateOnly, strings.TrimSpace(d.EffectiveDate))
		if err != nil {
			return nil, fail("invalid effective_date %q", d.EffectiveDate)
		}
		b.WithEffectiveAt(eff)
	}

	for rawClass, terms := range d.Rates {
		class, ok := vehicle.ParseClass(rawClass)
		if !ok {
			return nil, fail("unknown class %q", rawClass)
		}
		for rawTerm, brackets := range terms {
			term, err := strconv.Atoi(strings.TrimSpace(rawTerm))
			if err != nil {
				return nil, fail("invalid term %q", rawTerm)
			}
			for rawBracket, distances := range brackets {
				bracket, err := vehicle.ParseBracket(rawBracket)
				if err != nil {
					return nil, fail("%v", err)
				}
				for rawDistance, c := range distances {
					distance, err := coverage.ParseDistance(rawDistance)
					if err != nil {
						return nil, fail("invalid distance %q", rawDistance)
					}
					b.Set(Key{Class: class, TermMonths: term, Bracket: bracket, Distance: distance}, Cell(c))
				}
			}
		}
	}

	t, err := b.Build()
	if err != nil {
		return nil, err
	}
	if d.ContentHash != "" {
		recorded, err := determinism.ParseContentHash(strings.TrimSpace(d.ContentHash))
		if err != nil {
			return nil, fail("invalid content_hash: %v", err)
		}
		if recorded != t.ContentHash {
			return nil, errors.Integrity(fmt.Sprintf("rate card %s: content_hash %s does not match computed %s",
				origin, recorded.Hex(), t.ContentHash.Hex())).WithContext("origin", origin)
		}
	}
	return t, nil
}

// ToDocument renders a table back into its document form.
func ToDocument(t *Table) Document {
	doc := Document{
		Provider: t.Provider,
		Product:  t.Product,
		Version:  t.Version.String(),
		Rates:    make(map[string]map[string]map[string]map[string]cell),
	}
	doc.ContentHash = t.ContentHash.Hex()
	if !t.EffectiveAt.IsZero() {
		doc.EffectiveDate = t.EffectiveAt.Format(time.DateOnly)
	}
	for _, k := range t.keys {
		class := k.Class.String()
		term := strconv.Itoa(k.TermMonths)
		bracket := k.Bracket.String()
		if doc.Rates[class] == nil {
			doc.Rates[class] = make(map[string]map[string]map[string]cell)
		}
		if doc.Rates[class][term] == nil {
			doc.Rates[class][term] = make(map[string]map[string]cell)
		}
		if doc.Rates[class][term][bracket] == nil {
			doc.Rates[class][term][bracket] = make(map[string]cell)
		}
		doc.Rates[class][term][bracket][k.Distance.String()] = cell(t.cells[k])
	}
	return doc
}

// MarshalYAML implements yaml.Marshaler.
func (c cell) MarshalYAML() (any, error) {
	return Cell(c).String(), nil
}
