// Package ratecard - immutable, content-hashed rate tables.
// A table is sealed at build time and never modified afterwards.
// A missing rate is reported as missing. It is never approximated
// from a neighboring key.
package ratecard

import (
	"fmt"
	"sort"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/shopspring/decimal"

	"vsc-rating/core/coverage"
	"vsc-rating/core/determinism"
	"vsc-rating/core/vehicle"
	"vsc-rating/internal/errors"
)

// Key identifies one cell of a rate table.
type Key struct {
	Class      vehicle.Class
	TermMonths int
	Bracket    vehicle.Bracket
	Distance   coverage.Distance
}

// String returns a deterministic string representation
func (k Key) String() string {
	return fmt.Sprintf("%s/%d/%s/%s", k.Class, k.TermMonths, k.Bracket, k.Distance)
}

// Less orders keys by class, term, bracket, then distance with unlimited last.
func (k Key) Less(o Key) bool {
	if k.Class != o.Class {
		return k.Class < o.Class
	}
	if k.TermMonths != o.TermMonths {
		return k.TermMonths < o.TermMonths
	}
	if k.Bracket != o.Bracket {
		return k.Bracket < o.Bracket
	}
	return k.Distance.Less(o.Distance)
}

// Cell is either a premium or an explicit unavailable marker.
type Cell struct {
	premium   decimal.Decimal
	available bool
}

// Unavailable marks a combination the provider does not offer.
var Unavailable = Cell{}

// Price returns a priced cell.
func Price(premium decimal.Decimal) Cell {
	return Cell{premium: premium, available: true}
}

// Premium returns the cell's premium and whether it is priced.
func (c Cell) Premium() (decimal.Decimal, bool) {
	return c.premium, c.available
}

// String returns the premium or "unavailable".
func (c Cell) String() string {
	if !c.available {
		return unavailableMarker
	}
	return c.premium.StringFixed(determinism.MoneyPlaces)
}

// Axis names a dimension of the rate table.
type Axis int

const (
	AxisNone Axis = iota
	AxisClass
	AxisTerm
	AxisBracket
	AxisDistance
)

// String returns the axis name
func (a Axis) String() string {
	switch a {
	case AxisNone:
		return "none"
	case AxisClass:
		return "class"
	case AxisTerm:
		return "term"
	case AxisBracket:
		return "mileage bracket"
	case AxisDistance:
		return "distance"
	default:
		return "unknown"
	}
}

type classTerm struct {
	class vehicle.Class
	term  int
}

type classTermBracket struct {
	classTerm
	bracket vehicle.Bracket
}

// Table is IMMUTABLE after Build.
type Table struct {
	// Identity
	Provider    string
	Product     string
	Version     *semver.Version
	EffectiveAt time.Time
	ContentHash determinism.ContentHash

	// Where the table was loaded from, for diagnostics only.
	Origin string

	cells map[Key]Cell
	keys  []Key

	// Prefix indexes over priced cells, used by Probe and the enumerators.
	classes  map[vehicle.Class]bool
	terms    map[classTerm]bool
	brackets map[classTermBracket]bool
}

// Lookup returns the premium for a key. Absent and unavailable cells both
// return false.
func (t *Table) Lookup(k Key) (decimal.Decimal, bool) {
	c, ok := t.cells[k]
	if !ok {
		return decimal.Zero, false
	}
	return c.Premium()
}

// Cell returns the raw cell, including unavailable markers.
func (t *Table) Cell(k Key) (Cell, bool) {
	c, ok := t.cells[k]
	return c, ok
}

// Probe reports the first axis on which k has no priced cell, in the
// order class, term, bracket, distance. AxisNone means k is priced.
func (t *Table) Probe(k Key) Axis {
	ct := classTerm{k.Class, k.TermMonths}
	switch {
	case !t.classes[k.Class]:
		return AxisClass
	case !t.terms[ct]:
		return AxisTerm
	case !t.brackets[classTermBracket{ct, k.Bracket}]:
		return AxisBracket
	}
	if _, ok := t.Lookup(k); !ok {
		return AxisDistance
	}
	return AxisNone
}

// Terms returns the priced term lengths for a class and bracket, ascending.
func (t *Table) Terms(class vehicle.Class, bracket vehicle.Bracket) []int {
	seen := make(map[int]bool)
	for ctb := range t.brackets {
		if ctb.class == class && ctb.bracket == bracket {
			seen[ctb.term] = true
		}
	}
	return determinism.SortedKeys(seen, func(a, b int) bool { return a < b })
}

// Distances returns the priced distances for a class, term and bracket,
// ascending with unlimited last.
func (t *Table) Distances(class vehicle.Class, term int, bracket vehicle.Bracket) []coverage.Distance {
	var out []coverage.Distance
	for _, k := range t.keys {
		if k.Class != class || k.TermMonths != term || k.Bracket != bracket {
			continue
		}
		if _, ok := t.Lookup(k); ok {
			out = append(out, k.Distance)
		}
	}
	return out
}

// Keys returns all keys, including unavailable ones, in sorted order.
func (t *Table) Keys() []Key {
	out := make([]Key, len(t.keys))
	copy(out, t.keys)
	return out
}

// Len returns the number of cells, including unavailable ones.
func (t *Table) Len() int {
	return len(t.keys)
}

// Priced returns the number of priced cells.
func (t *Table) Priced() int {
	n := 0
	for _, c := range t.cells {
		if c.available {
			n++
		}
	}
	return n
}

// ID returns "provider/product@version".
func (t *Table) ID() string {
	return fmt.Sprintf("%s/%s@%s", t.Provider, t.Product, t.Version)
}

// Verify checks content hash integrity
func (t *Table) Verify() error {
	computed, err := t.computeHash()
	if err != nil {
		return err
	}
	if computed != t.ContentHash {
		return errors.Integrity(fmt.Sprintf("rate card %s hash mismatch: recorded %s, computed %s",
			t.ID(), t.ContentHash.Hex(), computed.Hex()))
	}
	return nil
}

// computeHash hashes the canonical JSON form of the identity and every cell.
func (t *Table) computeHash() (determinism.ContentHash, error) {
	cells := make(map[string]string, len(t.cells))
	for k, c := range t.cells {
		cells[k.String()] = c.String()
	}
	doc := map[string]any{
		"provider":     t.Provider,
		"product":      t.Product,
		"version":      t.Version.String(),
		"effective_at": t.EffectiveAt.UTC().Format(time.DateOnly),
		"cells":        cells,
	}
	return determinism.HashCanonical(doc)
}

// Builder builds a rate table
type Builder struct {
	provider    string
	product     string
	version     *semver.Version
	effectiveAt time.Time
	origin      string
	cells       map[Key]Cell
	errs        []string
}

// NewBuilder creates a new builder
func NewBuilder(provider, product string, version *semver.Version) *Builder {
	return &Builder{
		provider: provider,
		product:  product,
		version:  version,
		cells:    make(map[Key]Cell),
	}
}

// WithEffectiveAt sets the effective date
func (b *Builder) WithEffectiveAt(t time.Time) *Builder {
	b.effectiveAt = t
	return b
}

// WithOrigin records where the table came from.
func (b *Builder) WithOrigin(origin string) *Builder {
	b.origin = origin
	return b
}

// Set adds a cell. Invalid or duplicate keys are reported by Build.
func (b *Builder) Set(k Key, c Cell) *Builder {
	switch {
	case !k.Class.IsRated():
		b.errs = append(b.errs, fmt.Sprintf("%s: class must be A, B or C", k))
	case k.TermMonths <= 0:
		b.errs = append(b.errs, fmt.Sprintf("%s: term must be positive", k))
	case !k.Bracket.IsRated():
		b.errs = append(b.errs, fmt.Sprintf("%s: bracket %s cannot be rated", k, k.Bracket))
	case k.Distance.IsZero():
		b.errs = append(b.errs, fmt.Sprintf("%s: distance is required", k))
	case c.available && c.premium.IsNegative():
		b.errs = append(b.errs, fmt.Sprintf("%s: premium must be non-negative", k))
	default:
		if _, dup := b.cells[k]; dup {
			b.errs = append(b.errs, fmt.Sprintf("%s: duplicate cell", k))
			return b
		}
		b.cells[k] = c
	}
	return b
}

// Build creates an immutable table
func (b *Builder) Build() (*Table, error) {
	if b.provider == "" || b.product == "" {
		b.errs = append(b.errs, "provider and product are required")
	}
	if b.version == nil {
		b.errs = append(b.errs, "version is required")
	}
	if len(b.cells) == 0 {
		b.errs = append(b.errs, "rate card has no cells")
	}
	if len(b.errs) > 0 {
		sort.Strings(b.errs)
		return nil, errors.Newf(errors.TypeConfig, "invalid rate card %s/%s: %v", b.provider, b.product, b.errs).
			WithContext("origin", b.origin)
	}

	t := &Table{
		Provider:    b.provider,
		Product:     b.product,
		Version:     b.version,
		EffectiveAt: b.effectiveAt.UTC(),
		Origin:      b.origin,
		cells:       make(map[Key]Cell, len(b.cells)),
		classes:     make(map[vehicle.Class]bool),
		terms:       make(map[classTerm]bool),
		brackets:    make(map[classTermBracket]bool),
	}
	for k, c := range b.cells {
		t.cells[k] = c
		t.keys = append(t.keys, k)
		if !c.available {
			continue
		}
		ct := classTerm{k.Class, k.TermMonths}
		t.classes[k.Class] = true
		t.terms[ct] = true
		t.brackets[classTermBracket{ct, k.Bracket}] = true
	}
	sort.Slice(t.keys, func(i, j int) bool { return t.keys[i].Less(t.keys[j]) })

	hash, err := t.computeHash()
	if err != nil {
		return nil, errors.Internal("rate card hash failed", err)
	}
	t.ContentHash = hash
	return t, nil
}
