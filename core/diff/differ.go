// Package diff provides cell-level rate card diffing.
// Compares two versions of a rate card so a new version can be reviewed
// before it becomes active.
package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"vsc-rating/core/determinism"
	"vsc-rating/core/ratecard"
)

// Result is the complete diff between two rate card versions
type Result struct {
	Before string `json:"before"`
	After  string `json:"after"`

	Added     []*CellDiff `json:"added"`
	Removed   []*CellDiff `json:"removed"`
	Changed   []*CellDiff `json:"changed"`
	Unchanged int         `json:"unchanged"`

	// Increased and Decreased count price moves among Changed.
	Increased int `json:"increased"`
	Decreased int `json:"decreased"`
}

// CellDiff describes changes to a single rate card cell
type CellDiff struct {
	Key        ratecard.Key
	ChangeType ChangeType

	// Before and After are "unavailable", a two-place premium, or empty
	// when the cell does not exist on that side.
	Before string
	After  string

	// Delta and Percent are set only when both sides are priced.
	Delta   decimal.Decimal
	Percent decimal.Decimal
	Priced  bool

	Reason string
}

// ChangeType indicates the type of change
type ChangeType int

const (
	ChangeAdded     ChangeType = iota // cell only in the newer version
	ChangeRemoved                     // cell only in the older version
	ChangeModified                    // price or availability changed
	ChangeUnchanged                   // same price, or within threshold
)

// String returns the change type name
func (c ChangeType) String() string {
	switch c {
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	case ChangeModified:
		return "modified"
	case ChangeUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// Differ computes diffs between rate card versions
type Differ struct {
	// Threshold is the absolute percentage move at or below which a
	// priced cell counts as unchanged. Zero reports every move.
	Threshold decimal.Decimal
}

// NewDiffer creates a new differ
func NewDiffer(threshold decimal.Decimal) *Differ {
	if threshold.IsNegative() {
		threshold = decimal.Zero
	}
	return &Differ{Threshold: threshold}
}

// Diff computes the diff between before and after.
func (d *Differ) Diff(before, after *ratecard.Table) *Result {
	result := &Result{
		Before:  before.ID(),
		After:   after.ID(),
		Added:   []*CellDiff{},
		Removed: []*CellDiff{},
		Changed: []*CellDiff{},
	}

	for _, k := range after.Keys() {
		afterCell, _ := after.Cell(k)
		beforeCell, existed := before.Cell(k)
		if !existed {
			result.Added = append(result.Added, &CellDiff{
				Key: k, ChangeType: ChangeAdded, After: afterCell.String(), Reason: "new cell",
			})
			continue
		}

		cd := d.compareCells(k, beforeCell, afterCell)
		if cd.ChangeType == ChangeUnchanged {
			result.Unchanged++
			continue
		}
		result.Changed = append(result.Changed, cd)
		if cd.Priced {
			if cd.Delta.IsPositive() {
				result.Increased++
			} else if cd.Delta.IsNegative() {
				result.Decreased++
			}
		}
	}

	for _, k := range before.Keys() {
		if _, exists := after.Cell(k); !exists {
			beforeCell, _ := before.Cell(k)
			result.Removed = append(result.Removed, &CellDiff{
				Key: k, ChangeType: ChangeRemoved, Before: beforeCell.String(), Reason: "cell removed",
			})
		}
	}

	// Keys() is sorted, so every list is already in key order.
	return result
}

func (d *Differ) compareCells(k ratecard.Key, before, after ratecard.Cell) *CellDiff {
	cd := &CellDiff{
		Key:        k,
		ChangeType: ChangeUnchanged,
		Before:     before.String(),
		After:      after.String(),
	}

	bp, bok := before.Premium()
	ap, aok := after.Premium()
	switch {
	case !bok && !aok:
		return cd
	case bok && !aok:
		cd.ChangeType = ChangeModified
		cd.Reason = "no longer offered"
		return cd
	case !bok && aok:
		cd.ChangeType = ChangeModified
		cd.Reason = "newly offered"
		return cd
	}

	cd.Priced = true
	cd.Delta = ap.Sub(bp)
	if bp.IsZero() {
		if cd.Delta.IsZero() {
			return cd
		}
		cd.ChangeType = ChangeModified
		cd.Reason = "price changed from zero"
		return cd
	}

	cd.Percent = determinism.Round2(cd.Delta.Div(bp).Shift(2))
	if cd.Delta.IsZero() || cd.Percent.Abs().LessThanOrEqual(d.Threshold) {
		return cd
	}
	cd.ChangeType = ChangeModified
	cd.Reason = "price changed"
	return cd
}

// Summary provides a human-readable summary
func (r *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s -> %s\n", r.Before, r.After)
	if len(r.Added)+len(r.Removed)+len(r.Changed) == 0 {
		b.WriteString("  no changes\n")
		return b.String()
	}
	if n := len(r.Added); n > 0 {
		fmt.Fprintf(&b, "  + %d cells added\n", n)
	}
	if n := len(r.Removed); n > 0 {
		fmt.Fprintf(&b, "  - %d cells removed\n", n)
	}
	if n := len(r.Changed); n > 0 {
		fmt.Fprintf(&b, "  ~ %d cells changed (%d up, %d down)\n", n, r.Increased, r.Decreased)
	}
	return b.String()
}

// TopChanges returns the priced changes with the largest absolute percent
// move, ties broken by key.
func (r *Result) TopChanges(n int) []*CellDiff {
	var priced []*CellDiff
	for _, c := range r.Changed {
		if c.Priced {
			priced = append(priced, c)
		}
	}
	sort.SliceStable(priced, func(i, j int) bool {
		pi, pj := priced[i].Percent.Abs(), priced[j].Percent.Abs()
		if !pi.Equal(pj) {
			return pi.GreaterThan(pj)
		}
		return priced[i].Key.Less(priced[j].Key)
	})
	if n > len(priced) {
		n = len(priced)
	}
	return priced[:n]
}
