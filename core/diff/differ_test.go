package diff

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vsc-rating/core/coverage"
	"vsc-rating/core/ratecard"
	"vsc-rating/core/vehicle"
)

func key(class vehicle.Class, term, miles int, d coverage.Distance) ratecard.Key {
	return ratecard.Key{Class: class, TermMonths: term, Bracket: vehicle.BracketFor(miles), Distance: d}
}

func price(s string) ratecard.Cell {
	return ratecard.Price(decimal.RequireFromString(s))
}

func build(t *testing.T, version string, cells map[ratecard.Key]ratecard.Cell) *ratecard.Table {
	t.Helper()
	b := ratecard.NewBuilder("acme-warranty", "powertrain", semver.MustParse(version))
	for k, c := range cells {
		b.Set(k, c)
	}
	table, err := b.Build()
	require.NoError(t, err)
	return table
}

var (
	kA36  = key(vehicle.ClassA, 36, 1000, coverage.MilesDistance(36000))
	kB36  = key(vehicle.ClassB, 36, 40000, coverage.MilesDistance(45000))
	kB36u = key(vehicle.ClassB, 36, 40000, coverage.Unlimited)
	kB24  = key(vehicle.ClassB, 24, 40000, coverage.MilesDistance(45000))
	kC36  = key(vehicle.ClassC, 36, 40000, coverage.MilesDistance(45000))
)

func TestDiff(t *testing.T) {
	before := build(t, "1.0.0", map[ratecard.Key]ratecard.Cell{
		kA36:  price("899.00"),
		kB36:  price("1287.00"),
		kB36u: price("1599.00"),
		kC36:  price("1650.00"),
	})
	after := build(t, "1.1.0", map[ratecard.Key]ratecard.Cell{
		kA36:  price("899.00"),
		kB36:  price("1325.61"),
		kB36u: ratecard.Unavailable,
		kB24:  price("1099.00"),
	})

	r := NewDiffer(decimal.Zero).Diff(before, after)
	assert.Equal(t, "acme-warranty/powertrain@1.0.0", r.Before)
	assert.Equal(t, "acme-warranty/powertrain@1.1.0", r.After)
	assert.Equal(t, 1, r.Unchanged)

	require.Len(t, r.Added, 1)
	assert.Equal(t, kB24, r.Added[0].Key)
	assert.Equal(t, "1099.00", r.Added[0].After)

	require.Len(t, r.Removed, 1)
	assert.Equal(t, kC36, r.Removed[0].Key)

	require.Len(t, r.Changed, 2)
	assert.Equal(t, kB36, r.Changed[0].Key)
	assert.True(t, r.Changed[0].Priced)
	assert.Equal(t, "38.61", r.Changed[0].Delta.StringFixed(2))
	assert.Equal(t, "3", r.Changed[0].Percent.String())
	assert.Equal(t, "no longer offered", r.Changed[1].Reason)
	assert.Equal(t, "unavailable", r.Changed[1].After)
	assert.Equal(t, 1, r.Increased)
	assert.Equal(t, 0, r.Decreased)

	assert.Contains(t, r.Summary(), "~ 2 cells changed (1 up, 0 down)")
	top := r.TopChanges(5)
	require.Len(t, top, 1)
	assert.Equal(t, kB36, top[0].Key)
}

func TestDiffThreshold(t *testing.T) {
	before := build(t, "1.0.0", map[ratecard.Key]ratecard.Cell{kB36: price("1000.00")})
	after := build(t, "1.0.1", map[ratecard.Key]ratecard.Cell{kB36: price("1004.00")})

	assert.Len(t, NewDiffer(decimal.Zero).Diff(before, after).Changed, 1)

	r := NewDiffer(decimal.RequireFromString("0.5")).Diff(before, after)
	assert.Empty(t, r.Changed)
	assert.Equal(t, 1, r.Unchanged)
	assert.Contains(t, r.Summary(), "no changes")
}

func TestChangeTypeString(t *testing.T) {
	assert.Equal(t, "modified", ChangeModified.String())
	assert.Equal(t, "unknown", ChangeType(42).String())
}
