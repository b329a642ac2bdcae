package eligibility

import (
	"strconv"
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vsc-rating/core/coverage"
	"vsc-rating/core/ratecard"
	"vsc-rating/core/vehicle"
	"vsc-rating/internal/errors"
)

var fixedNow = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }

func selection(term, miles int) coverage.Selection {
	return coverage.Selection{TermMonths: term, Distance: coverage.MilesDistance(miles)}
}

func testTable(t *testing.T) *ratecard.Table {
	t.Helper()
	tbl, err := ratecard.NewBuilder("acme", "powertrain", semver.MustParse("1.0.0")).
		Set(ratecard.Key{
			Class:      vehicle.ClassB,
			TermMonths: 36,
			Bracket:    vehicle.BracketFor(40000),
			Distance:   coverage.MilesDistance(45000),
		}, ratecard.Price(decimal.NewFromInt(1287))).
		Build()
	require.NoError(t, err)
	return tbl
}

func TestCheck(t *testing.T) {
	checker := NewChecker(WithClock(fixedNow))

	tests := []struct {
		name         string
		v            vehicle.Descriptor
		wantEligible bool
		wantSpecial  bool
		wantCodes    []Code
	}{
		{
			name:         "eligible mainstream sedan",
			v:            vehicle.Descriptor{Make: "Ford", Model: "Fusion", ModelYear: "2018", Mileage: 40000},
			wantEligible: true,
		},
		{
			name:        "too old",
			v:           vehicle.Descriptor{Make: "Honda", Model: "Civic", ModelYear: "2005", Mileage: 90000},
			wantSpecial: true,
			wantCodes:   []Code{CodeVehicleTooOld},
		},
		{
			name:         "exactly fifteen years",
			v:            vehicle.Descriptor{Make: "Honda", Model: "Civic", ModelYear: "2009", Mileage: 90000},
			wantEligible: true,
		},
		{
			name:        "unparseable year skips age",
			v:           vehicle.Descriptor{Make: "Honda", ModelYear: "twenty", Mileage: 10},
			wantSpecial: true,
			wantCodes:   []Code{CodeModelYearInvalid},
		},
		{
			name:        "future year",
			v:           vehicle.Descriptor{Make: "Honda", ModelYear: "2026", Mileage: 10},
			wantSpecial: true,
			wantCodes:   []Code{CodeModelYearInvalid},
		},
		{
			name:         "next model year allowed",
			v:            vehicle.Descriptor{Make: "Honda", ModelYear: "2025", Mileage: 10},
			wantEligible: true,
		},
		{
			name:        "mileage exceeded",
			v:           vehicle.Descriptor{Make: "Kia", ModelYear: "2020", Mileage: 150001},
			wantSpecial: true,
			wantCodes:   []Code{CodeMileageExceeded},
		},
		{
			name:      "categorical exclusion",
			v:         vehicle.Descriptor{Make: "Ferrari", Model: "F8", ModelYear: "2022", Mileage: 1000},
			wantCodes: []Code{CodeClassIneligible},
		},
		{
			name:      "reasons accumulate",
			v:         vehicle.Descriptor{Make: "Pontiac", ModelYear: "1999", Mileage: 200000},
			wantCodes: []Code{CodeVehicleTooOld, CodeMileageExceeded, CodeClassIneligible},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := checker.Check(tt.v, selection(36, 45000))
			require.NoError(t, err)
			assert.Equal(t, tt.wantEligible, res.Eligible)
			assert.Equal(t, tt.wantSpecial, res.AllowSpecialQuote)

			var codes []Code
			for _, r := range res.Reasons {
				codes = append(codes, r.Code)
			}
			assert.Equal(t, tt.wantCodes, codes)
		})
	}
}

func TestCheckAgeMessage(t *testing.T) {
	res, err := NewChecker(WithClock(fixedNow)).Check(
		vehicle.Descriptor{Make: "Toyota", Model: "Camry", ModelYear: "2005", Mileage: 100000},
		selection(36, 45000))
	require.NoError(t, err)
	require.Len(t, res.Reasons, 1)
	assert.Contains(t, res.Reasons[0].Message, "19 years old")
}

func TestClassOverride(t *testing.T) {
	checker := NewChecker(WithClock(fixedNow))
	c := vehicle.ClassC

	sel := selection(36, 45000)
	sel.ClassOverride = &c

	res, err := checker.Check(vehicle.Descriptor{Make: "Toyota", ModelYear: "2020", Mileage: 1}, sel)
	require.NoError(t, err)
	assert.Equal(t, vehicle.ClassC, res.Class)
	assert.True(t, res.Eligible)

	// An override never rescues an excluded vehicle.
	res, err = checker.Check(vehicle.Descriptor{Make: "Lamborghini", ModelYear: "2020", Mileage: 1}, sel)
	require.NoError(t, err)
	assert.False(t, res.Eligible)
	assert.False(t, res.AllowSpecialQuote)
	assert.Equal(t, vehicle.ClassIneligible, res.Class)
}

func TestRateCheck(t *testing.T) {
	checker := NewChecker(WithClock(fixedNow), WithRateTable(testTable(t)))
	v := vehicle.Descriptor{Make: "Ford", Model: "Fusion", ModelYear: "2018", Mileage: 40000}

	res, err := checker.Check(v, selection(36, 45000))
	require.NoError(t, err)
	assert.True(t, res.Eligible)

	res, err = checker.Check(v, selection(36, 75000))
	require.NoError(t, err)
	assert.False(t, res.Eligible)
	assert.True(t, res.AllowSpecialQuote)
	require.Len(t, res.Reasons, 1)
	assert.Equal(t, CodeRateUnavailable, res.Reasons[0].Code)
	assert.Contains(t, res.Reasons[0].Message, "coverage distance 75000")

	res, err = checker.Check(v, selection(48, 45000))
	require.NoError(t, err)
	assert.Contains(t, res.Reasons[0].Message, "48-month term")

	// Rate check does not run for an already ineligible vehicle.
	res, err = checker.Check(vehicle.Descriptor{Make: "Ford", ModelYear: "2001", Mileage: 40000}, selection(36, 75000))
	require.NoError(t, err)
	assert.False(t, res.Has(CodeRateUnavailable))
}

func TestCheckMalformedInput(t *testing.T) {
	checker := NewChecker(WithClock(fixedNow))
	good := vehicle.Descriptor{Make: "Ford", ModelYear: "2018", Mileage: 1}

	tests := []struct {
		name string
		v    vehicle.Descriptor
		sel  coverage.Selection
	}{
		{"empty make", vehicle.Descriptor{ModelYear: "2018"}, selection(36, 45000)},
		{"negative mileage", vehicle.Descriptor{Make: "Ford", ModelYear: "2018", Mileage: -5}, selection(36, 45000)},
		{"zero term", good, selection(0, 45000)},
		{"zero distance", good, coverage.Selection{TermMonths: 36}},
		{"bad oil tier", good, coverage.Selection{TermMonths: 36, Distance: coverage.Unlimited, OilChange: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := checker.Check(tt.v, tt.sel)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeInput))
		})
	}
}

func TestWithReason(t *testing.T) {
	res := Result{Eligible: true}
	res = res.WithReason(RateUnavailable("term %d not offered", 84))
	assert.False(t, res.Eligible)
	assert.True(t, res.AllowSpecialQuote)
	assert.Equal(t, []string{"term 84 not offered"}, res.Messages())

	res = res.WithReason(Reason{Code: CodeClassIneligible, Categorical: true})
	assert.False(t, res.AllowSpecialQuote)
}

func TestEligibilityProperties(t *testing.T) {
	checker := NewChecker(WithClock(fixedNow))
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("vehicles older than 15 years are ineligible but special-quotable", prop.ForAll(
		func(age, miles int) bool {
			v := vehicle.Descriptor{Make: "Honda", ModelYear: strconv.Itoa(2024 - age), Mileage: miles}
			res, err := checker.Check(v, selection(36, 45000))
			return err == nil && !res.Eligible && res.AllowSpecialQuote && res.Has(CodeVehicleTooOld)
		},
		gen.IntRange(16, 34),
		gen.IntRange(0, 150000),
	))

	properties.Property("mileage over the limit is ineligible but special-quotable", prop.ForAll(
		func(miles int) bool {
			v := vehicle.Descriptor{Make: "Honda", ModelYear: "2020", Mileage: miles}
			res, err := checker.Check(v, selection(36, 45000))
			return err == nil && !res.Eligible && res.AllowSpecialQuote && res.Has(CodeMileageExceeded)
		},
		gen.IntRange(150001, 2_000_000),
	))

	properties.Property("excluded makes are never special-quotable", prop.ForAll(
		func(idx, year, miles int) bool {
			makes := []string{"Ferrari", "Bentley", "Saturn", "Hummer", "Rolls-Royce"}
			v := vehicle.Descriptor{Make: makes[idx], ModelYear: strconv.Itoa(year), Mileage: miles}
			res, err := checker.Check(v, selection(36, 45000))
			return err == nil && !res.Eligible && !res.AllowSpecialQuote
		},
		gen.IntRange(0, 4),
		gen.IntRange(1980, 2030),
		gen.IntRange(0, 500000),
	))

	properties.TestingRun(t)
}
