package surcharge

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vsc-rating/core/coverage"
	"vsc-rating/core/vehicle"
	"vsc-rating/internal/errors"
)

func TestCalculateMandatory(t *testing.T) {
	calc := NewCalculator(DefaultSchedule())
	sel := coverage.Selection{TermMonths: 36, Distance: coverage.Unlimited}

	tests := []struct {
		name      string
		v         vehicle.Descriptor
		mandatory string
		codes     []string
	}{
		{"none", vehicle.Descriptor{Make: "Honda", Drivetrain: "FWD", FuelType: "Gasoline", Engine: "2.0L I4"}, "0", nil},
		{"all wheel drive hyphenated", vehicle.Descriptor{Make: "Subaru", Drivetrain: "All-Wheel Drive"}, "150", []string{"four_wheel_drive"}},
		{"4x4", vehicle.Descriptor{Make: "Jeep", Drivetrain: "4X4"}, "150", []string{"four_wheel_drive"}},
		{"diesel", vehicle.Descriptor{Make: "Ram", FuelType: "DIESEL"}, "200", []string{"diesel"}},
		{"supercharged", vehicle.Descriptor{Make: "Ford", Engine: "5.2L Supercharged V8"}, "175", []string{"turbo"}},
		{"stacked", vehicle.Descriptor{Make: "Ford", Drivetrain: "4WD", FuelType: "Diesel", Engine: "6.7L Turbo Diesel"}, "525",
			[]string{"four_wheel_drive", "diesel", "turbo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := calc.Calculate(tt.v, sel)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.mandatory).Equal(b.Mandatory), "got %s", b.Mandatory)
			assert.True(t, b.Optional.IsZero())

			var codes []string
			for _, l := range b.Lines {
				codes = append(codes, l.Code)
			}
			assert.Equal(t, tt.codes, codes)
		})
	}
}

func TestCalculateOptional(t *testing.T) {
	calc := NewCalculator(DefaultSchedule())
	sel := coverage.Selection{
		TermMonths:        36,
		Distance:          coverage.Unlimited,
		Commercial:        true,
		LiftKit:           true,
		EcoPackage:        true,
		TechnologyPackage: true,
		OilChange:         coverage.OilChange8,
	}

	b, err := calc.Calculate(vehicle.Descriptor{Make: "Ford"}, sel)
	require.NoError(t, err)
	// 300 + 250 + 125 + 150 + 575
	assert.Equal(t, "1400", b.Optional.String())
	assert.True(t, b.Mandatory.IsZero())
	assert.Equal(t, "1400", b.Total().String())
	assert.Len(t, b.Lines, 5)
	assert.Equal(t, "oil_change_8", b.Lines[4].Code)
}

func TestCalculateUnknownOilTier(t *testing.T) {
	sched := DefaultSchedule()
	delete(sched.OilChange, coverage.OilChange10)

	_, err := NewCalculator(sched).Calculate(vehicle.Descriptor{Make: "Ford"},
		coverage.Selection{TermMonths: 36, Distance: coverage.Unlimited, OilChange: coverage.OilChange10})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestScheduleValidate(t *testing.T) {
	assert.NoError(t, DefaultSchedule().Validate())

	bad := DefaultSchedule()
	bad.Diesel = decimal.NewFromInt(-1)
	assert.True(t, errors.IsType(bad.Validate(), errors.TypeConfig))

	missing := DefaultSchedule()
	delete(missing.OilChange, coverage.OilChange6)
	assert.Error(t, missing.Validate())
}
