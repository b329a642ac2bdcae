package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vsc-rating/core/vehicle"
	"vsc-rating/internal/errors"
)

func TestNormalizeSelection(t *testing.T) {
	sel, err := NormalizeSelection(map[string]any{
		"termMonths":     "36 months",
		"Coverage-Miles": "100,000",
		"liftKit":        "yes",
		"tech_package":   true,
		"oil changes":    8,
		"class_override": "b",
	})
	require.NoError(t, err)

	assert.Equal(t, 36, sel.TermMonths)
	assert.Equal(t, MilesDistance(100000), sel.Distance)
	assert.True(t, sel.LiftKit)
	assert.True(t, sel.TechnologyPackage)
	assert.False(t, sel.Commercial)
	assert.Equal(t, OilChange8, sel.OilChange)
	require.NotNil(t, sel.ClassOverride)
	assert.Equal(t, vehicle.ClassB, *sel.ClassOverride)
	assert.Equal(t, []string{"lift_kit", "technology_package"}, sel.OptionalAddOns())
}

func TestNormalizeSelectionEquivalentSpellings(t *testing.T) {
	a, err := NormalizeSelection(map[string]any{"term": 48, "distance": "Unlimited"})
	require.NoError(t, err)
	b, err := NormalizeSelection(map[string]any{"term_months": "48", "miles": "UNL"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNormalizeSelectionRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{"missing term", map[string]any{"distance": "60000"}},
		{"missing distance", map[string]any{"term": 36}},
		{"zero term", map[string]any{"term": 0, "distance": "60000"}},
		{"zero distance", map[string]any{"term": 36, "distance": 0}},
		{"unknown field", map[string]any{"term": 36, "distance": "60000", "warp_drive": true}},
		{"duplicate field", map[string]any{"term": 36, "term_months": 36, "distance": "60000"}},
		{"bad oil tier", map[string]any{"term": 36, "distance": "60000", "oil_change": 7}},
		{"bad class", map[string]any{"term": 36, "distance": "60000", "class_override": "Z"}},
		{"bad bool", map[string]any{"term": 36, "distance": "60000", "commercial": "maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeSelection(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeInput), "got %v", err)
		})
	}
}

func TestNormalizeVehicle(t *testing.T) {
	d, err := NormalizeVehicle(map[string]any{
		"Make":       "  Toyota ",
		"model":      "Land   Cruiser",
		"year":       float64(2021),
		"odometer":   "45,000",
		"drive_type": "4WD",
		"fuel":       "Diesel",
	})
	require.NoError(t, err)
	assert.Equal(t, vehicle.Descriptor{
		Make:       "Toyota",
		Model:      "Land Cruiser",
		ModelYear:  "2021",
		Mileage:    45000,
		Drivetrain: "4WD",
		FuelType:   "Diesel",
	}, d)
}

func TestNormalizeVehicleRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{"missing make", map[string]any{"year": "2020", "mileage": 10}},
		{"blank make", map[string]any{"make": "  ", "year": "2020", "mileage": 10}},
		{"negative mileage", map[string]any{"make": "Kia", "year": "2020", "mileage": -1}},
		{"unknown field", map[string]any{"make": "Kia", "year": "2020", "mileage": 1, "color": "red"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeVehicle(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeInput), "got %v", err)
		})
	}
}

func TestSelectionResolveClass(t *testing.T) {
	c := vehicle.ClassC
	sel := Selection{ClassOverride: &c}
	assert.Equal(t, vehicle.ClassC, sel.ResolveClass(vehicle.ClassA))
	assert.Equal(t, vehicle.ClassIneligible, sel.ResolveClass(vehicle.ClassIneligible))
	assert.Equal(t, vehicle.ClassA, Selection{}.ResolveClass(vehicle.ClassA))
}
