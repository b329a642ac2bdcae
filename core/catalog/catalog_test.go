package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vsc-rating/core/coverage"
	"vsc-rating/internal/errors"
)

func TestLoadCatalog(t *testing.T) {
	c, err := Load("testdata/catalog.hcl")
	require.NoError(t, err)

	p, err := c.Get("Powertrain-Plus")
	require.NoError(t, err)
	assert.Equal(t, StrategyTable, p.Strategy)
	assert.Equal(t, "powertrain", p.RateCard)
	assert.Equal(t, "Powertrain Plus", p.Name)

	ex, err := c.Get("exclusionary")
	require.NoError(t, err)
	assert.Equal(t, StrategyTable, ex.Strategy)
	assert.Equal(t, "exclusionary", ex.RateCard, "rate card defaults to the product id")

	m, err := c.Get("mobility-flex")
	require.NoError(t, err)
	assert.Equal(t, StrategyMultiplier, m.Strategy)
	assert.True(t, decimal.NewFromInt(900).Equal(m.BasePremium))
	assert.Equal(t, []int{12, 24, 36}, m.Terms)
	assert.Equal(t, []coverage.Distance{
		coverage.MilesDistance(24000), coverage.MilesDistance(36000), coverage.Unlimited,
	}, m.Distances)
	require.Len(t, m.Factors, 2)
	assert.Equal(t, "under 25", m.Factors[0].Bands[0].Label)
	assert.Equal(t, "true", m.Factors[0].Bands[1].Label)
	assert.True(t, m.OffersTerm(24))
	assert.False(t, m.OffersTerm(48))
	assert.True(t, m.OffersDistance(coverage.Unlimited))

	_, err = c.Get("nope")
	assert.True(t, errors.IsType(err, errors.TypeNotFound))

	stats := c.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Providers)
	assert.Equal(t, 2, stats.ByStrategy[StrategyTable])
}

func TestFactorSelect(t *testing.T) {
	c, err := Load("testdata/catalog.hcl")
	require.NoError(t, err)
	m, err := c.Get("mobility-flex")
	require.NoError(t, err)

	vars := map[string]any{
		VarDriverAge: int64(22), VarVehicleAge: int64(7), VarRegion: "TX",
		VarTermMonths: int64(36), VarDistance: int64(36000), VarUnlimited: false,
		VarVehicleClass: "B", VarMileage: int64(40000),
	}
	band, ok, err := m.Factors[0].Select(vars)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1.35", band.Multiplier.String())

	vars[VarDriverAge] = int64(40)
	band, ok, err = m.Factors[0].Select(vars)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", band.Multiplier.String())

	band, ok, err = m.Factors[1].Select(vars)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1.2", band.Multiplier.String())
}

func TestParseCatalogErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `product "x" {`},
		{"missing provider", `product "x" { strategy = "table" }`},
		{"unknown strategy", `product "x" {
  provider = "p"
  strategy = "flat"
}`},
		{"duplicate product", `product "x" {
  provider = "p"
  strategy = "table"
}
product "X" {
  provider = "p"
  strategy = "table"
}`},
		{"multiplier without base", `product "x" {
  provider  = "p"
  strategy  = "multiplier"
  terms     = [12]
  distances = ["unlimited"]
}`},
		{"table with factors", `product "x" {
  provider = "p"
  strategy = "table"
  factor "age" {
    band {
      when       = "true"
      multiplier = "1"
    }
  }
}`},
		{"non boolean band", `product "x" {
  provider     = "p"
  strategy     = "multiplier"
  base_premium = "100"
  terms        = [12]
  distances    = ["unlimited"]
  factor "age" {
    band {
      when       = "driver_age + 1"
      multiplier = "1"
    }
  }
}`},
		{"unknown band variable", `product "x" {
  provider     = "p"
  strategy     = "multiplier"
  base_premium = "100"
  terms        = [12]
  distances    = ["unlimited"]
  factor "age" {
    band {
      when       = "credit_score > 700"
      multiplier = "1"
    }
  }
}`},
		{"bad distance", `product "x" {
  provider     = "p"
  strategy     = "multiplier"
  base_premium = "100"
  terms        = [12]
  distances    = ["far"]
}`},
		{"fractional distance", `product "x" {
  provider     = "p"
  strategy     = "multiplier"
  base_premium = "100"
  terms        = [12]
  distances    = [24000.5]
}`},
		{"distances not a list", `product "x" {
  provider     = "p"
  strategy     = "multiplier"
  base_premium = "100"
  terms        = [12]
  distances    = "unlimited"
}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), tt.name+".hcl")
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeConfig), "got %v", err)
		})
	}
}

func TestNewBand(t *testing.T) {
	b, err := NewBand(`region in ["CA", "NY"] && !unlimited`, "", decimal.RequireFromString("1.1"))
	require.NoError(t, err)
	assert.Equal(t, `region in ["CA", "NY"] && !unlimited`, b.Label)

	ok, err := b.Matches(map[string]any{
		VarDriverAge: int64(30), VarVehicleAge: int64(1), VarRegion: "CA",
		VarTermMonths: int64(12), VarDistance: int64(12000), VarUnlimited: false,
		VarVehicleClass: "A", VarMileage: int64(100),
	})
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = Band{When: "true"}.Matches(nil)
	assert.Error(t, err)
}
