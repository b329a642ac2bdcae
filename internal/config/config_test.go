package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vsc-rating/core/coverage"
	"vsc-rating/internal/errors"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })
	t.Setenv("HOME", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "catalog.hcl", cfg.Catalog)
	assert.Equal(t, "ratecards", cfg.RateCards.Dir)
	assert.Equal(t, "cli", cfg.Output.Format)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 1990, cfg.Eligibility.MinModelYear)

	s, err := cfg.SurchargeSchedule()
	require.NoError(t, err)
	assert.Equal(t, "150", s.FourWheelDrive.String())
	assert.Equal(t, "575", s.OilChange[coverage.OilChange8].String())

	f, err := cfg.FeeSchedule()
	require.NoError(t, err)
	assert.Equal(t, "0.02", f.ProcessingRate.String())
	assert.Equal(t, "75", f.ProcessingCap.String())

	taxes, err := cfg.TaxTables()
	require.NoError(t, err)
	assert.Equal(t, "0.0625", taxes.Rate("tx").String())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vscrate.yaml"), []byte(`
catalog: products/catalog.hcl
rate_cards:
  dir: cards
fees:
  flat: "40.00"
surcharges:
  oil_change:
    "6": "400.00"
output:
  format: markdown
`), 0o644))
	t.Setenv("VSCRATE_RATE_CARDS_DATABASE_URL", "postgres://localhost/rates")
	t.Setenv("VSCRATE_OUTPUT_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "products/catalog.hcl", cfg.Catalog)
	assert.Equal(t, "cards", cfg.RateCards.Dir)
	assert.Equal(t, "postgres://localhost/rates", cfg.RateCards.DatabaseURL)
	assert.Equal(t, "json", cfg.Output.Format)

	s, err := cfg.SurchargeSchedule()
	require.NoError(t, err)
	assert.Equal(t, "400", s.OilChange[coverage.OilChange6].String())
	assert.Equal(t, "700", s.OilChange[coverage.OilChange10].String())

	f, err := cfg.FeeSchedule()
	require.NoError(t, err)
	assert.Equal(t, "40", f.Flat.String())
}

func TestLoadExplicitPathMustExist(t *testing.T) {
	dir := chdirTemp(t)
	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.IsType(err, errors.TypeConfig))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad format", func(c *Config) { c.Output.Format = "html" }},
		{"no catalog", func(c *Config) { c.Catalog = " " }},
		{"bad limits", func(c *Config) { c.Eligibility.MaxMileage = 200000 }},
		{"bad surcharge", func(c *Config) { c.Surcharges.Diesel = "two hundred" }},
		{"negative surcharge", func(c *Config) { c.Surcharges.Turbo = "-1" }},
		{"unknown oil tier", func(c *Config) { c.Surcharges.OilChange["7"] = "10" }},
		{"bad fee", func(c *Config) { c.Fees.ProcessingCap = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeConfig), "got %v", err)
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestLimits(t *testing.T) {
	cfg := Default()
	cfg.Eligibility.MaxVehicleAge = 12
	assert.Equal(t, 12, cfg.Limits().MaxVehicleAge)
}
