// Package config provides configuration management.
// Values come from defaults, an optional vscrate.{yaml,json} file and
// VSCRATE_* environment variables, in increasing precedence.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"vsc-rating/core/coverage"
	"vsc-rating/core/determinism"
	"vsc-rating/core/eligibility"
	"vsc-rating/core/surcharge"
	"vsc-rating/core/taxfee"
	"vsc-rating/core/vehicle"
	"vsc-rating/internal/errors"
	"vsc-rating/internal/logging"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "VSCRATE"

// Config is the main application configuration
type Config struct {
	// RateCards locates the rate card store
	RateCards RateCardConfig `mapstructure:"rate_cards"`

	// Catalog is the path to the HCL product catalog
	Catalog string `mapstructure:"catalog"`

	// TaxTable is an optional YAML tax table; empty uses the built-in table
	TaxTable string `mapstructure:"tax_table"`

	// Fees is the fee schedule
	Fees FeeConfig `mapstructure:"fees"`

	// Surcharges is the flat surcharge schedule
	Surcharges SurchargeConfig `mapstructure:"surcharges"`

	// Eligibility holds the underwriting limits
	Eligibility LimitsConfig `mapstructure:"eligibility"`

	// Output contains output configuration
	Output OutputConfig `mapstructure:"output"`

	// Logging contains logging configuration
	Logging logging.Config `mapstructure:"logging"`
}

// RateCardConfig locates rate cards on disk, in Postgres, or both.
type RateCardConfig struct {
	Dir         string `mapstructure:"dir"`
	Pattern     string `mapstructure:"pattern"`
	DatabaseURL string `mapstructure:"database_url"`
}

// FeeConfig holds decimal strings so no amount passes through a float.
type FeeConfig struct {
	Flat           string `mapstructure:"flat"`
	ProcessingRate string `mapstructure:"processing_rate"`
	ProcessingCap  string `mapstructure:"processing_cap"`
}

// SurchargeConfig holds decimal strings keyed like the surcharge lines.
type SurchargeConfig struct {
	FourWheelDrive    string            `mapstructure:"four_wheel_drive"`
	Diesel            string            `mapstructure:"diesel"`
	Turbo             string            `mapstructure:"turbo"`
	Commercial        string            `mapstructure:"commercial"`
	LiftKit           string            `mapstructure:"lift_kit"`
	EcoPackage        string            `mapstructure:"eco_package"`
	TechnologyPackage string            `mapstructure:"technology_package"`
	OilChange         map[string]string `mapstructure:"oil_change"`
}

// LimitsConfig contains the eligibility thresholds
type LimitsConfig struct {
	MinModelYear  int `mapstructure:"min_model_year"`
	MaxVehicleAge int `mapstructure:"max_vehicle_age"`
	MaxMileage    int `mapstructure:"max_mileage"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// Format is the default output format
	Format string `mapstructure:"format"`

	// NoColor disables terminal styling
	NoColor bool `mapstructure:"no_color"`
}

var outputFormats = map[string]bool{"cli": true, "json": true, "markdown": true}

func setDefaults(v *viper.Viper) {
	v.SetDefault("rate_cards.dir", "ratecards")
	v.SetDefault("rate_cards.pattern", "")
	v.SetDefault("rate_cards.database_url", "")
	v.SetDefault("catalog", "catalog.hcl")
	v.SetDefault("tax_table", "")

	fees := taxfee.DefaultFeeSchedule()
	v.SetDefault("fees.flat", fees.Flat.StringFixed(2))
	v.SetDefault("fees.processing_rate", fees.ProcessingRate.String())
	v.SetDefault("fees.processing_cap", fees.ProcessingCap.StringFixed(2))

	s := surcharge.DefaultSchedule()
	v.SetDefault("surcharges.four_wheel_drive", s.FourWheelDrive.StringFixed(2))
	v.SetDefault("surcharges.diesel", s.Diesel.StringFixed(2))
	v.SetDefault("surcharges.turbo", s.Turbo.StringFixed(2))
	v.SetDefault("surcharges.commercial", s.Commercial.StringFixed(2))
	v.SetDefault("surcharges.lift_kit", s.LiftKit.StringFixed(2))
	v.SetDefault("surcharges.eco_package", s.EcoPackage.StringFixed(2))
	v.SetDefault("surcharges.technology_package", s.TechnologyPackage.StringFixed(2))
	for _, tier := range coverage.OilChangeTiers() {
		v.SetDefault("surcharges.oil_change."+tier.Key(), s.OilChange[tier].StringFixed(2))
	}

	limits := eligibility.DefaultLimits()
	v.SetDefault("eligibility.min_model_year", limits.MinModelYear)
	v.SetDefault("eligibility.max_vehicle_age", limits.MaxVehicleAge)
	v.SetDefault("eligibility.max_mileage", limits.MaxMileage)

	v.SetDefault("output.format", "cli")
	v.SetDefault("output.no_color", false)

	logs := logging.DefaultConfig()
	v.SetDefault("logging.level", logs.Level)
	v.SetDefault("logging.format", logs.Format)
	v.SetDefault("logging.output", logs.Output)
	v.SetDefault("logging.development", logs.Development)
}

// Default returns the default configuration.
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		// Defaults are built from valid package defaults.
		panic(err)
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration. An explicit path must exist; without one,
// vscrate.{yaml,yml,json} is searched in the working directory and in
// $HOME/.vscrate, and a missing file is fine.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("vscrate")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".vscrate"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return nil, errors.Config("cannot read configuration", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Config("cannot decode configuration", err)
	}
	return &cfg, nil
}

// Validate checks every setting that can be checked without I/O.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Catalog) == "" {
		return errors.New(errors.TypeConfig, "catalog path is required")
	}
	if !outputFormats[strings.ToLower(c.Output.Format)] {
		return errors.Newf(errors.TypeConfig, "invalid output format %q; must be cli, json or markdown", c.Output.Format)
	}
	l := c.Eligibility
	if l.MinModelYear <= 0 || l.MaxVehicleAge < 0 || l.MaxMileage <= 0 || l.MaxMileage > vehicle.MaxRatedMileage {
		return errors.Newf(errors.TypeConfig,
			"invalid eligibility limits (min_model_year %d, max_vehicle_age %d, max_mileage %d)",
			l.MinModelYear, l.MaxVehicleAge, l.MaxMileage)
	}
	if _, err := c.SurchargeSchedule(); err != nil {
		return err
	}
	if _, err := c.FeeSchedule(); err != nil {
		return err
	}
	return nil
}

// SurchargeSchedule builds and validates the surcharge schedule.
func (c *Config) SurchargeSchedule() (surcharge.Schedule, error) {
	s := c.Surcharges
	var (
		out  surcharge.Schedule
		errs []error
	)
	parse := func(name, raw string) decimal.Decimal {
		d, err := determinism.ParseMoney(strings.TrimSpace(raw))
		if err != nil {
			errs = append(errs, fmt.Errorf("surcharges.%s: %w", name, err))
		}
		return d
	}

	out.FourWheelDrive = parse("four_wheel_drive", s.FourWheelDrive)
	out.Diesel = parse("diesel", s.Diesel)
	out.Turbo = parse("turbo", s.Turbo)
	out.Commercial = parse("commercial", s.Commercial)
	out.LiftKit = parse("lift_kit", s.LiftKit)
	out.EcoPackage = parse("eco_package", s.EcoPackage)
	out.TechnologyPackage = parse("technology_package", s.TechnologyPackage)
	out.OilChange = make(map[coverage.OilChangeTier]decimal.Decimal, len(s.OilChange))
	for key, raw := range s.OilChange {
		tier, err := coverage.OilChangeTierFrom(key)
		if err != nil || tier == coverage.OilChangeNone {
			errs = append(errs, fmt.Errorf("surcharges.oil_change: unknown tier %q", key))
			continue
		}
		out.OilChange[tier] = parse("oil_change."+key, raw)
	}

	if err := stderrors.Join(errs...); err != nil {
		return surcharge.Schedule{}, errors.Config("invalid surcharge schedule", err)
	}
	if err := out.Validate(); err != nil {
		return surcharge.Schedule{}, err
	}
	return out, nil
}

// FeeSchedule builds and validates the fee schedule.
func (c *Config) FeeSchedule() (taxfee.FeeSchedule, error) {
	var errs []error
	parse := func(name, raw string) decimal.Decimal {
		d, err := determinism.ParseMoney(strings.TrimSpace(raw))
		if err != nil {
			errs = append(errs, fmt.Errorf("fees.%s: %w", name, err))
		}
		return d
	}
	f := taxfee.FeeSchedule{
		Flat:           parse("flat", c.Fees.Flat),
		ProcessingRate: parse("processing_rate", c.Fees.ProcessingRate),
		ProcessingCap:  parse("processing_cap", c.Fees.ProcessingCap),
	}
	if err := stderrors.Join(errs...); err != nil {
		return taxfee.FeeSchedule{}, errors.Config("invalid fee schedule", err)
	}
	if err := f.Validate(); err != nil {
		return taxfee.FeeSchedule{}, err
	}
	return f, nil
}

// TaxTables loads the configured tax table, or the built-in one.
func (c *Config) TaxTables() (*taxfee.TaxTable, error) {
	if strings.TrimSpace(c.TaxTable) == "" {
		return taxfee.BuiltinTaxTable(), nil
	}
	return taxfee.LoadTaxTable(c.TaxTable)
}

// Limits returns the eligibility limits.
func (c *Config) Limits() eligibility.Limits {
	return eligibility.Limits{
		MinModelYear:  c.Eligibility.MinModelYear,
		MaxVehicleAge: c.Eligibility.MaxVehicleAge,
		MaxMileage:    c.Eligibility.MaxMileage,
	}
}
