package cmd

import (
	"github.com/spf13/cobra"

	"vsc-rating/core/coverage"
)

var (
	optProduct string
	optMake    string
	optModel   string
	optYear    string
	optMileage string
)

// optionsCmd lists the coverage that can be priced for a vehicle
var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the term lengths and distances that can be priced for a vehicle",
	Args:  cobra.NoArgs,
	RunE:  runOptions,
}

func init() {
	optionsCmd.Flags().StringVarP(&optProduct, "product", "p", "", "product id [REQUIRED]")
	optionsCmd.Flags().StringVar(&optMake, "make", "", "vehicle make [REQUIRED]")
	optionsCmd.Flags().StringVar(&optModel, "model", "", "vehicle model")
	optionsCmd.Flags().StringVar(&optYear, "year", "", "model year")
	optionsCmd.Flags().StringVar(&optMileage, "mileage", "0", "odometer reading, e.g. 40000 or 40,000")
	_ = optionsCmd.MarkFlagRequired("product")
	_ = optionsCmd.MarkFlagRequired("make")
}

func runOptions(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	raw := map[string]any{"make": optMake, "mileage": optMileage}
	if optModel != "" {
		raw["model"] = optModel
	}
	if optYear != "" {
		raw["model_year"] = optYear
	}
	v, err := coverage.NormalizeVehicle(raw)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, appConfig, true)
	if err != nil {
		return err
	}
	defer a.Close()

	opts, err := a.engine.ValidOptions(ctx, optProduct, v)
	if err != nil {
		return err
	}
	return a.formatter.Options(cmd.OutOrStdout(), optProduct, opts)
}
