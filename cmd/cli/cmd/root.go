// Package cmd provides the CLI commands for vscrate.
package cmd

import (
	"github.com/spf13/cobra"

	"vsc-rating/internal/config"
	"vsc-rating/internal/logging"
)

var (
	cfgFile      string
	verbose      bool
	outputFormat string
	noColor      bool

	appConfig *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vscrate",
	Short: "Rate vehicle service contracts",
	Long: `vscrate prices vehicle service contracts from versioned rate cards
and a product catalog, or explains why a vehicle cannot be rated.

Examples:
  vscrate quote request.json
  vscrate quote --format json - < request.json
  vscrate options --product powertrain-plus --make Ford --model Fusion --year 2018 --mileage 40000
  vscrate ratecard list
  vscrate ratecard verify`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Execute runs the CLI
func Execute() error {
	defer logging.Sync()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./vscrate.yaml or $HOME/.vscrate/vscrate.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "", "output format (cli, json, markdown); overrides the config")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(optionsCmd)
	rootCmd.AddCommand(ratecardCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if outputFormat != "" {
		cfg.Output.Format = outputFormat
	}
	if noColor {
		cfg.Output.NoColor = true
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		return err
	}
	appConfig = cfg
	return nil
}
