package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"vsc-rating/core/diff"
	"vsc-rating/internal/errors"
)

var ratecardCmd = &cobra.Command{
	Use:   "ratecard",
	Short: "Inspect stored rate cards",
}

var ratecardListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rate card versions; the highest version per product is active",
	Args:  cobra.NoArgs,
	RunE:  runRatecardList,
}

var ratecardVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Recompute and check every rate card content hash",
	Args:  cobra.NoArgs,
	RunE:  runRatecardVerify,
}

var ratecardDiffCmd = &cobra.Command{
	Use:   "diff <provider> <product> <from-version> [to-version]",
	Short: "Compare two rate card versions cell by cell (to-version defaults to the active one)",
	Args:  cobra.RangeArgs(3, 4),
	RunE:  runRatecardDiff,
}

var (
	listProvider  string
	listProduct   string
	diffThreshold string
)

func init() {
	ratecardCmd.AddCommand(ratecardListCmd)
	ratecardCmd.AddCommand(ratecardVerifyCmd)
	ratecardCmd.AddCommand(ratecardDiffCmd)

	ratecardListCmd.Flags().StringVar(&listProvider, "provider", "", "only this provider")
	ratecardListCmd.Flags().StringVar(&listProduct, "product", "", "only this rate card product")
	ratecardDiffCmd.Flags().StringVar(&diffThreshold, "threshold", "0", "ignore price moves at or below this percentage")
}

func runRatecardList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, appConfig, false)
	if err != nil {
		return err
	}
	defer a.Close()

	cards, err := a.registry.ListVersions(ctx, listProvider, listProduct)
	if err != nil {
		return err
	}
	return a.formatter.RateCards(cmd.OutOrStdout(), cards)
}

func runRatecardVerify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, appConfig, false)
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.registry.Verify(ctx)
	if err != nil {
		return err
	}
	if err := a.formatter.Verification(cmd.OutOrStdout(), results); err != nil {
		return err
	}
	for _, r := range results {
		if r.Err != nil {
			return fmt.Errorf("rate card verification failed")
		}
	}
	return nil
}

func runRatecardDiff(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	threshold, err := decimal.NewFromString(diffThreshold)
	if err != nil {
		return errors.Inputf("threshold %q is not a number", diffThreshold)
	}

	a, err := newApp(ctx, appConfig, false)
	if err != nil {
		return err
	}
	defer a.Close()

	provider, product := args[0], args[1]
	before, err := a.registry.Version(ctx, provider, product, args[2])
	if err != nil {
		return err
	}
	after, err := a.registry.Latest(ctx, provider, product)
	if len(args) == 4 {
		after, err = a.registry.Version(ctx, provider, product, args[3])
	}
	if err != nil {
		return err
	}
	return a.formatter.Diff(cmd.OutOrStdout(), diff.NewDiffer(threshold).Diff(before, after))
}
