package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"vsc-rating/core/coverage"
	"vsc-rating/core/rating"
	"vsc-rating/internal/errors"
)

var (
	quoteProduct   string
	quoteRegion    string
	quoteDriverAge int
)

// quoteCmd rates one request
var quoteCmd = &cobra.Command{
	Use:   "quote <request.json|->",
	Short: "Rate a vehicle service contract request",
	Long: `Rate one request read from a JSON file, or from stdin with "-".

The vehicle and coverage objects accept loose spellings
("model year", "Mileage", "term", "miles": "unlimited", "oil_changes": "8 visits")
and are normalized and schema-checked before rating.

  {
    "product": "powertrain-plus",
    "vehicle": {"make": "Ford", "model": "Fusion", "year": 2018, "mileage": "40,000"},
    "coverage": {"term": 36, "miles": "45,000"},
    "customer": {"region": "TX"}
  }`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVarP(&quoteProduct, "product", "p", "", "product id (overrides the request)")
	quoteCmd.Flags().StringVarP(&quoteRegion, "region", "r", "", "tax region (overrides the request)")
	quoteCmd.Flags().IntVar(&quoteDriverAge, "driver-age", 0, "driver age for multiplier products (overrides the request)")
}

// rawRequest is the loosely keyed request document.
type rawRequest struct {
	Product  string          `json:"product"`
	Vehicle  map[string]any  `json:"vehicle"`
	Coverage map[string]any  `json:"coverage"`
	Customer rating.Customer `json:"customer"`
}

func readRequest(r io.Reader) (rating.Request, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw rawRequest
	if err := dec.Decode(&raw); err != nil {
		return rating.Request{}, errors.Wrap(errors.TypeInput, "request is not valid JSON", err)
	}

	v, err := coverage.NormalizeVehicle(raw.Vehicle)
	if err != nil {
		return rating.Request{}, err
	}
	sel, err := coverage.NormalizeSelection(raw.Coverage)
	if err != nil {
		return rating.Request{}, err
	}
	return rating.Request{
		Product:  raw.Product,
		Vehicle:  v,
		Coverage: sel,
		Customer: raw.Customer,
	}, nil
}

func openInput(cmd *cobra.Command, name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(errors.TypeInput, fmt.Sprintf("cannot open request %s", name), err)
	}
	return f, nil
}

func runQuote(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	in, err := openInput(cmd, args[0])
	if err != nil {
		return err
	}
	req, err := readRequest(in)
	in.Close()
	if err != nil {
		return err
	}
	if quoteProduct != "" {
		req.Product = quoteProduct
	}
	if quoteRegion != "" {
		req.Customer.Region = quoteRegion
	}
	if quoteDriverAge != 0 {
		req.Customer.DriverAge = quoteDriverAge
	}
	if req.Product == "" {
		return errors.Input("product is required (in the request or with --product)")
	}

	a, err := newApp(ctx, appConfig, true)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.engine.Rate(ctx, req)
	if err != nil {
		return err
	}
	return a.formatter.Outcome(cmd.OutOrStdout(), out)
}
