// Package main is the entry point for the vscrate CLI.
package main

import (
	"fmt"
	"os"

	"vsc-rating/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
