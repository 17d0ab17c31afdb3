// Package main is riskctl, a command line front end for the quantile
// estimators. It computes VaR and expected shortfall from scenario files
// without running the service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "riskctl",
		Short:         "Compute quantiles and expected shortfall from scenario files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newQuantileCmd(),
		newShortfallCmd(),
		newMethodsCmd(),
	)
	return root
}
