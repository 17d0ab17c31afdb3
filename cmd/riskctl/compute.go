package main

import (
	"fmt"
	"sort"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/branched-services/go-risk/internal/scenario"
	"github.com/branched-services/go-risk/pkg/quantile"
)

// computeFlags are shared by the quantile and shortfall commands.
type computeFlags struct {
	input       string
	method      string
	level       float64
	extrapolate bool
	asJSON      bool
}

func (f *computeFlags) register(cmd *cobra.Command, withExtrapolate bool) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "scenario file (.csv, .json or .xlsx)")
	cmd.Flags().StringVarP(&f.method, "method", "m", "sample-interpolation", "estimation method")
	cmd.Flags().Float64VarP(&f.level, "level", "l", 0.95, "probability level in (0, 1)")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "emit JSON instead of text")
	if withExtrapolate {
		cmd.Flags().BoolVar(&f.extrapolate, "extrapolate", false, "clamp out-of-range levels to the sample extremes")
	}
	cmd.MarkFlagRequired("input")
}

func (f *computeFlags) load() (quantile.Method, []float64, error) {
	method, err := quantile.MethodByName(f.method)
	if err != nil {
		return nil, nil, err
	}
	sample, err := scenario.Load(f.input)
	if err != nil {
		return nil, nil, err
	}
	return method, sample, nil
}

// printResult writes one computed statistic in the requested format.
func (f *computeFlags) printResult(cmd *cobra.Command, kind string, sampleSize int, result quantile.Result) error {
	if f.asJSON {
		out, err := json.MarshalIndent(map[string]any{
			"kind":        kind,
			"method":      f.method,
			"level":       f.level,
			"sample_size": sampleSize,
			"value":       result.Value,
			"lower_index": result.LowerIndex,
			"upper_index": result.UpperIndex,
			"weight":      result.Weight,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, level %g, %d observations): %g\n",
		kind, f.method, f.level, sampleSize, result.Value)
	fmt.Fprintf(cmd.OutOrStdout(), "  order statistics: lower index %d, upper index %d, weight %g\n",
		result.LowerIndex, result.UpperIndex, result.Weight)
	return nil
}

func newQuantileCmd() *cobra.Command {
	var flags computeFlags

	cmd := &cobra.Command{
		Use:   "quantile",
		Short: "Compute a quantile (VaR) from a scenario file",
		RunE: func(cmd *cobra.Command, args []string) error {
			method, sample, err := flags.load()
			if err != nil {
				return err
			}

			var result quantile.Result
			if flags.extrapolate {
				result, err = quantile.QuantileExtrapolated(method, flags.level, sample)
			} else {
				result, err = quantile.Quantile(method, flags.level, sample)
			}
			if err != nil {
				return err
			}

			return flags.printResult(cmd, "quantile", len(sample), result)
		},
	}

	flags.register(cmd, true)
	return cmd
}

func newShortfallCmd() *cobra.Command {
	var flags computeFlags

	cmd := &cobra.Command{
		Use:   "shortfall",
		Short: "Compute expected shortfall from a scenario file",
		RunE: func(cmd *cobra.Command, args []string) error {
			method, sample, err := flags.load()
			if err != nil {
				return err
			}

			result, err := quantile.ExpectedShortfall(method, flags.level, sample)
			if err != nil {
				return err
			}

			return flags.printResult(cmd, "expected shortfall", len(sample), result)
		},
	}

	flags.register(cmd, false)
	return cmd
}

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List available estimation methods",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := quantile.MethodNames()
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
