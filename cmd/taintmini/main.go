// Command taintmini runs the static taint analyzer over one mini-program
// app directory, or over every app directory named in an index file
// (spec.md §6's two input modes), writing its CSV reports to -o/--output.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taintmini/taintmini/pkg/pipeline"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "taintmini",
		Short: "Static taint analysis for mini-program page scripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.Run(cmd.Context(), opts); err != nil {
				fmt.Fprintf(os.Stderr, "taintmini: %v\n", err)
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Input, "input", "i", "", "app directory, or an index file listing one app directory per line (required)")
	flags.StringVarP(&opts.Output, "output", "o", "results", "output directory for CSV reports and intermediate data")
	flags.StringVarP(&opts.Config, "config", "c", "", "optional JSON/YAML source/sink filter config")
	flags.IntVarP(&opts.Jobs, "jobs", "j", 0, "worker pool size (default: number of CPUs)")
	flags.BoolVarP(&opts.Bench, "bench", "b", false, "also write a per-page timing bench CSV")
	cmd.MarkFlagRequired("input")

	return cmd
}
