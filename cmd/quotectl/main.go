// quotectl validates catalogs and prices quotes from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Simplici0/aluquote/internal/formula"
)

type rootOptions struct {
	maxSteps int
}

func (o *rootOptions) evaluator() *formula.Evaluator {
	return formula.NewEvaluator(
		formula.WithCache(formula.NewCache()),
		formula.WithMaxSteps(o.maxSteps),
	)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "quotectl",
		Short:         "Aluminum window and door quoting tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().IntVar(&opts.maxSteps, "max-steps", 10000, "evaluation step budget per formula")

	root.AddCommand(
		newValidateCmd(opts),
		newQuoteCmd(opts),
		newEvalCmd(opts),
		newSeedCmd(opts),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
