package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Simplici0/aluquote/internal/formula"
)

func newEvalCmd(opts *rootOptions) *cobra.Command {
	var vars []string
	var check bool
	cmd := &cobra.Command{
		Use:   "eval <formula>",
		Short: "Evaluate a quantity formula",
		Long: `Evaluate a quantity formula with the given variable bindings.

With --check the formula is only dry-run with every listed variable set
to 1, the way catalog validation does it.

Examples:
  quotectl eval "2 * (width_m + height_m)" --var width_m=1.5 --var height_m=1.2
  quotectl eval "ceil(perimeter_m / 6)" --var perimeter_m=5.4
  quotectl eval "area_m2 * 1.05" --var area_m2 --check`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev := opts.evaluator()
			if check {
				names := make([]string, len(vars))
				for i, v := range vars {
					names[i], _, _ = strings.Cut(v, "=")
				}
				if err := ev.Check(args[0], names); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			}

			bindings, err := parseVars(vars)
			if err != nil {
				return err
			}
			v, err := ev.Evaluate(args[0], bindings)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v.String())
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&vars, "var", nil, "variable binding name=value (repeatable)")
	cmd.Flags().BoolVar(&check, "check", false, "only validate the formula against the --var names")
	return cmd
}

func parseVars(vars []string) (formula.Bindings, error) {
	out := make(formula.Bindings, len(vars))
	for _, kv := range vars {
		name, raw, ok := strings.Cut(kv, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("variable %q: want name=value", kv)
		}
		v, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}
