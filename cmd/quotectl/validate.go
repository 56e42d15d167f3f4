package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Simplici0/aluquote/internal/catalog"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var catalogPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a TOML catalog for errors",
		Long: `Load a TOML catalog and report every problem found in it.

Checks material prices and units, color overrides, the glass map, labor
rates, product dimension bounds and subtypes, and every bill of materials
entry: material references, categories, waste factors and quantity formulas.

Examples:
  quotectl validate --catalog catalog.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := catalog.LoadFile(catalogPath)
			if err != nil {
				return err
			}
			snap := catalog.NewSnapshot(d)
			if err := catalog.Validate(snap, opts.evaluator()); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), err)
				return fmt.Errorf("catalog %s is invalid", catalogPath)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog OK: %d materials, %d products\n", len(snap.Materials()), len(snap.Products()))
			return nil
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "path to the TOML catalog")
	_ = cmd.MarkFlagRequired("catalog")
	return cmd
}
