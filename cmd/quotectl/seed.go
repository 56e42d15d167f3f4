package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Simplici0/aluquote/internal/catalog"
	"github.com/Simplici0/aluquote/internal/db"
	"github.com/Simplici0/aluquote/internal/migrations"
	"github.com/Simplici0/aluquote/internal/seed"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var dbPath, catalogPath string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Migrate a SQLite database and load a catalog into it",
		Long: `Run the schema migrations on a SQLite database and insert a catalog.

Without --catalog the built-in sample catalog is loaded. The catalog is
validated first; rows already present in the database are left untouched.

Examples:
  quotectl seed --db dev.db
  quotectl seed --db prod.db --catalog catalog.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				d   catalog.SnapshotData
				err error
			)
			if catalogPath == "" {
				d, err = seed.Sample()
			} else {
				d, err = catalog.LoadFile(catalogPath)
			}
			if err != nil {
				return err
			}
			if err := catalog.Validate(catalog.NewSnapshot(d), opts.evaluator()); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), err)
				return fmt.Errorf("refusing to seed an invalid catalog")
			}

			database, err := db.Open(dbPath)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := migrations.Up(cmd.Context(), database); err != nil {
				return err
			}
			stats, err := seed.Run(cmd.Context(), database, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s: %d inserted, %d already present\n", dbPath, stats.Inserts, stats.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "path to the SQLite database")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "path to a TOML catalog (default: built-in sample)")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}
