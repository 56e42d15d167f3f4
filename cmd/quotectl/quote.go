package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/Simplici0/aluquote/internal/catalog"
	"github.com/Simplici0/aluquote/internal/db"
	"github.com/Simplici0/aluquote/internal/httpapi"
	"github.com/Simplici0/aluquote/internal/pricing"
)

func newQuoteCmd(opts *rootOptions) *cobra.Command {
	var catalogPath, dbPath, requestPath string
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a quote request and print the result as JSON",
		Long: `Price a TOML quote request against a catalog and print the result as JSON.

The catalog is read from a TOML file (--catalog) or a SQLite database
(--db). The output matches the HTTP API: money with 2 fixed places and
measures with 3.

Examples:
  quotectl quote --catalog catalog.toml --request request.toml
  quotectl quote --db dev.db --request request.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := loadRequest(requestPath)
			if err != nil {
				return err
			}

			var src catalog.Source
			switch {
			case catalogPath != "" && dbPath != "":
				return errors.New("give either --catalog or --db, not both")
			case catalogPath != "":
				if src, err = catalog.NewFileSource(catalogPath); err != nil {
					return err
				}
			case dbPath != "":
				database, err := db.Open(dbPath)
				if err != nil {
					return err
				}
				defer database.Close()
				src = db.NewCatalogSource(database)
			default:
				return errors.New("one of --catalog or --db is required")
			}

			calc := pricing.NewCalculator(pricing.DefaultOverheadRates(), pricing.WithEvaluator(opts.evaluator()))
			res, err := calc.Quote(cmd.Context(), src, req)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(httpapi.NewQuoteResponse(res))
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "path to a TOML catalog")
	cmd.Flags().StringVar(&dbPath, "db", "", "path to a SQLite catalog database")
	cmd.Flags().StringVar(&requestPath, "request", "", "path to the TOML quote request")
	_ = cmd.MarkFlagRequired("request")
	return cmd
}

func loadRequest(path string) (pricing.Request, error) {
	var req pricing.Request
	md, err := toml.DecodeFile(path, &req)
	if err != nil {
		return pricing.Request{}, fmt.Errorf("decode request %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return pricing.Request{}, fmt.Errorf("request %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return req, nil
}
