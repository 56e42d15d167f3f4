package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

var keys = []string{
	"DB_PATH", "PORT", "APP_ENV",
	"DEFAULT_PROFIT_MARGIN", "DEFAULT_INDIRECT_COSTS", "DEFAULT_TAX_RATE",
	"FORMULA_MAX_STEPS", "SEED_CATALOG",
}

// clearEnv unsets every config key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeDotEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := load(filepath.Join(t.TempDir(), "missing.env"))

	if cfg.DBPath != defaultDBPath || cfg.Port != defaultPort || cfg.AppEnv != "development" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.IsDev() || !cfg.SeedCatalog {
		t.Fatalf("development should seed the catalog by default: %+v", cfg)
	}
	if cfg.FormulaMaxSteps != defaultMaxSteps {
		t.Fatalf("FormulaMaxSteps=%d, want %d", cfg.FormulaMaxSteps, defaultMaxSteps)
	}
	if !cfg.Overhead.ProfitMargin.Equal(decimal.RequireFromString("0.25")) ||
		!cfg.Overhead.IndirectCosts.Equal(decimal.RequireFromString("0.15")) ||
		!cfg.Overhead.Tax.Equal(decimal.RequireFromString("0.16")) {
		t.Fatalf("unexpected default overhead: %+v", cfg.Overhead)
	}
}

func TestLoad_ReadsDotEnvWithoutOverridingEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")

	path := writeDotEnv(t, `
# local settings
DB_PATH="/tmp/quotes.db"
PORT=7070
export APP_ENV=production
DEFAULT_TAX_RATE='0.08'
FORMULA_MAX_STEPS=500
`)
	cfg := load(path)

	if cfg.DBPath != "/tmp/quotes.db" {
		t.Fatalf("DBPath=%q, want %q", cfg.DBPath, "/tmp/quotes.db")
	}
	if cfg.Port != "9090" {
		t.Fatalf("Port=%q, want the environment value %q", cfg.Port, "9090")
	}
	if cfg.IsDev() || cfg.SeedCatalog {
		t.Fatalf("production should not seed by default: %+v", cfg)
	}
	if !cfg.Overhead.Tax.Equal(decimal.RequireFromString("0.08")) {
		t.Fatalf("Tax=%s, want 0.08", cfg.Overhead.Tax)
	}
	if cfg.FormulaMaxSteps != 500 {
		t.Fatalf("FormulaMaxSteps=%d, want 500", cfg.FormulaMaxSteps)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEFAULT_PROFIT_MARGIN", "lots")
	t.Setenv("DEFAULT_INDIRECT_COSTS", "1.5")
	t.Setenv("DEFAULT_TAX_RATE", "-0.1")
	t.Setenv("FORMULA_MAX_STEPS", "0")
	t.Setenv("SEED_CATALOG", "maybe")
	t.Setenv("APP_ENV", "Production")

	cfg := load(filepath.Join(t.TempDir(), "missing.env"))

	if !cfg.Overhead.ProfitMargin.Equal(decimal.RequireFromString("0.25")) {
		t.Fatalf("ProfitMargin=%s, want default", cfg.Overhead.ProfitMargin)
	}
	if !cfg.Overhead.IndirectCosts.Equal(decimal.RequireFromString("0.15")) {
		t.Fatalf("IndirectCosts=%s, want default", cfg.Overhead.IndirectCosts)
	}
	if !cfg.Overhead.Tax.Equal(decimal.RequireFromString("0.16")) {
		t.Fatalf("Tax=%s, want default", cfg.Overhead.Tax)
	}
	if cfg.FormulaMaxSteps != defaultMaxSteps {
		t.Fatalf("FormulaMaxSteps=%d, want default", cfg.FormulaMaxSteps)
	}
	if cfg.AppEnv != "production" || cfg.SeedCatalog {
		t.Fatalf("unexpected env handling: %+v", cfg)
	}
}

func TestLoad_SeedCatalogOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("SEED_CATALOG", "true")

	if cfg := load(filepath.Join(t.TempDir(), "missing.env")); !cfg.SeedCatalog {
		t.Fatalf("SEED_CATALOG=true should enable seeding outside development")
	}
}
