package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/aluquote/internal/pricing"
)

const (
	defaultDBPath   = "./dev.db"
	defaultPort     = "8080"
	defaultAppEnv   = "development"
	defaultMaxSteps = 10000
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	DBPath          string
	Port            string
	AppEnv          string
	Overhead        pricing.OverheadRates
	FormulaMaxSteps int
	SeedCatalog     bool
}

// IsDev reports whether the process runs in development mode.
func (c Config) IsDev() bool {
	return c.AppEnv == "development" || c.AppEnv == "dev"
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	return load(".env")
}

func load(dotenvPath string) Config {
	// Best-effort: load local dev environment variables without overriding
	// the real environment. Production should use real env injection.
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("warning: read %s: %v", dotenvPath, err)
	}

	cfg := Config{
		DBPath: os.Getenv("DB_PATH"),
		Port:   os.Getenv("PORT"),
		AppEnv: strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV"))),
	}

	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = defaultAppEnv
	}

	defaults := pricing.DefaultOverheadRates()
	cfg.Overhead = pricing.OverheadRates{
		ProfitMargin:  rateEnv("DEFAULT_PROFIT_MARGIN", defaults.ProfitMargin),
		IndirectCosts: rateEnv("DEFAULT_INDIRECT_COSTS", defaults.IndirectCosts),
		Tax:           rateEnv("DEFAULT_TAX_RATE", defaults.Tax),
	}
	cfg.FormulaMaxSteps = intEnv("FORMULA_MAX_STEPS", defaultMaxSteps)
	cfg.SeedCatalog = boolEnv("SEED_CATALOG", cfg.IsDev())

	return cfg
}

// rateEnv reads a fractional rate in [0, 1].
func rateEnv(key string, fallback decimal.Decimal) decimal.Decimal {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		log.Printf("warning: %s=%q is not a number, using %s", key, raw, fallback)
		return fallback
	}
	if v.IsNegative() || v.GreaterThan(decimal.NewFromInt(1)) {
		log.Printf("warning: %s=%s is outside [0, 1], using %s", key, v, fallback)
		return fallback
	}
	return v
}

func intEnv(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Printf("warning: %s=%q is not a positive integer, using %d", key, raw, fallback)
		return fallback
	}
	return v
}

func boolEnv(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("warning: %s=%q is not a boolean, using %t", key, raw, fallback)
		return fallback
	}
	return v
}
