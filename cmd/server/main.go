package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Simplici0/aluquote/internal/config"
	"github.com/Simplici0/aluquote/internal/db"
	"github.com/Simplici0/aluquote/internal/formula"
	"github.com/Simplici0/aluquote/internal/httpapi"
	"github.com/Simplici0/aluquote/internal/migrations"
	"github.com/Simplici0/aluquote/internal/pricing"
	"github.com/Simplici0/aluquote/internal/seed"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(ctx, database); err != nil {
		log.Fatalf("failed to run database migrations: %v", err)
	}
	version, err := migrations.Version(ctx, database)
	if err != nil {
		log.Fatalf("failed to read schema version: %v", err)
	}
	log.Printf("database %s at schema version %d", cfg.DBPath, version)

	if cfg.SeedCatalog {
		sample, err := seed.Sample()
		if err != nil {
			log.Fatalf("failed to load sample catalog: %v", err)
		}
		stats, err := seed.Run(ctx, database, sample)
		if err != nil {
			log.Fatalf("failed to seed catalog: %v", err)
		}
		log.Printf("seeded catalog: %d inserted, %d already present", stats.Inserts, stats.Skipped)
	}

	// One parse cache shared by every calculation and formula check.
	ev := formula.NewEvaluator(
		formula.WithCache(formula.NewCache()),
		formula.WithMaxSteps(cfg.FormulaMaxSteps),
	)
	calc := pricing.NewCalculator(cfg.Overhead, pricing.WithEvaluator(ev))
	api := httpapi.New(calc, db.NewCatalogSource(database), ev,
		httpapi.WithHealthCheck(database.PingContext),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("listening on %s (env=%s)", srv.Addr, cfg.AppEnv)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server stopped: %v", err)
	}
}
