package seed

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/Simplici0/aluquote/internal/catalog"
	"github.com/Simplici0/aluquote/internal/db"
	"github.com/Simplici0/aluquote/internal/migrations"
)

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "seed-test.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(ctx, database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	sample, err := Sample()
	if err != nil {
		t.Fatalf("load sample catalog: %v", err)
	}
	bom := 0
	for _, p := range sample.Products {
		bom += len(p.BOM)
	}
	// Glass types are absent from the sample and come from the built-in map.
	rows := len(sample.Materials) + len(sample.Colors) + len(sample.ColorPrices) +
		7 + len(sample.LaborRates) + len(sample.Products) + bom
	if rows != 67 {
		t.Fatalf("expected 67 sample rows, got %d", rows)
	}

	for i := 0; i < 10; i++ {
		stats, err := Run(ctx, database, sample)
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != rows || stats.Skipped != 0 {
				t.Fatalf("expected %d inserts in first run, got %+v", rows, stats)
			}
			continue
		}
		if stats.Inserts != 0 || stats.Skipped != rows {
			t.Fatalf("expected only skips in iteration %d, got %+v", i, stats)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM materials WHERE code = ?`, "PER-MARCO-3", 1)
	assertCount(t, database, `SELECT COUNT(*) FROM materials WHERE category = ?`, "glass", 4)
	assertCount(t, database, `SELECT COUNT(*) FROM colors WHERE name = ?`, "Bronze", 1)
	assertCount(t, database, `SELECT COUNT(*) FROM glass_types WHERE fallback_price IS NOT NULL`, nil, 7)
	assertCount(t, database, `SELECT COUNT(*) FROM bom_entries WHERE product_id = ?`, int64(1), 7)
	assertCount(t, database, `SELECT COUNT(*) FROM bom_entries WHERE product_id = ? AND waste_factor = ?`, []any{int64(1), "1.05"}, 3)

	var price string
	if err := database.QueryRow(`SELECT price FROM material_color_prices WHERE material_id = 1 AND color_id = 2`).Scan(&price); err != nil {
		t.Fatalf("query color price: %v", err)
	}
	if price != "57.5" {
		t.Fatalf("expected color price stored as 57.5, got %q", price)
	}
}

func TestSampleValidates(t *testing.T) {
	t.Parallel()

	sample, err := Sample()
	if err != nil {
		t.Fatalf("load sample catalog: %v", err)
	}
	if err := catalog.Validate(catalog.NewSnapshot(sample), nil); err != nil {
		t.Fatalf("sample catalog should validate: %v", err)
	}
	if len(sample.Glass) != 0 {
		t.Fatalf("sample catalog should rely on the built-in glass map")
	}
	for _, p := range sample.Products {
		for _, e := range p.BOM {
			if e.WasteFactor.IsZero() {
				t.Fatalf("product %s has an entry without waste factor after decode", p.Code)
			}
		}
	}
}

func assertCount(t *testing.T, database *sql.DB, query string, args any, expected int) {
	t.Helper()

	var count int
	var err error
	switch v := args.(type) {
	case nil:
		err = database.QueryRow(query).Scan(&count)
	case []any:
		err = database.QueryRow(query, v...).Scan(&count)
	default:
		err = database.QueryRow(query, v).Scan(&count)
	}
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d", expected, count)
	}
}
