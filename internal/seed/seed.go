package seed

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/Simplici0/aluquote/internal/catalog"
	"github.com/shopspring/decimal"
)

//go:embed sample_catalog.toml
var sampleCatalog []byte

// Sample returns the demonstration catalog shipped with the binary.
func Sample() (catalog.SnapshotData, error) {
	d, err := catalog.Decode(bytes.NewReader(sampleCatalog))
	if err != nil {
		return catalog.SnapshotData{}, fmt.Errorf("sample catalog: %w", err)
	}
	return d, nil
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Skipped int
}

// Run writes d into the database in one transaction. Rows that already exist
// are left untouched, so running it again is a no-op. When d carries no glass
// map or labor rates the built-in ones are written.
func Run(ctx context.Context, db *sql.DB, d catalog.SnapshotData) (Stats, error) {
	if len(d.Glass) == 0 {
		d.Glass = catalog.DefaultGlassMappings()
	}
	if len(d.LaborRates) == 0 {
		d.LaborRates = catalog.DefaultLaborRates()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	s := &seeder{ctx: ctx, tx: tx}
	steps := []func(catalog.SnapshotData) error{
		s.materials,
		s.colors,
		s.colorPrices,
		s.glass,
		s.laborRates,
		s.products,
	}
	for _, step := range steps {
		if err := step(d); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return s.stats, nil
}

type seeder struct {
	ctx   context.Context
	tx    *sql.Tx
	stats Stats
}

// ensure inserts a row unless exists reports one already present.
func (s *seeder) ensure(what, exists string, key []any, insert string, values ...any) error {
	var found bool
	if err := s.tx.QueryRowContext(s.ctx, `SELECT EXISTS(`+exists+`)`, key...).Scan(&found); err != nil {
		return fmt.Errorf("check %s existence: %w", what, err)
	}
	if found {
		s.stats.Skipped++
		return nil
	}

	if _, err := s.tx.ExecContext(s.ctx, insert, values...); err != nil {
		return fmt.Errorf("insert %s: %w", what, err)
	}
	s.stats.Inserts++
	return nil
}

func (s *seeder) materials(d catalog.SnapshotData) error {
	for _, m := range d.Materials {
		code := sql.NullString{String: m.Code, Valid: m.Code != ""}
		length := decimal.NullDecimal{Decimal: m.SellingLengthM, Valid: !m.SellingLengthM.IsZero()}
		if err := s.ensure(fmt.Sprintf("material %d", m.ID),
			`SELECT 1 FROM materials WHERE id = ?`, []any{m.ID}, `
			INSERT INTO materials (id, code, name, unit, category, base_price, selling_length_m, description)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, m.ID, code, m.Name, string(m.Unit), m.Category.String(), m.BasePrice, length, m.Description); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) colors(d catalog.SnapshotData) error {
	for _, c := range d.Colors {
		if err := s.ensure(fmt.Sprintf("color %q", c.Name),
			`SELECT 1 FROM colors WHERE id = ?`, []any{c.ID},
			`INSERT INTO colors (id, name) VALUES (?, ?)`, c.ID, c.Name); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) colorPrices(d catalog.SnapshotData) error {
	for _, cp := range d.ColorPrices {
		if err := s.ensure(fmt.Sprintf("color price %d/%d", cp.MaterialID, cp.ColorID),
			`SELECT 1 FROM material_color_prices WHERE material_id = ? AND color_id = ?`, []any{cp.MaterialID, cp.ColorID}, `
			INSERT INTO material_color_prices (material_id, color_id, price, available)
			VALUES (?, ?, ?, ?)
		`, cp.MaterialID, cp.ColorID, cp.Price, cp.Available); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) glass(d catalog.SnapshotData) error {
	for _, g := range d.Glass {
		if err := s.ensure(fmt.Sprintf("glass type %s", g.GlassType),
			`SELECT 1 FROM glass_types WHERE glass_type = ?`, []any{string(g.GlassType)}, `
			INSERT INTO glass_types (glass_type, material_code, fallback_price)
			VALUES (?, ?, ?)
		`, string(g.GlassType), g.MaterialCode, g.Fallback); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) laborRates(d catalog.SnapshotData) error {
	for _, r := range d.LaborRates {
		key := []any{string(r.WindowType), string(r.DoorType)}
		if err := s.ensure(fmt.Sprintf("labor rate %s%s", r.WindowType, r.DoorType),
			`SELECT 1 FROM labor_rates WHERE window_type = ? AND door_type = ?`, key, `
			INSERT INTO labor_rates (window_type, door_type, rate_per_m2, complexity_factor)
			VALUES (?, ?, ?, ?)
		`, string(r.WindowType), string(r.DoorType), r.RatePerM2, r.ComplexityFactor); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) products(d catalog.SnapshotData) error {
	for _, p := range d.Products {
		if err := s.ensure(fmt.Sprintf("product %s", p.Code),
			`SELECT 1 FROM products WHERE id = ?`, []any{p.ID}, `
			INSERT INTO products (
				id, code, name, category, window_type, door_type,
				min_width_cm, max_width_cm, min_height_cm, max_height_cm
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, p.Code, p.Name, string(p.Category), string(p.WindowType), string(p.DoorType),
			p.MinWidthCM, p.MaxWidthCM, p.MinHeightCM, p.MaxHeightCM); err != nil {
			return err
		}

		for i, e := range p.BOM {
			position := i + 1
			if err := s.ensure(fmt.Sprintf("bom entry %s#%d", p.Code, position),
				`SELECT 1 FROM bom_entries WHERE product_id = ? AND position = ?`, []any{p.ID, position}, `
				INSERT INTO bom_entries (product_id, position, material_id, category, quantity_formula, waste_factor, description)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, p.ID, position, e.MaterialID, e.Category.String(), e.QuantityFormula, e.WasteFactor, e.Description); err != nil {
				return err
			}
		}
	}
	return nil
}
