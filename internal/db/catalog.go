package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Simplici0/aluquote/internal/catalog"
	"github.com/shopspring/decimal"
)

// CatalogSource reads catalog snapshots from the database.
type CatalogSource struct {
	db *sql.DB
}

// NewCatalogSource returns a catalog.Source backed by db.
func NewCatalogSource(db *sql.DB) *CatalogSource {
	return &CatalogSource{db: db}
}

var _ catalog.Source = (*CatalogSource)(nil)

// Snapshot loads the listed products together with every material, color
// price, glass mapping and labor rate they can need. An empty productIDs
// loads the whole catalog. The number of queries does not depend on the
// number of products; all of them run in one transaction so the snapshot is
// consistent.
func (s *CatalogSource) Snapshot(ctx context.Context, productIDs []int64) (*catalog.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	where, args := inClause("id", productIDs)
	products, err := loadProducts(ctx, tx, where, args)
	if err != nil {
		return nil, err
	}

	where, args = inClause("product_id", productIDs)
	if err := loadBOM(ctx, tx, where, args, products); err != nil {
		return nil, err
	}

	// Glass materials are always loaded: a request may select any of them.
	used := `id IN (SELECT material_id FROM bom_entries WHERE ` + where + `) OR category = 'glass'`
	materials, err := loadMaterials(ctx, tx, used, args)
	if err != nil {
		return nil, err
	}

	colorPrices, err := loadColorPrices(ctx, tx, `material_id IN (SELECT material_id FROM bom_entries WHERE `+where+`)`, args)
	if err != nil {
		return nil, err
	}

	colors, err := loadColors(ctx, tx)
	if err != nil {
		return nil, err
	}
	glass, err := loadGlass(ctx, tx)
	if err != nil {
		return nil, err
	}
	labor, err := loadLaborRates(ctx, tx)
	if err != nil {
		return nil, err
	}

	return catalog.NewSnapshot(catalog.SnapshotData{
		Materials:   materials,
		Colors:      colors,
		ColorPrices: colorPrices,
		Glass:       glass,
		LaborRates:  labor,
		Products:    products,
	}), nil
}

// inClause renders "col IN (?, ...)" for ids, or a tautology when ids is empty.
func inClause(col string, ids []int64) (string, []any) {
	if len(ids) == 0 {
		return "1 = 1", nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return col + " IN (?" + strings.Repeat(", ?", len(ids)-1) + ")", args
}

func loadProducts(ctx context.Context, tx *sql.Tx, where string, args []any) ([]catalog.Product, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, code, name, category, window_type, door_type,
		       min_width_cm, max_width_cm, min_height_cm, max_height_cm
		FROM products
		WHERE `+where+`
		ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Category, &p.WindowType, &p.DoorType,
			&p.MinWidthCM, &p.MaxWidthCM, &p.MinHeightCM, &p.MaxHeightCM); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return out, nil
}

func loadBOM(ctx context.Context, tx *sql.Tx, where string, args []any, products []catalog.Product) error {
	index := make(map[int64]int, len(products))
	for i, p := range products {
		index[p.ID] = i
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT product_id, material_id, category, quantity_formula, waste_factor, description
		FROM bom_entries
		WHERE `+where+`
		ORDER BY product_id, position`, args...)
	if err != nil {
		return fmt.Errorf("query bom entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			productID int64
			category  string
			e         catalog.BOMEntry
		)
		if err := rows.Scan(&productID, &e.MaterialID, &category, &e.QuantityFormula, &e.WasteFactor, &e.Description); err != nil {
			return fmt.Errorf("scan bom entry: %w", err)
		}
		if e.Category, err = catalog.ParseCategory(category); err != nil {
			return fmt.Errorf("bom entry of product %d: %w", productID, err)
		}
		if i, ok := index[productID]; ok {
			products[i].BOM = append(products[i].BOM, e)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate bom entries: %w", err)
	}
	return nil
}

func loadMaterials(ctx context.Context, tx *sql.Tx, where string, args []any) ([]catalog.Material, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, code, name, unit, category, base_price, selling_length_m, description
		FROM materials
		WHERE `+where+`
		ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query materials: %w", err)
	}
	defer rows.Close()

	var out []catalog.Material
	for rows.Next() {
		var (
			m        catalog.Material
			code     sql.NullString
			category string
			length   decimal.NullDecimal
		)
		if err := rows.Scan(&m.ID, &code, &m.Name, &m.Unit, &category, &m.BasePrice, &length, &m.Description); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		if m.Category, err = catalog.ParseCategory(category); err != nil {
			return nil, fmt.Errorf("material %d: %w", m.ID, err)
		}
		m.Code = code.String
		if length.Valid {
			m.SellingLengthM = length.Decimal
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate materials: %w", err)
	}
	return out, nil
}

func loadColorPrices(ctx context.Context, tx *sql.Tx, where string, args []any) ([]catalog.ColorPrice, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT material_id, color_id, price, available
		FROM material_color_prices
		WHERE `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("query color prices: %w", err)
	}
	defer rows.Close()

	var out []catalog.ColorPrice
	for rows.Next() {
		var cp catalog.ColorPrice
		if err := rows.Scan(&cp.MaterialID, &cp.ColorID, &cp.Price, &cp.Available); err != nil {
			return nil, fmt.Errorf("scan color price: %w", err)
		}
		out = append(out, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate color prices: %w", err)
	}
	return out, nil
}

func loadColors(ctx context.Context, tx *sql.Tx) ([]catalog.Color, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, name FROM colors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query colors: %w", err)
	}
	defer rows.Close()

	var out []catalog.Color
	for rows.Next() {
		var c catalog.Color
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan color: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate colors: %w", err)
	}
	return out, nil
}

func loadGlass(ctx context.Context, tx *sql.Tx) ([]catalog.GlassMapping, error) {
	rows, err := tx.QueryContext(ctx, `SELECT glass_type, material_code, fallback_price FROM glass_types`)
	if err != nil {
		return nil, fmt.Errorf("query glass types: %w", err)
	}
	defer rows.Close()

	var out []catalog.GlassMapping
	for rows.Next() {
		var g catalog.GlassMapping
		if err := rows.Scan(&g.GlassType, &g.MaterialCode, &g.Fallback); err != nil {
			return nil, fmt.Errorf("scan glass type: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate glass types: %w", err)
	}
	return out, nil
}

func loadLaborRates(ctx context.Context, tx *sql.Tx) ([]catalog.LaborRate, error) {
	rows, err := tx.QueryContext(ctx, `SELECT window_type, door_type, rate_per_m2, complexity_factor FROM labor_rates`)
	if err != nil {
		return nil, fmt.Errorf("query labor rates: %w", err)
	}
	defer rows.Close()

	var out []catalog.LaborRate
	for rows.Next() {
		var r catalog.LaborRate
		if err := rows.Scan(&r.WindowType, &r.DoorType, &r.RatePerM2, &r.ComplexityFactor); err != nil {
			return nil, fmt.Errorf("scan labor rate: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate labor rates: %w", err)
	}
	return out, nil
}
