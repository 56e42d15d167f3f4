package catalog

import (
	"cmp"
	"context"
	"slices"

	"github.com/shopspring/decimal"
)

// Source produces catalog snapshots. Implementations must read everything
// the listed products need in one pass; a calculation never goes back to the
// source afterwards.
type Source interface {
	Snapshot(ctx context.Context, productIDs []int64) (*Snapshot, error)
}

// SnapshotData is the raw content of a snapshot.
type SnapshotData struct {
	Materials   []Material     `toml:"materials"`
	Colors      []Color        `toml:"colors"`
	ColorPrices []ColorPrice   `toml:"color_prices"`
	Glass       []GlassMapping `toml:"glass"`
	LaborRates  []LaborRate    `toml:"labor_rates"`
	Products    []Product      `toml:"products"`
}

type colorKey struct {
	materialID int64
	colorID    int64
}

type laborKey struct {
	window WindowType
	door   DoorType
}

// Snapshot is an immutable, indexed view of the catalog data needed for one
// calculation. It is safe for concurrent use.
type Snapshot struct {
	materials   map[int64]Material
	byCode      map[string]Material
	colors      map[int64]Color
	colorPrices map[colorKey]ColorPrice
	glass       map[GlassType]GlassMapping
	labor       map[laborKey]LaborRate
	products    map[int64]Product
	productCode map[string]int64
}

// NewSnapshot indexes d. Later rows win when ids repeat. When d has no glass
// mappings or labor rates the built-in defaults are used.
func NewSnapshot(d SnapshotData) *Snapshot {
	s := &Snapshot{
		materials:   make(map[int64]Material, len(d.Materials)),
		byCode:      make(map[string]Material, len(d.Materials)),
		colors:      make(map[int64]Color, len(d.Colors)),
		colorPrices: make(map[colorKey]ColorPrice, len(d.ColorPrices)),
		glass:       make(map[GlassType]GlassMapping),
		labor:       make(map[laborKey]LaborRate),
		products:    make(map[int64]Product, len(d.Products)),
		productCode: make(map[string]int64, len(d.Products)),
	}
	for _, m := range d.Materials {
		s.materials[m.ID] = m
		if m.Code != "" {
			s.byCode[m.Code] = m
		}
	}
	for _, c := range d.Colors {
		s.colors[c.ID] = c
	}
	for _, cp := range d.ColorPrices {
		s.colorPrices[colorKey{cp.MaterialID, cp.ColorID}] = cp
	}

	glass := d.Glass
	if len(glass) == 0 {
		glass = DefaultGlassMappings()
	}
	for _, g := range glass {
		s.glass[g.GlassType] = g
	}

	labor := d.LaborRates
	if len(labor) == 0 {
		labor = DefaultLaborRates()
	}
	for _, r := range labor {
		s.labor[laborKey{r.WindowType, r.DoorType}] = r
	}

	for _, p := range d.Products {
		s.products[p.ID] = p.clone()
		if p.Code != "" {
			s.productCode[p.Code] = p.ID
		}
	}
	return s
}

// Material returns the material with the given id.
func (s *Snapshot) Material(id int64) (Material, bool) {
	m, ok := s.materials[id]
	return m, ok
}

// MaterialByCode returns the material with the given catalog code.
func (s *Snapshot) MaterialByCode(code string) (Material, bool) {
	m, ok := s.byCode[code]
	return m, ok
}

// Color returns the color with the given id.
func (s *Snapshot) Color(id int64) (Color, bool) {
	c, ok := s.colors[id]
	return c, ok
}

// ColorPrice returns the price override for a profile material in a color.
func (s *Snapshot) ColorPrice(materialID, colorID int64) (ColorPrice, bool) {
	cp, ok := s.colorPrices[colorKey{materialID, colorID}]
	return cp, ok
}

// Glass returns the mapping for a legacy glass type.
func (s *Snapshot) Glass(g GlassType) (GlassMapping, bool) {
	m, ok := s.glass[g]
	return m, ok
}

// GlassPrice returns the fallback price for g, if the glass map has one.
func (s *Snapshot) GlassPrice(g GlassType) (decimal.Decimal, bool) {
	m, ok := s.glass[g]
	if !ok || !m.Fallback.Valid {
		return decimal.Zero, false
	}
	return m.Fallback.Decimal, true
}

// LaborRate returns the labor rate for the product's subtype.
func (s *Snapshot) LaborRate(p Product) (LaborRate, bool) {
	if p.WindowType == "" && p.DoorType == "" {
		return LaborRate{}, false
	}
	r, ok := s.labor[laborKey{p.WindowType, p.DoorType}]
	return r, ok
}

// Product returns the product with the given id.
func (s *Snapshot) Product(id int64) (Product, bool) {
	p, ok := s.products[id]
	if !ok {
		return Product{}, false
	}
	return p.clone(), true
}

// ProductByCode returns the product with the given code.
func (s *Snapshot) ProductByCode(code string) (Product, bool) {
	id, ok := s.productCode[code]
	if !ok {
		return Product{}, false
	}
	return s.Product(id)
}

// Products returns every product ordered by id.
func (s *Snapshot) Products() []Product {
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p.clone())
	}
	slices.SortFunc(out, func(a, b Product) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Materials returns every material ordered by id.
func (s *Snapshot) Materials() []Material {
	out := make([]Material, 0, len(s.materials))
	for _, m := range s.materials {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b Material) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// ColorPrices returns every color override ordered by material then color.
func (s *Snapshot) ColorPrices() []ColorPrice {
	out := make([]ColorPrice, 0, len(s.colorPrices))
	for _, cp := range s.colorPrices {
		out = append(out, cp)
	}
	slices.SortFunc(out, func(a, b ColorPrice) int {
		if c := cmp.Compare(a.MaterialID, b.MaterialID); c != 0 {
			return c
		}
		return cmp.Compare(a.ColorID, b.ColorID)
	})
	return out
}

// LaborRates returns every labor rate in a stable order.
func (s *Snapshot) LaborRates() []LaborRate {
	out := make([]LaborRate, 0, len(s.labor))
	for _, r := range s.labor {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b LaborRate) int {
		if c := cmp.Compare(a.WindowType, b.WindowType); c != 0 {
			return c
		}
		return cmp.Compare(a.DoorType, b.DoorType)
	})
	return out
}
