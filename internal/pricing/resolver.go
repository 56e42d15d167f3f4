package pricing

import (
	"fmt"

	"github.com/Simplici0/aluquote/internal/catalog"
	"github.com/shopspring/decimal"
)

// VariantSelector is the single, normalized form of an item's color and
// glass choices. At most one of GlassMaterialID and GlassType is set.
type VariantSelector struct {
	ColorID         int64
	GlassMaterialID int64
	// GlassType is kept only when no catalog material backs the legacy glass
	// type, so its price can come from the fallback table.
	GlassType catalog.GlassType
}

// HasGlass reports whether a glass selection is present.
func (v VariantSelector) HasGlass() bool {
	return v.GlassMaterialID != 0 || v.GlassType != ""
}

// PriceSource records which step of the fallback chain produced a price.
type PriceSource int

const (
	SourceBase PriceSource = iota
	SourceColorOverride
	SourceGlassCatalog
	SourceGlassFallback
)

func (s PriceSource) String() string {
	switch s {
	case SourceBase:
		return "base"
	case SourceColorOverride:
		return "color_override"
	case SourceGlassCatalog:
		return "glass_catalog"
	case SourceGlassFallback:
		return "glass_fallback"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

func (s PriceSource) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Price is a resolved unit price.
type Price struct {
	Unit   decimal.Decimal `json:"unit"`
	Source PriceSource     `json:"source"`
}

// Resolver looks up unit prices in a catalog snapshot. It has no side effects.
type Resolver struct {
	snap *catalog.Snapshot
}

// NewResolver returns a resolver over snap.
func NewResolver(snap *catalog.Snapshot) Resolver {
	return Resolver{snap: snap}
}

// Resolve returns the unit price of m used as a cat line, given sel.
//
// Profiles take an available color override for the selected color. Glass
// takes the selected glass material's price, or for a legacy glass type the
// mapped material's price and then the fallback table. Everything else, and
// anything without a selection, takes the material's base price.
func (r Resolver) Resolve(m catalog.Material, cat catalog.Category, sel VariantSelector) (Price, error) {
	switch cat {
	case catalog.CategoryProfile:
		if sel.ColorID != 0 {
			if cp, ok := r.snap.ColorPrice(m.ID, sel.ColorID); ok && cp.Available {
				return Price{Unit: cp.Price, Source: SourceColorOverride}, nil
			}
		}
	case catalog.CategoryGlass:
		switch {
		case sel.GlassMaterialID != 0:
			gm, ok := r.snap.Material(sel.GlassMaterialID)
			if !ok {
				return Price{}, fmt.Errorf("%w: glass material %d is not in the catalog", ErrPriceResolution, sel.GlassMaterialID)
			}
			return Price{Unit: gm.BasePrice, Source: SourceGlassCatalog}, nil
		case sel.GlassType != "":
			return r.resolveGlassType(sel.GlassType)
		}
	case catalog.CategoryHardware, catalog.CategoryConsumable, catalog.CategoryLabor:
	default:
		return Price{}, fmt.Errorf("%w: unknown material category %s", ErrPriceResolution, cat)
	}
	return Price{Unit: m.BasePrice, Source: SourceBase}, nil
}

func (r Resolver) resolveGlassType(g catalog.GlassType) (Price, error) {
	if mapping, ok := r.snap.Glass(g); ok && mapping.MaterialCode != "" {
		if gm, ok := r.snap.MaterialByCode(mapping.MaterialCode); ok {
			return Price{Unit: gm.BasePrice, Source: SourceGlassCatalog}, nil
		}
	}
	if price, ok := r.snap.GlassPrice(g); ok {
		return Price{Unit: price, Source: SourceGlassFallback}, nil
	}
	return Price{}, fmt.Errorf("%w: glass type %q has no catalog material and no fallback price", ErrPriceResolution, g)
}
