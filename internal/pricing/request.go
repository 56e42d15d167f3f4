package pricing

import (
	"fmt"

	"github.com/Simplici0/aluquote/internal/catalog"
	"github.com/shopspring/decimal"
)

const (
	MaxItems    = 50
	MaxQuantity = 100
)

// Request asks for a quote over one or more items. Unset rates fall back to
// the calculator's defaults.
type Request struct {
	Items                  []RequestedItem     `json:"items" toml:"items"`
	ProfitMargin           decimal.NullDecimal `json:"profit_margin" toml:"profit_margin"`
	IndirectCostsRate      decimal.NullDecimal `json:"indirect_costs_rate" toml:"indirect_costs_rate"`
	TaxRate                decimal.NullDecimal `json:"tax_rate" toml:"tax_rate"`
	LaborRatePerM2Override decimal.NullDecimal `json:"labor_rate_per_m2_override" toml:"labor_rate_per_m2_override"`
}

// RequestedItem is one line of a quote request.
type RequestedItem struct {
	ProductID int64           `json:"product_id" toml:"product_id"`
	WidthCM   decimal.Decimal `json:"width_cm" toml:"width_cm"`
	HeightCM  decimal.Decimal `json:"height_cm" toml:"height_cm"`
	Quantity  int             `json:"quantity" toml:"quantity"`
	ColorID   int64           `json:"color_id,omitempty" toml:"color_id"`
	// Deprecated: GlassType is the legacy glass selection. Use GlassMaterialID.
	GlassType       catalog.GlassType `json:"glass_type,omitempty" toml:"glass_type"`
	GlassMaterialID int64             `json:"glass_material_id,omitempty" toml:"glass_material_id"`
}

// ProductIDs returns the distinct products referenced by the request, in order.
func (r Request) ProductIDs() []int64 {
	seen := make(map[int64]bool, len(r.Items))
	ids := make([]int64, 0, len(r.Items))
	for _, it := range r.Items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	return ids
}

// rates merges the request's overrides into defaults and checks the result.
func (r Request) rates(defaults OverheadRates) (OverheadRates, error) {
	rates := defaults
	if r.ProfitMargin.Valid {
		rates.ProfitMargin = r.ProfitMargin.Decimal
	}
	if r.IndirectCostsRate.Valid {
		rates.IndirectCosts = r.IndirectCostsRate.Decimal
	}
	if r.TaxRate.Valid {
		rates.Tax = r.TaxRate.Decimal
	}
	if err := rates.Validate(); err != nil {
		return OverheadRates{}, err
	}
	if r.LaborRatePerM2Override.Valid && r.LaborRatePerM2Override.Decimal.IsNegative() {
		return OverheadRates{}, fmt.Errorf("%w: labor rate override %s is negative", ErrInvalidRate, r.LaborRatePerM2Override.Decimal)
	}
	return rates, nil
}

// selector folds the item's color and glass fields into one VariantSelector.
// A legacy glass type is translated to its catalog material when the snapshot
// has one; otherwise it is carried through for fallback pricing.
func (it RequestedItem) selector(snap *catalog.Snapshot) (VariantSelector, error) {
	var sel VariantSelector

	if it.ColorID != 0 {
		if _, ok := snap.Color(it.ColorID); !ok {
			return sel, fmt.Errorf("%w: unknown color %d", ErrSelection, it.ColorID)
		}
		sel.ColorID = it.ColorID
	}

	switch {
	case it.GlassMaterialID != 0 && it.GlassType != "":
		return sel, fmt.Errorf("%w: give either glass_material_id or glass_type, not both", ErrSelection)
	case it.GlassMaterialID != 0:
		m, ok := snap.Material(it.GlassMaterialID)
		if !ok {
			return sel, fmt.Errorf("%w: unknown glass material %d", ErrSelection, it.GlassMaterialID)
		}
		if m.Category != catalog.CategoryGlass {
			return sel, fmt.Errorf("%w: material %d is %s, not glass", ErrSelection, m.ID, m.Category)
		}
		sel.GlassMaterialID = m.ID
	case it.GlassType != "":
		if mapping, ok := snap.Glass(it.GlassType); ok {
			if m, ok := snap.MaterialByCode(mapping.MaterialCode); ok && m.Category == catalog.CategoryGlass {
				sel.GlassMaterialID = m.ID
				break
			}
		}
		sel.GlassType = it.GlassType
	}
	return sel, nil
}
