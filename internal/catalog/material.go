package catalog

import "github.com/shopspring/decimal"

// Material is a purchasable catalog item.
type Material struct {
	ID          int64           `toml:"id" json:"id"`
	Code        string          `toml:"code" json:"code,omitempty"`
	Name        string          `toml:"name" json:"name"`
	Unit        Unit            `toml:"unit" json:"unit"`
	Category    Category        `toml:"category" json:"category"`
	BasePrice   decimal.Decimal `toml:"base_price" json:"base_price"`
	Description string          `toml:"description" json:"description,omitempty"`
	// SellingLengthM is the bar length profiles are sold in. Zero means the
	// material is sold by the exact quantity.
	SellingLengthM decimal.Decimal `toml:"selling_length_m" json:"selling_length_m"`
}

// SoldInBars reports whether quantities of m are rounded up to whole bars.
func (m Material) SoldInBars() bool {
	return m.Unit == UnitLinearMeter && m.SellingLengthM.IsPositive()
}

// Color is a profile finish.
type Color struct {
	ID   int64  `toml:"id" json:"id"`
	Name string `toml:"name" json:"name"`
}

// ColorPrice overrides a profile material's base price for one color.
type ColorPrice struct {
	MaterialID int64           `toml:"material_id" json:"material_id"`
	ColorID    int64           `toml:"color_id" json:"color_id"`
	Price      decimal.Decimal `toml:"price" json:"price"`
	Available  bool            `toml:"available" json:"available"`
}

// LaborRate is the installation cost per square meter for one product subtype.
// Exactly one of WindowType and DoorType is set.
type LaborRate struct {
	WindowType       WindowType      `toml:"window_type" json:"window_type,omitempty"`
	DoorType         DoorType        `toml:"door_type" json:"door_type,omitempty"`
	RatePerM2        decimal.Decimal `toml:"rate_per_m2" json:"rate_per_m2"`
	ComplexityFactor decimal.Decimal `toml:"complexity_factor" json:"complexity_factor"`
}

// Effective returns the rate multiplied by the complexity factor.
func (r LaborRate) Effective() decimal.Decimal {
	return r.RatePerM2.Mul(r.ComplexityFactor)
}

// DefaultLaborRates are the per-window-type installation rates used when a
// catalog does not define its own.
func DefaultLaborRates() []LaborRate {
	return []LaborRate{
		{WindowType: WindowFixed, RatePerM2: decimal.NewFromInt(45), ComplexityFactor: decimal.RequireFromString("1.0")},
		{WindowType: WindowSliding, RatePerM2: decimal.NewFromInt(65), ComplexityFactor: decimal.RequireFromString("1.2")},
		{WindowType: WindowCasement, RatePerM2: decimal.NewFromInt(75), ComplexityFactor: decimal.RequireFromString("1.4")},
		{WindowType: WindowTiltTurn, RatePerM2: decimal.NewFromInt(95), ComplexityFactor: decimal.RequireFromString("1.6")},
		{WindowType: WindowProjecting, RatePerM2: decimal.NewFromInt(70), ComplexityFactor: decimal.RequireFromString("1.3")},
	}
}
