package catalog

import "github.com/shopspring/decimal"

// GlassType is the legacy glass selection carried by older requests.
type GlassType string

const (
	GlassClear4mm      GlassType = "clear_4mm"
	GlassClear6mm      GlassType = "clear_6mm"
	GlassBronze4mm     GlassType = "bronze_4mm"
	GlassBronze6mm     GlassType = "bronze_6mm"
	GlassReflective6mm GlassType = "reflective_6mm"
	GlassLaminated6mm  GlassType = "laminated_6mm"
	GlassTempered6mm   GlassType = "tempered_6mm"
)

// GlassMapping ties a legacy glass type to the material code that prices it.
// Fallback is used only when no material with that code is in the catalog.
type GlassMapping struct {
	GlassType    GlassType           `toml:"glass_type" json:"glass_type"`
	MaterialCode string              `toml:"material_code" json:"material_code"`
	Fallback     decimal.NullDecimal `toml:"fallback_price" json:"fallback_price"`
}

// DefaultGlassMappings is the built-in glass map.
func DefaultGlassMappings() []GlassMapping {
	row := func(g GlassType, code string, price int64) GlassMapping {
		return GlassMapping{GlassType: g, MaterialCode: code, Fallback: decimal.NewNullDecimal(decimal.NewFromInt(price))}
	}
	return []GlassMapping{
		row(GlassClear4mm, "VID-CLARO-4", 85),
		row(GlassClear6mm, "VID-CLARO-6", 120),
		row(GlassBronze4mm, "VID-BRONCE-4", 95),
		row(GlassBronze6mm, "VID-BRONCE-6", 135),
		row(GlassReflective6mm, "VID-REFLECTIVO-6", 180),
		row(GlassLaminated6mm, "VID-LAMINADO-6", 220),
		row(GlassTempered6mm, "VID-TEMP-6", 195),
	}
}
