package catalog

import (
	"fmt"
	"strings"
)

// Category classifies a material. The set is closed; switches over it are
// expected to handle every value.
type Category int

const (
	CategoryProfile Category = iota + 1
	CategoryGlass
	CategoryHardware
	CategoryConsumable
	CategoryLabor
)

// Categories lists every category in reporting order.
var Categories = []Category{
	CategoryProfile,
	CategoryGlass,
	CategoryHardware,
	CategoryConsumable,
	CategoryLabor,
}

var categoryNames = map[Category]string{
	CategoryProfile:    "profile",
	CategoryGlass:      "glass",
	CategoryHardware:   "hardware",
	CategoryConsumable: "consumable",
	CategoryLabor:      "labor",
}

// ParseCategory accepts the lowercase category name.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, name := range categoryNames {
		if name == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown material category %q", s)
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid material category %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Unit is a material's unit of measure.
type Unit string

const (
	UnitLinearMeter Unit = "linear_meter"
	UnitPiece       Unit = "piece"
	UnitSquareMeter Unit = "square_meter"
	UnitCartridge   Unit = "cartridge"
	UnitLiter       Unit = "liter"
	UnitKilogram    Unit = "kilogram"
)

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	switch u {
	case UnitLinearMeter, UnitPiece, UnitSquareMeter, UnitCartridge, UnitLiter, UnitKilogram:
		return true
	}
	return false
}
