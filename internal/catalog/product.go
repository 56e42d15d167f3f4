package catalog

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// ProductCategory is the kind of assembly a product describes.
type ProductCategory string

const (
	ProductWindow             ProductCategory = "window"
	ProductDoor               ProductCategory = "door"
	ProductLouverDoor         ProductCategory = "louver_door"
	ProductRailing            ProductCategory = "railing"
	ProductCurtainWall        ProductCategory = "curtain_wall"
	ProductSkylight           ProductCategory = "skylight"
	ProductCanopy             ProductCategory = "canopy"
	ProductStandaloneMaterial ProductCategory = "standalone_material"
)

type subtypeRule int

const (
	subtypeOptional subtypeRule = iota
	subtypeWindow
	subtypeDoor
	subtypeForbidden
)

var productCategoryRules = map[ProductCategory]subtypeRule{
	ProductWindow:             subtypeWindow,
	ProductDoor:               subtypeDoor,
	ProductLouverDoor:         subtypeDoor,
	ProductRailing:            subtypeOptional,
	ProductCurtainWall:        subtypeOptional,
	ProductSkylight:           subtypeOptional,
	ProductCanopy:             subtypeOptional,
	ProductStandaloneMaterial: subtypeForbidden,
}

// Valid reports whether c is a known product category.
func (c ProductCategory) Valid() bool {
	_, ok := productCategoryRules[c]
	return ok
}

// WindowType is the opening mechanism of a window.
type WindowType string

const (
	WindowFixed      WindowType = "fixed"
	WindowSliding    WindowType = "sliding"
	WindowCasement   WindowType = "casement"
	WindowTiltTurn   WindowType = "tilt_turn"
	WindowProjecting WindowType = "projecting"
)

// Valid reports whether t is a known window type.
func (t WindowType) Valid() bool {
	switch t {
	case WindowFixed, WindowSliding, WindowCasement, WindowTiltTurn, WindowProjecting:
		return true
	}
	return false
}

// DoorType is the opening mechanism of a door.
type DoorType string

const (
	DoorSingleLeaf DoorType = "single_leaf"
	DoorDoubleLeaf DoorType = "double_leaf"
	DoorSliding    DoorType = "sliding"
	DoorSwing      DoorType = "swing"
	DoorPivot      DoorType = "pivot"
	DoorFolding    DoorType = "folding"
)

// Valid reports whether t is a known door type.
func (t DoorType) Valid() bool {
	switch t {
	case DoorSingleLeaf, DoorDoubleLeaf, DoorSliding, DoorSwing, DoorPivot, DoorFolding:
		return true
	}
	return false
}

// DefaultWasteFactor applies when a BOM entry does not declare one.
var DefaultWasteFactor = decimal.RequireFromString("1.05")

// BOMEntry is one material usage in a product's bill of materials.
type BOMEntry struct {
	MaterialID      int64           `toml:"material_id" json:"material_id"`
	Category        Category        `toml:"category" json:"category"`
	QuantityFormula string          `toml:"quantity_formula" json:"quantity_formula"`
	WasteFactor     decimal.Decimal `toml:"waste_factor" json:"waste_factor"`
	Description     string          `toml:"description" json:"description,omitempty"`
}

// Product is a quotable assembly defined by its bill of materials.
type Product struct {
	ID          int64           `toml:"id" json:"id"`
	Code        string          `toml:"code" json:"code"`
	Name        string          `toml:"name" json:"name"`
	Category    ProductCategory `toml:"category" json:"category"`
	WindowType  WindowType      `toml:"window_type" json:"window_type,omitempty"`
	DoorType    DoorType        `toml:"door_type" json:"door_type,omitempty"`
	MinWidthCM  decimal.Decimal `toml:"min_width_cm" json:"min_width_cm"`
	MaxWidthCM  decimal.Decimal `toml:"max_width_cm" json:"max_width_cm"`
	MinHeightCM decimal.Decimal `toml:"min_height_cm" json:"min_height_cm"`
	MaxHeightCM decimal.Decimal `toml:"max_height_cm" json:"max_height_cm"`
	BOM         []BOMEntry      `toml:"bom" json:"bom,omitempty"`
}

// Subtype describes the product's window or door type for messages.
func (p Product) Subtype() string {
	switch {
	case p.WindowType != "":
		return "window:" + string(p.WindowType)
	case p.DoorType != "":
		return "door:" + string(p.DoorType)
	default:
		return ""
	}
}

// CheckSubtype enforces the window-type XOR door-type rule for the product's category.
func (p Product) CheckSubtype() error {
	rule, ok := productCategoryRules[p.Category]
	if !ok {
		return fmt.Errorf("unknown product category %q", p.Category)
	}
	if p.WindowType != "" && p.DoorType != "" {
		return fmt.Errorf("product sets both window type %q and door type %q", p.WindowType, p.DoorType)
	}
	if p.WindowType != "" && !p.WindowType.Valid() {
		return fmt.Errorf("unknown window type %q", p.WindowType)
	}
	if p.DoorType != "" && !p.DoorType.Valid() {
		return fmt.Errorf("unknown door type %q", p.DoorType)
	}

	switch rule {
	case subtypeWindow:
		if p.WindowType == "" {
			return fmt.Errorf("category %s requires a window type", p.Category)
		}
	case subtypeDoor:
		if p.DoorType == "" {
			return fmt.Errorf("category %s requires a door type", p.Category)
		}
	case subtypeForbidden:
		if p.WindowType != "" || p.DoorType != "" {
			return fmt.Errorf("category %s cannot have a window or door type", p.Category)
		}
	case subtypeOptional:
	}
	return nil
}

// Contains reports whether the dimensions lie within the product's bounds, inclusive.
func (p Product) Contains(widthCM, heightCM decimal.Decimal) bool {
	return widthCM.GreaterThanOrEqual(p.MinWidthCM) && widthCM.LessThanOrEqual(p.MaxWidthCM) &&
		heightCM.GreaterThanOrEqual(p.MinHeightCM) && heightCM.LessThanOrEqual(p.MaxHeightCM)
}

// Needs reports whether any BOM entry is tagged with category c.
func (p Product) Needs(c Category) bool {
	return slices.ContainsFunc(p.BOM, func(e BOMEntry) bool { return e.Category == c })
}

func (p Product) clone() Product {
	p.BOM = slices.Clone(p.BOM)
	return p
}
