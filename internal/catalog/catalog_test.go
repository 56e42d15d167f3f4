package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Simplici0/aluquote/internal/formula"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleData() SnapshotData {
	return SnapshotData{
		Materials: []Material{
			{ID: 1, Code: "PER-1", Name: "Marco", Unit: UnitLinearMeter, Category: CategoryProfile, BasePrice: dec("50.00")},
			{ID: 2, Code: "VID-CLARO-4", Name: "Vidrio", Unit: UnitSquareMeter, Category: CategoryGlass, BasePrice: dec("90.00")},
		},
		Colors:      []Color{{ID: 7, Name: "Bronze"}},
		ColorPrices: []ColorPrice{{MaterialID: 1, ColorID: 7, Price: dec("57.50"), Available: true}},
		Products: []Product{{
			ID: 1, Code: "FIJA", Name: "Fija", Category: ProductWindow, WindowType: WindowFixed,
			MinWidthCM: dec("30"), MaxWidthCM: dec("300"), MinHeightCM: dec("30"), MaxHeightCM: dec("300"),
			BOM: []BOMEntry{
				{MaterialID: 1, Category: CategoryProfile, QuantityFormula: "perimeter_m", WasteFactor: dec("1.05")},
				{MaterialID: 2, Category: CategoryGlass, QuantityFormula: "area_m2", WasteFactor: dec("1.05")},
			},
		}},
	}
}

func TestLoadFile(t *testing.T) {
	d, err := LoadFile("testdata/catalog.toml")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if len(d.Materials) != 5 || len(d.Products) != 2 {
		t.Fatalf("expected 5 materials and 2 products, got %d and %d", len(d.Materials), len(d.Products))
	}

	snap := NewSnapshot(d)
	if err := Validate(snap, nil); err != nil {
		t.Fatalf("sample catalog should validate: %v", err)
	}

	p, ok := snap.ProductByCode("CORR-2H")
	if !ok {
		t.Fatalf("product CORR-2H not found")
	}
	if p.WindowType != WindowSliding || len(p.BOM) != 5 {
		t.Fatalf("unexpected product: %+v", p)
	}
	if !p.BOM[1].WasteFactor.Equal(DefaultWasteFactor) {
		t.Fatalf("expected default waste factor, got %s", p.BOM[1].WasteFactor)
	}
	if p.BOM[3].Category != CategoryHardware {
		t.Fatalf("expected hardware category, got %s", p.BOM[3].Category)
	}

	m, ok := snap.Material(1)
	if !ok || !m.SoldInBars() || !m.SellingLengthM.Equal(dec("6.1")) {
		t.Fatalf("expected material 1 sold in 6.10m bars, got %+v", m)
	}
	cp, ok := snap.ColorPrice(1, 2)
	if !ok || !cp.Price.Equal(dec("57.50")) || !cp.Available {
		t.Fatalf("unexpected color price: %+v", cp)
	}
}

func TestDecode_WasteFactorDefaultsOnlyWhenAbsent(t *testing.T) {
	const doc = `
[[materials]]
id = 20
name = "Rodaja"
unit = "piece"
category = "hardware"
base_price = "100"

[[products]]
id = 1
code = "KIT"
name = "Kit"
category = "railing"
min_width_cm = "10"
max_width_cm = "100"
min_height_cm = "10"
max_height_cm = "100"

  [[products.bom]]
  material_id = 20
  category = "hardware"
  quantity_formula = "1"

  [[products.bom]]
  material_id = 20
  category = "hardware"
  quantity_formula = "1"
  waste_factor = "0"

  [[products.bom]]
  material_id = 20
  category = "hardware"
  quantity_formula = "1"
  waste_factor = "1.2"
`
	d, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("decode catalog: %v", err)
	}

	bom := d.Products[0].BOM
	for i, want := range []string{"1.05", "0", "1.2"} {
		if !bom[i].WasteFactor.Equal(dec(want)) {
			t.Fatalf("bom entry %d: expected waste factor %s, got %s", i+1, want, bom[i].WasteFactor)
		}
	}

	err = Validate(NewSnapshot(d), nil)
	if err == nil || !strings.Contains(err.Error(), "waste factor 0 is below 1.0") {
		t.Fatalf("expected the explicit zero waste factor to be rejected, got %v", err)
	}
}

func TestFileSource_Snapshot(t *testing.T) {
	src, err := NewFileSource("testdata/catalog.toml")
	if err != nil {
		t.Fatalf("new file source: %v", err)
	}
	snap, err := src.Snapshot(context.Background(), []int64{1})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if _, ok := snap.Product(2); !ok {
		t.Fatalf("expected the file source to serve the whole catalog")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Snapshot(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSnapshot_Defaults(t *testing.T) {
	snap := NewSnapshot(sampleData())

	g, ok := snap.Glass(GlassBronze6mm)
	if !ok || g.MaterialCode != "VID-BRONCE-6" {
		t.Fatalf("unexpected default glass mapping: %+v", g)
	}
	price, ok := snap.GlassPrice(GlassTempered6mm)
	if !ok || !price.Equal(dec("195")) {
		t.Fatalf("expected tempered fallback 195, got %s", price)
	}
	if _, ok := snap.GlassPrice("smoked_8mm"); ok {
		t.Fatalf("unexpected fallback for an unmapped glass type")
	}

	rate, ok := snap.LaborRate(Product{WindowType: WindowSliding})
	if !ok || !rate.Effective().Equal(dec("78")) {
		t.Fatalf("expected sliding labor 65 x 1.2 = 78, got %+v", rate)
	}
	if _, ok := snap.LaborRate(Product{Category: ProductStandaloneMaterial}); ok {
		t.Fatalf("standalone products have no labor rate")
	}
	if _, ok := snap.LaborRate(Product{DoorType: DoorPivot}); ok {
		t.Fatalf("door rates are not part of the defaults")
	}
}

func TestSnapshot_IsIsolatedFromInput(t *testing.T) {
	d := sampleData()
	snap := NewSnapshot(d)

	d.Products[0].BOM[0].QuantityFormula = "999"
	p, _ := snap.Product(1)
	if p.BOM[0].QuantityFormula != "perimeter_m" {
		t.Fatalf("snapshot shares BOM storage with its input")
	}

	p.BOM[0].QuantityFormula = "999"
	again, _ := snap.Product(1)
	if again.BOM[0].QuantityFormula != "perimeter_m" {
		t.Fatalf("snapshot shares BOM storage with its callers")
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	d := sampleData()
	d.ColorPrices = append(d.ColorPrices, ColorPrice{MaterialID: 2, ColorID: 7, Price: dec("10")})
	d.Products = append(d.Products, Product{
		ID: 2, Code: "BAD", Category: ProductStandaloneMaterial, WindowType: WindowFixed,
		MinWidthCM: dec("100"), MaxWidthCM: dec("50"), MinHeightCM: dec("10"), MaxHeightCM: dec("20"),
		BOM: []BOMEntry{
			{MaterialID: 1, Category: CategoryProfile, QuantityFormula: "perimeter_m", WasteFactor: dec("0.9"), Description: "marco"},
			{MaterialID: 99, Category: CategoryHardware, QuantityFormula: "4", WasteFactor: dec("1")},
			{MaterialID: 2, Category: CategoryGlass, QuantityFormula: "__import__('os')", WasteFactor: dec("1")},
			{MaterialID: 2, Category: CategoryProfile, QuantityFormula: "area_m2", WasteFactor: dec("1")},
		},
	})

	err := Validate(NewSnapshot(d), formula.NewEvaluator())
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	if !errors.Is(err, ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog, got %v", err)
	}
	if !errors.Is(err, formula.ErrUnsafe) {
		t.Fatalf("expected the unsafe formula to be reported, got %v", err)
	}

	msg := err.Error()
	for _, want := range []string{
		"color prices apply only to profiles",
		"cannot have a window or door type",
		"width bounds [100, 50] are reversed",
		"bom entry 1 (marco): waste factor 0.9 is below 1.0",
		"unknown material 99",
		"tagged profile but material 2 is glass",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in:\n%s", want, msg)
		}
	}
}

func TestProduct_CheckSubtype(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		wantErr bool
	}{
		{"window with window type", Product{Category: ProductWindow, WindowType: WindowSliding}, false},
		{"window without type", Product{Category: ProductWindow}, true},
		{"window with door type", Product{Category: ProductWindow, DoorType: DoorSwing}, true},
		{"door with door type", Product{Category: ProductDoor, DoorType: DoorSwing}, false},
		{"louver door without type", Product{Category: ProductLouverDoor}, true},
		{"both types", Product{Category: ProductRailing, WindowType: WindowFixed, DoorType: DoorSwing}, true},
		{"railing without type", Product{Category: ProductRailing}, false},
		{"standalone without type", Product{Category: ProductStandaloneMaterial}, false},
		{"standalone with type", Product{Category: ProductStandaloneMaterial, DoorType: DoorPivot}, true},
		{"unknown window type", Product{Category: ProductWindow, WindowType: "bay"}, true},
		{"unknown category", Product{Category: "gazebo"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.product.CheckSubtype()
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckSubtype() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCategory_Text(t *testing.T) {
	for _, c := range Categories {
		text, err := c.MarshalText()
		if err != nil {
			t.Fatalf("marshal %d: %v", int(c), err)
		}
		var back Category
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("unmarshal %q: %v", text, err)
		}
		if back != c {
			t.Fatalf("round trip of %s gave %s", c, back)
		}
	}

	if _, err := ParseCategory("aluminio"); err == nil {
		t.Fatalf("expected unknown category error")
	}
	if c, err := ParseCategory(" Glass "); err != nil || c != CategoryGlass {
		t.Fatalf("ParseCategory should trim and lowercase, got %v, %v", c, err)
	}
}
