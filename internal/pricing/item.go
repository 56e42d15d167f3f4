package pricing

import (
	"fmt"

	"github.com/Simplici0/aluquote/internal/catalog"
	"github.com/Simplici0/aluquote/internal/formula"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CalculatedLine is the priced result for one requested item. Amounts are
// exact; use Rounded for presentation.
type CalculatedLine struct {
	Index       int             `json:"index"`
	ProductID   int64           `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Subtype     string          `json:"subtype,omitempty"`
	WidthCM     decimal.Decimal `json:"width_cm"`
	HeightCM    decimal.Decimal `json:"height_cm"`
	Quantity    int             `json:"quantity"`
	Selection   VariantSelector `json:"-"`
	AreaM2      decimal.Decimal `json:"area_m2"`
	PerimeterM  decimal.Decimal `json:"perimeter_m"`
	Costs       CategoryCosts   `json:"costs"`
	LaborCost   decimal.Decimal `json:"labor_cost"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	BOM         []BOMLine       `json:"bom"`
}

// MaterialsCost is the sum of the per-category material costs.
func (l CalculatedLine) MaterialsCost() decimal.Decimal {
	return l.Costs.Total()
}

// Rounded returns a copy with currency at 2 places and geometry at 3 places.
func (l CalculatedLine) Rounded() CalculatedLine {
	out := l
	out.AreaM2 = RoundMeasure(l.AreaM2)
	out.PerimeterM = RoundMeasure(l.PerimeterM)
	out.Costs = CategoryCosts{
		Profiles:    RoundCurrency(l.Costs.Profiles),
		Glass:       RoundCurrency(l.Costs.Glass),
		Hardware:    RoundCurrency(l.Costs.Hardware),
		Consumables: RoundCurrency(l.Costs.Consumables),
	}
	out.LaborCost = RoundCurrency(l.LaborCost)
	out.Subtotal = RoundCurrency(l.Subtotal)
	out.BOM = make([]BOMLine, len(l.BOM))
	for i, b := range l.BOM {
		b.Quantity = RoundMeasure(b.Quantity)
		b.RawQuantity = RoundMeasure(b.RawQuantity)
		b.Cost = RoundCurrency(b.Cost)
		out.BOM[i] = b
	}
	return out
}

// Geometry holds the measures derived from an item's dimensions.
type Geometry struct {
	WidthM     decimal.Decimal
	HeightM    decimal.Decimal
	AreaM2     decimal.Decimal
	PerimeterM decimal.Decimal
}

// NewGeometry converts centimeter dimensions to meters and derives area and perimeter.
func NewGeometry(widthCM, heightCM decimal.Decimal) Geometry {
	w := widthCM.Div(hundred)
	h := heightCM.Div(hundred)
	return Geometry{
		WidthM:     w,
		HeightM:    h,
		AreaM2:     w.Mul(h),
		PerimeterM: w.Add(h).Mul(decimal.NewFromInt(2)),
	}
}

// Bindings returns the formula variables for an item of quantity qty.
func (g Geometry) Bindings(qty int) formula.Bindings {
	return formula.Bindings{
		catalog.VarWidth:     g.WidthM,
		catalog.VarHeight:    g.HeightM,
		catalog.VarArea:      g.AreaM2,
		catalog.VarPerimeter: g.PerimeterM,
		catalog.VarQuantity:  decimal.NewFromInt(int64(qty)),
	}
}

// itemCalculator prices requested items against one snapshot.
type itemCalculator struct {
	snap          *catalog.Snapshot
	lines         *LineCalculator
	laborOverride decimal.NullDecimal
}

func (c *itemCalculator) calculate(index int, it RequestedItem) (CalculatedLine, error) {
	p, ok := c.snap.Product(it.ProductID)
	if !ok {
		return CalculatedLine{}, fmt.Errorf("%w: %d", ErrUnknownProduct, it.ProductID)
	}

	if it.Quantity <= 0 || it.Quantity > MaxQuantity {
		return CalculatedLine{}, fmt.Errorf("%w: %d is outside 1..%d", ErrInvalidQuantity, it.Quantity, MaxQuantity)
	}
	if !it.WidthCM.IsPositive() || !it.HeightCM.IsPositive() {
		return CalculatedLine{}, fmt.Errorf("%w: dimensions must be greater than zero, got %sx%s cm", ErrDimensionOutOfBounds, it.WidthCM, it.HeightCM)
	}
	if !p.Contains(it.WidthCM, it.HeightCM) {
		return CalculatedLine{}, fmt.Errorf("%w: %sx%s cm is outside %s (%s-%s x %s-%s cm)", ErrDimensionOutOfBounds,
			it.WidthCM, it.HeightCM, p.Code, p.MinWidthCM, p.MaxWidthCM, p.MinHeightCM, p.MaxHeightCM)
	}

	sel, err := it.selector(c.snap)
	if err != nil {
		return CalculatedLine{}, err
	}
	if p.Needs(catalog.CategoryGlass) && !sel.HasGlass() {
		return CalculatedLine{}, fmt.Errorf("%w: product %s has glass and no glass was selected", ErrSelection, p.Code)
	}

	geo := NewGeometry(it.WidthCM, it.HeightCM)
	vars := geo.Bindings(it.Quantity)

	line := CalculatedLine{
		Index:       index,
		ProductID:   p.ID,
		ProductCode: p.Code,
		ProductName: p.Name,
		Subtype:     p.Subtype(),
		WidthCM:     it.WidthCM,
		HeightCM:    it.HeightCM,
		Quantity:    it.Quantity,
		Selection:   sel,
		AreaM2:      geo.AreaM2,
		PerimeterM:  geo.PerimeterM,
		BOM:         make([]BOMLine, 0, len(p.BOM)),
	}
	for _, entry := range p.BOM {
		bl, err := c.lines.Calculate(entry, vars, sel, it.Quantity)
		if err != nil {
			return CalculatedLine{}, err
		}
		if err := line.Costs.Add(bl.Category, bl.Cost); err != nil {
			return CalculatedLine{}, &EntryError{MaterialID: entry.MaterialID, Description: entry.Description, Formula: entry.QuantityFormula, Err: err}
		}
		line.BOM = append(line.BOM, bl)
	}

	labor, err := c.labor(p, geo, it.Quantity)
	if err != nil {
		return CalculatedLine{}, err
	}
	line.LaborCost = labor
	line.Subtotal = line.Costs.Total().Add(labor)
	return line, nil
}

// labor is area x quantity x rate. The rate is the per-quote override when
// given, else the snapshot's rate times complexity factor for the product's
// subtype. Standalone materials never carry labor; other products without a
// subtype carry labor only through the override.
func (c *itemCalculator) labor(p catalog.Product, geo Geometry, qty int) (decimal.Decimal, error) {
	if p.Category == catalog.ProductStandaloneMaterial {
		return decimal.Zero, nil
	}
	units := geo.AreaM2.Mul(decimal.NewFromInt(int64(qty)))
	if c.laborOverride.Valid {
		return units.Mul(c.laborOverride.Decimal), nil
	}
	if p.Subtype() == "" {
		return decimal.Zero, nil
	}
	rate, ok := c.snap.LaborRate(p)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no labor rate for %s", ErrPriceResolution, p.Subtype())
	}
	return units.Mul(rate.Effective()), nil
}
