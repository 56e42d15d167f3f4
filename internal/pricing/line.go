package pricing

import (
	"fmt"

	"github.com/Simplici0/aluquote/internal/catalog"
	"github.com/Simplici0/aluquote/internal/formula"
	"github.com/shopspring/decimal"
)

// CategoryCosts accumulates material cost per category.
type CategoryCosts struct {
	Profiles    decimal.Decimal `json:"profiles"`
	Glass       decimal.Decimal `json:"glass"`
	Hardware    decimal.Decimal `json:"hardware"`
	Consumables decimal.Decimal `json:"consumables"`
}

// Add books amount under cat.
func (c *CategoryCosts) Add(cat catalog.Category, amount decimal.Decimal) error {
	switch cat {
	case catalog.CategoryProfile:
		c.Profiles = c.Profiles.Add(amount)
	case catalog.CategoryGlass:
		c.Glass = c.Glass.Add(amount)
	case catalog.CategoryHardware:
		c.Hardware = c.Hardware.Add(amount)
	case catalog.CategoryConsumable:
		c.Consumables = c.Consumables.Add(amount)
	case catalog.CategoryLabor:
		return fmt.Errorf("%w: labor is priced by the labor model, not as a bill of materials line", catalog.ErrInvalidCatalog)
	default:
		return fmt.Errorf("%w: unknown material category %s", catalog.ErrInvalidCatalog, cat)
	}
	return nil
}

// Total is the sum over every category.
func (c CategoryCosts) Total() decimal.Decimal {
	return c.Profiles.Add(c.Glass).Add(c.Hardware).Add(c.Consumables)
}

// BOMLine is the costed result of one bill of materials entry.
type BOMLine struct {
	MaterialID  int64            `json:"material_id"`
	Category    catalog.Category `json:"category"`
	Description string           `json:"description,omitempty"`
	// RawQuantity is the formula result for one unit, clamped at zero.
	RawQuantity decimal.Decimal `json:"raw_quantity"`
	// Quantity is the per-unit quantity after waste and bar rounding.
	Quantity decimal.Decimal `json:"quantity"`
	Price    Price           `json:"price"`
	// Cost covers every unit of the requested item.
	Cost decimal.Decimal `json:"cost"`
}

// LineCalculator costs single bill of materials entries.
type LineCalculator struct {
	eval     *formula.Evaluator
	resolver Resolver
	snap     *catalog.Snapshot
}

// NewLineCalculator returns a calculator evaluating formulas with ev and
// pricing against snap.
func NewLineCalculator(ev *formula.Evaluator, snap *catalog.Snapshot) *LineCalculator {
	return &LineCalculator{eval: ev, resolver: NewResolver(snap), snap: snap}
}

// Calculate costs entry for itemQty units bound to vars. Failures are
// returned as *EntryError.
func (c *LineCalculator) Calculate(entry catalog.BOMEntry, vars formula.Bindings, sel VariantSelector, itemQty int) (BOMLine, error) {
	fail := func(err error) (BOMLine, error) {
		return BOMLine{}, &EntryError{
			MaterialID:  entry.MaterialID,
			Description: entry.Description,
			Formula:     entry.QuantityFormula,
			Err:         err,
		}
	}

	m, ok := c.snap.Material(entry.MaterialID)
	if !ok {
		return fail(fmt.Errorf("%w: material %d is not in the catalog", ErrPriceResolution, entry.MaterialID))
	}

	if entry.WasteFactor.LessThan(decimal.NewFromInt(1)) {
		return fail(fmt.Errorf("%w: waste factor %s is below 1.0", catalog.ErrInvalidCatalog, entry.WasteFactor))
	}

	raw, err := c.eval.Evaluate(entry.QuantityFormula, vars)
	if err != nil {
		return fail(err)
	}
	if raw.IsNegative() {
		raw = decimal.Zero
	}

	needed := raw.Mul(entry.WasteFactor)
	if m.SoldInBars() {
		bars, rem := needed.QuoRem(m.SellingLengthM, 0)
		if rem.IsPositive() {
			bars = bars.Add(decimal.NewFromInt(1))
		}
		needed = bars.Mul(m.SellingLengthM)
	}

	price, err := c.resolver.Resolve(m, entry.Category, sel)
	if err != nil {
		return fail(err)
	}

	return BOMLine{
		MaterialID:  m.ID,
		Category:    entry.Category,
		Description: entry.Description,
		RawQuantity: raw,
		Quantity:    needed,
		Price:       price,
		Cost:        needed.Mul(price.Unit).Mul(decimal.NewFromInt(int64(itemQty))),
	}, nil
}
