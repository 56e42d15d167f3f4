package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OverheadRates are the fractional rates layered on top of material and labor cost.
type OverheadRates struct {
	ProfitMargin  decimal.Decimal `json:"profit_margin"`
	IndirectCosts decimal.Decimal `json:"indirect_costs_rate"`
	Tax           decimal.Decimal `json:"tax_rate"`
}

// DefaultOverheadRates returns the stock rates: 25% profit, 15% indirect costs, 16% tax.
func DefaultOverheadRates() OverheadRates {
	return OverheadRates{
		ProfitMargin:  decimal.RequireFromString("0.25"),
		IndirectCosts: decimal.RequireFromString("0.15"),
		Tax:           decimal.RequireFromString("0.16"),
	}
}

// Validate checks that every rate lies in [0, 1].
func (r OverheadRates) Validate() error {
	for _, rate := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"profit margin", r.ProfitMargin},
		{"indirect costs rate", r.IndirectCosts},
		{"tax rate", r.Tax},
	} {
		if rate.value.IsNegative() || rate.value.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%w: %s %s is outside [0, 1]", ErrInvalidRate, rate.name, rate.value)
		}
	}
	return nil
}

// Totals contains the quote roll-up. Every field is rounded to cents.
type Totals struct {
	MaterialsSubtotal decimal.Decimal `json:"materials_subtotal"`
	LaborSubtotal     decimal.Decimal `json:"labor_subtotal"`
	PreOverhead       decimal.Decimal `json:"subtotal_before_overhead"`
	Profit            decimal.Decimal `json:"profit_amount"`
	IndirectCosts     decimal.Decimal `json:"indirect_costs_amount"`
	PostOverhead      decimal.Decimal `json:"subtotal_with_overhead"`
	Tax               decimal.Decimal `json:"tax_amount"`
	GrandTotal        decimal.Decimal `json:"grand_total"`
}

// Aggregate rolls lines up into quote totals. Sums are carried exactly and
// each reported field is rounded once, at the end.
func Aggregate(lines []CalculatedLine, rates OverheadRates) (Totals, error) {
	if err := rates.Validate(); err != nil {
		return Totals{}, err
	}

	materials := decimal.Zero
	labor := decimal.Zero
	for _, l := range lines {
		materials = materials.Add(l.MaterialsCost())
		labor = labor.Add(l.LaborCost)
	}
	return rollUp(materials, labor, rates), nil
}

func rollUp(materials, labor decimal.Decimal, rates OverheadRates) Totals {
	pre := materials.Add(labor)
	profit := pre.Mul(rates.ProfitMargin)
	indirect := pre.Mul(rates.IndirectCosts)
	post := pre.Add(profit).Add(indirect)
	tax := post.Mul(rates.Tax)
	total := post.Add(tax)

	return Totals{
		MaterialsSubtotal: RoundCurrency(materials),
		LaborSubtotal:     RoundCurrency(labor),
		PreOverhead:       RoundCurrency(pre),
		Profit:            RoundCurrency(profit),
		IndirectCosts:     RoundCurrency(indirect),
		PostOverhead:      RoundCurrency(post),
		Tax:               RoundCurrency(tax),
		GrandTotal:        RoundCurrency(total),
	}
}

// RoundCurrency rounds half away from zero to cents.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundMeasure rounds half away from zero to three places.
func RoundMeasure(d decimal.Decimal) decimal.Decimal {
	return d.Round(3)
}
