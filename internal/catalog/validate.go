package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Simplici0/aluquote/internal/formula"
	"github.com/shopspring/decimal"
)

// ErrInvalidCatalog is wrapped by every catalog validation failure.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Variables bound for every quantity formula.
const (
	VarWidth     = "width_m"
	VarHeight    = "height_m"
	VarArea      = "area_m2"
	VarPerimeter = "perimeter_m"
	VarQuantity  = "quantity"
)

// FormulaVariables returns the names a quantity formula may reference.
func FormulaVariables() []string {
	return []string{VarWidth, VarHeight, VarArea, VarPerimeter, VarQuantity}
}

// ValidationError names the catalog row a problem was found in.
type ValidationError struct {
	Subject string
	Msg     string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Subject, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Subject, e.Msg)
}

func (e *ValidationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidCatalog, e.Err}
	}
	return []error{ErrInvalidCatalog}
}

var one = decimal.NewFromInt(1)

type validator struct {
	snap *Snapshot
	ev   *formula.Evaluator
	errs []error
}

func (v *validator) fail(subject string, err error, format string, args ...any) {
	v.errs = append(v.errs, &ValidationError{Subject: subject, Msg: fmt.Sprintf(format, args...), Err: err})
}

// Validate checks every row of the snapshot and returns all problems joined
// together, or nil. Quantity formulas are dry-run with ev, or with a fresh
// evaluator when ev is nil.
func Validate(s *Snapshot, ev *formula.Evaluator) error {
	if ev == nil {
		ev = formula.NewEvaluator()
	}
	v := &validator{snap: s, ev: ev}

	for _, m := range s.Materials() {
		v.material(m)
	}
	for _, cp := range s.ColorPrices() {
		v.colorPrice(cp)
	}
	types := make([]GlassType, 0, len(s.glass))
	for g := range s.glass {
		types = append(types, g)
	}
	slices.Sort(types)
	for _, g := range types {
		v.glass(s.glass[g])
	}
	for _, r := range s.LaborRates() {
		v.laborRate(r)
	}
	for _, p := range s.Products() {
		v.product(p)
	}
	return errors.Join(v.errs...)
}

func (v *validator) material(m Material) {
	subject := fmt.Sprintf("material %d", m.ID)
	if m.Code != "" {
		subject = fmt.Sprintf("material %d (%s)", m.ID, m.Code)
	}
	if m.Name == "" {
		v.fail(subject, nil, "name is required")
	}
	if !m.Unit.Valid() {
		v.fail(subject, nil, "unknown unit %q", m.Unit)
	}
	if !m.Category.Valid() {
		v.fail(subject, nil, "unknown category %d", int(m.Category))
	}
	if m.BasePrice.IsNegative() {
		v.fail(subject, nil, "base price %s is negative", m.BasePrice)
	}
	if m.SellingLengthM.IsNegative() {
		v.fail(subject, nil, "selling length %s is negative", m.SellingLengthM)
	}
}

func (v *validator) colorPrice(cp ColorPrice) {
	subject := fmt.Sprintf("color price (material %d, color %d)", cp.MaterialID, cp.ColorID)
	m, ok := v.snap.Material(cp.MaterialID)
	switch {
	case !ok:
		v.fail(subject, nil, "unknown material")
	case m.Category != CategoryProfile:
		v.fail(subject, nil, "color prices apply only to profiles, material is %s", m.Category)
	}
	if _, ok := v.snap.Color(cp.ColorID); !ok {
		v.fail(subject, nil, "unknown color")
	}
	if !cp.Price.IsPositive() {
		v.fail(subject, nil, "price %s must be greater than zero", cp.Price)
	}
}

func (v *validator) glass(g GlassMapping) {
	subject := fmt.Sprintf("glass type %s", g.GlassType)
	if g.MaterialCode == "" && !g.Fallback.Valid {
		v.fail(subject, nil, "needs a material code or a fallback price")
	}
	if g.Fallback.Valid && !g.Fallback.Decimal.IsPositive() {
		v.fail(subject, nil, "fallback price %s must be greater than zero", g.Fallback.Decimal)
	}
}

func (v *validator) laborRate(r LaborRate) {
	subject := "labor rate " + Product{WindowType: r.WindowType, DoorType: r.DoorType}.Subtype()
	switch {
	case r.WindowType == "" && r.DoorType == "":
		v.fail(subject, nil, "needs a window type or a door type")
	case r.WindowType != "" && r.DoorType != "":
		v.fail(subject, nil, "cannot set both a window type and a door type")
	case r.WindowType != "" && !r.WindowType.Valid():
		v.fail(subject, nil, "unknown window type %q", r.WindowType)
	case r.DoorType != "" && !r.DoorType.Valid():
		v.fail(subject, nil, "unknown door type %q", r.DoorType)
	}
	if r.RatePerM2.IsNegative() {
		v.fail(subject, nil, "rate %s is negative", r.RatePerM2)
	}
	if !r.ComplexityFactor.IsPositive() {
		v.fail(subject, nil, "complexity factor %s must be greater than zero", r.ComplexityFactor)
	}
}

func (v *validator) product(p Product) {
	subject := fmt.Sprintf("product %d (%s)", p.ID, p.Code)
	if err := p.CheckSubtype(); err != nil {
		v.fail(subject, err, "subtype")
	}
	if !p.MinWidthCM.IsPositive() || !p.MinHeightCM.IsPositive() {
		v.fail(subject, nil, "minimum dimensions must be greater than zero")
	}
	if p.MinWidthCM.GreaterThan(p.MaxWidthCM) {
		v.fail(subject, nil, "width bounds [%s, %s] are reversed", p.MinWidthCM, p.MaxWidthCM)
	}
	if p.MinHeightCM.GreaterThan(p.MaxHeightCM) {
		v.fail(subject, nil, "height bounds [%s, %s] are reversed", p.MinHeightCM, p.MaxHeightCM)
	}
	if len(p.BOM) == 0 {
		v.fail(subject, nil, "bill of materials is empty")
	}

	vars := FormulaVariables()
	for i, e := range p.BOM {
		entry := fmt.Sprintf("%s bom entry %d", subject, i+1)
		if e.Description != "" {
			entry = fmt.Sprintf("%s bom entry %d (%s)", subject, i+1, e.Description)
		}

		m, ok := v.snap.Material(e.MaterialID)
		if !ok {
			v.fail(entry, nil, "unknown material %d", e.MaterialID)
		}
		switch {
		case !e.Category.Valid():
			v.fail(entry, nil, "unknown category %d", int(e.Category))
		case e.Category == CategoryLabor:
			v.fail(entry, nil, "labor is priced by the labor model, not the bill of materials")
		case ok && e.Category != m.Category:
			v.fail(entry, nil, "tagged %s but material %d is %s", e.Category, m.ID, m.Category)
		}
		if e.WasteFactor.LessThan(one) {
			v.fail(entry, nil, "waste factor %s is below 1.0", e.WasteFactor)
		}
		if err := v.ev.Check(e.QuantityFormula, vars); err != nil {
			v.fail(entry, err, "quantity formula")
		}
	}
}
