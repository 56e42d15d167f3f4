// Package formula evaluates catalog-authored quantity formulas.
//
// Formulas are arithmetic expressions over caller-bound variables, e.g.
// "2 * (width_m + height_m)" or "ceil(area_m2 / 2)". The grammar has numeric
// literals, + - * / // % **, unary + and -, comparisons (yielding 1 or 0),
// parentheses, the constants pi and e, and calls to abs, round, int, float,
// min, max, ceil, floor, sqrt and pow. Nothing else parses.
//
// Arithmetic is carried out in decimal. Division keeps 16 fractional digits.
package formula

import (
	"github.com/shopspring/decimal"
)

const (
	// divScale is the number of fractional digits kept by / and by the
	// transcendental builtins.
	divScale = 16
	// workScale bounds intermediate precision during exponentiation.
	workScale = 32

	defaultMaxSteps = 10000
)

var (
	maxMagnitude = decimal.New(1, 15)
	maxExponent  = decimal.NewFromInt(1 << 20)
	one          = decimal.NewFromInt(1)
)

// Bindings maps variable names to values for one evaluation.
type Bindings map[string]decimal.Decimal

// Evaluator evaluates formulas with an optional shared parse cache and a step
// budget per evaluation. The zero value is not usable; use NewEvaluator.
type Evaluator struct {
	cache    *Cache
	maxSteps int
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithCache makes the evaluator reuse parsed expressions from c.
func WithCache(c *Cache) Option {
	return func(e *Evaluator) { e.cache = c }
}

// WithMaxSteps bounds the number of nodes visited in one evaluation.
func WithMaxSteps(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// NewEvaluator returns an Evaluator configured by opts.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{maxSteps: defaultMaxSteps}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Evaluator) parse(src string) (*Expr, error) {
	if e.cache != nil {
		return e.cache.Parse(src)
	}
	return Parse(src)
}

// Evaluate parses src and evaluates it against vars. Every referenced name
// must be bound in vars or be a constant; this is checked before any
// arithmetic runs.
func (e *Evaluator) Evaluate(src string, vars Bindings) (decimal.Decimal, error) {
	expr, err := e.parse(src)
	if err != nil {
		return decimal.Zero, err
	}
	return e.Eval(expr, vars)
}

// Eval evaluates an already parsed expression.
func (e *Evaluator) Eval(expr *Expr, vars Bindings) (decimal.Decimal, error) {
	for _, n := range expr.names {
		if _, ok := vars[n]; ok {
			continue
		}
		if _, ok := constants[n]; ok {
			continue
		}
		return decimal.Zero, unsafeErr(expr.src, -1, "undefined variable %q", n)
	}

	st := &evalState{src: expr.src, vars: vars, budget: e.maxSteps}
	return st.eval(expr.root)
}

// Check dry-runs src with every name in names bound to 1.0. It reports the
// first syntax, safety or domain error.
func (e *Evaluator) Check(src string, names []string) error {
	vars := make(Bindings, len(names))
	for _, n := range names {
		vars[n] = one
	}
	_, err := e.Evaluate(src, vars)
	return err
}

// Validate reports whether Check succeeds.
func (e *Evaluator) Validate(src string, names []string) bool {
	return e.Check(src, names) == nil
}

// Evaluate evaluates src with a fresh, uncached evaluator.
func Evaluate(src string, vars Bindings) (decimal.Decimal, error) {
	return NewEvaluator().Evaluate(src, vars)
}

// Check dry-runs src with a fresh, uncached evaluator.
func Check(src string, names []string) error {
	return NewEvaluator().Check(src, names)
}

// Validate reports whether src passes Check.
func Validate(src string, names []string) bool {
	return Check(src, names) == nil
}

type evalState struct {
	src    string
	vars   Bindings
	budget int
}

func (s *evalState) eval(n node) (decimal.Decimal, error) {
	s.budget--
	if s.budget < 0 {
		return decimal.Zero, unsafeErr(s.src, -1, "evaluation step budget exhausted")
	}

	switch n := n.(type) {
	case numberLit:
		return n.value, nil
	case nameRef:
		if v, ok := s.vars[n.name]; ok {
			return v, nil
		}
		if v, ok := constants[n.name]; ok {
			return v, nil
		}
		return decimal.Zero, unsafeErr(s.src, n.pos, "undefined variable %q", n.name)
	case unaryExpr:
		x, err := s.eval(n.x)
		if err != nil {
			return decimal.Zero, err
		}
		if n.neg {
			return x.Neg(), nil
		}
		return x, nil
	case binaryExpr:
		return s.evalBinary(n)
	case compareExpr:
		return s.evalCompare(n)
	case callExpr:
		args := make([]decimal.Decimal, len(n.args))
		for i, a := range n.args {
			v, err := s.eval(a)
			if err != nil {
				return decimal.Zero, err
			}
			args[i] = v
		}
		v, err := n.fn.apply(s.src, args)
		return checked(s.src, v, err)
	default:
		return decimal.Zero, unsafeErr(s.src, -1, "unsupported expression node %T", n)
	}
}

func (s *evalState) evalBinary(n binaryExpr) (decimal.Decimal, error) {
	x, err := s.eval(n.x)
	if err != nil {
		return decimal.Zero, err
	}
	y, err := s.eval(n.y)
	if err != nil {
		return decimal.Zero, err
	}

	switch n.op {
	case opAdd:
		return checked(s.src, x.Add(y), nil)
	case opSub:
		return checked(s.src, x.Sub(y), nil)
	case opMul:
		return checked(s.src, x.Mul(y), nil)
	case opDiv:
		if y.IsZero() {
			return decimal.Zero, domainErr(s.src, "division by zero")
		}
		return checked(s.src, x.DivRound(y, divScale), nil)
	case opFloorDiv:
		if y.IsZero() {
			return decimal.Zero, domainErr(s.src, "integer division by zero")
		}
		r := floorMod(x, y)
		return checked(s.src, x.Sub(r).DivRound(y, 0), nil)
	case opMod:
		if y.IsZero() {
			return decimal.Zero, domainErr(s.src, "modulo by zero")
		}
		return floorMod(x, y), nil
	case opPow:
		v, err := power(s.src, x, y)
		return checked(s.src, v, err)
	default:
		return decimal.Zero, unsafeErr(s.src, -1, "unsupported operator %d", n.op)
	}
}

// evalCompare evaluates a comparison chain left to right and stops at the
// first false link, as chained comparisons do in ordinary mathematics.
func (s *evalState) evalCompare(n compareExpr) (decimal.Decimal, error) {
	left, err := s.eval(n.operands[0])
	if err != nil {
		return decimal.Zero, err
	}
	for i, op := range n.ops {
		right, err := s.eval(n.operands[i+1])
		if err != nil {
			return decimal.Zero, err
		}
		c := left.Cmp(right)
		var ok bool
		switch op {
		case cmpEq:
			ok = c == 0
		case cmpNe:
			ok = c != 0
		case cmpLt:
			ok = c < 0
		case cmpLe:
			ok = c <= 0
		case cmpGt:
			ok = c > 0
		case cmpGe:
			ok = c >= 0
		default:
			return decimal.Zero, unsafeErr(s.src, -1, "unsupported comparison %d", op)
		}
		if !ok {
			return decimal.Zero, nil
		}
		left = right
	}
	return one, nil
}

// floorMod returns x mod y with the sign of y.
func floorMod(x, y decimal.Decimal) decimal.Decimal {
	r := x.Mod(y)
	if !r.IsZero() && r.Sign() != y.Sign() {
		r = r.Add(y)
	}
	return r
}

func checked(src string, v decimal.Decimal, err error) (decimal.Decimal, error) {
	if err != nil {
		return decimal.Zero, err
	}
	if v.Abs().GreaterThan(maxMagnitude) {
		return decimal.Zero, domainErr(src, "intermediate result %s out of range", v)
	}
	return v, nil
}
