package formula

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

type builtin struct {
	name    string
	minArgs int
	maxArgs int // -1 means variadic
	apply   func(src string, args []decimal.Decimal) (decimal.Decimal, error)
}

func (b *builtin) arity() string {
	switch {
	case b.maxArgs < 0:
		return fmt.Sprintf("at least %d arguments", b.minArgs)
	case b.minArgs == b.maxArgs && b.minArgs == 1:
		return "exactly 1 argument"
	case b.minArgs == b.maxArgs:
		return fmt.Sprintf("exactly %d arguments", b.minArgs)
	default:
		return fmt.Sprintf("%d to %d arguments", b.minArgs, b.maxArgs)
	}
}

// builtins is the complete function whitelist.
var builtins = map[string]*builtin{
	"abs": {name: "abs", minArgs: 1, maxArgs: 1, apply: func(_ string, a []decimal.Decimal) (decimal.Decimal, error) {
		return a[0].Abs(), nil
	}},
	"round": {name: "round", minArgs: 1, maxArgs: 2, apply: applyRound},
	"int": {name: "int", minArgs: 1, maxArgs: 1, apply: func(_ string, a []decimal.Decimal) (decimal.Decimal, error) {
		return a[0].Truncate(0), nil
	}},
	"float": {name: "float", minArgs: 1, maxArgs: 1, apply: func(_ string, a []decimal.Decimal) (decimal.Decimal, error) {
		return a[0], nil
	}},
	"min": {name: "min", minArgs: 2, maxArgs: -1, apply: func(_ string, a []decimal.Decimal) (decimal.Decimal, error) {
		return decimal.Min(a[0], a[1:]...), nil
	}},
	"max": {name: "max", minArgs: 2, maxArgs: -1, apply: func(_ string, a []decimal.Decimal) (decimal.Decimal, error) {
		return decimal.Max(a[0], a[1:]...), nil
	}},
	"ceil": {name: "ceil", minArgs: 1, maxArgs: 1, apply: func(_ string, a []decimal.Decimal) (decimal.Decimal, error) {
		return a[0].Ceil(), nil
	}},
	"floor": {name: "floor", minArgs: 1, maxArgs: 1, apply: func(_ string, a []decimal.Decimal) (decimal.Decimal, error) {
		return a[0].Floor(), nil
	}},
	"sqrt": {name: "sqrt", minArgs: 1, maxArgs: 1, apply: applySqrt},
	"pow": {name: "pow", minArgs: 2, maxArgs: 2, apply: func(src string, a []decimal.Decimal) (decimal.Decimal, error) {
		return power(src, a[0], a[1])
	}},
}

// applyRound rounds half to even, optionally to n decimal places.
func applyRound(src string, a []decimal.Decimal) (decimal.Decimal, error) {
	if len(a) == 1 {
		return a[0].RoundBank(0), nil
	}
	places := a[1]
	if !places.IsInteger() {
		return decimal.Zero, domainErr(src, "round() precision must be an integer, got %s", places)
	}
	if places.Abs().GreaterThan(decimal.NewFromInt(divScale)) {
		return decimal.Zero, domainErr(src, "round() precision %s out of range", places)
	}
	return a[0].RoundBank(int32(places.IntPart())), nil
}

func applySqrt(src string, a []decimal.Decimal) (decimal.Decimal, error) {
	x := a[0]
	if x.IsNegative() {
		return decimal.Zero, domainErr(src, "sqrt of negative number %s", x)
	}
	// math.Sqrt is correctly rounded under IEEE 754, so the result is identical on every platform.
	f := math.Sqrt(x.InexactFloat64())
	return decimal.NewFromFloat(f).Round(divScale), nil
}

// power implements both the ** operator and pow().
func power(src string, base, exp decimal.Decimal) (decimal.Decimal, error) {
	if exp.IsInteger() {
		return intPower(src, base, exp)
	}
	if base.IsNegative() {
		return decimal.Zero, domainErr(src, "negative base %s with fractional exponent %s", base, exp)
	}
	if base.IsZero() {
		if exp.IsNegative() {
			return decimal.Zero, domainErr(src, "zero raised to a negative power")
		}
		return decimal.Zero, nil
	}
	f := math.Pow(base.InexactFloat64(), exp.InexactFloat64())
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return decimal.Zero, domainErr(src, "%s ** %s is out of range", base, exp)
	}
	return decimal.NewFromFloat(f).Round(divScale), nil
}

func intPower(src string, base, exp decimal.Decimal) (decimal.Decimal, error) {
	if base.IsZero() && exp.IsNegative() {
		return decimal.Zero, domainErr(src, "zero raised to a negative power")
	}
	if !exp.Abs().LessThanOrEqual(maxExponent) {
		return decimal.Zero, unsafeErr(src, -1, "exponent %s exceeds the allowed magnitude", exp)
	}
	n := exp.Abs().IntPart()
	result := decimal.NewFromInt(1)
	b := base
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(b).Round(workScale)
			if result.Abs().GreaterThan(maxMagnitude) {
				return decimal.Zero, domainErr(src, "%s ** %s is out of range", base, exp)
			}
		}
		n >>= 1
		if n > 0 {
			b = b.Mul(b).Round(workScale)
			if b.Abs().GreaterThan(maxMagnitude) {
				return decimal.Zero, domainErr(src, "%s ** %s is out of range", base, exp)
			}
		}
	}
	if exp.IsNegative() {
		if result.IsZero() {
			return decimal.Zero, domainErr(src, "%s ** %s underflows to zero", base, exp)
		}
		return decimal.NewFromInt(1).DivRound(result, divScale), nil
	}
	return result, nil
}
