package formula

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertValue(t *testing.T, src string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("%s = %s, want %s", src, got, want)
	}
}

func TestEvaluate_DoubleHeight(t *testing.T) {
	got, err := Evaluate("2 * height_m", Bindings{"height_m": dec("2.0")})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	assertValue(t, "2 * height_m", got, "4.0")
}

func TestEvaluate_Arithmetic(t *testing.T) {
	vars := Bindings{
		"width_m":  dec("1.2"),
		"height_m": dec("1.5"),
	}
	tests := []struct {
		src  string
		want string
	}{
		{"2 + 3 * 4", "14"},
		{"(2 + 3) * 4", "20"},
		{"10 - 4 - 3", "3"},
		{"2 ** 3 ** 2", "512"},
		{"-2 ** 2", "-4"},
		{"2 ** -1", "0.5"},
		{"4 ** 0.5", "2"},
		{"10 / 4", "2.5"},
		{"1 / 3", "0.3333333333333333"},
		{"7 // 2", "3"},
		{"-7 // 2", "-4"},
		{"7.5 // 2", "3"},
		{"-7 % 3", "2"},
		{"7 % -3", "-2"},
		{"--3", "3"},
		{"+3", "3"},
		{".5 + 1.", "1.5"},
		{"1e3", "1000"},
		{"2.5E-1", "0.25"},
		{"1 < 2 < 3", "1"},
		{"3 > 2 > 2", "0"},
		{"1 == 1.0", "1"},
		{"1 != 1", "0"},
		{"(width_m > 1) * 10 + 5", "15"},
		{"2 * (width_m + height_m)", "5.4"},
		{"width_m * height_m", "1.8"},
		{"abs(-3)", "3"},
		{"round(2.5)", "2"},
		{"round(3.5)", "4"},
		{"round(1.25, 1)", "1.2"},
		{"round(1234, -2)", "1200"},
		{"int(-2.7)", "-2"},
		{"int(2.7)", "2"},
		{"float(3)", "3"},
		{"min(3, 1, 2)", "1"},
		{"max(1, 5)", "5"},
		{"ceil(1.2)", "2"},
		{"floor(-1.2)", "-2"},
		{"sqrt(16)", "4"},
		{"pow(2, 10)", "1024"},
		{"ceil(width_m * height_m / 0.5)", "4"},
		{"pi", "3.141592653589793"},
		{"e", "2.718281828459045"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := Evaluate(tt.src, vars)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			assertValue(t, tt.src, got, tt.want)
		})
	}
}

func TestEvaluate_BindingShadowsConstant(t *testing.T) {
	got, err := Evaluate("pi * 2", Bindings{"pi": dec("1")})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	assertValue(t, "pi * 2", got, "2")
}

func TestEvaluate_ChainedComparisonShortCircuits(t *testing.T) {
	got, err := Evaluate("1 > 2 > 1 / 0", nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	assertValue(t, "1 > 2 > 1 / 0", got, "0")
}

func TestEvaluate_IsDeterministic(t *testing.T) {
	src := "sqrt(width_m ** 2 + height_m ** 2) * 1.05 / 3"
	vars := Bindings{"width_m": dec("1.37"), "height_m": dec("2.11")}

	first, err := Evaluate(src, vars)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	for i := 0; i < 100; i++ {
		got, err := Evaluate(src, vars)
		if err != nil {
			t.Fatalf("evaluate (iteration=%d): %v", i, err)
		}
		if got.String() != first.String() {
			t.Fatalf("iteration %d: got %s, want %s", i, got, first)
		}
	}
}

func TestEvaluate_SafetyViolations(t *testing.T) {
	vars := Bindings{"width_m": dec("1")}
	tests := []string{
		"__import__('os')",
		"__class__",
		"width_m.real",
		"exec(1)",
		"open(1)",
		"foo(1)",
		"width_m[0]",
		"[1, 2]",
		"{}",
		"'abc'",
		"lambda: 1",
		"1 if 1 else 2",
		"width_m and 1",
		"not width_m",
		"True",
		"None",
		"a = 1",
		"1; 2",
		"1 & 2",
		"1 | 2",
		"1 ^ 2",
		"~1",
		"1 << 2",
		"abs",
		"(1)(2)",
		"height_m * 2",
		"2 ** 99999999",
		strings.Repeat("(", 70) + "1" + strings.Repeat(")", 70),
		strings.Repeat("1+", 600) + "1",
	}

	for _, src := range tests {
		name := src
		if len(name) > 40 {
			name = name[:40]
		}
		t.Run(name, func(t *testing.T) {
			_, err := Evaluate(src, vars)
			if !errors.Is(err, ErrUnsafe) {
				t.Fatalf("Evaluate(%q) error = %v, want ErrUnsafe", src, err)
			}
			if Validate(src, []string{"width_m"}) {
				t.Fatalf("Validate(%q) = true, want false", src)
			}
		})
	}
}

func TestEvaluate_StepBudget(t *testing.T) {
	ev := NewEvaluator(WithMaxSteps(5))

	_, err := ev.Evaluate("1 + 1 + 1 + 1 + 1 + 1", nil)
	if !errors.Is(err, ErrUnsafe) {
		t.Fatalf("expected ErrUnsafe, got %v", err)
	}

	got, err := ev.Evaluate("1 + 1", nil)
	if err != nil {
		t.Fatalf("evaluate within budget: %v", err)
	}
	assertValue(t, "1 + 1", got, "2")
}

func TestEvaluate_SyntaxErrors(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"1 +",
		"(1 + 2",
		"1 2",
		")",
		"2x",
		"1 $ 2",
		"1 ! 2",
		"min(1)",
		"round(1, 2, 3)",
		"sqrt()",
		"max(1,)",
	}

	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			_, err := Evaluate(src, nil)
			if !errors.Is(err, ErrSyntax) {
				t.Fatalf("Evaluate(%q) error = %v, want ErrSyntax", src, err)
			}
		})
	}
}

func TestParse_ReportsWholeRune(t *testing.T) {
	_, err := Parse("1 + é")

	var ferr *Error
	if !errors.As(err, &ferr) || !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected a syntax *Error, got %v", err)
	}
	if ferr.Pos != 4 || ferr.Msg != `unexpected character 'é'` {
		t.Fatalf("unexpected error %q at offset %d", ferr.Msg, ferr.Pos)
	}
}

func TestEvaluate_MathDomainErrors(t *testing.T) {
	tests := []string{
		"1 / 0",
		"1 // 0",
		"1 % 0",
		"sqrt(-1)",
		"0 ** -1",
		"(-8) ** 0.5",
		"10 ** 20",
		"999999999999999 * 10",
		"round(1.5, 0.5)",
	}

	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			_, err := Evaluate(src, nil)
			if !errors.Is(err, ErrMathDomain) {
				t.Fatalf("Evaluate(%q) error = %v, want ErrMathDomain", src, err)
			}
		})
	}
}

func TestError_CarriesPosition(t *testing.T) {
	_, err := Parse("1 + foo(2)")

	var ferr *Error
	if !errors.As(err, &ferr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if ferr.Pos != 4 {
		t.Fatalf("expected offset 4, got %d", ferr.Pos)
	}
	if ferr.Formula != "1 + foo(2)" {
		t.Fatalf("unexpected formula %q", ferr.Formula)
	}
}

func TestCheck(t *testing.T) {
	geometry := []string{"width_m", "height_m", "area_m2", "perimeter_m", "quantity"}

	if err := Check("2 * (width_m + height_m)", geometry); err != nil {
		t.Fatalf("check perimeter formula: %v", err)
	}
	if err := Check("depth_m * 2", geometry); !errors.Is(err, ErrUnsafe) {
		t.Fatalf("expected ErrUnsafe for unknown variable, got %v", err)
	}
	// Placeholders are 1.0, so this divides by zero during the dry run.
	if err := Check("area_m2 / (quantity - 1)", geometry); !errors.Is(err, ErrMathDomain) {
		t.Fatalf("expected ErrMathDomain, got %v", err)
	}
	if Validate("area_m2 / (quantity - 1)", geometry) {
		t.Fatalf("expected dry-run domain failure to invalidate the formula")
	}
}

func TestExpr_Names(t *testing.T) {
	expr, err := Parse("max(width_m, height_m) * pi + width_m")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := strings.Join(expr.Names(), ",")
	if got != "height_m,pi,width_m" {
		t.Fatalf("names = %s", got)
	}
}
