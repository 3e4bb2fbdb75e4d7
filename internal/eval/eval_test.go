package eval_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/reagent-ai/reagent/internal/eval"
)

// ─── Well-formed expressions ──────────────────────────────────────────────────

func TestEvaluateArithmetic(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"2 + 3 * 4", "14"},
		{"(2+3)*4", "20"},
		{"1 + 2 - 3", "0"},
		{"2*3*4", "24"},
		{"10 / 4", "2.5"},
		{"10 / 2", "5.0"},
		{"-5 + 3", "-2"},
		{"--5", "5"},
		{"+7", "7"},
		{"-(2 + 3)", "-5"},
		{"2 + 2.5", "4.5"},
		{"0.1 + 0.2", "0.30000000000000004"},
		{"1e3 + 1", "1001.0"},
		{"((((1))))", "1"},
		{"1000000 * 1000000", "1000000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := eval.Evaluate(tt.expr)
			if err != nil {
				t.Fatalf("Evaluate(%q) error: %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %q, want %q", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluateFunctions(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"abs(-5)", "5"},
		{"abs(2.5 - 5)", "2.5"},
		{"max(1,2,3)", "3"},
		{"min(4, 2, 9)", "2"},
		{"min(7)", "7"},
		{"sum(1, 2, 3, 4)", "10"},
		{"sum(1.5, 2.5)", "4.0"},
		{"pow(2,10)", "1024"},
		{"pow(2, -1)", "0.5"},
		{"pow(2.0, 3)", "8.0"},
		{"divmod(7,2)", "(3, 1)"},
		{"divmod(-7, 2)", "(-4, 1)"},
		{"divmod(7.5, 2)", "(3.0, 1.5)"},
		{"round(2.7)", "3"},
		{"round(2.5)", "2"}, // half-to-even
		{"round(3.5)", "4"},
		{"round(3.14159, 2)", "3.14"},
		{"abs(min(-3, -8))", "8"},
		{"max(1, 2) + min(3, 4)", "5"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := eval.Evaluate(tt.expr)
			if err != nil {
				t.Fatalf("Evaluate(%q) error: %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %q, want %q", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	const expr = "sum(1,2,3) * pow(2, 4) / abs(-3)"
	first, err := eval.Evaluate(expr)
	if err != nil {
		t.Fatalf("first Evaluate: %v", err)
	}
	second, err := eval.Evaluate(expr)
	if err != nil {
		t.Fatalf("second Evaluate: %v", err)
	}
	if first != second {
		t.Errorf("results differ across calls: %q vs %q", first, second)
	}
}

// ─── Rejected constructs ──────────────────────────────────────────────────────

func TestEvaluateRejectsDisallowedConstructs(t *testing.T) {
	tests := []struct {
		expr    string
		wantSub string // substring the error must contain
	}{
		{"__import__('os')", `"__import__"`},
		{"open('x')", `"open"`},
		{"a=1", `"a"`},
		{"pi", `"pi"`},
		{"eval(1)", `"eval"`},
		{"exec(1)", `"exec"`},
		{"abs.__doc__", `"abs"`},
		{"x[0]", `"x"`},
		{"1; 2", "unexpected"},
		{"1 2", "unexpected"},
		{"2 ** 3", "unexpected"},
		{"lambda: 1", `"lambda"`},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := eval.Evaluate(tt.expr)
			if err == nil {
				t.Fatalf("Evaluate(%q) should be rejected", tt.expr)
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Evaluate(%q) error = %q, want it to mention %q", tt.expr, err, tt.wantSub)
			}
		})
	}
}

func TestEvaluateEmptyInput(t *testing.T) {
	for _, expr := range []string{"", "   ", "\t\n"} {
		if _, err := eval.Evaluate(expr); !errors.Is(err, eval.ErrEmpty) {
			t.Errorf("Evaluate(%q) error = %v, want ErrEmpty", expr, err)
		}
	}
}

// ─── Arithmetic failure modes ─────────────────────────────────────────────────

func TestEvaluateDivisionByZero(t *testing.T) {
	tests := []string{"10 / 0", "1 / (2 - 2)", "divmod(5, 0)", "pow(0, -1)"}
	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			_, err := eval.Evaluate(expr)
			if !errors.Is(err, eval.ErrDivisionByZero) {
				t.Errorf("Evaluate(%q) error = %v, want ErrDivisionByZero", expr, err)
			}
		})
	}
}

func TestEvaluateOverflow(t *testing.T) {
	tests := []string{
		"9223372036854775807 + 1",
		"-9223372036854775807 - 2",
		"9223372036854775807 * 2",
		"pow(2, 64)",
		"pow(10, 1000000000)",
	}
	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			_, err := eval.Evaluate(expr)
			if !errors.Is(err, eval.ErrOverflow) {
				t.Errorf("Evaluate(%q) error = %v, want ErrOverflow", expr, err)
			}
		})
	}
}

func TestEvaluateNonFinite(t *testing.T) {
	// Stays inside the float range per operand but overflows on multiply.
	if _, err := eval.Evaluate("1e308 * 10"); !errors.Is(err, eval.ErrNotFinite) {
		t.Errorf("expected ErrNotFinite, got %v", err)
	}
}

func TestEvaluateArity(t *testing.T) {
	tests := []string{"abs()", "abs(1, 2)", "pow(2)", "divmod(1)", "sum()", "round(1, 2, 3)"}
	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			if _, err := eval.Evaluate(expr); err == nil {
				t.Errorf("Evaluate(%q) should fail on arity", expr)
			}
		})
	}
}

// ─── Resource bounds ──────────────────────────────────────────────────────────

func TestEvaluateRejectsLongInput(t *testing.T) {
	expr := strings.Repeat("(", 10000) + "1" + strings.Repeat(")", 10000)
	_, err := eval.Evaluate(expr)
	if !errors.Is(err, eval.ErrTooLong) {
		t.Errorf("10k nested parens: error = %v, want ErrTooLong", err)
	}
}

func TestEvaluateRejectsDeepNesting(t *testing.T) {
	// Under the length bound but over the depth bound.
	expr := strings.Repeat("(", 200) + "1" + strings.Repeat(")", 200)
	_, err := eval.Evaluate(expr)
	if !errors.Is(err, eval.ErrTooDeep) {
		t.Errorf("200 nested parens: error = %v, want ErrTooDeep", err)
	}
}

func TestEvaluateDeepUnaryChain(t *testing.T) {
	expr := strings.Repeat("-", 300) + "1"
	_, err := eval.Evaluate(expr)
	if !errors.Is(err, eval.ErrTooDeep) {
		t.Errorf("deep unary chain: error = %v, want ErrTooDeep", err)
	}
}

func TestEvaluateNoPanic(t *testing.T) {
	inputs := []string{
		"(((", ")))", "1 +", "* 2", ",", "()", "1..2", "1.2.3",
		"abs(", "pow(1,", "#", "\"str\"", "'s'", "1e", "e10", "_",
	}
	for _, expr := range inputs {
		t.Run(expr, func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Evaluate(%q) panicked: %v", expr, r)
				}
			}()
			if _, err := eval.Evaluate(expr); err == nil {
				t.Errorf("Evaluate(%q) should fail", expr)
			}
		})
	}
}
