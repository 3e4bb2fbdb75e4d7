// Package eval implements the safe arithmetic expression evaluator behind the
// calculate tool. The accepted language is a closed subset of arithmetic
// syntax: numeric literals, + - * /, unary minus, parentheses and a fixed
// allow-list of functions. Everything else is rejected at parse time, so no
// input string can reach file, network, process or name-lookup facilities.
package eval

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrEmpty          = errors.New("empty expression")
	ErrTooLong        = fmt.Errorf("expression exceeds %d characters", maxExprLen)
	ErrTooDeep        = fmt.Errorf("expression nested deeper than %d levels", maxNestDepth)
	ErrDivisionByZero = errors.New("division by zero")
	ErrOverflow       = errors.New("integer overflow")
	ErrNotFinite      = errors.New("result is not finite")
)

// Evaluate parses and evaluates an arithmetic expression, returning its
// decimal string form. It is pure and safe for concurrent use: no state, no
// I/O, no side effects. Every failure mode comes back as an error value;
// Evaluate never panics on any input.
func Evaluate(expr string) (string, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return "", ErrEmpty
	}
	if len(trimmed) > maxExprLen {
		return "", ErrTooLong
	}

	root, err := parse(trimmed)
	if err != nil {
		return "", err
	}
	v, err := evalNode(root)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

type valueKind int

const (
	valInt valueKind = iota
	valFloat
	valPair
)

// value is the evaluator's numeric result. Integer operations keep valInt as
// long as both operands are integers; division and any float operand promote
// to valFloat. valPair only ever comes out of divmod.
type value struct {
	kind valueKind
	i    int64
	f    float64
	pair [2]*value
}

func intValue(i int64) value   { return value{kind: valInt, i: i} }
func floatValue(f float64) value { return value{kind: valFloat, f: f} }

func pairValue(a, b value) value {
	return value{kind: valPair, pair: [2]*value{&a, &b}}
}

func (v value) toFloat() float64 {
	if v.kind == valInt {
		return float64(v.i)
	}
	return v.f
}

// String renders the value the way the chat model and tests expect:
// integers without a fraction, floats with one ("5.0" rather than "5") and
// divmod pairs as "(q, r)".
func (v value) String() string {
	switch v.kind {
	case valInt:
		return strconv.FormatInt(v.i, 10)
	case valPair:
		return "(" + v.pair[0].String() + ", " + v.pair[1].String() + ")"
	}
	s := strconv.FormatFloat(v.f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func evalNode(n node) (value, error) {
	switch n := n.(type) {
	case literalNode:
		return n.val, nil

	case unaryNode:
		x, err := evalNode(n.x)
		if err != nil {
			return value{}, err
		}
		if x.kind == valPair {
			return value{}, errors.New("divmod result cannot be used as an operand")
		}
		if n.op == '+' {
			return x, nil
		}
		if x.kind == valInt {
			if x.i == math.MinInt64 {
				return value{}, ErrOverflow
			}
			return intValue(-x.i), nil
		}
		return floatValue(-x.f), nil

	case binaryNode:
		lhs, err := evalNode(n.lhs)
		if err != nil {
			return value{}, err
		}
		rhs, err := evalNode(n.rhs)
		if err != nil {
			return value{}, err
		}
		return applyBinary(n.op, lhs, rhs)

	case callNode:
		fn := functions[n.name]
		if fn.apply == nil {
			return value{}, fmt.Errorf("function %q is not allowed", n.name)
		}
		if len(n.args) < fn.minArgs {
			return value{}, fmt.Errorf("%s expects at least %d argument(s), got %d", n.name, fn.minArgs, len(n.args))
		}
		if fn.maxArgs >= 0 && len(n.args) > fn.maxArgs {
			return value{}, fmt.Errorf("%s expects at most %d argument(s), got %d", n.name, fn.maxArgs, len(n.args))
		}
		args := make([]value, len(n.args))
		for i, a := range n.args {
			v, err := evalNode(a)
			if err != nil {
				return value{}, err
			}
			if v.kind == valPair {
				return value{}, errors.New("divmod result cannot be used as an operand")
			}
			args[i] = v
		}
		return fn.apply(args)
	}
	return value{}, errors.New("malformed expression tree")
}

func applyBinary(op byte, lhs, rhs value) (value, error) {
	if lhs.kind == valPair || rhs.kind == valPair {
		return value{}, errors.New("divmod result cannot be used as an operand")
	}

	// True division always produces a float.
	if op == '/' {
		d := rhs.toFloat()
		if d == 0 {
			return value{}, ErrDivisionByZero
		}
		return finiteFloat(lhs.toFloat() / d)
	}

	if lhs.kind == valInt && rhs.kind == valInt {
		a, b := lhs.i, rhs.i
		switch op {
		case '+':
			c := a + b
			if (c > a) != (b > 0) && b != 0 {
				return value{}, ErrOverflow
			}
			return intValue(c), nil
		case '-':
			c := a - b
			if (c < a) != (b > 0) && b != 0 {
				return value{}, ErrOverflow
			}
			return intValue(c), nil
		case '*':
			if a != 0 && b != 0 {
				c := a * b
				if c/a != b || (a == -1 && b == math.MinInt64) {
					return value{}, ErrOverflow
				}
				return intValue(c), nil
			}
			return intValue(0), nil
		}
	}

	a, b := lhs.toFloat(), rhs.toFloat()
	switch op {
	case '+':
		return finiteFloat(a + b)
	case '-':
		return finiteFloat(a - b)
	case '*':
		return finiteFloat(a * b)
	}
	return value{}, fmt.Errorf("unsupported operator %q", string(op))
}

func finiteFloat(f float64) (value, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return value{}, ErrNotFinite
	}
	return floatValue(f), nil
}

type builtin struct {
	minArgs int
	maxArgs int // -1 means variadic
	apply   func(args []value) (value, error)
}

// functions is the complete allow-list. A name outside this map is rejected
// by the parser before any argument is evaluated.
var functions = map[string]builtin{
	"abs":    {minArgs: 1, maxArgs: 1, apply: fnAbs},
	"round":  {minArgs: 1, maxArgs: 2, apply: fnRound},
	"min":    {minArgs: 1, maxArgs: -1, apply: fnMin},
	"max":    {minArgs: 1, maxArgs: -1, apply: fnMax},
	"sum":    {minArgs: 1, maxArgs: -1, apply: fnSum},
	"pow":    {minArgs: 2, maxArgs: 2, apply: fnPow},
	"divmod": {minArgs: 2, maxArgs: 2, apply: fnDivmod},
}

func fnAbs(args []value) (value, error) {
	v := args[0]
	if v.kind == valInt {
		if v.i == math.MinInt64 {
			return value{}, ErrOverflow
		}
		if v.i < 0 {
			return intValue(-v.i), nil
		}
		return v, nil
	}
	return floatValue(math.Abs(v.f)), nil
}

// fnRound matches the reference semantics: one argument rounds half-to-even
// to an integer; a second argument gives the number of decimal places and
// keeps the result a float.
func fnRound(args []value) (value, error) {
	x := args[0]
	if len(args) == 1 {
		if x.kind == valInt {
			return x, nil
		}
		r := math.RoundToEven(x.f)
		if r > math.MaxInt64 || r < math.MinInt64 {
			return value{}, ErrOverflow
		}
		return intValue(int64(r)), nil
	}

	nd := args[1]
	if nd.kind != valInt {
		return value{}, errors.New("round: number of digits must be an integer")
	}
	if x.kind == valInt {
		return x, nil
	}
	shift := math.Pow(10, float64(nd.i))
	return finiteFloat(math.RoundToEven(x.f*shift) / shift)
}

func fnMin(args []value) (value, error) {
	best := args[0]
	for _, v := range args[1:] {
		if v.toFloat() < best.toFloat() {
			best = v
		}
	}
	return best, nil
}

func fnMax(args []value) (value, error) {
	best := args[0]
	for _, v := range args[1:] {
		if v.toFloat() > best.toFloat() {
			best = v
		}
	}
	return best, nil
}

func fnSum(args []value) (value, error) {
	allInt := true
	for _, v := range args {
		if v.kind != valInt {
			allInt = false
			break
		}
	}
	if allInt {
		acc := intValue(0)
		for _, v := range args {
			next, err := applyBinary('+', acc, v)
			if err != nil {
				return value{}, err
			}
			acc = next
		}
		return acc, nil
	}
	var acc float64
	for _, v := range args {
		acc += v.toFloat()
	}
	return finiteFloat(acc)
}

func fnPow(args []value) (value, error) {
	base, exp := args[0], args[1]

	// Integer fast path keeps pow(2, 10) exact.
	if base.kind == valInt && exp.kind == valInt && exp.i >= 0 {
		switch base.i {
		case 0:
			if exp.i == 0 {
				return intValue(1), nil
			}
			return intValue(0), nil
		case 1:
			return intValue(1), nil
		case -1:
			if exp.i%2 == 0 {
				return intValue(1), nil
			}
			return intValue(-1), nil
		}
		if exp.i > 63 {
			// |base| >= 2 here, so the result cannot fit an int64.
			return value{}, ErrOverflow
		}
		result := intValue(1)
		for n := int64(0); n < exp.i; n++ {
			next, err := applyBinary('*', result, base)
			if err != nil {
				return value{}, err
			}
			result = next
		}
		return result, nil
	}

	if base.toFloat() == 0 && exp.toFloat() < 0 {
		return value{}, ErrDivisionByZero
	}
	return finiteFloat(math.Pow(base.toFloat(), exp.toFloat()))
}

// fnDivmod returns (quotient, remainder) under floor division, so the
// remainder carries the divisor's sign as in the reference behaviour.
func fnDivmod(args []value) (value, error) {
	a, b := args[0], args[1]
	if b.toFloat() == 0 {
		return value{}, ErrDivisionByZero
	}

	if a.kind == valInt && b.kind == valInt {
		if a.i == math.MinInt64 && b.i == -1 {
			return value{}, ErrOverflow
		}
		q := a.i / b.i
		r := a.i % b.i
		if r != 0 && (r < 0) != (b.i < 0) {
			q--
			r += b.i
		}
		return pairValue(intValue(q), intValue(r)), nil
	}

	af, bf := a.toFloat(), b.toFloat()
	q := math.Floor(af / bf)
	r := af - q*bf
	if math.IsInf(q, 0) || math.IsNaN(q) || math.IsInf(r, 0) || math.IsNaN(r) {
		return value{}, ErrNotFinite
	}
	return pairValue(floatValue(q), floatValue(r)), nil
}
