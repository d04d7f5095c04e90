package runtime

import (
	"math"
	"strings"
)

// Truthy: non-zero numbers, true, and every non-null reference value.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case NumericValue:
		return val.Val != 0
	case BooleanValue:
		return val.Val
	case NullValue, nil:
		return false
	default:
		return true
	}
}

// Binary applies an arithmetic operator.
func Binary(op string, left, right Value) (Value, error) {
	l, lok := left.(NumericValue)
	r, rok := right.(NumericValue)
	if lok && rok {
		return NumericValue{Val: arithmetic(op, l.Val, r.Val)}, nil
	}

	switch op {
	case "+":
		if s, ok := left.(StringValue); ok {
			return StringValue{Val: s.Val + Stringify(right)}, nil
		}
		if s, ok := right.(StringValue); ok && lok {
			return StringValue{Val: Stringify(left) + s.Val}, nil
		}
		if la, ok := left.(*ArrayValue); ok {
			if ra, ok := right.(*ArrayValue); ok {
				joined := make([]Value, 0, len(la.Elements)+len(ra.Elements))
				joined = append(joined, la.Elements...)
				return NewArray(append(joined, ra.Elements...)...), nil
			}
		}
	case "*":
		if s, ok := left.(StringValue); ok && rok {
			return repeat(s.Val, r.Val)
		}
		if s, ok := right.(StringValue); ok && lok {
			return repeat(s.Val, l.Val)
		}
	}
	return nil, Errorf(ErrInvalidType, "cannot apply '%s' to %s and %s", op, left.Kind(), right.Kind())
}

func arithmetic(op string, l, r float64) float64 {
	switch op {
	case "+":
		return l + r
	case "-":
		return l - r
	case "*":
		return l * r
	case "/":
		return l / r
	case "%":
		m := math.Mod(l, r)
		if m != 0 && (m < 0) != (r < 0) {
			m += r
		}
		return m
	case "**":
		return math.Pow(l, r)
	}
	return math.NaN()
}

func repeat(s string, n float64) (Value, error) {
	if n < 0 || n != math.Trunc(n) {
		return nil, Errorf(ErrInvalidType, "cannot repeat a string %s times", FormatNumber(n))
	}
	return StringValue{Val: strings.Repeat(s, int(n))}, nil
}

// Compare applies a comparison operator and returns a BooleanValue.
func Compare(op string, left, right Value) (Value, error) {
	switch op {
	case "==":
		return BooleanValue{Val: Equal(left, right)}, nil
	case "!=":
		return BooleanValue{Val: !Equal(left, right)}, nil
	}

	var c int
	switch l := left.(type) {
	case NumericValue:
		r, ok := right.(NumericValue)
		if !ok {
			return nil, Errorf(ErrInvalidType, "cannot compare %s and %s", left.Kind(), right.Kind())
		}
		switch {
		case l.Val < r.Val:
			c = -1
		case l.Val > r.Val:
			c = 1
		case l.Val != r.Val:
			return BooleanValue{Val: false}, nil
		}
	case StringValue:
		r, ok := right.(StringValue)
		if !ok {
			return nil, Errorf(ErrInvalidType, "cannot compare %s and %s", left.Kind(), right.Kind())
		}
		c = strings.Compare(l.Val, r.Val)
	default:
		return nil, Errorf(ErrInvalidType, "cannot compare %s and %s", left.Kind(), right.Kind())
	}

	switch op {
	case "<":
		return BooleanValue{Val: c < 0}, nil
	case ">":
		return BooleanValue{Val: c > 0}, nil
	case "<=":
		return BooleanValue{Val: c <= 0}, nil
	case ">=":
		return BooleanValue{Val: c >= 0}, nil
	}
	return nil, Errorf(ErrInvalidType, "unknown comparator '%s'", op)
}

// Equal compares scalars by value and functions, classes and objects by
// identity. Arrays are equal when they have the same length and every pair
// of elements is equal. A pair of arrays already being compared further up
// counts as equal, so self-referencing arrays terminate.
func Equal(left, right Value) bool {
	return equal(left, right, nil)
}

type arrayPair struct {
	left, right *ArrayValue
}

func equal(left, right Value, seen map[arrayPair]bool) bool {
	if left == nil || right == nil {
		return left == right
	}
	if left.Kind() != right.Kind() {
		return false
	}
	switch l := left.(type) {
	case NullValue:
		return true
	case NumericValue:
		return l.Val == right.(NumericValue).Val
	case StringValue:
		return l.Val == right.(StringValue).Val
	case BooleanValue:
		return l.Val == right.(BooleanValue).Val
	case *ArrayValue:
		r := right.(*ArrayValue)
		if l == r {
			return true
		}
		if len(l.Elements) != len(r.Elements) {
			return false
		}
		pair := arrayPair{l, r}
		if seen[pair] {
			return true
		}
		if seen == nil {
			seen = make(map[arrayPair]bool)
		}
		seen[pair] = true
		defer delete(seen, pair)
		for i := range l.Elements {
			if !equal(l.Elements[i], r.Elements[i], seen) {
				return false
			}
		}
		return true
	default:
		return left == right
	}
}
