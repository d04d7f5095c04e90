package runtime

import (
	"math"
	"strconv"
	"strings"
)

// Stringify renders a value the way print shows it.
func Stringify(v Value) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case NullValue:
		return "null"
	case NumericValue:
		return FormatNumber(val.Val)
	case StringValue:
		return val.Val
	case BooleanValue:
		return strconv.FormatBool(val.Val)
	case *ArrayValue:
		return formatArray(val, make(map[*ArrayValue]bool))
	case *FunctionValue:
		if val.Name == "" {
			return "<func>"
		}
		return "<func " + val.Name + ">"
	case *ClassValue:
		return "<class " + val.Name + ">"
	case *ObjectValue:
		if val.Class == nil {
			return "<object>"
		}
		return "<" + val.Class.Name + " object>"
	}
	return "<" + v.Kind().String() + ">"
}

// FormatNumber prints integral values without a fractional part.
func FormatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// formatArray quotes nested strings and cuts self-references short.
func formatArray(arr *ArrayValue, seen map[*ArrayValue]bool) string {
	if seen[arr] {
		return "[...]"
	}
	seen[arr] = true
	defer delete(seen, arr)

	parts := make([]string, len(arr.Elements))
	for i, el := range arr.Elements {
		switch e := el.(type) {
		case StringValue:
			parts[i] = strconv.Quote(e.Val)
		case *ArrayValue:
			parts[i] = formatArray(e, seen)
		default:
			parts[i] = Stringify(el)
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
