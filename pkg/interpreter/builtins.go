package interpreter

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charly-lang/charly/pkg/runtime"
)

type builtinFunc func(i *Interpreter, ctx *callContext, args []runtime.Value) (runtime.Value, error)

type builtin struct {
	minArgs int
	fn      builtinFunc
}

func defaultBuiltins() map[string]builtin {
	return map[string]builtin{
		"print":         {0, builtinPrint},
		"dump":          {0, builtinDump},
		"print_color":   {2, builtinPrintColor},
		"Boolean":       {1, builtinBoolean},
		"Number":        {1, builtinNumber},
		"String":        {1, builtinString},
		"gets":          {0, builtinGets},
		"chomp":         {1, builtinChomp},
		"sleep":         {1, builtinSleep},
		"length":        {1, builtinLength},
		"array_of_size": {1, builtinArrayOfSize},
		"typeof":        {1, builtinTypeof},
		"rand":          {0, builtinRand},
		"variable":      {1, builtinVariable},
		"require":       {1, builtinRequire},
		"load":          {1, builtinLoad},
		"eval":          {1, builtinEval},
		"new":           {1, builtinNew},
		"colorize":      {2, builtinColorize},
	}
}

// BuiltinNames lists the builtin table in sorted order.
func (i *Interpreter) BuiltinNames() []string {
	names := make([]string, 0, len(i.builtins))
	for name := range i.builtins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// callInternal handles call_internal(name, args...).
func (i *Interpreter) callInternal(ctx *callContext, args []runtime.Value) (runtime.Value, error) {
	if len(args) == 0 {
		return nil, runtime.Errorf(runtime.ErrArity, "%s expected at least 1 argument(s), got 0", builtinEscape)
	}
	name, ok := args[0].(runtime.StringValue)
	if !ok {
		return nil, runtime.Errorf(runtime.ErrInvalidType, "%s expects a String name, got %s", builtinEscape, args[0].Kind())
	}
	return i.callBuiltin(ctx, name.Val, args[1:])
}

func (i *Interpreter) callBuiltin(ctx *callContext, name string, args []runtime.Value) (runtime.Value, error) {
	b, ok := i.builtins[name]
	if !ok {
		return nil, runtime.Errorf(runtime.ErrNotAFunction, "unknown internal function '%s'", name)
	}
	if len(args) < b.minArgs {
		return nil, runtime.Errorf(runtime.ErrArity, "%s expected %d argument(s), got %d", name, b.minArgs, len(args))
	}
	return b.fn(i, ctx, args)
}

func builtinPrint(i *Interpreter, _ *callContext, args []runtime.Value) (runtime.Value, error) {
	for _, arg := range args {
		if _, err := fmt.Fprintln(i.stdout, runtime.Stringify(arg)); err != nil {
			return nil, err
		}
	}
	return runtime.Null, nil
}

func builtinDump(i *Interpreter, _ *callContext, args []runtime.Value) (runtime.Value, error) {
	for _, arg := range args {
		if _, err := io.WriteString(i.stdout, runtime.Stringify(arg)); err != nil {
			return nil, err
		}
	}
	return runtime.Null, nil
}

func builtinPrintColor(i *Interpreter, ctx *callContext, args []runtime.Value) (runtime.Value, error) {
	colored, err := builtinColorize(i, ctx, args)
	if err != nil {
		return nil, err
	}
	return builtinPrint(i, ctx, []runtime.Value{colored})
}

func builtinBoolean(_ *Interpreter, _ *callContext, args []runtime.Value) (runtime.Value, error) {
	return runtime.BooleanValue{Val: runtime.Truthy(args[0])}, nil
}

func builtinNumber(_ *Interpreter, _ *callContext, args []runtime.Value) (runtime.Value, error) {
	switch v := args[0].(type) {
	case runtime.NumericValue:
		return v, nil
	case runtime.BooleanValue:
		if v.Val {
			return runtime.NumericValue{Val: 1}, nil
		}
		return runtime.NumericValue{Val: 0}, nil
	case runtime.NullValue:
		return runtime.NumericValue{Val: 0}, nil
	case runtime.StringValue:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Val), 64)
		if err != nil {
			return nil, runtime.Errorf(runtime.ErrInvalidType, "cannot convert %q to Numeric", v.Val)
		}
		return runtime.NumericValue{Val: f}, nil
	}
	return nil, runtime.Errorf(runtime.ErrInvalidType, "cannot convert %s to Numeric", args[0].Kind())
}

func builtinString(_ *Interpreter, _ *callContext, args []runtime.Value) (runtime.Value, error) {
	return runtime.StringValue{Val: runtime.Stringify(args[0])}, nil
}

// builtinGets reads one line including its newline; null at end of input.
func builtinGets(i *Interpreter, _ *callContext, _ []runtime.Value) (runtime.Value, error) {
	line, err := i.stdin.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if line == "" && err != nil {
		return runtime.Null, nil
	}
	return runtime.StringValue{Val: line}, nil
}

func builtinChomp(_ *Interpreter, _ *callContext, args []runtime.Value) (runtime.Value, error) {
	s, ok := args[0].(runtime.StringValue)
	if !ok {
		return nil, runtime.Errorf(runtime.ErrInvalidType, "chomp expects a String, got %s", args[0].Kind())
	}
	trimmed := strings.TrimSuffix(s.Val, "\n")
	trimmed = strings.TrimSuffix(trimmed, "\r")
	return runtime.StringValue{Val: trimmed}, nil
}

func builtinSleep(_ *Interpreter, _ *callContext, args []runtime.Value) (runtime.Value, error) {
	secs, ok := args[0].(runtime.NumericValue)
	if !ok {
		return nil, runtime.Errorf(runtime.ErrInvalidType, "sleep expects a Numeric, got %s", args[0].Kind())
	}
	if secs.Val > 0 {
		time.Sleep(time.Duration(secs.Val * float64(time.Second)))
	}
	return runtime.Null, nil
}

func builtinLength(_ *Interpreter, _ *callContext, args []runtime.Value) (runtime.Value, error) {
	switch v := args[0].(type) {
	case *runtime.ArrayValue:
		return runtime.NumericValue{Val: float64(len(v.Elements))}, nil
	case runtime.StringValue:
		return runtime.NumericValue{Val: float64(utf8.RuneCountInString(v.Val))}, nil
	case runtime.NumericValue:
		return v, nil
	}
	return nil, runtime.Errorf(runtime.ErrInvalidType, "length is not defined for %s", args[0].Kind())
}

const maxArraySize = 1 << 24

// builtinArrayOfSize builds an array of n nulls, or of n copies of the
// optional second argument.
func builtinArrayOfSize(_ *Interpreter, _ *callContext, args []runtime.Value) (runtime.Value, error) {
	n, ok := args[0].(runtime.NumericValue)
	if !ok || math.IsNaN(n.Val) || n.Val < 0 {
		return nil, runtime.Errorf(runtime.ErrInvalidType, "array_of_size expects a non-negative Numeric, got %s", runtime.Stringify(args[0]))
	}
	if n.Val > maxArraySize {
		return nil, runtime.Errorf(runtime.ErrInvalidType, "array_of_size: %s exceeds the maximum array size %d", runtime.FormatNumber(n.Val), maxArraySize)
	}
	fill := runtime.Null
	if len(args) > 1 {
		fill = args[1]
	}
	elements := make([]runtime.Value, int(n.Val))
	for idx := range elements {
		elements[idx] = fill
	}
	return runtime.NewArray(elements...), nil
}

func builtinTypeof(_ *Interpreter, _ *callContext, args []runtime.Value) (runtime.Value, error) {
	return runtime.StringValue{Val: args[0].Kind().String()}, nil
}

func builtinRand(_ *Interpreter, _ *callContext, _ []runtime.Value) (runtime.Value, error) {
	return runtime.NumericValue{Val: rand.Float64()}, nil
}

func builtinVariable(_ *Interpreter, ctx *callContext, args []runtime.Value) (runtime.Value, error) {
	return ctx.scope.Read(runtime.Stringify(args[0]))
}

func builtinNew(i *Interpreter, _ *callContext, args []runtime.Value) (runtime.Value, error) {
	class, ok := args[0].(*runtime.ClassValue)
	if !ok {
		return nil, runtime.Errorf(runtime.ErrInvalidType, "new expects a Class, got %s", args[0].Kind())
	}
	return i.construct(class, args[1:])
}

func stringArg(name string, v runtime.Value) (string, error) {
	s, ok := v.(runtime.StringValue)
	if !ok {
		return "", runtime.Errorf(runtime.ErrInvalidType, "%s expects a String, got %s", name, v.Kind())
	}
	return s.Val, nil
}
