package interpreter

import (
	"github.com/charly-lang/charly/pkg/ast"
	"github.com/charly-lang/charly/pkg/runtime"
)

// builtinEscape names the identifier that always dispatches to the builtin
// table, even when user code shadows the builtin's name.
const builtinEscape = "call_internal"

// callContext describes the call site a builtin runs for.
type callContext struct {
	prog  *ast.Program
	node  ast.NodeID
	scope *runtime.Scope
}

func (c *callContext) directory() string {
	if c.prog == nil || c.prog.File == nil {
		return ""
	}
	return c.prog.File.Directory
}

// evaluateCallExpression evaluates the arguments in the caller's scope, then
// resolves the callee. A bare identifier that is not bound anywhere in the
// scope chain falls back to the builtin of that name.
func (i *Interpreter) evaluateCallExpression(prog *ast.Program, id ast.NodeID, scope *runtime.Scope) (runtime.Value, error) {
	args, err := i.evaluateList(prog, prog.Right(id), scope)
	if err != nil {
		return nil, err
	}
	ctx := &callContext{prog: prog, node: id, scope: scope}

	calleeNode := prog.Left(id)
	var callee runtime.Value
	if prog.Is(calleeNode, ast.KindIdentifierLiteral) {
		name := prog.Text(calleeNode)
		if name == builtinEscape {
			return i.callInternal(ctx, args)
		}
		val, ok := scope.Lookup(name)
		if !ok {
			if _, isBuiltin := i.builtins[name]; isBuiltin {
				return i.callBuiltin(ctx, name, args)
			}
			return nil, runtime.Errorf(runtime.ErrUndefinedVariable, "undefined variable '%s'", name)
		}
		callee = val
	} else {
		callee, err = i.evaluate(prog, calleeNode, scope)
		if err != nil {
			return nil, err
		}
	}

	switch fn := callee.(type) {
	case *runtime.FunctionValue:
		return i.callFunction(fn, args)
	case *runtime.ClassValue:
		return i.construct(fn, args)
	case *runtime.ArrayValue:
		var val runtime.Value = fn
		for _, index := range args {
			if val, err = indexArray(val, index); err != nil {
				return nil, err
			}
		}
		return val, nil
	default:
		return nil, runtime.Errorf(runtime.ErrNotAFunction, "%s is not a function", describeCallee(prog, calleeNode, callee))
	}
}

func describeCallee(prog *ast.Program, node ast.NodeID, val runtime.Value) string {
	if prog.Is(node, ast.KindIdentifierLiteral) {
		return "'" + prog.Text(node) + "'"
	}
	return val.Kind().String()
}

// callFunction invokes fn in a fresh scope whose parent is the function's
// closure.
func (i *Interpreter) callFunction(fn *runtime.FunctionValue, args []runtime.Value) (runtime.Value, error) {
	return i.callFunctionIn(fn, args, runtime.NewScope(fn.Closure))
}

// callFunctionIn binds the parameters and the __arguments__ array in
// callScope and runs the body there. Extra arguments are allowed.
func (i *Interpreter) callFunctionIn(fn *runtime.FunctionValue, args []runtime.Value, callScope *runtime.Scope) (runtime.Value, error) {
	if len(args) < len(fn.Params) {
		name := fn.Name
		if name == "" {
			name = "<anonymous>"
		}
		return nil, runtime.Errorf(runtime.ErrArity, "%s expected %d argument(s), got %d", name, len(fn.Params), len(args))
	}
	for idx, param := range fn.Params {
		if err := callScope.Declare(param, args[idx]); err != nil {
			return nil, err
		}
	}
	all := append([]runtime.Value(nil), args...)
	if err := callScope.Declare("__arguments__", runtime.NewArray(all...)); err != nil {
		return nil, err
	}
	return i.evaluateBlock(fn.Program, fn.Body(), callScope)
}

// construct builds an object: the class body runs in a new instance scope,
// the constructor (if any) is called with that scope as its call scope, and
// the scope is locked afterwards.
func (i *Interpreter) construct(class *runtime.ClassValue, args []runtime.Value) (runtime.Value, error) {
	instance := runtime.NewScope(class.Closure)
	obj := &runtime.ObjectValue{Class: class, Scope: instance}
	if err := instance.Declare("self", obj); err != nil {
		return nil, err
	}
	if _, err := i.evaluateBlock(class.Program, class.Body(), instance); err != nil {
		return nil, err
	}
	if ctor, ok := instance.Get("constructor"); ok {
		fn, isFn := ctor.(*runtime.FunctionValue)
		if !isFn {
			return nil, runtime.Errorf(runtime.ErrNotAFunction, "constructor of %s is not a function", class.Name)
		}
		if _, err := i.callFunctionIn(fn, args, instance); err != nil {
			return nil, err
		}
	}
	instance.Lock()
	instance.Delete("constructor")
	instance.Delete("__arguments__")
	return obj, nil
}

// evaluateAssignment writes through the scope chain for identifiers and into
// the instance scope for member targets.
func (i *Interpreter) evaluateAssignment(prog *ast.Program, id ast.NodeID, scope *runtime.Scope) (runtime.Value, error) {
	val, err := i.evaluate(prog, prog.Right(id), scope)
	if err != nil {
		return nil, err
	}
	target := prog.Left(id)
	switch prog.Kind(target) {
	case ast.KindIdentifierLiteral:
		if err := scope.Write(prog.Text(target), val); err != nil {
			return nil, err
		}
		return val, nil
	case ast.KindMemberExpression:
		obj, name, err := i.memberTarget(prog, target, scope)
		if err != nil {
			return nil, err
		}
		if err := obj.Scope.Set(name, val); err != nil {
			return nil, err
		}
		return val, nil
	}
	return nil, runtime.Errorf(runtime.ErrInvalidType, "cannot assign to %s", prog.Kind(target))
}

// evaluateArrayIndexWrite resolves every index before touching the array, so
// a failing index leaves the array unchanged.
func (i *Interpreter) evaluateArrayIndexWrite(prog *ast.Program, id ast.NodeID, scope *runtime.Scope) (runtime.Value, error) {
	indices, err := i.evaluateList(prog, prog.Child(id, 1), scope)
	if err != nil {
		return nil, err
	}
	val, err := i.evaluate(prog, prog.Child(id, 2), scope)
	if err != nil {
		return nil, err
	}
	base, err := i.evaluate(prog, prog.Child(id, 0), scope)
	if err != nil {
		return nil, err
	}

	current := base
	for n, index := range indices {
		arr, ok := current.(*runtime.ArrayValue)
		if !ok {
			return nil, runtime.Errorf(runtime.ErrNotAnArray, "cannot index %s", current.Kind())
		}
		idx, err := arrayIndex(index, len(arr.Elements))
		if err != nil {
			return nil, err
		}
		if n == len(indices)-1 {
			arr.Elements[idx] = val
			break
		}
		current = arr.Elements[idx]
	}
	return val, nil
}
