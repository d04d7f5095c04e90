package interpreter

import (
	"github.com/charly-lang/charly/pkg/ast"
	"github.com/charly-lang/charly/pkg/runtime"
)

// evaluateBlock runs the statements of a block in scope and yields the
// value of the last one.
func (i *Interpreter) evaluateBlock(prog *ast.Program, block ast.NodeID, scope *runtime.Scope) (runtime.Value, error) {
	var last runtime.Value = runtime.Null
	for _, stmt := range prog.Children(block) {
		val, err := i.evaluate(prog, stmt, scope)
		if err != nil {
			return nil, err
		}
		last = val
	}
	return last, nil
}

func (i *Interpreter) evaluateVariableInitialisation(prog *ast.Program, id ast.NodeID, scope *runtime.Scope) (runtime.Value, error) {
	val, err := i.evaluate(prog, prog.Child(id, 1), scope)
	if err != nil {
		return nil, err
	}
	if err := scope.Declare(prog.Text(prog.Child(id, 0)), val); err != nil {
		return nil, err
	}
	return val, nil
}

func (i *Interpreter) evaluateVariableDeclaration(prog *ast.Program, id ast.NodeID, scope *runtime.Scope) (runtime.Value, error) {
	if err := scope.Declare(prog.Text(prog.Child(id, 0)), runtime.Null); err != nil {
		return nil, err
	}
	return runtime.Null, nil
}

func (i *Interpreter) evaluateWhileStatement(prog *ast.Program, id ast.NodeID, scope *runtime.Scope) (runtime.Value, error) {
	var last runtime.Value = runtime.Null
	for {
		test, err := i.evaluate(prog, prog.Test(id), scope)
		if err != nil {
			return nil, err
		}
		if !runtime.Truthy(test) {
			return last, nil
		}
		last, err = i.evaluateBlock(prog, prog.Consequent(id), runtime.NewScope(scope))
		if err != nil {
			return nil, err
		}
	}
}

func (i *Interpreter) evaluateIfStatement(prog *ast.Program, id ast.NodeID, scope *runtime.Scope) (runtime.Value, error) {
	test, err := i.evaluate(prog, prog.Test(id), scope)
	if err != nil {
		return nil, err
	}
	if runtime.Truthy(test) {
		return i.evaluateBlock(prog, prog.Consequent(id), runtime.NewScope(scope))
	}
	alt := prog.Alternate(id)
	switch prog.Kind(alt) {
	case ast.KindIfStatement:
		return i.evaluateIfStatement(prog, alt, scope)
	case ast.KindBlock:
		return i.evaluateBlock(prog, alt, runtime.NewScope(scope))
	}
	return runtime.Null, nil
}

func (i *Interpreter) evaluateFunctionDefinition(prog *ast.Program, id ast.NodeID, scope *runtime.Scope) (runtime.Value, error) {
	fn := newFunction(prog, prog.Child(id, 0), scope)
	if fn.Name == "" {
		return runtime.Null, nil
	}
	if err := scope.Declare(fn.Name, fn); err != nil {
		return nil, err
	}
	return fn, nil
}

func (i *Interpreter) evaluateClassDefinition(prog *ast.Program, id ast.NodeID, scope *runtime.Scope) (runtime.Value, error) {
	class := newClass(prog, prog.Child(id, 0), scope)
	if err := scope.Declare(class.Name, class); err != nil {
		return nil, err
	}
	return class, nil
}

func newFunction(prog *ast.Program, literal ast.NodeID, scope *runtime.Scope) *runtime.FunctionValue {
	return &runtime.FunctionValue{
		Name:    prog.Text(literal),
		Params:  prog.Parameters(literal),
		Program: prog,
		Node:    literal,
		Closure: scope,
	}
}

func newClass(prog *ast.Program, literal ast.NodeID, scope *runtime.Scope) *runtime.ClassValue {
	return &runtime.ClassValue{
		Name:    prog.Text(literal),
		Program: prog,
		Node:    literal,
		Closure: scope,
	}
}
