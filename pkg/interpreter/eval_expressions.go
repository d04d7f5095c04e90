package interpreter

import (
	"math"

	"github.com/charly-lang/charly/pkg/ast"
	"github.com/charly-lang/charly/pkg/runtime"
)

// evaluate is the single dispatch point over optimized node kinds.
func (i *Interpreter) evaluate(prog *ast.Program, id ast.NodeID, scope *runtime.Scope) (runtime.Value, error) {
	val, err := i.dispatch(prog, id, scope)
	if err != nil {
		return nil, locate(prog, id, err)
	}
	return val, nil
}

func (i *Interpreter) dispatch(prog *ast.Program, id ast.NodeID, scope *runtime.Scope) (runtime.Value, error) {
	n := prog.Node(id)
	if n == nil {
		return runtime.Null, nil
	}
	switch n.Kind {
	case ast.KindVariableInitialisation:
		return i.evaluateVariableInitialisation(prog, id, scope)
	case ast.KindVariableDeclaration:
		return i.evaluateVariableDeclaration(prog, id, scope)
	case ast.KindVariableAssignment:
		return i.evaluateAssignment(prog, id, scope)
	case ast.KindArrayIndexWrite:
		return i.evaluateArrayIndexWrite(prog, id, scope)
	case ast.KindBinaryExpression:
		return i.evaluateBinaryExpression(prog, id, scope)
	case ast.KindComparisonExpression:
		return i.evaluateComparisonExpression(prog, id, scope)
	case ast.KindFunctionDefinitionExpression:
		return i.evaluateFunctionDefinition(prog, id, scope)
	case ast.KindClassDefinition:
		return i.evaluateClassDefinition(prog, id, scope)
	case ast.KindCallExpression:
		return i.evaluateCallExpression(prog, id, scope)
	case ast.KindMemberExpression:
		return i.evaluateMemberExpression(prog, id, scope)
	case ast.KindArrayIndexExpression:
		return i.evaluateIndexExpression(prog, id, scope)
	case ast.KindWhileStatement:
		return i.evaluateWhileStatement(prog, id, scope)
	case ast.KindIfStatement:
		return i.evaluateIfStatement(prog, id, scope)
	case ast.KindBlock:
		return i.evaluateBlock(prog, id, runtime.NewScope(scope))
	case ast.KindNumericLiteral:
		return runtime.NumericValue{Val: n.Number}, nil
	case ast.KindStringLiteral:
		return runtime.StringValue{Val: n.Text}, nil
	case ast.KindBooleanLiteral:
		return runtime.BooleanValue{Val: n.Text == "true"}, nil
	case ast.KindNullLiteral:
		return runtime.Null, nil
	case ast.KindIdentifierLiteral:
		return scope.Read(n.Text)
	case ast.KindArrayLiteral:
		return i.evaluateArrayLiteral(prog, id, scope)
	case ast.KindFunctionLiteral:
		return newFunction(prog, id, scope), nil
	case ast.KindClassLiteral:
		return newClass(prog, id, scope), nil
	default:
		return nil, runtime.Errorf(runtime.ErrInvalidType, "cannot evaluate %s node", n.Kind)
	}
}

func (i *Interpreter) evaluateList(prog *ast.Program, list ast.NodeID, scope *runtime.Scope) ([]runtime.Value, error) {
	items := prog.ListItems(list)
	values := make([]runtime.Value, 0, len(items))
	for _, item := range items {
		val, err := i.evaluate(prog, item, scope)
		if err != nil {
			return nil, err
		}
		values = append(values, val)
	}
	return values, nil
}

func (i *Interpreter) evaluateArrayLiteral(prog *ast.Program, id ast.NodeID, scope *runtime.Scope) (runtime.Value, error) {
	values, err := i.evaluateList(prog, prog.Child(id, 0), scope)
	if err != nil {
		return nil, err
	}
	return runtime.NewArray(values...), nil
}

func (i *Interpreter) evaluateBinaryExpression(prog *ast.Program, id ast.NodeID, scope *runtime.Scope) (runtime.Value, error) {
	left, err := i.evaluate(prog, prog.Left(id), scope)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluate(prog, prog.Right(id), scope)
	if err != nil {
		return nil, err
	}
	return runtime.Binary(prog.Operator(id), left, right)
}

func (i *Interpreter) evaluateComparisonExpression(prog *ast.Program, id ast.NodeID, scope *runtime.Scope) (runtime.Value, error) {
	left, err := i.evaluate(prog, prog.Left(id), scope)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluate(prog, prog.Right(id), scope)
	if err != nil {
		return nil, err
	}
	return runtime.Compare(prog.Operator(id), left, right)
}

// evaluateMemberExpression reads a binding of an object's own instance scope.
// Missing members read as null.
func (i *Interpreter) evaluateMemberExpression(prog *ast.Program, id ast.NodeID, scope *runtime.Scope) (runtime.Value, error) {
	obj, name, err := i.memberTarget(prog, id, scope)
	if err != nil {
		return nil, err
	}
	if val, ok := obj.Scope.Get(name); ok {
		return val, nil
	}
	return runtime.Null, nil
}

func (i *Interpreter) memberTarget(prog *ast.Program, id ast.NodeID, scope *runtime.Scope) (*runtime.ObjectValue, string, error) {
	target, err := i.evaluate(prog, prog.Left(id), scope)
	if err != nil {
		return nil, "", err
	}
	name := prog.Text(prog.Right(id))
	obj, ok := target.(*runtime.ObjectValue)
	if !ok {
		return nil, "", runtime.Errorf(runtime.ErrNotAnObject, "cannot access '%s' of %s", name, target.Kind())
	}
	return obj, name, nil
}

func (i *Interpreter) evaluateIndexExpression(prog *ast.Program, id ast.NodeID, scope *runtime.Scope) (runtime.Value, error) {
	target, err := i.evaluate(prog, prog.Left(id), scope)
	if err != nil {
		return nil, err
	}
	index, err := i.evaluate(prog, prog.Right(id), scope)
	if err != nil {
		return nil, err
	}
	return indexArray(target, index)
}

// indexArray reads target[index] with bounds checking.
func indexArray(target, index runtime.Value) (runtime.Value, error) {
	arr, ok := target.(*runtime.ArrayValue)
	if !ok {
		return nil, runtime.Errorf(runtime.ErrNotAnArray, "cannot index %s", target.Kind())
	}
	idx, err := arrayIndex(index, len(arr.Elements))
	if err != nil {
		return nil, err
	}
	return arr.Elements[idx], nil
}

func arrayIndex(index runtime.Value, length int) (int, error) {
	num, ok := index.(runtime.NumericValue)
	if !ok {
		return 0, runtime.Errorf(runtime.ErrInvalidType, "array index must be Numeric, got %s", index.Kind())
	}
	if num.Val != math.Trunc(num.Val) {
		return 0, runtime.Errorf(runtime.ErrInvalidType, "array index %s is not an integer", runtime.FormatNumber(num.Val))
	}
	if num.Val < 0 || num.Val >= float64(length) {
		return 0, runtime.Errorf(runtime.ErrIndexOutOfBounds, "array index %s is out of bounds (length %d)", runtime.FormatNumber(num.Val), length)
	}
	return int(num.Val), nil
}
