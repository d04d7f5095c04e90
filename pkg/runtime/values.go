package runtime

import (
	"fmt"

	"github.com/charly-lang/charly/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNull Kind = iota
	KindNumeric
	KindString
	KindBoolean
	KindArray
	KindFunction
	KindClass
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindNumeric:
		return "Numeric"
	case KindString:
		return "String"
	case KindBoolean:
		return "Boolean"
	case KindArray:
		return "Array"
	case KindFunction:
		return "Function"
	case KindClass:
		return "Class"
	case KindObject:
		return "Object"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

type NumericValue struct {
	Val float64
}

func (v NumericValue) Kind() Kind { return KindNumeric }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

type BooleanValue struct {
	Val bool
}

func (v BooleanValue) Kind() Kind { return KindBoolean }

var Null Value = NullValue{}

//-----------------------------------------------------------------------------
// Reference values
//-----------------------------------------------------------------------------

// ArrayValue is shared by every variable it is assigned to.
type ArrayValue struct {
	Elements []Value
}

func (v *ArrayValue) Kind() Kind { return KindArray }

func NewArray(elements ...Value) *ArrayValue {
	return &ArrayValue{Elements: elements}
}

// FunctionValue is a FunctionLiteral bound to the scope it was evaluated in.
type FunctionValue struct {
	Name    string
	Params  []string
	Program *ast.Program
	Node    ast.NodeID
	Closure *Scope
}

func (v *FunctionValue) Kind() Kind { return KindFunction }

func (v *FunctionValue) Body() ast.NodeID { return v.Program.Body(v.Node) }

// ClassValue is a ClassLiteral bound to the scope it was defined in.
type ClassValue struct {
	Name    string
	Program *ast.Program
	Node    ast.NodeID
	Closure *Scope
}

func (v *ClassValue) Kind() Kind { return KindClass }

func (v *ClassValue) Body() ast.NodeID { return v.Program.Body(v.Node) }

// ObjectValue owns the locked instance scope its class body ran in.
type ObjectValue struct {
	Class *ClassValue
	Scope *Scope
}

func (v *ObjectValue) Kind() Kind { return KindObject }
