// Package optimizer normalises the raw parse tree into the semantic node
// shapes the interpreter evaluates. It runs two fixpoint passes in sequence:
// structure (strip punctuation, collapse wrappers, coerce numbers, fix
// associativity) and then grouping (recognise fixed child sequences and
// replace them with semantic nodes).
package optimizer

import (
	"strconv"

	"github.com/charly-lang/charly/pkg/ast"
)

type pass func(o *optimizer, id ast.NodeID)

type optimizer struct {
	prog    *ast.Program
	changed bool
}

// Optimize rewrites prog in place and returns it.
func Optimize(prog *ast.Program) *ast.Program {
	if prog == nil {
		return nil
	}
	o := &optimizer{prog: prog}
	o.fixpoint((*optimizer).structure)
	o.fixpoint((*optimizer).group)
	return prog
}

// Structure runs only the structure pass to its fixpoint.
func Structure(prog *ast.Program) *ast.Program {
	o := &optimizer{prog: prog}
	o.fixpoint((*optimizer).structure)
	return prog
}

func (o *optimizer) fixpoint(fn pass) {
	for {
		o.changed = false
		o.walk(o.prog.Root(), fn)
		if !o.changed {
			return
		}
	}
}

// walk applies fn to every node bottom-up. Children are snapshotted first
// because fn may replace or remove nodes.
func (o *optimizer) walk(id ast.NodeID, fn pass) {
	children := append([]ast.NodeID(nil), o.prog.Children(id)...)
	for _, c := range children {
		o.walk(c, fn)
	}
	if id != o.prog.Root() {
		fn(o, id)
	}
}

// replace swaps id for a new node of kind with the given children, keeping
// id's position and parent.
func (o *optimizer) replace(id ast.NodeID, kind ast.NodeKind, text string, children ...ast.NodeID) ast.NodeID {
	n := o.prog.New(kind, o.prog.Location(id))
	o.prog.Node(n).Text = text
	o.prog.SetChildren(n, children)
	o.prog.Replace(id, n)
	o.changed = true
	return n
}

func (o *optimizer) collapse(id, into ast.NodeID) {
	o.prog.Replace(id, into)
	o.changed = true
}

func (o *optimizer) structure(id ast.NodeID) {
	n := o.prog.Node(id)
	children := n.Children

	switch n.Kind {
	case ast.KindNumericLiteral:
		if !n.Coerced {
			n.Number, _ = strconv.ParseFloat(n.Text, 64)
			n.Coerced = true
			o.changed = true
		}

	case ast.KindComma, ast.KindSemicolon:
		o.prog.Remove(id)
		o.changed = true

	case ast.KindExpression:
		switch {
		case len(children) == 1:
			o.collapse(id, children[0])
		case len(children) == 3 && o.prog.Is(children[0], ast.KindLeftParen) && o.prog.Is(children[2], ast.KindRightParen):
			o.collapse(id, children[1])
		case o.isOperatorChain(children):
			o.associateLeft(id)
		}
	}
}

// isOperatorChain reports whether children is operand, op, operand, op, ...
// with at least two operators.
func (o *optimizer) isOperatorChain(children []ast.NodeID) bool {
	if len(children) < 5 || len(children)%2 == 0 {
		return false
	}
	for i, c := range children {
		isOp := o.prog.Is(c, ast.KindOperator)
		if isOp != (i%2 == 1) {
			return false
		}
	}
	return true
}

// associateLeft folds the first operand, operator, operand triple into its
// own Expression so that a - b + c groups as (a - b) + c.
func (o *optimizer) associateLeft(id ast.NodeID) {
	children := append([]ast.NodeID(nil), o.prog.Children(id)...)
	head := o.prog.New(ast.KindExpression, o.prog.Location(children[0]))
	o.prog.SetChildren(head, children[:3])
	o.prog.SetChildren(id, append([]ast.NodeID{head}, children[3:]...))
	o.changed = true
}
