package parser

import (
	"strconv"
	"strings"
	"testing"

	"github.com/charly-lang/charly/pkg/ast"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := Parse(&ast.File{Content: src, Filename: "test.charly"})
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(prog.Diagnostics) > 0 {
		t.Fatalf("unexpected diagnostics: %v", prog.Diagnostics)
	}
	return prog
}

// sexpr renders the statements of a parsed program compactly, one per line.
func sexpr(prog *ast.Program) string {
	block := prog.Child(prog.Root(), 0)
	var lines []string
	for _, stmt := range prog.Children(block) {
		lines = append(lines, render(prog, stmt))
	}
	return strings.Join(lines, "\n")
}

func render(p *ast.Program, id ast.NodeID) string {
	n := p.Node(id)
	switch n.Kind {
	case ast.KindNumericLiteral:
		return strconv.FormatFloat(n.Number, 'g', -1, 64)
	case ast.KindStringLiteral:
		return strconv.Quote(n.Text)
	case ast.KindIdentifierLiteral, ast.KindBooleanLiteral:
		return n.Text
	case ast.KindNullLiteral:
		return "null"
	case ast.KindBinaryExpression, ast.KindComparisonExpression:
		return "(" + n.Text + " " + render(p, n.Children[0]) + " " + render(p, n.Children[1]) + ")"
	}
	parts := []string{string(n.Kind)}
	if n.Text != "" {
		parts = append(parts, n.Text)
	}
	for _, c := range n.Children {
		parts = append(parts, render(p, c))
	}
	return "(" + strings.Join(parts, " ") + ")"
}
