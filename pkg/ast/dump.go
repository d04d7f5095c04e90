package ast

import "strconv"

// DumpNode is a serialisable snapshot of a subtree used by the --ast output.
type DumpNode struct {
	Kind     NodeKind   `yaml:"kind"`
	Text     string     `yaml:"text,omitempty"`
	Line     int        `yaml:"line,omitempty"`
	Children []DumpNode `yaml:"children,omitempty"`
}

func (p *Program) Dump(id NodeID) DumpNode {
	n := p.Node(id)
	if n == nil {
		return DumpNode{}
	}
	out := DumpNode{Kind: n.Kind, Text: n.Text, Line: n.Location.Line}
	if n.Kind == KindNumericLiteral && n.Coerced {
		out.Text = strconv.FormatFloat(n.Number, 'g', -1, 64)
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, p.Dump(c))
	}
	return out
}
