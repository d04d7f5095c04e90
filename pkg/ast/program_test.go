package ast

import "testing"

func TestNewProgramRootIsOwnParent(t *testing.T) {
	p := NewProgram(&File{Filename: "main.charly"})
	if p.Kind(p.Root()) != KindProgram {
		t.Fatalf("expected root kind Program, got %q", p.Kind(p.Root()))
	}
	if p.Parent(p.Root()) != p.Root() {
		t.Fatalf("expected root to be its own parent, got %d", p.Parent(p.Root()))
	}
	if !p.ShouldExecute {
		t.Fatalf("expected new program to be executable")
	}
}

func TestAppendDetachesFromPreviousParent(t *testing.T) {
	p := NewProgram(nil)
	a := p.New(KindTemporary, Location{})
	b := p.New(KindBlock, Location{})
	leaf := p.NewTerminal(KindIdentifierLiteral, "x", Location{Line: 3})

	p.Append(a, leaf)
	p.Append(b, leaf)

	if len(p.Children(a)) != 0 {
		t.Fatalf("expected leaf to be removed from first parent, got %v", p.Children(a))
	}
	if got := p.Children(b); len(got) != 1 || got[0] != leaf {
		t.Fatalf("unexpected children %v", got)
	}
	if p.Parent(leaf) != b {
		t.Fatalf("expected parent %d, got %d", b, p.Parent(leaf))
	}
}

func TestReplaceKeepsParentPointer(t *testing.T) {
	p := NewProgram(nil)
	block := p.New(KindBlock, Location{})
	p.Append(p.Root(), block)
	first := p.NewTerminal(KindNumericLiteral, "1", Location{})
	old := p.New(KindExpression, Location{})
	last := p.NewTerminal(KindNumericLiteral, "3", Location{})
	for _, c := range []NodeID{first, old, last} {
		p.Append(block, c)
	}
	inner := p.NewTerminal(KindNumericLiteral, "2", Location{})
	p.Append(old, inner)

	p.Replace(old, inner)

	got := p.Children(block)
	if len(got) != 3 || got[1] != inner {
		t.Fatalf("expected inner in the middle slot, got %v", got)
	}
	if p.Parent(inner) != block {
		t.Fatalf("expected replacement parent %d, got %d", block, p.Parent(inner))
	}
	if p.Parent(old) != NoNode {
		t.Fatalf("expected replaced node to be detached")
	}
}

func TestMoveChildren(t *testing.T) {
	p := NewProgram(nil)
	tmp := p.New(KindTemporary, Location{})
	target := p.New(KindExpression, Location{})
	x := p.NewTerminal(KindIdentifierLiteral, "x", Location{})
	y := p.NewTerminal(KindIdentifierLiteral, "y", Location{})
	p.Append(tmp, x)
	p.Append(tmp, y)

	p.MoveChildren(tmp, target)

	if len(p.Children(tmp)) != 0 {
		t.Fatalf("expected temporary to be empty")
	}
	got := p.Children(target)
	if len(got) != 2 || got[0] != x || got[1] != y {
		t.Fatalf("unexpected order %v", got)
	}
	for _, c := range got {
		if p.Parent(c) != target {
			t.Fatalf("child %d has parent %d", c, p.Parent(c))
		}
	}
}

func TestDumpUsesCoercedNumber(t *testing.T) {
	p := NewProgram(nil)
	n := p.NewTerminal(KindNumericLiteral, "2.50", Location{Line: 1})
	p.Node(n).Number = 2.5
	p.Node(n).Coerced = true
	p.Append(p.Root(), n)

	d := p.Dump(p.Root())
	if len(d.Children) != 1 || d.Children[0].Text != "2.5" {
		t.Fatalf("unexpected dump %#v", d)
	}
}
