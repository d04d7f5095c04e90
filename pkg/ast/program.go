package ast

// Diagnostic is a non-fatal finding recorded while building a Program.
type Diagnostic struct {
	Message  string
	Location Location
}

// Program owns every node of one parsed file. Node IDs index into the arena;
// the root node (ID 0) has kind Program and is its own parent.
type Program struct {
	File          *File
	ShouldExecute bool
	Diagnostics   []Diagnostic

	nodes []Node
}

const RootID NodeID = 0

func NewProgram(file *File) *Program {
	if file == nil {
		file = &File{}
	}
	p := &Program{File: file, ShouldExecute: true}
	p.nodes = append(p.nodes, Node{Kind: KindProgram, Parent: RootID, Location: Location{Filename: file.Filename, Line: 1}})
	return p
}

func (p *Program) Root() NodeID { return RootID }

// Len returns the number of allocated nodes, reachable or not.
func (p *Program) Len() int { return len(p.nodes) }

func (p *Program) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(p.nodes) {
		return nil
	}
	return &p.nodes[id]
}

func (p *Program) Kind(id NodeID) NodeKind {
	if n := p.Node(id); n != nil {
		return n.Kind
	}
	return ""
}

func (p *Program) Is(id NodeID, kinds ...NodeKind) bool {
	k := p.Kind(id)
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

func (p *Program) Parent(id NodeID) NodeID {
	if n := p.Node(id); n != nil {
		return n.Parent
	}
	return NoNode
}

func (p *Program) Children(id NodeID) []NodeID {
	if n := p.Node(id); n != nil {
		return n.Children
	}
	return nil
}

// Child returns the i-th child of id, or NoNode when out of range.
func (p *Program) Child(id NodeID, i int) NodeID {
	children := p.Children(id)
	if i < 0 || i >= len(children) {
		return NoNode
	}
	return children[i]
}

func (p *Program) Text(id NodeID) string {
	if n := p.Node(id); n != nil {
		return n.Text
	}
	return ""
}

func (p *Program) Location(id NodeID) Location {
	if n := p.Node(id); n != nil {
		return n.Location
	}
	return Location{}
}

// New allocates a detached node.
func (p *Program) New(kind NodeKind, loc Location) NodeID {
	id := NodeID(len(p.nodes))
	p.nodes = append(p.nodes, Node{Kind: kind, Parent: NoNode, Location: loc})
	return id
}

// NewTerminal allocates a detached node carrying token text.
func (p *Program) NewTerminal(kind NodeKind, text string, loc Location) NodeID {
	id := p.New(kind, loc)
	p.nodes[id].Text = text
	return id
}

// Append attaches child as the last child of parent. A child that is still
// attached elsewhere is detached first so no node has two parents.
func (p *Program) Append(parent, child NodeID) {
	p.detach(child)
	p.nodes[parent].Children = append(p.nodes[parent].Children, child)
	p.nodes[child].Parent = parent
}

// SetChildren replaces the child list of id and re-points each new child at it.
func (p *Program) SetChildren(id NodeID, children []NodeID) {
	for _, c := range children {
		if p.nodes[c].Parent != id {
			p.detach(c)
		}
	}
	p.nodes[id].Children = append([]NodeID(nil), children...)
	for _, c := range children {
		p.nodes[c].Parent = id
	}
}

// Replace puts replacement in the position old occupies in its parent. The
// replacement's parent becomes old's former parent; old is left detached.
func (p *Program) Replace(old, replacement NodeID) {
	parent := p.nodes[old].Parent
	if parent == NoNode || old == replacement {
		return
	}
	if p.nodes[replacement].Parent != NoNode && p.nodes[replacement].Parent != old {
		p.detach(replacement)
	}
	siblings := p.nodes[parent].Children
	for i, c := range siblings {
		if c == old {
			siblings[i] = replacement
			break
		}
	}
	p.nodes[replacement].Parent = parent
	if p.nodes[old].Parent == parent {
		p.nodes[old].Parent = NoNode
	}
}

// Remove detaches id from its parent.
func (p *Program) Remove(id NodeID) {
	p.detach(id)
}

// MoveChildren appends every child of from to to, leaving from empty.
func (p *Program) MoveChildren(from, to NodeID) {
	moved := p.nodes[from].Children
	p.nodes[from].Children = nil
	for _, c := range moved {
		p.nodes[c].Parent = NoNode
		p.Append(to, c)
	}
}

func (p *Program) detach(id NodeID) {
	parent := p.nodes[id].Parent
	if parent == NoNode || parent == id {
		return
	}
	siblings := p.nodes[parent].Children
	for i, c := range siblings {
		if c == id {
			p.nodes[parent].Children = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
	p.nodes[id].Parent = NoNode
}

// Walk visits id and its descendants depth-first, parents before children.
// Returning false from fn skips the node's children.
func (p *Program) Walk(id NodeID, fn func(NodeID) bool) {
	if !fn(id) {
		return
	}
	for _, c := range p.Children(id) {
		p.Walk(c, fn)
	}
}
