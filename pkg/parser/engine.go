package parser

import (
	"github.com/charly-lang/charly/pkg/ast"
	"github.com/charly-lang/charly/pkg/lexer"
)

// cursor is the parse position threaded through every production: the index
// of the next token and the node new children are appended to. Productions
// never move a cursor they were handed; they return a new one on success.
type cursor struct {
	pos  int
	node ast.NodeID
}

// production tries to match at c. On failure the returned cursor is c and
// c.node is unchanged.
type production func(c cursor) (cursor, bool)

// sequence is one alternative: every production must match in order.
type sequence []production

type memoKey struct {
	rule string
	pos  int
}

type memoEntry struct {
	ok   bool
	end  int
	node ast.NodeID
}

// skip returns the index of the first significant token at or after pos.
func (p *Parser) skip(pos int) int {
	for pos < len(p.tokens) && p.tokens[pos].Skippable() {
		pos++
	}
	return pos
}

func (p *Parser) locationAt(pos int) ast.Location {
	pos = p.skip(pos)
	if pos < len(p.tokens) {
		return p.tokens[pos].Location
	}
	if len(p.tokens) > 0 {
		return p.tokens[len(p.tokens)-1].Location
	}
	return ast.Location{Filename: p.prog.File.Filename, Line: 1}
}

// term consumes the next significant token if it has the given kind and,
// when literal is non-empty, exactly that text. The matching terminal node
// is appended to the current node.
func (p *Parser) term(kind lexer.Kind, literal string) production {
	return func(c cursor) (cursor, bool) {
		i := p.skip(c.pos)
		if i >= len(p.tokens) {
			return c, false
		}
		if i > p.furthest {
			p.furthest = i
		}
		tok := p.tokens[i]
		if tok.Kind != kind || (literal != "" && tok.Text != literal) {
			return c, false
		}
		p.prog.Append(c.node, p.terminal(tok))
		return cursor{pos: i + 1, node: c.node}, true
	}
}

// checkEach tries the alternatives in order, each against a fresh Temporary
// node. The first alternative that matches completely has its children moved
// into the current node; the others leave no trace.
func (p *Parser) checkEach(alternatives ...sequence) production {
	return func(c cursor) (cursor, bool) {
		for _, alt := range alternatives {
			tmp := p.prog.New(ast.KindTemporary, p.locationAt(c.pos))
			end, ok := p.run(alt, cursor{pos: c.pos, node: tmp})
			if !ok {
				continue
			}
			p.prog.MoveChildren(tmp, c.node)
			return cursor{pos: end.pos, node: c.node}, true
		}
		return c, false
	}
}

// nodeProduction wraps whatever the alternatives match in a new node of kind
// and attaches it to the current node.
func (p *Parser) nodeProduction(kind ast.NodeKind, alternatives ...sequence) production {
	choice := p.checkEach(alternatives...)
	return func(c cursor) (cursor, bool) {
		n := p.prog.New(kind, p.locationAt(c.pos))
		end, ok := choice(cursor{pos: c.pos, node: n})
		if !ok {
			return c, false
		}
		p.prog.Append(c.node, n)
		return cursor{pos: end.pos, node: c.node}, true
	}
}

func (p *Parser) run(seq sequence, c cursor) (cursor, bool) {
	for _, prod := range seq {
		next, ok := prod(c)
		if !ok {
			return c, false
		}
		c = next
	}
	return c, true
}

// many matches seq zero or more times. It always succeeds.
func (p *Parser) many(seq ...production) production {
	once := p.checkEach(sequence(seq))
	return func(c cursor) (cursor, bool) {
		for {
			next, ok := once(c)
			if !ok || next.pos == c.pos {
				return c, true
			}
			c = next
		}
	}
}

func (p *Parser) optional(prod production) production {
	return func(c cursor) (cursor, bool) {
		if next, ok := prod(c); ok {
			return next, true
		}
		return c, true
	}
}

// memoized caches the outcome of a production that appends exactly one node.
// A cached subtree is re-attached to whichever node asks for it next, so each
// rule is parsed at most once per token position.
func (p *Parser) memoized(rule string, prod production) production {
	return func(c cursor) (cursor, bool) {
		key := memoKey{rule: rule, pos: c.pos}
		if m, ok := p.memo[key]; ok {
			if !m.ok {
				return c, false
			}
			p.prog.Append(c.node, m.node)
			return cursor{pos: m.end, node: c.node}, true
		}
		holder := p.prog.New(ast.KindTemporary, p.locationAt(c.pos))
		end, ok := prod(cursor{pos: c.pos, node: holder})
		if !ok {
			p.memo[key] = memoEntry{}
			return c, false
		}
		node := p.prog.Child(holder, 0)
		p.memo[key] = memoEntry{ok: true, end: end.pos, node: node}
		p.prog.Append(c.node, node)
		return cursor{pos: end.pos, node: c.node}, true
	}
}

var terminalKinds = map[lexer.Kind]ast.NodeKind{
	lexer.Keyword:      ast.KindKeywordLiteral,
	lexer.Null:         ast.KindNullLiteral,
	lexer.Numeric:      ast.KindNumericLiteral,
	lexer.String:       ast.KindStringLiteral,
	lexer.Boolean:      ast.KindBooleanLiteral,
	lexer.Identifier:   ast.KindIdentifierLiteral,
	lexer.Assignment:   ast.KindAssignment,
	lexer.Operator:     ast.KindOperator,
	lexer.Comparator:   ast.KindComparator,
	lexer.Semicolon:    ast.KindSemicolon,
	lexer.Comma:        ast.KindComma,
	lexer.Dot:          ast.KindDot,
	lexer.LeftParen:    ast.KindLeftParen,
	lexer.RightParen:   ast.KindRightParen,
	lexer.LeftCurly:    ast.KindLeftCurly,
	lexer.RightCurly:   ast.KindRightCurly,
	lexer.LeftBracket:  ast.KindLeftBracket,
	lexer.RightBracket: ast.KindRightBracket,
}

func (p *Parser) terminal(tok lexer.Token) ast.NodeID {
	text := tok.Text
	if tok.Kind == lexer.String {
		text = lexer.Unquote(text)
	}
	return p.prog.NewTerminal(terminalKinds[tok.Kind], text, tok.Location)
}
