package parser

import (
	"github.com/charly-lang/charly/pkg/ast"
	"github.com/charly-lang/charly/pkg/lexer"
)

// grammar holds the productions of the language. Alternatives are tried in
// order, so the order inside each nodeProduction encodes precedence:
//
//	Block      := Statement*
//	Statement  := If | While | func id ( Args ) { Block } ;? | Class ;? | let id = E ; | let id ; | E ; | Function ;?
//	If         := if ( E ) { Block } [else If | else { Block }]
//	E          := Postfix = E | C
//	C          := A cmp A | A
//	A          := M ((+|-) M)*
//	M          := P ((*|/|%) P)*
//	P          := Postfix ** P | Postfix
//	Postfix    := Primary ( ( List ) | [ E ] | . id )*
//	Primary    := ( E ) | Function | Class | [ List ] | number | string | bool | null | id
type grammar struct {
	block          production
	statement      production
	ifStatement    production
	expression     production
	comparison     production
	additive       production
	multiplicative production
	power          production
	postfix        production
	primary        production
	function       production
	class          production
	array          production
	expressionList production
	argumentList   production
}

func ref(target *production) production {
	return func(c cursor) (cursor, bool) { return (*target)(c) }
}

func (p *Parser) buildGrammar() {
	g := &p.g
	kw := func(word string) production { return p.term(lexer.Keyword, word) }
	punct := func(kind lexer.Kind) production { return p.term(kind, "") }
	op := func(text string) production { return p.term(lexer.Operator, text) }
	ident := punct(lexer.Identifier)
	semicolon := punct(lexer.Semicolon)

	block, statement, ifStatement := ref(&g.block), ref(&g.statement), ref(&g.ifStatement)
	expression, comparison := ref(&g.expression), ref(&g.comparison)
	additive, multiplicative, power := ref(&g.additive), ref(&g.multiplicative), ref(&g.power)
	postfix, primary := ref(&g.postfix), ref(&g.primary)
	function, class, array := ref(&g.function), ref(&g.class), ref(&g.array)
	expressionList, argumentList := ref(&g.expressionList), ref(&g.argumentList)

	braced := sequence{punct(lexer.LeftCurly), block, punct(lexer.RightCurly)}

	g.block = p.nodeProduction(ast.KindBlock, sequence{p.many(statement)})

	ifHead := append(sequence{kw("if"), punct(lexer.LeftParen), expression, punct(lexer.RightParen)}, braced...)
	elseBranch := p.optional(p.checkEach(
		sequence{kw("else"), ifStatement},
		append(sequence{kw("else")}, braced...),
	))
	ifSeq := append(ifHead, elseBranch)
	g.ifStatement = p.nodeProduction(ast.KindStatement, ifSeq)

	// Named definitions are tried first: a "(...)" or "[...]" after one
	// starts the next statement.
	namedFunction := p.nodeProduction(ast.KindExpression,
		append(sequence{kw("func"), ident, punct(lexer.LeftParen), argumentList, punct(lexer.RightParen)}, braced...),
	)

	g.statement = p.nodeProduction(ast.KindStatement,
		ifSeq,
		append(sequence{kw("while"), punct(lexer.LeftParen), expression, punct(lexer.RightParen)}, braced...),
		sequence{namedFunction, p.optional(semicolon)},
		sequence{class, p.optional(semicolon)},
		sequence{kw("let"), ident, punct(lexer.Assignment), expression, semicolon},
		sequence{kw("let"), ident, semicolon},
		sequence{expression, semicolon},
		sequence{function, p.optional(semicolon)},
	)

	g.expression = p.memoized("expression", p.nodeProduction(ast.KindExpression,
		sequence{postfix, punct(lexer.Assignment), expression},
		sequence{comparison},
	))

	g.comparison = p.nodeProduction(ast.KindExpression,
		sequence{additive, punct(lexer.Comparator), additive},
		sequence{additive},
	)

	addOp := p.checkEach(sequence{op("+")}, sequence{op("-")})
	g.additive = p.nodeProduction(ast.KindExpression,
		sequence{multiplicative, p.many(addOp, multiplicative)},
	)

	mulOp := p.checkEach(sequence{op("*")}, sequence{op("/")}, sequence{op("%")})
	g.multiplicative = p.nodeProduction(ast.KindExpression,
		sequence{power, p.many(mulOp, power)},
	)

	g.power = p.nodeProduction(ast.KindExpression,
		sequence{postfix, op("**"), power},
		sequence{postfix},
	)

	suffix := p.checkEach(
		sequence{punct(lexer.LeftParen), expressionList, punct(lexer.RightParen)},
		sequence{punct(lexer.LeftBracket), expression, punct(lexer.RightBracket)},
		sequence{punct(lexer.Dot), ident},
	)
	g.postfix = p.memoized("postfix", func(c cursor) (cursor, bool) {
		holder := p.prog.New(ast.KindTemporary, p.locationAt(c.pos))
		cur, ok := primary(cursor{pos: c.pos, node: holder})
		if !ok {
			return c, false
		}
		target := p.prog.Child(holder, 0)
		for {
			parts := p.prog.New(ast.KindTemporary, p.locationAt(cur.pos))
			next, ok := suffix(cursor{pos: cur.pos, node: parts})
			if !ok {
				break
			}
			wrapped := p.prog.New(ast.KindExpression, p.prog.Location(target))
			p.prog.Append(wrapped, target)
			p.prog.MoveChildren(parts, wrapped)
			target, cur.pos = wrapped, next.pos
		}
		p.prog.Append(c.node, target)
		return cursor{pos: cur.pos, node: c.node}, true
	})

	g.primary = p.checkEach(
		sequence{p.nodeProduction(ast.KindExpression,
			sequence{punct(lexer.LeftParen), expression, punct(lexer.RightParen)})},
		sequence{function},
		sequence{class},
		sequence{array},
		sequence{punct(lexer.Numeric)},
		sequence{punct(lexer.String)},
		sequence{punct(lexer.Boolean)},
		sequence{punct(lexer.Null)},
		sequence{ident},
	)

	g.function = p.memoized("function", p.nodeProduction(ast.KindExpression,
		append(sequence{kw("func"), p.optional(ident), punct(lexer.LeftParen), argumentList, punct(lexer.RightParen)}, braced...),
	))

	g.class = p.memoized("class", p.nodeProduction(ast.KindExpression,
		append(sequence{kw("class"), ident}, braced...),
	))

	g.array = p.nodeProduction(ast.KindArrayLiteral,
		sequence{punct(lexer.LeftBracket), expressionList, punct(lexer.RightBracket)},
	)

	g.expressionList = p.nodeProduction(ast.KindExpressionList,
		sequence{expression, p.many(punct(lexer.Comma), expression)},
		sequence{},
	)

	g.argumentList = p.nodeProduction(ast.KindArgumentList,
		sequence{ident, p.many(punct(lexer.Comma), ident)},
		sequence{},
	)
}
