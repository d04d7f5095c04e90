package optimizer

import "github.com/charly-lang/charly/pkg/ast"

func (o *optimizer) group(id ast.NodeID) {
	switch o.prog.Kind(id) {
	case ast.KindExpression:
		o.groupExpression(id)
	case ast.KindStatement:
		o.groupStatement(id)
	case ast.KindArrayLiteral:
		c := o.prog.Children(id)
		if len(c) == 3 && o.prog.Is(c[0], ast.KindLeftBracket) && o.prog.Is(c[1], ast.KindExpressionList) {
			o.prog.SetChildren(id, []ast.NodeID{c[1]})
			o.changed = true
		}
	}
}

func (o *optimizer) isOperand(id ast.NodeID) bool {
	k := o.prog.Kind(id)
	return k != "" && !k.IsTerminal() && k != ast.KindBlock && k != ast.KindStatement &&
		k != ast.KindExpressionList && k != ast.KindArgumentList
}

func (o *optimizer) isKeyword(id ast.NodeID, word string) bool {
	return o.prog.Is(id, ast.KindKeywordLiteral) && o.prog.Text(id) == word
}

func (o *optimizer) kinds(children []ast.NodeID, want ...ast.NodeKind) bool {
	if len(children) != len(want) {
		return false
	}
	for i, k := range want {
		if k != "" && !o.prog.Is(children[i], k) {
			return false
		}
	}
	return true
}

func (o *optimizer) groupExpression(id ast.NodeID) {
	p := o.prog
	c := append([]ast.NodeID(nil), p.Children(id)...)

	switch len(c) {
	case 3:
		left, middle, right := c[0], c[1], c[2]
		switch {
		case p.Is(middle, ast.KindOperator) && o.isOperand(left) && o.isOperand(right):
			o.replace(id, ast.KindBinaryExpression, p.Text(middle), left, right)
		case p.Is(middle, ast.KindComparator) && o.isOperand(left) && o.isOperand(right):
			o.replace(id, ast.KindComparisonExpression, p.Text(middle), left, right)
		case p.Is(middle, ast.KindAssignment) && o.isOperand(right):
			o.groupAssignment(id, left, right)
		case p.Is(middle, ast.KindDot) && o.isOperand(left) && p.Is(right, ast.KindIdentifierLiteral):
			o.replace(id, ast.KindMemberExpression, "", left, right)
		}

	case 4:
		switch {
		case o.isOperand(c[0]) && o.kinds(c[1:], ast.KindLeftParen, ast.KindExpressionList, ast.KindRightParen):
			o.replace(id, ast.KindCallExpression, "", c[0], c[2])
		case o.isOperand(c[0]) && o.kinds(c[1:], ast.KindLeftBracket, "", ast.KindRightBracket) && o.isOperand(c[2]):
			o.replace(id, ast.KindArrayIndexExpression, "", c[0], c[2])
		}

	case 5:
		if o.isKeyword(c[0], "class") &&
			o.kinds(c[1:], ast.KindIdentifierLiteral, ast.KindLeftCurly, ast.KindBlock, ast.KindRightCurly) {
			o.replace(id, ast.KindClassLiteral, p.Text(c[1]), c[3])
		}

	case 7, 8:
		if !o.isKeyword(c[0], "func") {
			return
		}
		name := ""
		rest := c[1:]
		if len(c) == 8 {
			if !p.Is(c[1], ast.KindIdentifierLiteral) {
				return
			}
			name, rest = p.Text(c[1]), c[2:]
		}
		if o.kinds(rest, ast.KindLeftParen, ast.KindArgumentList, ast.KindRightParen,
			ast.KindLeftCurly, ast.KindBlock, ast.KindRightCurly) {
			o.replace(id, ast.KindFunctionLiteral, name, rest[1], rest[4])
		}
	}
}

// groupAssignment handles target = value. Identifier and member targets
// become a VariableAssignment; an index chain a[i][j] becomes an
// ArrayIndexWrite on a with the index list [i, j].
func (o *optimizer) groupAssignment(id, target, value ast.NodeID) {
	p := o.prog
	switch p.Kind(target) {
	case ast.KindIdentifierLiteral, ast.KindMemberExpression:
		o.replace(id, ast.KindVariableAssignment, "", target, value)
	case ast.KindArrayIndexExpression:
		var indices []ast.NodeID
		base := target
		for p.Is(base, ast.KindArrayIndexExpression) {
			indices = append([]ast.NodeID{p.Right(base)}, indices...)
			base = p.Left(base)
		}
		list := p.New(ast.KindExpressionList, p.Location(target))
		p.SetChildren(list, indices)
		o.replace(id, ast.KindArrayIndexWrite, "", base, list, value)
	}
}

func (o *optimizer) groupStatement(id ast.NodeID) {
	p := o.prog
	c := append([]ast.NodeID(nil), p.Children(id)...)

	switch {
	case len(c) == 0:
		p.Remove(id)
		o.changed = true

	case len(c) == 4 && o.isKeyword(c[0], "let") &&
		o.kinds(c[1:3], ast.KindIdentifierLiteral, ast.KindAssignment) && o.isOperand(c[3]):
		o.replace(id, ast.KindVariableInitialisation, "", c[1], c[3])

	case len(c) == 2 && o.isKeyword(c[0], "let") && p.Is(c[1], ast.KindIdentifierLiteral):
		o.replace(id, ast.KindVariableDeclaration, "", c[1])

	case len(c) >= 7 && o.isKeyword(c[0], "if"):
		o.groupIf(id, c)

	case len(c) == 7 && o.isKeyword(c[0], "while") && o.isConditional(c):
		o.replace(id, ast.KindWhileStatement, "", c[2], c[5])

	case len(c) == 1 && p.Is(c[0], ast.KindFunctionLiteral):
		o.replace(id, ast.KindFunctionDefinitionExpression, "", c[0])

	case len(c) == 1 && p.Is(c[0], ast.KindClassLiteral):
		o.replace(id, ast.KindClassDefinition, "", c[0])

	case len(c) == 1 && o.isOperand(c[0]):
		o.collapse(id, c[0])
	}
}

// isConditional checks the keyword ( test ) { Block } prefix shared by if
// and while.
func (o *optimizer) isConditional(c []ast.NodeID) bool {
	return o.kinds(c[1:7], ast.KindLeftParen, "", ast.KindRightParen,
		ast.KindLeftCurly, ast.KindBlock, ast.KindRightCurly) && o.isOperand(c[2])
}

func (o *optimizer) groupIf(id ast.NodeID, c []ast.NodeID) {
	p := o.prog
	if !o.isConditional(c) {
		return
	}
	switch {
	case len(c) == 7:
		o.replace(id, ast.KindIfStatement, "", c[2], c[5])
	case len(c) == 9 && o.isKeyword(c[7], "else") && p.Is(c[8], ast.KindIfStatement):
		o.replace(id, ast.KindIfStatement, "", c[2], c[5], c[8])
	case len(c) == 11 && o.isKeyword(c[7], "else") &&
		o.kinds(c[8:], ast.KindLeftCurly, ast.KindBlock, ast.KindRightCurly):
		o.replace(id, ast.KindIfStatement, "", c[2], c[5], c[9])
	}
}
