package ast

// Accessors for the semantic node shapes the optimizer produces:
//
//	BinaryExpression, ComparisonExpression  Text=operator  [left, right]
//	VariableAssignment                      [target, value]    target: IdentifierLiteral | MemberExpression
//	ArrayIndexWrite                         [base, ExpressionList, value]
//	CallExpression                          [callee, ExpressionList]
//	MemberExpression                        [object, IdentifierLiteral]
//	ArrayIndexExpression                    [target, index]
//	FunctionLiteral                         Text=name  [ArgumentList, Block]
//	ClassLiteral                            Text=name  [Block]
//	FunctionDefinitionExpression            [FunctionLiteral]
//	ClassDefinition                         [ClassLiteral]
//	VariableDeclaration                     [IdentifierLiteral]
//	VariableInitialisation                  [IdentifierLiteral, value]
//	IfStatement                             [test, Block, alternate?]  alternate: IfStatement | Block
//	WhileStatement                          [test, Block]
//	ArrayLiteral                            [ExpressionList]

func (p *Program) Operator(id NodeID) string { return p.Text(id) }

func (p *Program) Left(id NodeID) NodeID  { return p.Child(id, 0) }
func (p *Program) Right(id NodeID) NodeID { return p.Child(id, 1) }

// Test returns the condition of an if or while statement.
func (p *Program) Test(id NodeID) NodeID { return p.Child(id, 0) }

func (p *Program) Consequent(id NodeID) NodeID { return p.Child(id, 1) }

// Alternate returns the else branch of an IfStatement or NoNode.
func (p *Program) Alternate(id NodeID) NodeID { return p.Child(id, 2) }

// ListItems returns the expressions of an ExpressionList or the identifiers
// of an ArgumentList.
func (p *Program) ListItems(id NodeID) []NodeID { return p.Children(id) }

// Parameters returns the parameter names of a FunctionLiteral.
func (p *Program) Parameters(fn NodeID) []string {
	args := p.Child(fn, 0)
	names := make([]string, 0, len(p.Children(args)))
	for _, a := range p.Children(args) {
		names = append(names, p.Text(a))
	}
	return names
}

// Body returns the Block of a FunctionLiteral or ClassLiteral.
func (p *Program) Body(id NodeID) NodeID {
	children := p.Children(id)
	if len(children) == 0 {
		return NoNode
	}
	return children[len(children)-1]
}
