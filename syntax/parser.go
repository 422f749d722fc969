package syntax

import (
	"fmt"

	"dusk/ast"
	"dusk/forge"
	"dusk/typing"
)

// Parser is a recursive-descent parser over the scanner's token stream.  It
// produces the AST the analyzer consumes; all semantic checking is deferred
// to the walk phase.
type Parser struct {
	tokens []*Token
	pos    int
}

// NewParser creates a parser over a token stream.
func NewParser(tokens []*Token) *Parser {
	return &Parser{tokens: tokens}
}

// parseError aborts the parse; Parse recovers it at the top level.
type parseError struct {
	msg  string
	line int
}

func (pe *parseError) Error() string {
	return fmt.Sprintf("line %d: %s", pe.line, pe.msg)
}

// Parse parses a whole translation unit: a sequence of function definitions.
func (p *Parser) Parse() (fns []*ast.Function, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*parseError); ok {
				fns = nil
				err = pe
				return
			}

			panic(r)
		}
	}()

	for p.peek().Kind != EOF {
		fns = append(fns, p.parseFunction())
	}

	return fns, nil
}

// -----------------------------------------------------------------------------

func (p *Parser) parseFunction() *ast.Function {
	def := p.expect(DEF)
	name := p.expect(IDENTIFIER)

	p.expect(LPAREN)
	var params []*forge.Variable
	for p.peek().Kind != RPAREN {
		if len(params) > 0 {
			p.expect(COMMA)
		}

		byRef := false
		if p.peek().Kind == REF {
			p.next()
			byRef = true
		}

		pname := p.expect(IDENTIFIER)
		p.expect(COLON)
		ptype := p.parseTypeInfo()

		// by-value parameters keep the plain standard type; the VAR_
		// variants only arise from call-argument promotion
		dt := ptype.DataType
		if byRef {
			dt, _ = typing.RefVariantOf(dt)
		}

		params = append(params, forge.NewVariable(pname.Value, dt))
	}
	p.expect(RPAREN)

	p.expect(ARROW)
	returnType := p.parseTypeInfo()

	return &ast.Function{
		StmtBase:   ast.StmtBase{LineNumber: def.Line},
		Name:       name.Value,
		Params:     params,
		ReturnType: returnType,
		Elements:   p.parseBlock(),
	}
}

func (p *Parser) parseTypeInfo() *ast.TypeInfo {
	tok := p.next()

	switch tok.Kind {
	case INT:
		return &ast.TypeInfo{DataType: typing.StandardInteger, Raw: tok.Value}
	case DOUBLE:
		return &ast.TypeInfo{DataType: typing.StandardDouble, Raw: tok.Value}
	case CHAR:
		return &ast.TypeInfo{DataType: typing.StandardChar, Raw: tok.Value}
	case STRING:
		return &ast.TypeInfo{DataType: typing.StandardString, Raw: tok.Value}
	}

	panic(&parseError{msg: fmt.Sprintf("expected a type, found %q", tok.Value), line: tok.Line})
}

func (p *Parser) parseBlock() []ast.Statement {
	p.expect(LBRACE)

	var elements []ast.Statement
	for {
		for p.peek().Kind == SEMICOLON {
			p.next()
		}

		if p.peek().Kind == RBRACE {
			p.next()
			return elements
		}

		elements = append(elements, p.parseStatement())
	}
}

func (p *Parser) parseStatement() ast.Statement {
	tok := p.peek()

	switch tok.Kind {
	case CONST, INT, DOUBLE, CHAR, STRING:
		return p.parseDeclaration()
	case IDENTIFIER:
		if p.peekAt(1).Kind == LPAREN {
			call := p.parseCallExpr()
			return &ast.CallStmt{StmtBase: ast.StmtBase{LineNumber: tok.Line}, Call: call}
		}
		return p.parseReassignment()
	case RETURN:
		return p.parseReturn()
	case IF:
		return p.parseIfChain()
	case WHILE:
		return p.parseWhile()
	case FOR:
		return p.parseFor()
	case LOOP:
		return p.parseNamedLoop()
	case CONTINUE:
		p.next()
		return &ast.Continue{StmtBase: ast.StmtBase{LineNumber: tok.Line}}
	case BREAK:
		p.next()
		name := p.expect(IDENTIFIER)
		return &ast.Break{StmtBase: ast.StmtBase{LineNumber: tok.Line}, Name: name.Value}
	}

	panic(&parseError{msg: fmt.Sprintf("unexpected token %q at start of statement", tok.Value), line: tok.Line})
}

func (p *Parser) parseDeclaration() *ast.Assignment {
	start := p.peek()

	immutable := false
	if start.Kind == CONST {
		p.next()
		immutable = true
	}

	typeInfo := p.parseTypeInfo()
	name := p.expect(IDENTIFIER)
	p.expect(ASSIGN)
	rhs := p.parseExpr()

	return &ast.Assignment{
		StmtBase:  ast.StmtBase{LineNumber: start.Line},
		Immutable: immutable,
		TypeInfo:  typeInfo,
		Tree:      assignmentTree(name, rhs),
	}
}

func (p *Parser) parseReassignment() *ast.Reassignment {
	name := p.expect(IDENTIFIER)
	p.expect(ASSIGN)
	rhs := p.parseExpr()

	return &ast.Reassignment{
		StmtBase: ast.StmtBase{LineNumber: name.Line},
		Tree:     assignmentTree(name, rhs),
	}
}

// assignmentTree builds the ROOT "=" node shared by declarations and
// reassignments
func assignmentTree(name *Token, rhs *ast.Ast) *ast.Ast {
	lhs := ast.NewAst(ast.Identifier, typing.Unknown, name.Value, nil, nil)
	lhs.LineNumber = name.Line

	tree := ast.NewAst(ast.Root, typing.Undefined, "=", lhs, rhs)
	tree.LineNumber = name.Line
	return tree
}

func (p *Parser) parseReturn() *ast.Return {
	ret := p.expect(RETURN)

	stmt := &ast.Return{StmtBase: ast.StmtBase{LineNumber: ret.Line}}
	if p.startsExpression(p.peek()) {
		stmt.Expr = p.parseExpr()
	}

	return stmt
}

// startsExpression reports whether a token can begin an expression; it
// decides whether a return statement carries a value.
func (p *Parser) startsExpression(tok *Token) bool {
	switch tok.Kind {
	case IDENTIFIER, INTLIT, DOUBLELIT, CHARLIT, STRINGLIT, LPAREN, MINUS, COMPL:
		return true
	default:
		return false
	}
}

func (p *Parser) parseIfChain() *ast.If {
	head := p.parseIfBranch(IF, ast.IfBranch)

	link := head
	for {
		switch p.peek().Kind {
		case ELIF:
			link.Trail = p.parseIfBranch(ELIF, ast.ElifBranch)
			link = link.Trail
		case ELSE:
			// an else is an elif whose condition is the constant 1
			tok := p.next()
			cond := ast.NewAst(ast.Value, typing.StandardInteger, "1", nil, nil)
			cond.LineNumber = tok.Line

			link.Trail = &ast.If{
				StmtBase: ast.StmtBase{LineNumber: tok.Line},
				Kind:     ast.ElifBranch,
				Cond:     cond,
				Elements: p.parseBlock(),
			}
			return head
		default:
			return head
		}
	}
}

func (p *Parser) parseIfBranch(keyword int, kind ast.IfKind) *ast.If {
	tok := p.expect(keyword)
	p.expect(LPAREN)
	cond := p.parseExpr()
	p.expect(RPAREN)

	return &ast.If{
		StmtBase: ast.StmtBase{LineNumber: tok.Line},
		Kind:     kind,
		Cond:     cond,
		Elements: p.parseBlock(),
	}
}

func (p *Parser) parseWhile() *ast.While {
	tok := p.expect(WHILE)
	p.expect(LPAREN)
	cond := p.parseExpr()
	p.expect(RPAREN)

	return &ast.While{
		StmtBase: ast.StmtBase{LineNumber: tok.Line},
		Cond:     cond,
		Elements: p.parseBlock(),
	}
}

func (p *Parser) parseFor() *ast.For {
	tok := p.expect(FOR)
	p.expect(LPAREN)
	init := p.parseDeclaration()
	p.expect(SEMICOLON)
	cond := p.parseExpr()
	p.expect(SEMICOLON)
	step := p.parseReassignment()
	p.expect(RPAREN)

	return &ast.For{
		StmtBase: ast.StmtBase{LineNumber: tok.Line},
		Init:     init,
		Cond:     cond,
		Step:     step,
		Elements: p.parseBlock(),
	}
}

func (p *Parser) parseNamedLoop() *ast.NamedLoop {
	tok := p.expect(LOOP)
	name := p.expect(IDENTIFIER)

	return &ast.NamedLoop{
		StmtBase: ast.StmtBase{LineNumber: tok.Line},
		Name:     name.Value,
		Elements: p.parseBlock(),
	}
}

// -----------------------------------------------------------------------------
// Expressions use precedence climbing; each level binds tighter than the one
// above it.

var binaryLevels = [][]struct {
	tokKind int
	node    ast.NodeType
}{
	{{OR, ast.Or}},
	{{AND, ast.And}},
	{{PIPE, ast.BwOr}},
	{{BXOR, ast.BwXor}},
	{{AMP, ast.BwAnd}},
	{{EQ, ast.Eq}, {NEQ, ast.Ne}},
	{{LT, ast.Lt}, {LTEQ, ast.Lte}, {GT, ast.Gt}, {GTEQ, ast.Gte}},
	{{LSHIFT, ast.Lsh}, {RSHIFT, ast.Rsh}},
	{{PLUS, ast.Add}, {MINUS, ast.Sub}},
	{{STAR, ast.Mul}, {DIVIDE, ast.Div}, {MOD, ast.Mod}},
	{{RAISETO, ast.Pow}},
}

func (p *Parser) parseExpr() *ast.Ast {
	return p.parseBinary(0)
}

func (p *Parser) parseBinary(level int) *ast.Ast {
	if level == len(binaryLevels) {
		return p.parseUnary()
	}

	lhs := p.parseBinary(level + 1)

	for {
		tok := p.peek()

		matched := false
		for _, op := range binaryLevels[level] {
			if tok.Kind == op.tokKind {
				p.next()
				rhs := p.parseBinary(level + 1)

				node := ast.NewAst(op.node, typing.Undefined, tok.Value, lhs, rhs)
				node.LineNumber = tok.Line
				lhs = node
				matched = true
				break
			}
		}

		if !matched {
			return lhs
		}
	}
}

// parseUnary parses negation and bitwise complement.  Unary nodes carry the
// operand as both children; the walker visits both and emits the operator.
func (p *Parser) parseUnary() *ast.Ast {
	tok := p.peek()

	switch tok.Kind {
	case MINUS:
		p.next()
		operand := p.parseUnary()
		node := ast.NewAst(ast.Negate, typing.Undefined, tok.Value, operand, operand)
		node.LineNumber = tok.Line
		return node
	case COMPL:
		p.next()
		operand := p.parseUnary()
		node := ast.NewAst(ast.BwNot, typing.Undefined, tok.Value, operand, operand)
		node.LineNumber = tok.Line
		return node
	}

	return p.parsePrimary()
}

func (p *Parser) parsePrimary() *ast.Ast {
	tok := p.next()

	mkValue := func(dt typing.DataType) *ast.Ast {
		node := ast.NewAst(ast.Value, dt, tok.Value, nil, nil)
		node.LineNumber = tok.Line
		return node
	}

	switch tok.Kind {
	case INTLIT:
		return mkValue(typing.StandardInteger)
	case DOUBLELIT:
		return mkValue(typing.StandardDouble)
	case CHARLIT:
		return mkValue(typing.StandardChar)
	case STRINGLIT:
		return mkValue(typing.StandardString)
	case IDENTIFIER:
		if p.peek().Kind == LPAREN {
			p.backup()
			return p.parseCallExpr()
		}

		node := ast.NewAst(ast.Identifier, typing.Unknown, tok.Value, nil, nil)
		node.LineNumber = tok.Line
		return node
	case LPAREN:
		inner := p.parseExpr()
		p.expect(RPAREN)
		return inner
	}

	panic(&parseError{msg: fmt.Sprintf("unexpected token %q in expression", tok.Value), line: tok.Line})
}

// parseCallExpr parses `name ( args )`.  Bare identifier arguments get the
// UNKNOWN placeholder type (REF_UNKNOWN under `ref`); the analyzer resolves
// them during call validation.
func (p *Parser) parseCallExpr() *ast.Ast {
	name := p.expect(IDENTIFIER)
	p.expect(LPAREN)

	var params []*forge.Variable
	for p.peek().Kind != RPAREN {
		if len(params) > 0 {
			p.expect(COMMA)
		}

		params = append(params, p.parseCallArg())
	}
	p.expect(RPAREN)

	call := ast.NewCallAst(name.Value, params)
	call.LineNumber = name.Line
	return call
}

func (p *Parser) parseCallArg() *forge.Variable {
	tok := p.next()

	switch tok.Kind {
	case INTLIT:
		return forge.NewVariable(tok.Value, typing.StandardInteger)
	case DOUBLELIT:
		return forge.NewVariable(tok.Value, typing.StandardDouble)
	case CHARLIT:
		return forge.NewVariable(tok.Value, typing.StandardChar)
	case STRINGLIT:
		return forge.NewVariable(tok.Value, typing.StandardString)
	case REF:
		name := p.expect(IDENTIFIER)
		return forge.NewVariable(name.Value, typing.RefUnknown)
	case IDENTIFIER:
		return forge.NewVariable(tok.Value, typing.Unknown)
	}

	panic(&parseError{msg: fmt.Sprintf("invalid call argument %q", tok.Value), line: tok.Line})
}

// -----------------------------------------------------------------------------

func (p *Parser) peek() *Token {
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(offset int) *Token {
	if p.pos+offset >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}

	return p.tokens[p.pos+offset]
}

func (p *Parser) next() *Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}

	return tok
}

func (p *Parser) backup() {
	p.pos--
}

func (p *Parser) expect(kind int) *Token {
	tok := p.next()
	if tok.Kind != kind {
		panic(&parseError{msg: fmt.Sprintf("unexpected token %q", tok.Value), line: tok.Line})
	}

	return tok
}
