package parser

import (
	"github.com/evalbox/evalbox/internal/ast"
	"github.com/evalbox/evalbox/internal/token"
)

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.VAR, token.LET, token.CONST:
		return p.parseVariableDeclaration()
	case token.LBRACE:
		return p.parseBlockStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.FUNCTION:
		return p.parseFunctionDeclaration()
	case token.SEMICOLON:
		return nil
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseVariableDeclaration() *ast.VariableDeclaration {
	decl := &ast.VariableDeclaration{Token: p.curToken, Kind: p.curToken.Literal}

	for {
		p.nextToken()
		name := p.parseBindingPattern()
		declarator := ast.VariableDeclarator{Name: name}
		if p.peekTokenIs(token.ASSIGN) {
			p.nextToken()
			p.nextToken()
			declarator.Init = p.parseExpression(ASSIGN)
		}
		decl.Declarations = append(decl.Declarations, declarator)

		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return decl
}

// parseBindingPattern parses the left side of a declarator. Only plain
// identifiers are supported bindings; destructuring patterns are
// recognized structurally and reported as unsupported rather than
// silently misparsed.
func (p *Parser) parseBindingPattern() ast.Pattern {
	switch {
	case p.curTokenIs(token.LBRACE):
		tok := p.curToken
		p.skipBalanced(token.LBRACE, token.RBRACE)
		return &ast.UnsupportedPattern{Token: tok, PatternOf: "ObjectPattern"}
	case p.curTokenIs(token.LBRACKET):
		tok := p.curToken
		p.skipBalanced(token.LBRACKET, token.RBRACKET)
		return &ast.UnsupportedPattern{Token: tok, PatternOf: "ArrayPattern"}
	default:
		return &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
	}
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}
	return block
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}
	if !p.expectPeek(token.LPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Test = p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Consequent = p.parseStatement()

	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		p.nextToken()
		stmt.Alternate = p.parseStatement()
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}
	if !p.expectPeek(token.LPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Test = p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Body = p.parseStatement()
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	if p.funcDepth == 0 && !p.opts.AllowReturnOutsideFunction {
		p.errorf(p.curToken.Pos, "'return' outside of a function")
	}
	stmt := &ast.ReturnStatement{Token: p.curToken}
	if p.peekTokenIs(token.SEMICOLON) || p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		return stmt
	}
	p.nextToken()
	stmt.Argument = p.parseExpression(LOWEST)
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseFunctionDeclaration() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return &ast.FunctionDeclaration{FunctionLiteral: &ast.FunctionLiteral{Token: tok}}
	}
	name := &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}

	if !p.expectPeek(token.LPAREN) {
		return &ast.FunctionDeclaration{FunctionLiteral: &ast.FunctionLiteral{Token: tok, Name: name}}
	}
	params := p.parseFunctionParams()

	if !p.expectPeek(token.LBRACE) {
		return &ast.FunctionDeclaration{FunctionLiteral: &ast.FunctionLiteral{Token: tok, Name: name, Params: params}}
	}
	p.funcDepth++
	body := p.parseBlockStatement()
	p.funcDepth--

	return &ast.FunctionDeclaration{FunctionLiteral: &ast.FunctionLiteral{
		Token: tok, Name: name, Params: params, Body: body,
	}}
}
