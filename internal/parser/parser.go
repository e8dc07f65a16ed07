// Package parser implements a Pratt recursive-descent parser that turns a
// token stream from internal/lexer into the internal/ast tree the
// interpreter walks.
package parser

import (
	"fmt"

	"github.com/evalbox/evalbox/internal/ast"
	"github.com/evalbox/evalbox/internal/lexer"
	"github.com/evalbox/evalbox/internal/token"
)

// Precedence levels, lowest to highest.
const (
	_ int = iota
	LOWEST
	ASSIGN      // = += -= ...
	CONDITIONAL // ?:
	LOGICAL_OR  // ||
	LOGICAL_AND // &&
	BIT_OR      // |
	BIT_XOR     // ^
	BIT_AND     // &
	EQUALITY    // == != === !==
	RELATIONAL  // < <= > >=
	SHIFT       // << >>
	ADDITIVE    // + -
	MULTIPLICATIVE
	EXPONENT // **
	UNARY    // !x -x +x ~x delete x
	POSTFIX  // x++ x--
	CALL     // f(x), obj.prop, obj[x]
)

var precedences = map[token.Type]int{
	token.ASSIGN:           ASSIGN,
	token.PLUS_ASSIGN:      ASSIGN,
	token.MINUS_ASSIGN:     ASSIGN,
	token.STAR_ASSIGN:      ASSIGN,
	token.SLASH_ASSIGN:     ASSIGN,
	token.PERCENT_ASSIGN:   ASSIGN,
	token.STAR_STAR_ASSIGN: ASSIGN,
	token.AMP_ASSIGN:       ASSIGN,
	token.PIPE_ASSIGN:      ASSIGN,
	token.CARET_ASSIGN:     ASSIGN,
	token.SHL_ASSIGN:       ASSIGN,
	token.SHR_ASSIGN:       ASSIGN,
	token.QUESTION:         CONDITIONAL,
	token.OR:               LOGICAL_OR,
	token.AND:               LOGICAL_AND,
	token.PIPE:              BIT_OR,
	token.CARET:             BIT_XOR,
	token.AMP:               BIT_AND,
	token.EQ:                EQUALITY,
	token.NE:                EQUALITY,
	token.STRICT_EQ:         EQUALITY,
	token.STRICT_NE:         EQUALITY,
	token.LT:                RELATIONAL,
	token.LE:                RELATIONAL,
	token.GT:                RELATIONAL,
	token.GE:                RELATIONAL,
	token.SHL:               SHIFT,
	token.SHR:               SHIFT,
	token.PLUS:              ADDITIVE,
	token.MINUS:             ADDITIVE,
	token.STAR:              MULTIPLICATIVE,
	token.SLASH:             MULTIPLICATIVE,
	token.PERCENT:           MULTIPLICATIVE,
	token.STAR_STAR:         EXPONENT,
}

// ParserError is a single syntax error with its source position.
type ParserError struct {
	Message string
	Pos     token.Position
}

func (e *ParserError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

type prefixParseFn func() ast.Expression
type infixParseFn func(ast.Expression) ast.Expression

// Options configures parsing behavior.
type Options struct {
	// AllowReturnOutsideFunction permits a top-level `return` statement,
	// used by callers that treat the program body like a function body.
	AllowReturnOutsideFunction bool
}

// Parser is a Pratt recursive-descent parser over a token stream.
type Parser struct {
	l    *lexer.Lexer
	opts Options

	curToken  token.Token
	peekToken token.Token
	funcDepth int

	errors []*ParserError

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

// New creates a Parser reading from l.
func New(l *lexer.Lexer, opts Options) *Parser {
	p := &Parser{l: l, opts: opts}

	p.prefixParseFns = map[token.Type]prefixParseFn{
		token.IDENT:           p.parseIdentifier,
		token.NUMBER:          p.parseNumberLiteral,
		token.STRING:          p.parseStringLiteral,
		token.TRUE:            p.parseBoolLiteral,
		token.FALSE:           p.parseBoolLiteral,
		token.NULL:            p.parseNullLiteral,
		token.UNDEFINED:       p.parseUndefinedLiteral,
		token.BANG:            p.parseUnaryExpression,
		token.MINUS:           p.parseUnaryExpression,
		token.PLUS:            p.parseUnaryExpression,
		token.TILDE:           p.parseUnaryExpression,
		token.DELETE:          p.parseDeleteExpression,
		token.INC:             p.parsePrefixUpdateExpression,
		token.DEC:             p.parsePrefixUpdateExpression,
		token.LPAREN:          p.parseGroupedOrArrow,
		token.LBRACKET:        p.parseArrayLiteral,
		token.LBRACE:          p.parseObjectLiteral,
		token.TEMPLATE_STRING: p.parseTemplateLiteral,
		token.FUNCTION:        p.parseFunctionExpression,
		token.ASYNC:           p.parseFunctionExpression,
	}

	p.infixParseFns = map[token.Type]infixParseFn{
		token.PLUS:              p.parseBinaryExpression,
		token.MINUS:              p.parseBinaryExpression,
		token.STAR:               p.parseBinaryExpression,
		token.SLASH:              p.parseBinaryExpression,
		token.PERCENT:            p.parseBinaryExpression,
		token.STAR_STAR:          p.parseBinaryExpressionRightAssoc,
		token.AMP:                p.parseBinaryExpression,
		token.PIPE:               p.parseBinaryExpression,
		token.CARET:              p.parseBinaryExpression,
		token.SHL:                p.parseBinaryExpression,
		token.SHR:                p.parseBinaryExpression,
		token.LT:                 p.parseBinaryExpression,
		token.LE:                 p.parseBinaryExpression,
		token.GT:                 p.parseBinaryExpression,
		token.GE:                 p.parseBinaryExpression,
		token.EQ:                 p.parseBinaryExpression,
		token.NE:                 p.parseBinaryExpression,
		token.STRICT_EQ:          p.parseBinaryExpression,
		token.STRICT_NE:          p.parseBinaryExpression,
		token.AND:                p.parseLogicalExpression,
		token.OR:                 p.parseLogicalExpression,
		token.QUESTION:           p.parseConditionalExpression,
		token.ASSIGN:             p.parseAssignmentExpression,
		token.PLUS_ASSIGN:        p.parseAssignmentExpression,
		token.MINUS_ASSIGN:       p.parseAssignmentExpression,
		token.STAR_ASSIGN:        p.parseAssignmentExpression,
		token.SLASH_ASSIGN:       p.parseAssignmentExpression,
		token.PERCENT_ASSIGN:     p.parseAssignmentExpression,
		token.STAR_STAR_ASSIGN:   p.parseAssignmentExpression,
		token.AMP_ASSIGN:         p.parseAssignmentExpression,
		token.PIPE_ASSIGN:        p.parseAssignmentExpression,
		token.CARET_ASSIGN:       p.parseAssignmentExpression,
		token.SHL_ASSIGN:         p.parseAssignmentExpression,
		token.SHR_ASSIGN:         p.parseAssignmentExpression,
	}

	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns every syntax error collected while parsing.
func (p *Parser) Errors() []*ParserError {
	return p.errors
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t token.Type) {
	p.errors = append(p.errors, &ParserError{
		Message: fmt.Sprintf("expected next token to be %s, got %s instead", t, p.peekToken.Type),
		Pos:     p.peekToken.Pos,
	})
}

func (p *Parser) errorf(pos token.Position, format string, args ...any) {
	p.errors = append(p.errors, &ParserError{Message: fmt.Sprintf(format, args...), Pos: pos})
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

// ParseProgram parses the entire token stream into a Program node.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	for !p.curTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}
	return program
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.errorf(p.curToken.Pos, "unexpected token %s", p.curToken.Type)
		return nil
	}
	left := prefix()
	left = p.parsePostfixChain(left)

	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

// parsePostfixChain consumes member access, computed indexing, and calls
// directly after a primary expression, regardless of the surrounding
// precedence — these bind tighter than any binary operator. If any link
// uses optional chaining (`?.`), the whole chain is wrapped in a
// ChainExpression so the evaluator can catch the safe-navigation carrier
// at exactly this boundary. A trailing postfix `++`/`--` is folded in
// last, since it also targets the end of a member/call chain.
func (p *Parser) parsePostfixChain(left ast.Expression) ast.Expression {
	hasOptional := false
	startTok := p.curToken
loop:
	for {
		switch p.peekToken.Type {
		case token.DOT, token.OPTIONAL_DOT:
			optional := p.peekToken.Type == token.OPTIONAL_DOT
			tok := p.peekToken
			p.nextToken()
			switch p.peekToken.Type {
			case token.LBRACKET:
				p.nextToken()
				p.nextToken()
				index := p.parseExpression(LOWEST)
				if !p.expectPeek(token.RBRACKET) {
					break loop
				}
				left = &ast.MemberExpression{Token: tok, Object: left, Property: index, Computed: true, Optional: optional}
			case token.LPAREN:
				p.nextToken()
				args := p.parseExpressionList(token.RPAREN)
				left = &ast.CallExpression{Token: tok, Callee: left, Arguments: args, Optional: optional}
			default:
				if !p.peekTokenIs(token.IDENT) && !isKeywordType(p.peekToken.Type) {
					p.peekError(token.IDENT)
					break loop
				}
				p.nextToken()
				prop := &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
				left = &ast.MemberExpression{Token: tok, Object: left, Property: prop, Computed: false, Optional: optional}
			}
			hasOptional = hasOptional || optional
		case token.LBRACKET:
			tok := p.peekToken
			p.nextToken()
			p.nextToken()
			index := p.parseExpression(LOWEST)
			if !p.expectPeek(token.RBRACKET) {
				break loop
			}
			left = &ast.MemberExpression{Token: tok, Object: left, Property: index, Computed: true, Optional: false}
		case token.LPAREN:
			tok := p.peekToken
			p.nextToken()
			args := p.parseExpressionList(token.RPAREN)
			left = &ast.CallExpression{Token: tok, Callee: left, Arguments: args, Optional: false}
		default:
			break loop
		}
	}
	if p.peekTokenIs(token.INC) || p.peekTokenIs(token.DEC) {
		tok := p.peekToken
		p.nextToken()
		left = &ast.UpdateExpression{Token: tok, Operator: tok.Literal, Argument: left, Prefix: false}
	}
	if hasOptional {
		return &ast.ChainExpression{Token: startTok, Expression: left}
	}
	return left
}

// isKeywordType reports whether t is a reserved word. Reserved words are
// valid property names after `.` and `?.`, e.g. `obj.delete` or
// `obj.return`.
func isKeywordType(t token.Type) bool {
	switch t {
	case token.VAR, token.LET, token.CONST, token.FUNCTION, token.RETURN,
		token.IF, token.ELSE, token.WHILE, token.TRUE, token.FALSE,
		token.NULL, token.UNDEFINED, token.DELETE, token.ASYNC:
		return true
	}
	return false
}

func (p *Parser) parseExpressionList(end token.Type) []ast.Expression {
	var list []ast.Expression
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parseListElement())
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseListElement())
	}
	if !p.expectPeek(end) {
		return list
	}
	return list
}

// parseListElement parses one array/call-argument slot, honoring a
// leading `...` spread.
func (p *Parser) parseListElement() ast.Expression {
	if p.curTokenIs(token.ELLIPSIS) {
		tok := p.curToken
		p.nextToken()
		return &ast.SpreadElement{Token: tok, Argument: p.parseExpression(ASSIGN)}
	}
	return p.parseExpression(ASSIGN)
}

func (p *Parser) parseIdentifier() ast.Expression {
	ident := &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
	if p.peekTokenIs(token.ARROW) {
		return p.parseBareParamArrow(ident)
	}
	return ident
}

// parseBareParamArrow handles the single-parameter arrow shorthand
// `x => body`, where the parameter list has no parentheses. The
// parenthesized forms go through parseGroupedOrArrow instead.
func (p *Parser) parseBareParamArrow(param *ast.Identifier) ast.Expression {
	tok := param.Token
	p.nextToken() // now at '=>'
	p.nextToken() // move to body start

	p.funcDepth++
	var body ast.Node
	if p.curTokenIs(token.LBRACE) {
		body = p.parseBlockStatement()
	} else {
		body = p.parseExpression(ASSIGN)
	}
	p.funcDepth--

	return &ast.FunctionLiteral{Token: tok, Params: []ast.Pattern{param}, Body: body, Arrow: true}
}
