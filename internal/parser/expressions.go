package parser

import (
	"strconv"
	"strings"

	"github.com/evalbox/evalbox/internal/ast"
	"github.com/evalbox/evalbox/internal/lexer"
	"github.com/evalbox/evalbox/internal/token"
)

func (p *Parser) parseNumberLiteral() ast.Expression {
	tok := p.curToken
	v, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		p.errorf(tok.Pos, "invalid number literal %q", tok.Literal)
		return nil
	}
	return &ast.NumberLiteral{Token: tok, Value: v}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBoolLiteral() ast.Expression {
	return &ast.BoolLiteral{Token: p.curToken, Value: p.curToken.Type == token.TRUE}
}

func (p *Parser) parseNullLiteral() ast.Expression {
	return &ast.NullLiteral{Token: p.curToken}
}

func (p *Parser) parseUndefinedLiteral() ast.Expression {
	return &ast.UndefinedLiteral{Token: p.curToken}
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	return &ast.UnaryExpression{Token: tok, Operator: tok.Literal, Argument: p.parseExpression(UNARY)}
}

func (p *Parser) parseDeleteExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	return &ast.DeleteExpression{Token: tok, Argument: p.parseExpression(UNARY)}
}

func (p *Parser) parsePrefixUpdateExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	return &ast.UpdateExpression{Token: tok, Operator: tok.Literal, Argument: p.parseExpression(UNARY), Prefix: true}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	tok := p.curToken
	elems := p.parseExpressionList(token.RBRACKET)
	return &ast.ArrayLiteral{Token: tok, Elements: elems}
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	tok := p.curToken
	obj := &ast.ObjectLiteral{Token: tok}

	if p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		return obj
	}

	p.nextToken()
	obj.Properties = append(obj.Properties, p.parseObjectProperty())
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		if p.curTokenIs(token.RBRACE) {
			break
		}
		obj.Properties = append(obj.Properties, p.parseObjectProperty())
	}
	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return obj
}

func (p *Parser) parseObjectProperty() ast.ObjectProperty {
	if p.curTokenIs(token.ELLIPSIS) {
		p.nextToken()
		return ast.ObjectProperty{Spread: p.parseExpression(ASSIGN)}
	}

	var key ast.Expression
	computed := false

	switch {
	case p.curTokenIs(token.LBRACKET):
		p.nextToken()
		key = p.parseExpression(LOWEST)
		if !p.expectPeek(token.RBRACKET) {
			return ast.ObjectProperty{}
		}
		computed = true
	case p.curTokenIs(token.STRING):
		key = &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
	case p.curTokenIs(token.NUMBER):
		key = p.parseNumberLiteral()
	default:
		key = &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
	}

	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		value := p.parseExpression(ASSIGN)
		return ast.ObjectProperty{Key: key, Value: value, Computed: computed}
	}

	// Shorthand `{ x }` meaning `{ x: x }`; only valid for plain identifier keys.
	if ident, ok := key.(*ast.Identifier); ok && !computed {
		return ast.ObjectProperty{Key: ident, Value: ident, Shorthand: true}
	}

	p.errorf(p.curToken.Pos, "expected ':' after object property key")
	return ast.ObjectProperty{}
}

// parseTemplateLiteral splits the lexer's raw template text (quasis plus
// unparsed `${...}` interpolation source) and recursively parses each
// interpolation with its own lexer/parser pair.
func (p *Parser) parseTemplateLiteral() ast.Expression {
	tok := p.curToken
	tmpl := &ast.TemplateLiteral{Token: tok}

	raw := tok.Literal
	var cur strings.Builder
	i := 0
	for i < len(raw) {
		if raw[i] == '\\' && i+1 < len(raw) {
			cur.WriteByte(decodeEscapeByte(raw[i+1]))
			i += 2
			continue
		}
		if raw[i] == '$' && i+1 < len(raw) && raw[i+1] == '{' {
			tmpl.Quasis = append(tmpl.Quasis, cur.String())
			cur.Reset()
			depth := 1
			j := i + 2
			for j < len(raw) && depth > 0 {
				switch raw[j] {
				case '{':
					depth++
				case '}':
					depth--
				case '\'', '"':
					quote := raw[j]
					j++
					for j < len(raw) && raw[j] != quote {
						if raw[j] == '\\' {
							j++
						}
						j++
					}
				}
				if depth > 0 {
					j++
				}
			}
			exprSrc := raw[i+2 : j]
			tmpl.Expressions = append(tmpl.Expressions, p.parseSubExpression(exprSrc, tok.Pos))
			i = j + 1
			continue
		}
		cur.WriteByte(raw[i])
		i++
	}
	tmpl.Quasis = append(tmpl.Quasis, cur.String())
	return tmpl
}

func decodeEscapeByte(b byte) byte {
	switch b {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return b
	}
}

// parseSubExpression parses an interpolation's source in an isolated
// lexer/parser pair and folds any errors into the outer parser.
func (p *Parser) parseSubExpression(src string, basePos token.Position) ast.Expression {
	sub := New(lexer.New(src), p.opts)
	expr := sub.parseExpression(LOWEST)
	for _, e := range sub.Errors() {
		p.errors = append(p.errors, &ParserError{Message: "in template interpolation: " + e.Message, Pos: basePos})
	}
	return expr
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	return &ast.BinaryExpression{Token: tok, Operator: tok.Literal, Left: left, Right: right}
}

// parseBinaryExpressionRightAssoc handles `**`, which associates right to
// left: `2 ** 3 ** 2` is `2 ** (3 ** 2)`.
func (p *Parser) parseBinaryExpressionRightAssoc(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	right := p.parseExpression(EXPONENT - 1)
	return &ast.BinaryExpression{Token: tok, Operator: tok.Literal, Left: left, Right: right}
}

func (p *Parser) parseLogicalExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	return &ast.LogicalExpression{Token: tok, Operator: tok.Literal, Left: left, Right: right}
}

func (p *Parser) parseConditionalExpression(test ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	consequent := p.parseExpression(ASSIGN)
	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()
	alternate := p.parseExpression(ASSIGN)
	return &ast.ConditionalExpression{Token: tok, Test: test, Consequent: consequent, Alternate: alternate}
}

func (p *Parser) parseAssignmentExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	right := p.parseExpression(ASSIGN - 1) // right-associative
	return &ast.AssignmentExpression{Token: tok, Operator: tok.Literal, Left: left, Right: right}
}

// parseGroupedOrArrow disambiguates `(expr)` from an arrow function's
// parameter list by attempting the arrow-parameter parse first and
// rewinding the lexer/parser state if it doesn't pan out.
func (p *Parser) parseGroupedOrArrow() ast.Expression {
	lexSnap := p.l.Snapshot()
	curSnap, peekSnap := p.curToken, p.peekToken
	errLen := len(p.errors)

	if fn := p.tryParseArrowFromParen(); fn != nil {
		return fn
	}

	p.l.Restore(lexSnap)
	p.curToken, p.peekToken = curSnap, peekSnap
	p.errors = p.errors[:errLen]

	p.nextToken() // consume '('
	expr := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) tryParseArrowFromParen() ast.Expression {
	startTok := p.curToken
	p.nextToken() // consume '('

	var params []ast.Pattern
	if !p.curTokenIs(token.RPAREN) {
		for {
			if p.curTokenIs(token.ELLIPSIS) {
				p.nextToken()
				if !p.curTokenIs(token.IDENT) {
					return nil
				}
				params = append(params, &ast.RestElement{Token: startTok, Element: &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}})
			} else if p.curTokenIs(token.IDENT) {
				params = append(params, &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal})
			} else {
				return nil
			}

			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
				p.nextToken()
				continue
			}
			break
		}
		if !p.peekTokenIs(token.RPAREN) {
			return nil
		}
		p.nextToken()
	}

	if !p.peekTokenIs(token.ARROW) {
		return nil
	}
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

	return &ast.FunctionLiteral{Token: startTok, Params: params, Body: body, Arrow: true}
}

func (p *Parser) parseFunctionExpression() ast.Expression {
	async := false
	if p.curTokenIs(token.ASYNC) {
		async = true
		// `async (..) => ..` and `async x => ..` parse like their plain
		// counterparts with Async set; the evaluator rejects them.
		switch p.peekToken.Type {
		case token.LPAREN:
			p.nextToken()
			return p.markAsync(p.parseGroupedOrArrow())
		case token.IDENT:
			p.nextToken()
			return p.markAsync(p.parseIdentifier())
		}
		if !p.expectPeek(token.FUNCTION) {
			return nil
		}
	}
	tok := p.curToken

	var name *ast.Identifier
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		name = &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
	}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	params := p.parseFunctionParams()

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.funcDepth++
	body := p.parseBlockStatement()
	p.funcDepth--

	return &ast.FunctionLiteral{Token: tok, Name: name, Params: params, Body: body, Async: async}
}

// markAsync flags an arrow function parsed after `async`. Anything else
// following the modifier is a syntax error.
func (p *Parser) markAsync(expr ast.Expression) ast.Expression {
	if fn, ok := expr.(*ast.FunctionLiteral); ok {
		fn.Async = true
		return fn
	}
	p.errorf(p.curToken.Pos, "expected a function after async")
	return expr
}

func (p *Parser) parseFunctionParams() []ast.Pattern {
	var params []ast.Pattern
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params
	}
	p.nextToken()
	params = append(params, p.parseParamPattern())
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		params = append(params, p.parseParamPattern())
	}
	p.expectPeek(token.RPAREN)
	return params
}

func (p *Parser) parseParamPattern() ast.Pattern {
	switch {
	case p.curTokenIs(token.ELLIPSIS):
		tok := p.curToken
		p.nextToken()
		return &ast.RestElement{Token: tok, Element: p.parseParamPattern()}
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

// skipBalanced consumes tokens from curToken (an opening delimiter)
// through its matching close, leaving curToken on the closing delimiter.
// Used to tolerate (and then reject at evaluation time) destructuring
// patterns the parser itself does not interpret.
func (p *Parser) skipBalanced(open, close token.Type) {
	depth := 1
	for depth > 0 && !p.curTokenIs(token.EOF) {
		p.nextToken()
		switch p.curToken.Type {
		case open:
			depth++
		case close:
			depth--
		}
	}
}
