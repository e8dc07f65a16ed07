package parser

import (
	"testing"

	"github.com/evalbox/evalbox/internal/ast"
	"github.com/evalbox/evalbox/internal/lexer"
)

func checkParserErrors(t *testing.T, p *Parser) {
	t.Helper()
	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			t.Errorf("parser error: %s", e)
		}
		t.FailNow()
	}
}

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	l := lexer.New(input)
	p := New(l, Options{})
	program := p.ParseProgram()
	checkParserErrors(t, p)
	return program
}

func singleExprStmt(t *testing.T, program *ast.Program) ast.Expression {
	t.Helper()
	if len(program.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.Statements))
	}
	stmt, ok := program.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected *ast.ExpressionStatement, got %T", program.Statements[0])
	}
	return stmt.Expression
}

func TestParseBinaryExpression(t *testing.T) {
	program := parseProgram(t, "1 + 2 * 3")
	expr := singleExprStmt(t, program)
	bin, ok := expr.(*ast.BinaryExpression)
	if !ok {
		t.Fatalf("expected *ast.BinaryExpression, got %T", expr)
	}
	if bin.Operator != "+" {
		t.Errorf("expected top-level operator +, got %q", bin.Operator)
	}
	rhs, ok := bin.Right.(*ast.BinaryExpression)
	if !ok || rhs.Operator != "*" {
		t.Errorf("expected * to bind tighter than +, got %#v", bin.Right)
	}
}

func TestParseExponentRightAssociative(t *testing.T) {
	program := parseProgram(t, "2 ** 3 ** 2")
	expr := singleExprStmt(t, program)
	bin, ok := expr.(*ast.BinaryExpression)
	if !ok || bin.Operator != "**" {
		t.Fatalf("expected top-level **, got %#v", expr)
	}
	if _, ok := bin.Right.(*ast.BinaryExpression); !ok {
		t.Errorf("expected ** to be right-associative (2 ** (3 ** 2)), got %#v", bin.Right)
	}
	if _, ok := bin.Left.(*ast.NumberLiteral); !ok {
		t.Errorf("expected left operand to be a bare literal, got %#v", bin.Left)
	}
}

func TestParseVariableDeclarations(t *testing.T) {
	for _, kind := range []string{"var", "let", "const"} {
		program := parseProgram(t, kind+" x = 1;")
		if len(program.Statements) != 1 {
			t.Fatalf("expected 1 statement, got %d", len(program.Statements))
		}
		decl, ok := program.Statements[0].(*ast.VariableDeclaration)
		if !ok {
			t.Fatalf("expected *ast.VariableDeclaration, got %T", program.Statements[0])
		}
		if decl.Kind != kind {
			t.Errorf("expected Kind %q, got %q", kind, decl.Kind)
		}
	}
}

func TestParseArrowFunction(t *testing.T) {
	program := parseProgram(t, "const f = (a, b) => a + b;")
	decl := program.Statements[0].(*ast.VariableDeclaration)
	fn, ok := decl.Declarations[0].Init.(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("expected *ast.FunctionLiteral, got %T", decl.Declarations[0].Init)
	}
	if !fn.Arrow {
		t.Errorf("expected Arrow to be true")
	}
	if len(fn.Params) != 2 {
		t.Errorf("expected 2 params, got %d", len(fn.Params))
	}
	if _, ok := fn.Body.(ast.Expression); !ok {
		t.Errorf("expected arrow shorthand body to be an expression, got %T", fn.Body)
	}
}

func TestParseBareParamArrowFunction(t *testing.T) {
	program := parseProgram(t, "const f = x => x * 2;")
	decl := program.Statements[0].(*ast.VariableDeclaration)
	fn, ok := decl.Declarations[0].Init.(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("expected *ast.FunctionLiteral, got %T", decl.Declarations[0].Init)
	}
	if !fn.Arrow {
		t.Errorf("expected Arrow to be true")
	}
	if len(fn.Params) != 1 {
		t.Fatalf("expected 1 param, got %d", len(fn.Params))
	}
	if ident, ok := fn.Params[0].(*ast.Identifier); !ok || ident.Name != "x" {
		t.Errorf("expected param x, got %#v", fn.Params[0])
	}
}

func TestParseAsyncArrowIsTolerated(t *testing.T) {
	for _, src := range []string{"const f = async () => 1;", "const f = async x => x;"} {
		program := parseProgram(t, src)
		decl := program.Statements[0].(*ast.VariableDeclaration)
		fn, ok := decl.Declarations[0].Init.(*ast.FunctionLiteral)
		if !ok {
			t.Fatalf("%s: expected *ast.FunctionLiteral, got %T", src, decl.Declarations[0].Init)
		}
		if !fn.Async || !fn.Arrow {
			t.Errorf("%s: expected Async+Arrow, got Async=%v Arrow=%v", src, fn.Async, fn.Arrow)
		}
	}
}

func TestParseKeywordAsPropertyName(t *testing.T) {
	program := parseProgram(t, "obj.delete")
	expr := singleExprStmt(t, program)
	member, ok := expr.(*ast.MemberExpression)
	if !ok {
		t.Fatalf("expected *ast.MemberExpression, got %T", expr)
	}
	prop, ok := member.Property.(*ast.Identifier)
	if !ok || prop.Name != "delete" {
		t.Errorf("expected property name \"delete\", got %#v", member.Property)
	}
}

func TestParseArrowFunctionVsParenthesizedExpression(t *testing.T) {
	program := parseProgram(t, "(1 + 2)")
	expr := singleExprStmt(t, program)
	if _, ok := expr.(*ast.FunctionLiteral); ok {
		t.Fatalf("a parenthesized expression must not be parsed as an arrow function")
	}
	if _, ok := expr.(*ast.BinaryExpression); !ok {
		t.Fatalf("expected *ast.BinaryExpression, got %T", expr)
	}
}

func TestParseOptionalChaining(t *testing.T) {
	program := parseProgram(t, "a?.b?.c()")
	expr := singleExprStmt(t, program)
	chain, ok := expr.(*ast.ChainExpression)
	if !ok {
		t.Fatalf("expected *ast.ChainExpression, got %T", expr)
	}
	if _, ok := chain.Expression.(*ast.CallExpression); !ok {
		t.Errorf("expected the wrapped expression to end in a call, got %#v", chain.Expression)
	}
}

func TestParseTemplateLiteral(t *testing.T) {
	program := parseProgram(t, "`hello ${1 + 2} world`")
	expr := singleExprStmt(t, program)
	tmpl, ok := expr.(*ast.TemplateLiteral)
	if !ok {
		t.Fatalf("expected *ast.TemplateLiteral, got %T", expr)
	}
	if len(tmpl.Quasis) != 2 || len(tmpl.Expressions) != 1 {
		t.Fatalf("expected 2 quasis and 1 interpolation, got %d/%d", len(tmpl.Quasis), len(tmpl.Expressions))
	}
	if _, ok := tmpl.Expressions[0].(*ast.BinaryExpression); !ok {
		t.Errorf("expected the interpolation to parse as a binary expression, got %#v", tmpl.Expressions[0])
	}
}

func TestParseObjectLiteralShorthandAndComputed(t *testing.T) {
	program := parseProgram(t, "({ x, [k]: 1 })")
	expr := singleExprStmt(t, program)
	obj, ok := expr.(*ast.ObjectLiteral)
	if !ok {
		t.Fatalf("expected *ast.ObjectLiteral, got %T", expr)
	}
	if len(obj.Properties) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(obj.Properties))
	}
	if !obj.Properties[0].Shorthand {
		t.Errorf("expected first property to be shorthand")
	}
	if !obj.Properties[1].Computed {
		t.Errorf("expected second property to be computed")
	}
}

func TestParseSpreadInArrayAndCall(t *testing.T) {
	program := parseProgram(t, "f(...args, [1, ...rest])")
	expr := singleExprStmt(t, program)
	call, ok := expr.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expected *ast.CallExpression, got %T", expr)
	}
	if len(call.Arguments) != 2 {
		t.Fatalf("expected 2 call arguments, got %d", len(call.Arguments))
	}
	if _, ok := call.Arguments[0].(*ast.SpreadElement); !ok {
		t.Errorf("expected first argument to be a spread element, got %#v", call.Arguments[0])
	}
}

func TestParseRestParameter(t *testing.T) {
	program := parseProgram(t, "function f(a, ...rest) { return rest; }")
	decl, ok := program.Statements[0].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("expected *ast.FunctionDeclaration, got %T", program.Statements[0])
	}
	if len(decl.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(decl.Params))
	}
	if _, ok := decl.Params[1].(*ast.RestElement); !ok {
		t.Errorf("expected second param to be a rest element, got %#v", decl.Params[1])
	}
}

func TestParseDestructuringBindingIsTolerated(t *testing.T) {
	program := parseProgram(t, "let {a, b} = obj;")
	decl, ok := program.Statements[0].(*ast.VariableDeclaration)
	if !ok {
		t.Fatalf("expected *ast.VariableDeclaration, got %T", program.Statements[0])
	}
	if _, ok := decl.Declarations[0].Name.(*ast.UnsupportedPattern); !ok {
		t.Errorf("expected an UnsupportedPattern binding, got %#v", decl.Declarations[0].Name)
	}
}

func TestParseReturnOutsideFunctionIsRejectedByDefault(t *testing.T) {
	l := lexer.New("return 1;")
	p := New(l, Options{})
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatal("expected a parse error for a top-level return")
	}
}

func TestParseReturnOutsideFunctionAllowedWithOption(t *testing.T) {
	l := lexer.New("return 1;")
	p := New(l, Options{AllowReturnOutsideFunction: true})
	p.ParseProgram()
	checkParserErrors(t, p)
}

func TestParseIfElseChain(t *testing.T) {
	program := parseProgram(t, "if (a) { 1 } else if (b) { 2 } else { 3 }")
	ifStmt, ok := program.Statements[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected *ast.IfStatement, got %T", program.Statements[0])
	}
	elseIf, ok := ifStmt.Alternate.(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected the else branch to be a nested *ast.IfStatement, got %T", ifStmt.Alternate)
	}
	if elseIf.Alternate == nil {
		t.Errorf("expected a final else branch")
	}
}

func TestParseCompoundAssignmentOperators(t *testing.T) {
	ops := []string{"+=", "-=", "*=", "/=", "%=", "**=", "&=", "|=", "^=", "<<=", ">>="}
	for _, op := range ops {
		program := parseProgram(t, "x "+op+" 1;")
		expr := singleExprStmt(t, program)
		assign, ok := expr.(*ast.AssignmentExpression)
		if !ok {
			t.Fatalf("%s: expected *ast.AssignmentExpression, got %T", op, expr)
		}
		if assign.Operator != op {
			t.Errorf("expected operator %q, got %q", op, assign.Operator)
		}
	}
}

func TestParseUpdateExpressions(t *testing.T) {
	program := parseProgram(t, "x++;")
	expr := singleExprStmt(t, program)
	upd, ok := expr.(*ast.UpdateExpression)
	if !ok {
		t.Fatalf("expected *ast.UpdateExpression, got %T", expr)
	}
	if upd.Prefix {
		t.Errorf("expected a postfix increment")
	}

	program = parseProgram(t, "++x;")
	expr = singleExprStmt(t, program)
	upd, ok = expr.(*ast.UpdateExpression)
	if !ok {
		t.Fatalf("expected *ast.UpdateExpression, got %T", expr)
	}
	if !upd.Prefix {
		t.Errorf("expected a prefix increment")
	}
}

func TestParseAsyncFunctionIsTolerated(t *testing.T) {
	program := parseProgram(t, "const f = async function() { return 1; };")
	decl := program.Statements[0].(*ast.VariableDeclaration)
	fn, ok := decl.Declarations[0].Init.(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("expected *ast.FunctionLiteral, got %T", decl.Declarations[0].Init)
	}
	if !fn.Async {
		t.Errorf("expected Async to be true; rejection is the evaluator's job, not the parser's")
	}
}
