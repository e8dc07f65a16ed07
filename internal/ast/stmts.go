package ast

import (
	"bytes"
	"strings"

	"github.com/evalbox/evalbox/internal/token"
)

// ExpressionStatement is a bare expression used as a statement.
type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (e *ExpressionStatement) statementNode()     {}
func (e *ExpressionStatement) TokenLiteral() string { return e.Token.Literal }
func (e *ExpressionStatement) Pos() token.Position  { return e.Token.Pos }
func (e *ExpressionStatement) String() string {
	if e.Expression == nil {
		return ""
	}
	return e.Expression.String()
}

// VariableDeclarator pairs a binding pattern with its optional initializer.
type VariableDeclarator struct {
	Name Pattern
	Init Expression // nil if no initializer
}

// VariableDeclaration is `var|let|const decl, decl, ...;`.
type VariableDeclaration struct {
	Token        token.Token
	Kind         string // "var", "let", or "const"
	Declarations []VariableDeclarator
}

func (v *VariableDeclaration) statementNode()     {}
func (v *VariableDeclaration) TokenLiteral() string { return v.Token.Literal }
func (v *VariableDeclaration) Pos() token.Position  { return v.Token.Pos }
func (v *VariableDeclaration) String() string {
	var out bytes.Buffer
	out.WriteString(v.Kind + " ")
	parts := make([]string, len(v.Declarations))
	for i, d := range v.Declarations {
		s := d.Name.String()
		if d.Init != nil {
			s += " = " + d.Init.String()
		}
		parts[i] = s
	}
	out.WriteString(strings.Join(parts, ", "))
	return out.String()
}

// BlockStatement is `{ stmt; stmt; ... }`, introducing a child scope.
type BlockStatement struct {
	Token      token.Token
	Statements []Statement
}

func (b *BlockStatement) statementNode()      {}
func (b *BlockStatement) TokenLiteral() string { return b.Token.Literal }
func (b *BlockStatement) Pos() token.Position  { return b.Token.Pos }
func (b *BlockStatement) String() string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for _, s := range b.Statements {
		out.WriteString(s.String())
		out.WriteString("; ")
	}
	out.WriteString("}")
	return out.String()
}

// IfStatement is `if (test) consequent [else alternate]`.
type IfStatement struct {
	Token      token.Token
	Test       Expression
	Consequent Statement
	Alternate  Statement // nil if no else branch
}

func (s *IfStatement) statementNode()      {}
func (s *IfStatement) TokenLiteral() string { return s.Token.Literal }
func (s *IfStatement) Pos() token.Position  { return s.Token.Pos }
func (s *IfStatement) String() string {
	out := "if (" + s.Test.String() + ") " + s.Consequent.String()
	if s.Alternate != nil {
		out += " else " + s.Alternate.String()
	}
	return out
}

// WhileStatement is `while (test) body`.
type WhileStatement struct {
	Token token.Token
	Test  Expression
	Body  Statement
}

func (w *WhileStatement) statementNode()      {}
func (w *WhileStatement) TokenLiteral() string { return w.Token.Literal }
func (w *WhileStatement) Pos() token.Position  { return w.Token.Pos }
func (w *WhileStatement) String() string {
	return "while (" + w.Test.String() + ") " + w.Body.String()
}

// ReturnStatement is `return [argument];`.
type ReturnStatement struct {
	Token    token.Token
	Argument Expression // nil when bare `return;`
}

func (r *ReturnStatement) statementNode()      {}
func (r *ReturnStatement) TokenLiteral() string { return r.Token.Literal }
func (r *ReturnStatement) Pos() token.Position  { return r.Token.Pos }
func (r *ReturnStatement) String() string {
	if r.Argument == nil {
		return "return"
	}
	return "return " + r.Argument.String()
}

// FunctionDeclaration is a named function statement; it both declares an
// immutable binding and evaluates to that function value.
type FunctionDeclaration struct {
	*FunctionLiteral
}

func (f *FunctionDeclaration) statementNode() {}
