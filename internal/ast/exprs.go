package ast

import (
	"bytes"
	"strings"

	"github.com/evalbox/evalbox/internal/token"
)

// Identifier names a binding to resolve against the scope chain.
type Identifier struct {
	Token token.Token
	Name  string
}

func (i *Identifier) expressionNode()          {}
func (i *Identifier) patternNode()             {}
func (i *Identifier) Kind() string             { return "Identifier" }
func (i *Identifier) TokenLiteral() string     { return i.Token.Literal }
func (i *Identifier) String() string           { return i.Name }
func (i *Identifier) Pos() token.Position      { return i.Token.Pos }

// RestElement is the trailing `...name` parameter pattern.
type RestElement struct {
	Token   token.Token
	Element Pattern
}

func (r *RestElement) expressionNode()      {}
func (r *RestElement) patternNode()         {}
func (r *RestElement) Kind() string         { return "RestElement" }
func (r *RestElement) TokenLiteral() string { return r.Token.Literal }
func (r *RestElement) String() string       { return "..." + r.Element.String() }
func (r *RestElement) Pos() token.Position  { return r.Token.Pos }

// UnsupportedPattern stands in for destructuring patterns ({a,b} or
// [a,b]) that the evaluator explicitly rejects at declaration/bind time.
type UnsupportedPattern struct {
	Token     token.Token
	PatternOf string // "ObjectPattern" or "ArrayPattern"
}

func (u *UnsupportedPattern) expressionNode()      {}
func (u *UnsupportedPattern) patternNode()         {}
func (u *UnsupportedPattern) Kind() string         { return u.PatternOf }
func (u *UnsupportedPattern) TokenLiteral() string { return u.Token.Literal }
func (u *UnsupportedPattern) String() string       { return "<" + u.PatternOf + ">" }
func (u *UnsupportedPattern) Pos() token.Position  { return u.Token.Pos }

// NumberLiteral is a numeric literal, stored as float64 per the value
// model's single number type.
type NumberLiteral struct {
	Token token.Token
	Value float64
}

func (n *NumberLiteral) expressionNode()      {}
func (n *NumberLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *NumberLiteral) String() string       { return n.Token.Literal }
func (n *NumberLiteral) Pos() token.Position  { return n.Token.Pos }

// StringLiteral is a single- or double-quoted string literal.
type StringLiteral struct {
	Token token.Token
	Value string
}

func (s *StringLiteral) expressionNode()      {}
func (s *StringLiteral) TokenLiteral() string { return s.Token.Literal }
func (s *StringLiteral) String() string       { return "\"" + s.Value + "\"" }
func (s *StringLiteral) Pos() token.Position  { return s.Token.Pos }

// BoolLiteral is `true` or `false`.
type BoolLiteral struct {
	Token token.Token
	Value bool
}

func (b *BoolLiteral) expressionNode()      {}
func (b *BoolLiteral) TokenLiteral() string { return b.Token.Literal }
func (b *BoolLiteral) String() string       { return b.Token.Literal }
func (b *BoolLiteral) Pos() token.Position  { return b.Token.Pos }

// NullLiteral is the `null` literal.
type NullLiteral struct {
	Token token.Token
}

func (n *NullLiteral) expressionNode()      {}
func (n *NullLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *NullLiteral) String() string       { return "null" }
func (n *NullLiteral) Pos() token.Position  { return n.Token.Pos }

// UndefinedLiteral is the `undefined` reserved identifier.
type UndefinedLiteral struct {
	Token token.Token
}

func (u *UndefinedLiteral) expressionNode()      {}
func (u *UndefinedLiteral) TokenLiteral() string { return u.Token.Literal }
func (u *UndefinedLiteral) String() string       { return "undefined" }
func (u *UndefinedLiteral) Pos() token.Position  { return u.Token.Pos }

// TemplateLiteral interleaves cooked string quasis with expressions:
// Quasis has one more element than Expressions.
type TemplateLiteral struct {
	Token       token.Token
	Quasis      []string
	Expressions []Expression
}

func (t *TemplateLiteral) expressionNode()      {}
func (t *TemplateLiteral) TokenLiteral() string { return t.Token.Literal }
func (t *TemplateLiteral) Pos() token.Position  { return t.Token.Pos }
func (t *TemplateLiteral) String() string {
	var out bytes.Buffer
	out.WriteString("`")
	for i, q := range t.Quasis {
		out.WriteString(q)
		if i < len(t.Expressions) {
			out.WriteString("${")
			out.WriteString(t.Expressions[i].String())
			out.WriteString("}")
		}
	}
	out.WriteString("`")
	return out.String()
}

// SpreadElement is `...expr` inside an array/object literal or a call's
// argument list.
type SpreadElement struct {
	Token    token.Token
	Argument Expression
}

func (s *SpreadElement) expressionNode()      {}
func (s *SpreadElement) TokenLiteral() string { return s.Token.Literal }
func (s *SpreadElement) String() string       { return "..." + s.Argument.String() }
func (s *SpreadElement) Pos() token.Position  { return s.Token.Pos }

// ArrayLiteral is `[elem, ...]`. Elements may be SpreadElement nodes.
type ArrayLiteral struct {
	Token    token.Token
	Elements []Expression
}

func (a *ArrayLiteral) expressionNode()      {}
func (a *ArrayLiteral) TokenLiteral() string { return a.Token.Literal }
func (a *ArrayLiteral) Pos() token.Position  { return a.Token.Pos }
func (a *ArrayLiteral) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ObjectProperty is one `key: value` entry of an object literal, or a
// SpreadElement standing in for `...expr`.
type ObjectProperty struct {
	Key       Expression // Identifier (non-computed) or any Expression (computed)
	Value     Expression
	Computed  bool
	Shorthand bool
	Spread    Expression // non-nil for `...expr` entries; Key/Value unused then
}

// ObjectLiteral is `{ k: v, ... }`.
type ObjectLiteral struct {
	Token      token.Token
	Properties []ObjectProperty
}

func (o *ObjectLiteral) expressionNode()      {}
func (o *ObjectLiteral) TokenLiteral() string { return o.Token.Literal }
func (o *ObjectLiteral) Pos() token.Position  { return o.Token.Pos }
func (o *ObjectLiteral) String() string {
	parts := make([]string, len(o.Properties))
	for i, p := range o.Properties {
		if p.Spread != nil {
			parts[i] = "..." + p.Spread.String()
			continue
		}
		parts[i] = p.Key.String() + ": " + p.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// MemberExpression is `object.prop` or `object[expr]`, optionally
// optional-chained (`?.`).
type MemberExpression struct {
	Token    token.Token
	Object   Expression
	Property Expression // Identifier when !Computed, else any Expression
	Computed bool
	Optional bool
}

func (m *MemberExpression) expressionNode()      {}
func (m *MemberExpression) TokenLiteral() string { return m.Token.Literal }
func (m *MemberExpression) Pos() token.Position  { return m.Token.Pos }
func (m *MemberExpression) String() string {
	op := "."
	if m.Optional {
		op = "?."
	}
	if m.Computed {
		return m.Object.String() + (map[bool]string{true: "?.", false: ""}[m.Optional]) + "[" + m.Property.String() + "]"
	}
	return m.Object.String() + op + m.Property.String()
}

// CallExpression is `callee(args...)`, optionally optional-chained.
type CallExpression struct {
	Token     token.Token
	Callee    Expression
	Arguments []Expression
	Optional  bool
}

func (c *CallExpression) expressionNode()      {}
func (c *CallExpression) TokenLiteral() string { return c.Token.Literal }
func (c *CallExpression) Pos() token.Position  { return c.Token.Pos }
func (c *CallExpression) String() string {
	parts := make([]string, len(c.Arguments))
	for i, a := range c.Arguments {
		parts[i] = a.String()
	}
	op := "("
	if c.Optional {
		op = "?.("
	}
	return c.Callee.String() + op + strings.Join(parts, ", ") + ")"
}

// ChainExpression wraps a top-level optional member/call chain so the
// evaluator can catch the safe-navigation carrier at a single boundary.
type ChainExpression struct {
	Token      token.Token
	Expression Expression
}

func (c *ChainExpression) expressionNode()      {}
func (c *ChainExpression) TokenLiteral() string { return c.Token.Literal }
func (c *ChainExpression) Pos() token.Position  { return c.Token.Pos }
func (c *ChainExpression) String() string       { return c.Expression.String() }

// UnaryExpression is a prefix operator: `+ - ! ~`.
type UnaryExpression struct {
	Token    token.Token
	Operator string
	Argument Expression
}

func (u *UnaryExpression) expressionNode()      {}
func (u *UnaryExpression) TokenLiteral() string { return u.Token.Literal }
func (u *UnaryExpression) Pos() token.Position  { return u.Token.Pos }
func (u *UnaryExpression) String() string       { return "(" + u.Operator + u.Argument.String() + ")" }

// DeleteExpression is `delete target`.
type DeleteExpression struct {
	Token    token.Token
	Argument Expression
}

func (d *DeleteExpression) expressionNode()      {}
func (d *DeleteExpression) TokenLiteral() string { return d.Token.Literal }
func (d *DeleteExpression) Pos() token.Position  { return d.Token.Pos }
func (d *DeleteExpression) String() string       { return "delete " + d.Argument.String() }

// UpdateExpression is `++x`, `x++`, `--x`, or `x--`.
type UpdateExpression struct {
	Token    token.Token
	Operator string
	Argument Expression
	Prefix   bool
}

func (u *UpdateExpression) expressionNode()      {}
func (u *UpdateExpression) TokenLiteral() string { return u.Token.Literal }
func (u *UpdateExpression) Pos() token.Position  { return u.Token.Pos }
func (u *UpdateExpression) String() string {
	if u.Prefix {
		return u.Operator + u.Argument.String()
	}
	return u.Argument.String() + u.Operator
}

// BinaryExpression is a non-short-circuiting infix operator.
type BinaryExpression struct {
	Token    token.Token
	Operator string
	Left     Expression
	Right    Expression
}

func (b *BinaryExpression) expressionNode()      {}
func (b *BinaryExpression) TokenLiteral() string { return b.Token.Literal }
func (b *BinaryExpression) Pos() token.Position  { return b.Token.Pos }
func (b *BinaryExpression) String() string {
	return "(" + b.Left.String() + " " + b.Operator + " " + b.Right.String() + ")"
}

// LogicalExpression is `&&` or `||`, which short-circuit.
type LogicalExpression struct {
	Token    token.Token
	Operator string
	Left     Expression
	Right    Expression
}

func (l *LogicalExpression) expressionNode()      {}
func (l *LogicalExpression) TokenLiteral() string { return l.Token.Literal }
func (l *LogicalExpression) Pos() token.Position  { return l.Token.Pos }
func (l *LogicalExpression) String() string {
	return "(" + l.Left.String() + " " + l.Operator + " " + l.Right.String() + ")"
}

// ConditionalExpression is `test ? consequent : alternate`.
type ConditionalExpression struct {
	Token       token.Token
	Test        Expression
	Consequent  Expression
	Alternate   Expression
}

func (c *ConditionalExpression) expressionNode()      {}
func (c *ConditionalExpression) TokenLiteral() string { return c.Token.Literal }
func (c *ConditionalExpression) Pos() token.Position  { return c.Token.Pos }
func (c *ConditionalExpression) String() string {
	return "(" + c.Test.String() + " ? " + c.Consequent.String() + " : " + c.Alternate.String() + ")"
}

// AssignmentExpression is `lhs op= rhs` for `=` and the compound forms.
type AssignmentExpression struct {
	Token    token.Token
	Operator string
	Left     Expression // Identifier or MemberExpression
	Right    Expression
}

func (a *AssignmentExpression) expressionNode()      {}
func (a *AssignmentExpression) TokenLiteral() string { return a.Token.Literal }
func (a *AssignmentExpression) Pos() token.Position  { return a.Token.Pos }
func (a *AssignmentExpression) String() string {
	return "(" + a.Left.String() + " " + a.Operator + " " + a.Right.String() + ")"
}

// FunctionLiteral backs function declarations, function expressions, and
// arrow functions; Arrow and Name distinguish the forms.
type FunctionLiteral struct {
	Token  token.Token
	Name   *Identifier // nil for anonymous expressions and arrows
	Params []Pattern
	Body   Node // *BlockStatement, or an Expression for arrow shorthand
	Arrow  bool
	Async  bool
}

func (f *FunctionLiteral) expressionNode()      {}
func (f *FunctionLiteral) TokenLiteral() string { return f.Token.Literal }
func (f *FunctionLiteral) Pos() token.Position  { return f.Token.Pos }
func (f *FunctionLiteral) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	name := ""
	if f.Name != nil {
		name = f.Name.Name
	}
	return "function " + name + "(" + strings.Join(parts, ", ") + ") " + f.Body.String()
}
