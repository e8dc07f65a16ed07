// Package ast defines the abstract syntax tree node types produced by the
// parser and walked by the interpreter.
package ast

import (
	"bytes"

	"github.com/evalbox/evalbox/internal/token"
)

// Node is the base interface every AST node implements.
type Node interface {
	TokenLiteral() string
	String() string
	Pos() token.Position
}

// Expression is a node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is a node that performs an action.
type Statement interface {
	Node
	statementNode()
}

// Pattern is the left-hand side of a declaration or parameter: an
// identifier, a rest element, or an unsupported destructuring pattern.
type Pattern interface {
	Node
	patternNode()
	// Kind names the pattern for "Unknown variable declaration <Kind>"
	// style errors raised when the pattern is unsupported.
	Kind() string
}

// Program is the root node: a sequence of top-level statements.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

func (p *Program) Pos() token.Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return token.Position{Line: 1, Column: 1}
}
