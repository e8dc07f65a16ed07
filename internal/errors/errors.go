// Package errors formats compiler and runtime errors with source context,
// line/column information, and a caret pointing at the offending column.
package errors

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/evalbox/evalbox/internal/token"
)

// kindCaser renders each error kind's label in the conventional title case
// used throughout the CLI's diagnostic output.
var kindCaser = cases.Title(language.English)

// Kind classifies a runtime error per the evaluator's error taxonomy.
type Kind string

const (
	KindSyntax             Kind = "SyntaxError"
	KindUnsupportedFeature Kind = "UnsupportedFeature"
	KindName               Kind = "NameError"
	KindType               Kind = "TypeError"
	KindResource           Kind = "ResourceError"
)

// CompilerError is a single syntax or runtime error with enough context to
// render a source-annotated message.
type CompilerError struct {
	Kind    Kind
	Message string
	Source  string
	File    string
	Pos     token.Position
}

// NewSyntaxError builds a parse-time CompilerError.
func NewSyntaxError(pos token.Position, message, source, file string) *CompilerError {
	return &CompilerError{Kind: KindSyntax, Message: message, Source: source, File: file, Pos: pos}
}

// NewRuntimeError builds an evaluation-time CompilerError of the given kind.
func NewRuntimeError(kind Kind, pos token.Position, message, source, file string) *CompilerError {
	return &CompilerError{Kind: kind, Message: message, Source: source, File: file, Pos: pos}
}

// Error implements the error interface with an uncolored, single-line-caret
// rendering.
func (e *CompilerError) Error() string {
	return e.Format(false)
}

// Format renders the error with its source line and a caret under the
// offending column. When color is true, ANSI codes highlight the caret.
func (e *CompilerError) Format(color bool) string {
	var sb strings.Builder

	label := kindLabel(e.Kind)
	if e.File != "" {
		sb.WriteString(fmt.Sprintf("%s in %s:%d:%d\n", label, e.File, e.Pos.Line, e.Pos.Column))
	} else {
		sb.WriteString(fmt.Sprintf("%s at %d:%d\n", label, e.Pos.Line, e.Pos.Column))
	}

	if line := sourceLine(e.Source, e.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(prefix)+max0(e.Pos.Column-1)))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func sourceLine(source string, line int) string {
	if source == "" || line < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// kindLabel title-cases the error kind for display, e.g. "SyntaxError" ->
// "Syntax Error".
func kindLabel(k Kind) string {
	return kindCaser.String(spaceBeforeUpper(string(k)))
}

// spaceBeforeUpper inserts a space before every interior uppercase rune,
// turning a Go-style identifier like "SyntaxError" into "Syntax Error".
func spaceBeforeUpper(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// FormatAll joins every error's Format output, separated by a newline.
func FormatAll(errs []*CompilerError, color bool) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Format(color)
	}
	return strings.Join(parts, "\n")
}
