// Package evalbox is the public embedding surface for the sandboxed
// evaluator: a thin callable taking source, a host context, and bounded
// resource options, wired on top of internal/parser and internal/interp.
package evalbox

import (
	"sync/atomic"

	"github.com/evalbox/evalbox/internal/ast"
	"github.com/evalbox/evalbox/internal/errors"
	"github.com/evalbox/evalbox/internal/interp"
	"github.com/evalbox/evalbox/internal/lexer"
	"github.com/evalbox/evalbox/internal/parser"
)

// ValidateOptions configures parsing only; no evaluation takes place.
type ValidateOptions struct {
	// AllowReturnOutsideFunction permits a bare top-level `return`,
	// used by hosts that treat the whole program like a function body.
	AllowReturnOutsideFunction bool

	// File annotates syntax errors, e.g. "script.ebx", instead of a bare
	// line:column.
	File string
}

// EvaluateOptions bounds a single evaluation's resources and parsing mode.
type EvaluateOptions struct {
	// AllowReturnOutsideFunction permits a bare top-level `return`.
	AllowReturnOutsideFunction bool

	// TimeoutMs bounds wall-clock execution time; zero means unbounded.
	TimeoutMs int

	// MaxCallDepth bounds function-call recursion; zero uses the
	// built-in default.
	MaxCallDepth int

	// DisableWhileStatements rejects every `while` loop the program
	// reaches with a ResourceError instead of running it.
	DisableWhileStatements bool

	// Abort, if non-nil, is polled cooperatively; setting it mid-run
	// raises "Execution aborted" at the next guard checkpoint.
	Abort *atomic.Bool

	// Trace, if non-nil, prints one line per evaluated AST node.
	Trace func(line string)

	// File annotates errors the way ValidateOptions.File does.
	File string
}

// ValidationError reports syntax errors collected while parsing; it wraps
// every *errors.CompilerError the parser produced so a host can format
// them individually or all at once via errors.As.
type ValidationError struct {
	Errors []*errors.CompilerError
}

func (e *ValidationError) Error() string {
	return errors.FormatAll(e.Errors, false)
}

// Validate parses source and reports every syntax error found. On
// success it returns the parsed program for hosts that want to inspect
// or cache the AST ahead of Evaluate.
func Validate(source string, opts ValidateOptions) (*ast.Program, error) {
	l := lexer.New(source)
	p := parser.New(l, parser.Options{AllowReturnOutsideFunction: opts.AllowReturnOutsideFunction})
	program := p.ParseProgram()

	if perrs := p.Errors(); len(perrs) > 0 {
		cerrs := make([]*errors.CompilerError, len(perrs))
		for i, pe := range perrs {
			cerrs[i] = errors.NewSyntaxError(pe.Pos, pe.Message, source, opts.File)
		}
		return nil, &ValidationError{Errors: cerrs}
	}
	return program, nil
}

// Evaluate parses and runs source against a context of host-supplied
// bindings (values and callables, wrapped via interp.FromHost), bounded
// by opts, and returns the value of the last evaluated statement
// unwrapped back into plain Go data via interp.ToHost.
func Evaluate(source string, context map[string]any, opts EvaluateOptions) (any, error) {
	program, err := Validate(source, ValidateOptions{
		AllowReturnOutsideFunction: opts.AllowReturnOutsideFunction,
		File:                       opts.File,
	})
	if err != nil {
		return nil, err
	}

	guard := interp.NewGuard(opts.TimeoutMs, opts.Abort, opts.MaxCallDepth, opts.DisableWhileStatements)
	it := interp.New(guard, source, opts.File)
	if opts.Trace != nil {
		it.SetTrace(traceWriter(opts.Trace))
	}

	env := interp.NewEnvironment()
	for name, v := range context {
		env.Declare(name, interp.FromHost(v), true)
	}

	result, err := it.RunProgram(env, program)
	if err != nil {
		return nil, err
	}
	return interp.ToHost(result), nil
}

// traceWriter adapts a func(string) sink into an io.Writer so
// EvaluateOptions.Trace can plug directly into Interpreter.SetTrace
// without the caller depending on internal/interp.
type traceWriter func(line string)

func (w traceWriter) Write(p []byte) (int, error) {
	w(string(p))
	return len(p), nil
}
