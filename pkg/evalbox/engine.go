package evalbox

import (
	"sync/atomic"

	"github.com/evalbox/evalbox/internal/interp"
)

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithTimeout bounds every Eval call's wall-clock budget in milliseconds.
func WithTimeout(ms int) Option {
	return func(e *Engine) { e.timeoutMs = ms }
}

// WithMaxCallDepth bounds recursion depth; zero uses the built-in default.
func WithMaxCallDepth(depth int) Option {
	return func(e *Engine) { e.maxCallDepth = depth }
}

// WithDisableWhileStatements rejects every `while` loop a script reaches.
func WithDisableWhileStatements(disabled bool) Option {
	return func(e *Engine) { e.disableWhile = disabled }
}

// WithAbortFlag shares an external atomic.Bool as the cooperative abort
// switch, letting a host cancel a running Eval from another goroutine
// (e.g. on SIGINT).
func WithAbortFlag(abort *atomic.Bool) Option {
	return func(e *Engine) { e.abort = abort }
}

// Engine is a reusable, pre-configured evaluator: host bindings
// registered once via RegisterFunction/RegisterValue are available to
// every subsequent Eval call, mirroring a long-lived host-script
// integration rather than the one-shot Evaluate function.
type Engine struct {
	bindings map[string]any

	timeoutMs    int
	maxCallDepth int
	disableWhile bool
	abort        *atomic.Bool
	file         string
}

// New constructs an Engine with the given options applied.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{bindings: make(map[string]any)}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// RegisterFunction binds name to a native callable reachable from script
// code. fn receives the already-evaluated argument Values and the bound
// receiver (Undefined for a plain identifier call).
func (e *Engine) RegisterFunction(name string, fn func(this Value, args []Value) (Value, error)) error {
	e.bindings[name] = &interp.NativeFunction{Name: name, Fn: fn}
	return nil
}

// RegisterValue binds name to a plain host value, wrapped via
// interp.FromHost the same way Eval's context map is.
func (e *Engine) RegisterValue(name string, v any) error {
	e.bindings[name] = v
	return nil
}

// Result carries an Eval outcome; Success mirrors the teacher's
// Engine.Eval API shape for hosts migrating from a similar integration.
type Result struct {
	Value   any
	Success bool
}

// Eval runs source against every binding registered so far, bounded by
// the Engine's configured guards.
func (e *Engine) Eval(source string) (Result, error) {
	v, err := Evaluate(source, e.bindings, EvaluateOptions{
		TimeoutMs:              e.timeoutMs,
		MaxCallDepth:           e.maxCallDepth,
		DisableWhileStatements: e.disableWhile,
		Abort:                  e.abort,
		File:                   e.file,
	})
	if err != nil {
		return Result{Success: false}, err
	}
	return Result{Value: v, Success: true}, nil
}
