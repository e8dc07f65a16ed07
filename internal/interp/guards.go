package interp

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/evalbox/evalbox/internal/errors"
	"github.com/evalbox/evalbox/internal/token"
)

// defaultMaxCallDepth is used when the caller supplies zero, meaning
// "use the built-in bound" rather than "no limit".
const defaultMaxCallDepth = 1000

// Guard bundles the four safety mechanisms checked at function entry
// and loop iteration: wall-clock budget, cooperative abort, call-depth
// bound, and the while-statement kill switch.
type Guard struct {
	start    time.Time
	budget   time.Duration // zero means unbounded
	abort    *atomic.Bool  // nil means never aborted
	depth    int
	maxDepth int
	loopDisabled bool
}

// NewGuard constructs a Guard from the evaluator's bounded options.
// timeoutMs <= 0 means no time budget; maxCallDepth <= 0 uses the
// built-in default.
func NewGuard(timeoutMs int, abort *atomic.Bool, maxCallDepth int, disableWhile bool) *Guard {
	g := &Guard{
		start:        time.Now(),
		abort:        abort,
		maxDepth:     maxCallDepth,
		loopDisabled: disableWhile,
	}
	if timeoutMs > 0 {
		g.budget = time.Duration(timeoutMs) * time.Millisecond
	}
	if g.maxDepth <= 0 {
		g.maxDepth = defaultMaxCallDepth
	}
	return g
}

// checkTimeAndAbort raises ResourceError if the time budget has elapsed
// or the abort flag is set. Shared by the call-entry and loop-iteration
// guard points.
func (g *Guard) checkTimeAndAbort(pos token.Position) *errors.CompilerError {
	if g.budget > 0 && time.Since(g.start) > g.budget {
		return errors.NewRuntimeError(errors.KindResource, pos, "Execution timed out", "", "")
	}
	if g.abort != nil && g.abort.Load() {
		return errors.NewRuntimeError(errors.KindResource, pos, "Execution aborted", "", "")
	}
	return nil
}

// enterCall increments the call-depth counter and enforces the maximum.
// The depth check happens once per function entry, not per call site.
// Callers must pair every successful enterCall with exitCall on every
// exit path (success, error, or return).
func (g *Guard) enterCall(pos token.Position) *errors.CompilerError {
	if err := g.checkTimeAndAbort(pos); err != nil {
		return err
	}
	g.depth++
	if g.depth > g.maxDepth {
		return errors.NewRuntimeError(errors.KindResource, pos, errMaxStackSize(g.maxDepth), "", "")
	}
	return nil
}

func (g *Guard) exitCall() {
	g.depth--
}

// checkLoopIteration is consulted before each while-body evaluation.
func (g *Guard) checkLoopIteration(pos token.Position) *errors.CompilerError {
	if g.loopDisabled {
		return errors.NewRuntimeError(errors.KindResource, pos, "While statements are not available", "", "")
	}
	return g.checkTimeAndAbort(pos)
}

func errMaxStackSize(max int) string {
	return "Maximum stack size exceeded: " + strconv.Itoa(max)
}
