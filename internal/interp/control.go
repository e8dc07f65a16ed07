package interp

// returnSignal carries a `return` statement's payload up to the nearest
// function-call boundary (or the top-level program, which always catches
// it; whether a top-level `return` is accepted at all is decided by the
// parser). It is implemented as a Go panic
// value rather than a sentinel Value so that ordinary recursive Eval
// calls need no extra plumbing to propagate it — recover() at the
// catching boundary is the only place it is ever inspected.
type returnSignal struct {
	value Value
}

// safeNavSignal carries a short-circuited optional-chain access up to
// the nearest enclosing ChainExpression, which recovers it and yields
// undefined (or true, for a short-circuited delete).
type safeNavSignal struct{}

// throwReturn raises the Return carrier; callers catch it with
// catchReturn at a function-call or top-level boundary.
func throwReturn(v Value) {
	panic(returnSignal{value: v})
}

// catchReturn recovers a returnSignal panic and reports it via ok. Any
// other panic (a runtime error or a safeNavSignal that escaped its
// chain) is re-raised unchanged.
func catchReturn(result *Value, ok *bool) {
	if r := recover(); r != nil {
		if rs, isReturn := r.(returnSignal); isReturn {
			*result = rs.value
			*ok = true
			return
		}
		panic(r)
	}
}

// throwSafeNav raises the safe-navigation carrier.
func throwSafeNav() {
	panic(safeNavSignal{})
}

// catchSafeNav recovers a safeNavSignal panic, reporting whether one was
// caught. Any other panic propagates unchanged.
func catchSafeNav(caught *bool) {
	if r := recover(); r != nil {
		if _, isSafeNav := r.(safeNavSignal); isSafeNav {
			*caught = true
			return
		}
		panic(r)
	}
}
