package interp

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/evalbox/evalbox/internal/lexer"
	"github.com/evalbox/evalbox/internal/parser"
)

// testEval parses and runs input against a fresh environment with
// generous resource bounds, failing the test on any error.
func testEval(t *testing.T, input string) Value {
	t.Helper()
	v, err := testEvalBounded(input, 0, 0, false, nil)
	if err != nil {
		t.Fatalf("unexpected evaluation error: %v", err)
	}
	return v
}

func testEvalBounded(input string, timeoutMs, maxCallDepth int, disableWhile bool, abort *atomic.Bool) (Value, error) {
	l := lexer.New(input)
	p := parser.New(l, parser.Options{AllowReturnOutsideFunction: true})
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, errs[0]
	}

	guard := NewGuard(timeoutMs, abort, maxCallDepth, disableWhile)
	it := New(guard, input, "<test>")
	env := NewEnvironment()
	return it.RunProgram(env, program)
}

func TestArithmetic(t *testing.T) {
	v := testEval(t, "1 + 2")
	n, ok := v.(Number)
	if !ok || n != 3 {
		t.Fatalf("expected Number(3), got %#v", v)
	}
}

func TestFunctionCall(t *testing.T) {
	v := testEval(t, "function add(a,b){ return a+b; } add(1,2)")
	if n, ok := v.(Number); !ok || n != 3 {
		t.Fatalf("expected Number(3), got %#v", v)
	}
}

func TestWhileLoopAccumulator(t *testing.T) {
	v := testEval(t, "let i=0; let s=0; while(i<5){ s+=i; i+=1 } s")
	if n, ok := v.(Number); !ok || n != 10 {
		t.Fatalf("expected Number(10), got %#v", v)
	}
}

func TestClosureCounters(t *testing.T) {
	src := `
		function createCounter(n){
			let c=n;
			return function(){ c=c+1; return c }
		}
		const a=createCounter(0);
		const b=createCounter(10);
		a(); b();
		[a(), b()]
	`
	v := testEval(t, src)
	arr, ok := v.(*Array)
	if !ok || len(arr.Elements) != 2 {
		t.Fatalf("expected a 2-element array, got %#v", v)
	}
	if n, ok := arr.Elements[0].(Number); !ok || n != 2 {
		t.Errorf("expected first element 2, got %#v", arr.Elements[0])
	}
	if n, ok := arr.Elements[1].(Number); !ok || n != 12 {
		t.Errorf("expected second element 12, got %#v", arr.Elements[1])
	}
}

func TestDeleteNestedMember(t *testing.T) {
	v := testEval(t, "const obj = { a: { b: 1 } }; delete obj.a.b; obj")
	obj, ok := v.(*Object)
	if !ok {
		t.Fatalf("expected *Object, got %#v", v)
	}
	inner, ok := obj.Get("a")
	if !ok {
		t.Fatalf("expected obj.a to still exist")
	}
	innerObj, ok := inner.(*Object)
	if !ok {
		t.Fatalf("expected obj.a to be an object, got %#v", inner)
	}
	if _, ok := innerObj.OwnGet("b"); ok {
		t.Errorf("expected obj.a.b to be deleted")
	}
}

func TestOptionalChainingOnNull(t *testing.T) {
	v := testEval(t, "const o = null; o?.a?.b")
	if _, ok := v.(Undefined); !ok {
		t.Fatalf("expected Undefined, got %#v", v)
	}
}

func TestMaxCallDepthExceeded(t *testing.T) {
	_, err := testEvalBounded("function f(){ f() } f()", 0, 3, false, nil)
	if err == nil {
		t.Fatal("expected a resource error, got nil")
	}
	if !strings.Contains(err.Error(), "Maximum stack size exceeded") {
		t.Errorf("expected a max-stack-size message, got %v", err)
	}
}

func TestExecutionTimeout(t *testing.T) {
	_, err := testEvalBounded("while(true){}", 100, 0, false, nil)
	if err == nil {
		t.Fatal("expected a timeout error, got nil")
	}
	if !strings.Contains(err.Error(), "Execution timed out") {
		t.Errorf("expected a timeout message, got %v", err)
	}
}

func TestExecutionAborted(t *testing.T) {
	var abort atomic.Bool
	go func() {
		time.Sleep(20 * time.Millisecond)
		abort.Store(true)
	}()
	_, err := testEvalBounded("while(true){}", 0, 0, false, &abort)
	if err == nil {
		t.Fatal("expected an abort error, got nil")
	}
	if !strings.Contains(err.Error(), "Execution aborted") {
		t.Errorf("expected an abort message, got %v", err)
	}
}

func TestWhileStatementsDisabled(t *testing.T) {
	_, err := testEvalBounded("while(false){}", 0, 0, true, nil)
	if err == nil {
		t.Fatal("expected a resource error, got nil")
	}
	if !strings.Contains(err.Error(), "While statements are not available") {
		t.Errorf("expected a disabled-while message, got %v", err)
	}
}

func TestIndependentEvaluationsShareNoState(t *testing.T) {
	v1 := testEval(t, "let x = 1; x = x + 1; x")
	v2 := testEval(t, "let x = 1; x")
	if n, ok := v1.(Number); !ok || n != 2 {
		t.Fatalf("expected first run to be 2, got %#v", v1)
	}
	if n, ok := v2.(Number); !ok || n != 1 {
		t.Fatalf("expected second run to be unaffected by the first, got %#v", v2)
	}
}

func TestBlockScopeShadowingVsOuterWrite(t *testing.T) {
	v := testEval(t, `
		let x = 1;
		{
			let x = 100;
			x = 200;
		}
		x
	`)
	if n, ok := v.(Number); !ok || n != 1 {
		t.Fatalf("expected outer x to remain 1, got %#v", v)
	}

	v2 := testEval(t, `
		let y = 1;
		{
			y = 200;
		}
		y
	`)
	if n, ok := v2.(Number); !ok || n != 200 {
		t.Fatalf("expected unshadowed outer y to be updated to 200, got %#v", v2)
	}
}

func TestConstRejectsAllMutationForms(t *testing.T) {
	cases := []string{
		"const x = 1; x = 2;",
		"const x = 1; x += 2;",
		"const x = 1; x++;",
		"const x = 1; x--;",
	}
	for _, src := range cases {
		_, err := testEvalBounded(src, 0, 0, false, nil)
		if err == nil {
			t.Errorf("expected %q to be rejected, got no error", src)
			continue
		}
		if !strings.Contains(err.Error(), "Cannot redefine property") {
			t.Errorf("expected %q to fail with a redefine error, got %v", src, err)
		}
	}
}

func TestArgumentsBinding(t *testing.T) {
	v := testEval(t, `
		function f(){ return [arguments.length, arguments[0], arguments[1]] }
		f(10, 20, 30)
	`)
	arr, ok := v.(*Array)
	if !ok || len(arr.Elements) != 3 {
		t.Fatalf("expected a 3-element array, got %#v", v)
	}
	if n, ok := arr.Elements[0].(Number); !ok || n != 3 {
		t.Errorf("expected arguments.length 3, got %#v", arr.Elements[0])
	}
	if n, ok := arr.Elements[1].(Number); !ok || n != 10 {
		t.Errorf("expected arguments[0] 10, got %#v", arr.Elements[1])
	}
	if n, ok := arr.Elements[2].(Number); !ok || n != 20 {
		t.Errorf("expected arguments[1] 20, got %#v", arr.Elements[2])
	}
}

func TestArrowFunctions(t *testing.T) {
	v := testEval(t, "const double = x => x * 2; const add = (a, b) => a + b; add(double(20), 2)")
	if n, ok := v.(Number); !ok || n != 42 {
		t.Fatalf("expected Number(42), got %#v", v)
	}
}

func TestAsyncFunctionsRejected(t *testing.T) {
	cases := []string{
		"const f = async function() { return 1; };",
		"const f = async () => 1;",
		"const f = async x => x;",
	}
	for _, src := range cases {
		_, err := testEvalBounded(src, 0, 0, false, nil)
		if err == nil {
			t.Errorf("expected %q to be rejected, got no error", src)
			continue
		}
		if !strings.Contains(err.Error(), "Async functions are not supported") {
			t.Errorf("expected %q to fail with the async message, got %v", src, err)
		}
	}
}

func TestRestParameterBinding(t *testing.T) {
	v := testEval(t, "function f(a, ...rest){ return [a, rest.length, rest[0]] } f(1, 2, 3)")
	arr, ok := v.(*Array)
	if !ok || len(arr.Elements) != 3 {
		t.Fatalf("expected a 3-element array, got %#v", v)
	}
	if n, ok := arr.Elements[1].(Number); !ok || n != 2 {
		t.Errorf("expected rest.length 2, got %#v", arr.Elements[1])
	}
	if n, ok := arr.Elements[2].(Number); !ok || n != 2 {
		t.Errorf("expected rest[0] 2, got %#v", arr.Elements[2])
	}
}

func TestTemplateLiteralInterpolation(t *testing.T) {
	v := testEval(t, "let name = \"world\"; `hello ${name}, ${1 + 2}`")
	if s, ok := v.(String); !ok || s != "hello world, 3" {
		t.Fatalf("expected \"hello world, 3\", got %#v", v)
	}
}

func TestUnknownVariableReadIsANameError(t *testing.T) {
	_, err := testEvalBounded("missing + 1", 0, 0, false, nil)
	if err == nil {
		t.Fatal("expected a name error, got nil")
	}
	if !strings.Contains(err.Error(), "Unknown variable missing") {
		t.Errorf("expected an unknown-variable message, got %v", err)
	}
}

func TestAssignmentToUndeclaredName(t *testing.T) {
	_, err := testEvalBounded("missing = 1", 0, 0, false, nil)
	if err == nil {
		t.Fatal("expected a name error, got nil")
	}
	if !strings.Contains(err.Error(), "missing is unknown") {
		t.Errorf("expected an is-unknown message, got %v", err)
	}
}

// A member read off an unknown identifier reports the member reader's
// own error rather than "Unknown variable": the receiver position reads
// as undefined so the property access gets to name the key.
func TestMemberReadOffUnknownIdentifier(t *testing.T) {
	_, err := testEvalBounded("missing.prop", 0, 0, false, nil)
	if err == nil {
		t.Fatal("expected a type error, got nil")
	}
	if !strings.Contains(err.Error(), "Cannot read properties of undefined (reading 'prop')") {
		t.Errorf("expected a cannot-read-properties message, got %v", err)
	}
}

func TestUnknownVariableDeclarationForDestructuring(t *testing.T) {
	_, err := testEvalBounded("let {a} = {a: 1};", 0, 0, false, nil)
	if err == nil {
		t.Fatal("expected an unsupported-feature error, got nil")
	}
	if !strings.Contains(err.Error(), "Unknown variable declaration") {
		t.Errorf("expected an unknown-variable-declaration message, got %v", err)
	}
}

// testEvalWithContext mirrors pkg/evalbox.Evaluate's context-seeding loop:
// every entry is bound via FromHost into a fresh top-level environment,
// the same call site RegisterValue and Evaluate's context map flow through.
func testEvalWithContext(t *testing.T, input string, context map[string]any) Value {
	t.Helper()
	v, err := testEvalBoundedWithContext(t, input, context)
	if err != nil {
		t.Fatalf("unexpected evaluation error: %v", err)
	}
	return v
}

// TestHostMapMutationObservable exercises the no-copy-on-read rule for
// host-supplied objects: a script assigning into a map[string]any context
// value must mutate the host's own map, not a private copy, so the change
// is visible once evaluation returns.
func TestHostMapMutationObservable(t *testing.T) {
	config := map[string]any{"base": 1}
	testEvalWithContext(t, `config.base = 99; config.extra = "added";`, map[string]any{"config": config})

	if config["base"] != float64(99) {
		t.Errorf("expected host map's base to be mutated to 99, got %#v", config["base"])
	}
	if config["extra"] != "added" {
		t.Errorf("expected host map to gain key extra, got %#v", config["extra"])
	}
}

// TestHostSliceElementMutationObservable covers the []any counterpart:
// writing to an existing index must alias the host's backing array.
func TestHostSliceElementMutationObservable(t *testing.T) {
	tags := []any{"a", "b", "c"}
	testEvalWithContext(t, `tags[1] = "B";`, map[string]any{"tags": tags})

	if tags[1] != "B" {
		t.Errorf("expected host slice element 1 to be mutated to \"B\", got %#v", tags[1])
	}
}

// TestHostStructFieldMutationObservable covers FromHost's reflect-backed
// fallback for a concrete struct type outside the fixed fast-path cases:
// a pointer-to-struct context value must expose its exported fields and
// propagate writes back to the host's own value.
func TestHostStructFieldMutationObservable(t *testing.T) {
	type settings struct {
		Base int
	}
	s := &settings{Base: 1}
	v := testEvalWithContext(t, `cfg.Base = 42; cfg.Base`, map[string]any{"cfg": s})

	if n, ok := v.(Number); !ok || n != 42 {
		t.Fatalf("expected reading cfg.Base back to see 42, got %#v", v)
	}
	if s.Base != 42 {
		t.Errorf("expected host struct field Base to be mutated to 42, got %d", s.Base)
	}
}

// TestHostValueIsNotCallable guards against the defect where an
// unrecognized host type was wrapped as a native function with a nil
// implementation: calling such a value must raise a TypeError rather than
// panic, and reading a property off it must expose real data instead of
// silently returning undefined.
func TestHostValueIsNotCallable(t *testing.T) {
	type settings struct {
		Base int
	}
	_, err := testEvalBoundedWithContext(t, `cfg()`, map[string]any{"cfg": &settings{Base: 7}})
	if err == nil {
		t.Fatal("expected calling a non-function host value to error, got nil")
	}
	if !strings.Contains(err.Error(), "is not a function") {
		t.Errorf("expected a not-a-function TypeError, got %v", err)
	}

	v, err := testEvalBoundedWithContext(t, `cfg.Base`, map[string]any{"cfg": &settings{Base: 7}})
	if err != nil {
		t.Fatalf("unexpected evaluation error: %v", err)
	}
	if n, ok := v.(Number); !ok || n != 7 {
		t.Fatalf("expected reading cfg.Base to see 7, got %#v", v)
	}
}

// testEvalBoundedWithContext is testEvalWithContext's non-fatal sibling,
// returning the error instead of failing the test, for cases that expect
// evaluation to fail.
func testEvalBoundedWithContext(t *testing.T, input string, context map[string]any) (Value, error) {
	t.Helper()
	l := lexer.New(input)
	p := parser.New(l, parser.Options{AllowReturnOutsideFunction: true})
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse error: %v", errs[0])
	}
	env := NewEnvironment()
	for name, v := range context {
		env.Declare(name, FromHost(v), true)
	}
	guard := NewGuard(0, nil, 0, false)
	it := New(guard, input, "<test>")
	return it.RunProgram(env, program)
}
