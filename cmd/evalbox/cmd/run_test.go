package cmd

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/evalbox/evalbox/internal/errors"
	"github.com/evalbox/evalbox/pkg/evalbox"
)

// TestDisplayResultSnapshots exercises the CLI's result-formatting path
// (evalbox.Evaluate -> displayResult / evalbox.ResultToJSON) against
// golden snapshots, the way the teacher's cmd/dwscript tests snapshot
// rendered output via go-snaps.
func TestDisplayResultSnapshots(t *testing.T) {
	cases := []struct {
		name   string
		source string
	}{
		{"arithmetic", "1 + 2"},
		{"string_concat", `"a" + "b" + "c"`},
		{"array_literal", "[1, 2, 3]"},
		{"object_literal", `{ a: 1, b: "two" }`},
		{"closure_counter", `
			function createCounter(n){
				let c=n;
				return function(){ c=c+1; return c }
			}
			const a=createCounter(0);
			a(); a();
			a()
		`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := evalbox.Evaluate(tc.source, map[string]any{}, evalbox.EvaluateOptions{})
			if err != nil {
				t.Fatalf("unexpected evaluation error: %v", err)
			}
			snaps.MatchSnapshot(t, "display", displayResult(result))

			doc, err := evalbox.ResultToJSON(result)
			if err != nil {
				t.Fatalf("unexpected JSON serialization error: %v", err)
			}
			snaps.MatchSnapshot(t, "json", doc)
		})
	}
}

// TestDisplayResultSnapshotsOnError snapshots the error kind for a
// resource-guard rejection, so a regression in error classification shows
// up as a snapshot diff the same way a runtime-output regression would.
func TestDisplayResultSnapshotsOnError(t *testing.T) {
	_, err := evalbox.Evaluate("while(true){}", map[string]any{}, evalbox.EvaluateOptions{TimeoutMs: 50})
	if err == nil {
		t.Fatal("expected a timeout error, got nil")
	}
	ce, ok := err.(*errors.CompilerError)
	if !ok {
		t.Fatalf("expected *errors.CompilerError, got %T", err)
	}
	snaps.MatchSnapshot(t, "timeout_error_kind", string(ce.Kind))
}
