// Command evalbox runs, validates, and provides a REPL for scripts
// against the sandboxed evaluator.
package main

import (
	"fmt"
	"os"

	"github.com/evalbox/evalbox/cmd/evalbox/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
