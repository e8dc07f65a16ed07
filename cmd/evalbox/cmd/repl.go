package cmd

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"sync/atomic"

	"github.com/maruel/natural"
	"github.com/spf13/cobra"

	"github.com/evalbox/evalbox/internal/errors"
	"github.com/evalbox/evalbox/internal/interp"
	"github.com/evalbox/evalbox/internal/lexer"
	"github.com/evalbox/evalbox/internal/parser"
	"github.com/evalbox/evalbox/pkg/evalbox"
)

var (
	replGuards      guardFlags
	dumpBindings    bool
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Read statements from stdin and evaluate each against a persistent frame",
	Long: `A line-at-a-time read-eval-print loop: each line is parsed and run
against a single top-level frame that persists across the session, so a
variable or function declared on one line is visible on the next.`,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
	addGuardFlags(replCmd, &replGuards)
	replCmd.Flags().BoolVar(&dumpBindings, "dump-bindings", false, "print every top-level binding name after each line")
}

func runRepl(c *cobra.Command, _ []string) error {
	opts, err := resolveGuardFlags(c, replGuards)
	if err != nil {
		return err
	}

	env := interp.NewEnvironment()
	var abort atomic.Bool
	stop := installAbortOnInterrupt(&abort)
	defer stop()

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprint(os.Stderr, "> ")
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			evalLine(env, line, opts, &abort)
		}
		if dumpBindings {
			printBindings(env)
		}
		fmt.Fprint(os.Stderr, "> ")
	}
	fmt.Fprintln(os.Stderr)
	return scanner.Err()
}

func evalLine(env *interp.Environment, line string, opts evalbox.EvaluateOptions, abort *atomic.Bool) {
	l := lexer.New(line)
	p := parser.New(l, parser.Options{AllowReturnOutsideFunction: true})
	program := p.ParseProgram()

	if perrs := p.Errors(); len(perrs) > 0 {
		for _, pe := range perrs {
			fmt.Fprintln(os.Stderr, errors.NewSyntaxError(pe.Pos, pe.Message, line, "<repl>"))
		}
		return
	}

	guard := interp.NewGuard(opts.TimeoutMs, abort, opts.MaxCallDepth, opts.DisableWhileStatements)
	it := interp.New(guard, line, "<repl>")
	result, err := it.RunProgram(env, program)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Println(result.String())
}

func printBindings(env *interp.Environment) {
	names := env.OwnNames()
	sort.Sort(natural.StringSlice(names))
	fmt.Fprintln(os.Stderr, "bindings:", names)
}
