package cmd

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/evalbox/evalbox/pkg/evalbox"
)

var (
	evalExpr     string
	dumpAST      bool
	trace        bool
	contextJSON  string
	contextFile  string
	jsonOutput   bool
	runGuards    guardFlags
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a script file or inline expression",
	Long: `Execute a script against the sandboxed evaluator.

Examples:
  evalbox run script.ebx
  evalbox run -e "1 + 2"
  evalbox run --context-json '{"x":41}' -e "x + 1"
  evalbox run --dump-ast --trace script.ebx`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline source instead of reading a file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "print the parsed AST before executing")
	runCmd.Flags().BoolVar(&trace, "trace", false, "print one line per evaluated AST node to stderr")
	runCmd.Flags().StringVar(&contextJSON, "context-json", "", "seed the top-level frame from a JSON object")
	runCmd.Flags().StringVar(&contextFile, "context-file", "", "seed the top-level frame from a JSON file")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as {\"result\": ...} JSON")
	addGuardFlags(runCmd, &runGuards)
}

func runScript(c *cobra.Command, args []string) error {
	input, filename, err := readSource(evalExpr, args)
	if err != nil {
		return err
	}

	if dumpAST {
		program, verr := evalbox.Validate(input, evalbox.ValidateOptions{File: filename})
		if verr != nil {
			fmt.Fprintln(os.Stderr, verr)
			return fmt.Errorf("parsing failed")
		}
		fmt.Println(program.String())
	}

	ctx, err := loadContext(contextJSON, contextFile)
	if err != nil {
		return err
	}

	opts, err := resolveGuardFlags(c, runGuards)
	if err != nil {
		return err
	}
	opts.File = filename

	var abort atomic.Bool
	opts.Abort = &abort
	stop := installAbortOnInterrupt(&abort)
	defer stop()

	if trace {
		opts.Trace = func(line string) { fmt.Fprint(os.Stderr, line) }
	}

	result, err := evalbox.Evaluate(input, ctx, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return fmt.Errorf("execution failed")
	}

	if jsonOutput {
		doc, err := evalbox.ResultToJSON(result)
		if err != nil {
			return err
		}
		fmt.Println(doc)
		return nil
	}

	fmt.Println(displayResult(result))
	return nil
}

func readSource(inline string, args []string) (input, filename string, err error) {
	if inline != "" {
		return inline, "<eval>", nil
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e for inline source")
}

func loadContext(inlineJSON, file string) (map[string]any, error) {
	doc := inlineJSON
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read context file %s: %w", file, err)
		}
		doc = string(data)
	}
	if doc == "" {
		return map[string]any{}, nil
	}
	return evalbox.ContextFromJSON(doc)
}

func displayResult(v any) string {
	if v == nil {
		return "undefined"
	}
	return fmt.Sprintf("%v", v)
}
