package cmd

import (
	"os"
	"os/signal"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/evalbox/evalbox/internal/config"
	"github.com/evalbox/evalbox/pkg/evalbox"
)

// guardFlags holds the resource-guard flags shared by run and repl.
type guardFlags struct {
	timeoutMs    int
	maxCallDepth int
	disableWhile bool
}

func addGuardFlags(c *cobra.Command, g *guardFlags) {
	c.Flags().IntVar(&g.timeoutMs, "timeout-ms", 0, "wall-clock time budget in milliseconds (0 = unbounded)")
	c.Flags().IntVar(&g.maxCallDepth, "max-call-depth", 0, "maximum function call recursion depth (0 = built-in default)")
	c.Flags().BoolVar(&g.disableWhile, "disable-while", false, "reject every while statement a script reaches")
}

// resolveGuardFlags layers g's flags over a config file's defaults; a
// flag explicitly set on the command line always wins.
func resolveGuardFlags(c *cobra.Command, g guardFlags) (evalbox.EvaluateOptions, error) {
	configPath, _ := c.Flags().GetString("config")
	defaults, err := config.Load(configPath)
	if err != nil {
		return evalbox.EvaluateOptions{}, err
	}

	opts := evalbox.EvaluateOptions{
		TimeoutMs:              defaults.TimeoutMs,
		MaxCallDepth:           defaults.MaxCallDepth,
		DisableWhileStatements: defaults.DisableWhileStatements,
	}
	if c.Flags().Changed("timeout-ms") {
		opts.TimeoutMs = g.timeoutMs
	}
	if c.Flags().Changed("max-call-depth") {
		opts.MaxCallDepth = g.maxCallDepth
	}
	if c.Flags().Changed("disable-while") {
		opts.DisableWhileStatements = g.disableWhile
	}
	return opts, nil
}

// installAbortOnInterrupt wires SIGINT to abort, so Ctrl-C surfaces the
// evaluator's "Execution aborted" ResourceError instead of killing the
// process uncleanly. The returned stop func releases the signal handler.
func installAbortOnInterrupt(abort *atomic.Bool) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	done := make(chan struct{})
	go func() {
		select {
		case <-ch:
			abort.Store(true)
		case <-done:
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}
