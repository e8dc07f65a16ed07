package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information, set by build flags.
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "evalbox",
	Short: "Sandboxed evaluator for a restricted C-style scripting language",
	Long: `evalbox embeds a tree-walking interpreter for a restricted,
C-style dynamic scripting language: lexical scoping, closures, member
access on host objects, and four resource guards (timeout, abort flag,
loop disable, call-depth bound). It executes untrusted source against a
host-supplied context of values and callables.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (not read by any subcommand)")
	rootCmd.PersistentFlags().String("config", "evalbox.yaml", "path to a YAML defaults file")
}
