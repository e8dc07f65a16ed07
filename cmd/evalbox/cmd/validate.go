package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evalbox/evalbox/pkg/evalbox"
)

var validateEvalExpr string

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Parse a script and report syntax errors without executing it",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&validateEvalExpr, "eval", "e", "", "validate inline source instead of reading a file")
}

func runValidate(_ *cobra.Command, args []string) error {
	input, filename, err := readSource(validateEvalExpr, args)
	if err != nil {
		return err
	}

	if _, verr := evalbox.Validate(input, evalbox.ValidateOptions{File: filename}); verr != nil {
		fmt.Fprintln(os.Stderr, verr)
		return fmt.Errorf("validation failed")
	}
	fmt.Println("OK")
	return nil
}
