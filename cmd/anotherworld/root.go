package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base for all commands; with no subcommand it behaves
// exactly like `run` (§6.7 names no subcommand, just flags).
var rootCmd = &cobra.Command{
	Use:   "anotherworld",
	Short: "anotherworld runs the Another World bytecode interpreter",
	Long:  "anotherworld runs the Another World bytecode interpreter",
	RunE:  runAnotherWorld,
}

func init() {
	addRunFlags(rootCmd)
	rootCmd.AddCommand(runCmd)
}

// Execute runs anotherworld according to the user's flags, exiting 1
// on any fatal error (§7's exit-code contract — only this package
// calls os.Exit).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
