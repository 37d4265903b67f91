// Package cli provides the command-line interface for ltab.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ltab/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Configuration or usage error
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ltab",
		Short: "Convert large log files into structured tables",
		Long: `ltab converts arbitrarily large line-oriented log files into delimited
tables by running an ordered set of pattern parsers over the file in
parallel chunks.

For each source file it produces:
  - one table per parser that matched at least one line
  - one file of leftover lines no parser matched (.na)

Chunks are processed concurrently, but output is byte-for-byte identical
to sequential single-pass processing.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add subcommands
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
