package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ltab/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate an ltab configuration file without running the pipeline.

Checks:
  - YAML syntax
  - Required fields
  - Regex pattern validity and named capture groups
  - Parser name uniqueness and reserved names
  - Chunk size, worker count, and format values`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(out, "\nConfiguration valid!\n")
	fmt.Fprintf(out, "  Chunk size: %d bytes\n", cfg.ChunkBytes)
	fmt.Fprintf(out, "  Format:     %s\n", cfg.Format)
	fmt.Fprintf(out, "  Parsers:    %d\n", len(cfg.Parsers))

	fmt.Fprintf(out, "\nParsers (in match priority order):\n")
	for i, p := range cfg.Parsers {
		fmt.Fprintf(out, "  %d. [%s] %s\n", i+1, p.Type, p.Name)
	}

	return nil
}
