package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ltab/internal/logging"
	"ltab/pkg/config"
	"ltab/pkg/parser"
	"ltab/pkg/pipeline"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// RunOptions holds command-line options for the run command.
type RunOptions struct {
	OutputDir        string
	ChunkBytes       int64
	Workers          int
	KeepIntermediate bool
	Format           string
	Verbose          bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <config-file> <log-file>...",
		Short: "Parse log files into structured tables",
		Long: `Run the parsing pipeline over one or more log files.

Each file is split into line-aligned chunks, the chunks are parsed in
parallel against the configured parsers (first match wins), and the
results are merged into one table per matching parser plus a file of
unparsed lines. A failing file does not stop the rest of the batch.

Exit codes:
  0 - All files processed successfully
  1 - One or more files failed
  2 - Configuration or usage error`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args, opts)
		},
	}

	// Flags (override the corresponding config file settings)
	cmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "Output directory (must not exist; single file only)")
	cmd.Flags().Int64Var(&opts.ChunkBytes, "chunk-bytes", 0, "Target chunk size in bytes")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Maximum parallel workers (default: number of CPUs)")
	cmd.Flags().BoolVar(&opts.KeepIntermediate, "keep-intermediate", false, "Retain per-stage staging directories")
	cmd.Flags().StringVar(&opts.Format, "format", "", "Table format (tsv|csv)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

func runRun(cmd *cobra.Command, args []string, opts *RunOptions) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyOverrides(cfg, opts, cmd)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	files, err := parser.ExpandGlobs(args[1:])
	if err != nil {
		return fmt.Errorf("expanding log files: %w", err)
	}
	if cfg.OutputDir != "" && len(files) > 1 {
		return fmt.Errorf("--output-dir applies to a single file, got %d", len(files))
	}

	log := logging.NewCLI(opts.Verbose)
	defer log.Sync() //nolint:errcheck // best-effort flush on exit

	pipe, err := pipeline.New(cfg, log)
	if err != nil {
		return fmt.Errorf("creating pipeline: %w", err)
	}

	failed := 0
	for _, file := range files {
		if res := pipe.Run(ctx, file); res.Err != nil {
			failed++
		}
	}

	if failed > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "ltab: %d of %d file(s) failed\n", failed, len(files))
		ExitCode = 1
	}
	return nil
}

func applyOverrides(cfg *config.Config, opts *RunOptions, cmd *cobra.Command) {
	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}
	if opts.ChunkBytes > 0 {
		cfg.ChunkBytes = opts.ChunkBytes
	}
	if opts.Workers > 0 {
		cfg.MaxWorkers = opts.Workers
	}
	if cmd.Flags().Changed("keep-intermediate") {
		cfg.KeepIntermediate = opts.KeepIntermediate
	}
	if opts.Format != "" {
		cfg.Format = opts.Format
	}
}
