package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ltab/pkg/config"
	"ltab/pkg/detector"
	"ltab/pkg/parser"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	SampleSize int
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <config-file> <log-file>",
		Short: "Sample a log file and report parser match rates",
		Long: `Sample the head of a log file against every configured parser and
report how many lines each one matches.

Every parser is tested against every sampled line, so overlapping
parsers are visible; run order still decides which one claims a line in
a real run.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().IntVar(&opts.SampleSize, "sample", 100, "Number of lines to sample")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	configPath, logPath := args[0], args[1]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	parsers, err := parser.FromConfig(cfg.Parsers)
	if err != nil {
		return fmt.Errorf("building parsers: %w", err)
	}

	d := detector.New(parsers, detector.WithSampleSize(opts.SampleSize))
	result, err := d.DetectFromFile(ctx, logPath)
	if err != nil {
		return fmt.Errorf("sampling %s: %w", logPath, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Sampled %d line(s) from %s\n\n", result.SampledLines, logPath)

	if len(result.Matches) == 0 {
		fmt.Fprintln(out, "No configured parser matched any sampled line.")
		return nil
	}

	for _, m := range result.Matches {
		fmt.Fprintf(out, "  %-20s %5d match(es)  %5.1f%%\n", m.Parser, m.MatchCount, m.Rate*100)
		fmt.Fprintf(out, "    example: %s\n", m.SampleLine)
	}

	fmt.Fprintf(out, "\nClaimed: %d  Unmatched: %d\n", result.Claimed, result.Unmatched)
	return nil
}
