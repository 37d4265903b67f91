// Package detector samples a log file against the configured parsers
// and reports per-parser match rates, so parser priority order can be
// checked before committing to a full pipeline run.
package detector

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"sort"

	"ltab/pkg/parser"
)

// Result holds the outcome of sampling a log file.
type Result struct {
	SampledLines int           // Number of non-empty lines sampled
	Claimed      int           // Lines claimed by some parser under first-match-wins
	Unmatched    int           // Lines no parser matched
	Matches      []ParserMatch // Per-parser stats, sorted by match count descending
}

// ParserMatch reports how one parser fared against the sample. Counts
// are independent per parser (every parser sees every line), so
// overlapping parsers are visible; Claimed in Result reflects the
// actual first-match-wins dispatch.
type ParserMatch struct {
	Parser     string
	MatchCount int
	Rate       float64 // 0.0 to 1.0, fraction of sampled lines matched
	SampleLine string  // Example line that matched
}

// Detector samples lines against an ordered parser list.
type Detector struct {
	parsers    []parser.LineParser
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// New creates a Detector for the given parsers, in priority order.
func New(parsers []parser.LineParser, opts ...Option) *Detector {
	d := &Detector{
		parsers:    parsers,
		sampleSize: 100,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile samples the head of a log file and returns match stats.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*Result, error) {
	lines, err := d.sampleFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromLines analyzes a slice of log lines.
func (d *Detector) DetectFromLines(lines []string) *Result {
	result := &Result{}

	type parserStats struct {
		matchCount int
		sampleLine string
	}
	stats := make(map[string]*parserStats)

	for _, line := range lines {
		if line == "" {
			continue
		}
		result.SampledLines++

		claimed := false
		for _, lp := range d.parsers {
			if _, err := lp.Parse(line); err != nil {
				if errors.Is(err, parser.ErrUnparsable) {
					continue
				}
				// A faulty parser would abort a real run; for
				// detection it simply doesn't count as a match.
				continue
			}

			name := lp.ShortName()
			if stats[name] == nil {
				stats[name] = &parserStats{sampleLine: line}
			}
			stats[name].matchCount++
			claimed = true
			// Keep testing other parsers so overlap shows up.
		}

		if claimed {
			result.Claimed++
		} else {
			result.Unmatched++
		}
	}

	for name, s := range stats {
		result.Matches = append(result.Matches, ParserMatch{
			Parser:     name,
			MatchCount: s.matchCount,
			Rate:       float64(s.matchCount) / float64(result.SampledLines),
			SampleLine: s.sampleLine,
		})
	}

	// Sort by match count descending, name ascending for ties.
	sort.Slice(result.Matches, func(i, j int) bool {
		if result.Matches[i].MatchCount != result.Matches[j].MatchCount {
			return result.Matches[i].MatchCount > result.Matches[j].MatchCount
		}
		return result.Matches[i].Parser < result.Matches[j].Parser
	})

	return result
}

// sampleFile reads up to sampleSize lines from the head of the file.
func (d *Detector) sampleFile(ctx context.Context, path string) ([]string, error) {
	src, err := parser.OpenSource(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for len(lines) < d.sampleSize && scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("sampling %s: %w", path, err)
	}
	return lines, nil
}
