package detector

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ltab/pkg/config"
	"ltab/pkg/parser"
)

func testParsers(t *testing.T) []parser.LineParser {
	t.Helper()
	parsers, err := parser.FromConfig([]config.ParserConfig{
		{Name: "info", Type: "keyvalue", Prefix: "INFO "},
		{Name: "any", Type: "regex", Pattern: `^(?P<word>\w+)`},
	})
	if err != nil {
		t.Fatal(err)
	}
	return parsers
}

func TestDetectFromLines(t *testing.T) {
	d := New(testParsers(t))

	result := d.DetectFromLines([]string{
		"INFO a=1",
		"INFO b=2",
		"plainword trailing",
		"??? nothing",
		"",
	})

	if result.SampledLines != 4 {
		t.Errorf("SampledLines = %d, want 4 (empty line skipped)", result.SampledLines)
	}
	if result.Unmatched != 1 {
		t.Errorf("Unmatched = %d, want 1", result.Unmatched)
	}
	if result.Claimed != 3 {
		t.Errorf("Claimed = %d, want 3", result.Claimed)
	}

	if len(result.Matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(result.Matches))
	}
	// "any" matches the INFO lines too, so it sorts first with 3.
	if result.Matches[0].Parser != "any" || result.Matches[0].MatchCount != 3 {
		t.Errorf("top match = %+v", result.Matches[0])
	}
	if result.Matches[1].Parser != "info" || result.Matches[1].MatchCount != 2 {
		t.Errorf("second match = %+v", result.Matches[1])
	}
	if got := result.Matches[1].Rate; got != 0.5 {
		t.Errorf("info rate = %v, want 0.5", got)
	}
}

func TestDetectFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	if err := os.WriteFile(path, []byte("INFO a=1\nGARBAGE???\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	d := New(testParsers(t), WithSampleSize(10))
	result, err := d.DetectFromFile(context.Background(), path)
	if err != nil {
		t.Fatalf("DetectFromFile() error = %v", err)
	}
	if result.SampledLines != 2 {
		t.Errorf("SampledLines = %d, want 2", result.SampledLines)
	}
}

func TestWithSampleSize(t *testing.T) {
	d := New(nil, WithSampleSize(5))
	if d.sampleSize != 5 {
		t.Errorf("sampleSize = %d, want 5", d.sampleSize)
	}

	// Non-positive values keep the default.
	d = New(nil, WithSampleSize(0))
	if d.sampleSize != 100 {
		t.Errorf("sampleSize = %d, want default 100", d.sampleSize)
	}
}
