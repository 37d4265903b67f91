// Package config provides run configuration loading and validation.
package config

import "regexp"

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// ChunkBytes is the target chunk size for the splitter. The last
	// chunk of a file may be smaller; no other chunk exceeds it except
	// when a single line is longer than the target.
	ChunkBytes int64 `yaml:"chunk_bytes"`

	// MaxWorkers bounds parallelism in the fan-out stages.
	// Zero means GOMAXPROCS.
	MaxWorkers int `yaml:"max_workers"`

	// KeepIntermediate retains the per-stage staging directories after
	// the run, for diagnostics. Defaults to false (deleted).
	KeepIntermediate bool `yaml:"keep_intermediate"`

	// OutputDir overrides the run output directory. Must not already
	// exist. Empty means <source-dir>/<base>_<timestamp>.
	OutputDir string `yaml:"output_dir,omitempty"`

	// Format selects the table export format (tsv, csv).
	Format string `yaml:"format"`

	// Parsers is the ordered parser list. Order is semantically
	// significant: the first parser that claims a line wins.
	Parsers []ParserConfig `yaml:"parsers"`
}

// ParserType identifies a built-in parser implementation.
type ParserType string

const (
	ParserTypeRegex    ParserType = "regex"
	ParserTypeKeyValue ParserType = "keyvalue"
)

// ParserConfig defines a single parser plugin.
type ParserConfig struct {
	// Name is the parser's short identifier, used in output file names.
	Name string `yaml:"name"`

	// Type selects the parser implementation (regex, keyvalue).
	Type string `yaml:"type"`

	// Regex parser fields. Pattern must contain at least one named
	// capture group; each group becomes a record field.
	Pattern string `yaml:"pattern,omitempty"`

	// Keyvalue parser fields. Prefix is the literal line prefix;
	// separators default to "," and "=".
	Prefix         string `yaml:"prefix,omitempty"`
	PairSeparator  string `yaml:"pair_separator,omitempty"`
	ValueSeparator string `yaml:"value_separator,omitempty"`

	// compiledPattern is populated during validation.
	compiledPattern *regexp.Regexp
}

// CompiledPattern returns the pre-compiled regex pattern for regex
// parsers, nil otherwise.
func (p *ParserConfig) CompiledPattern() *regexp.Regexp {
	return p.compiledPattern
}

// ParserTypeEnum returns the parser type as a ParserType enum.
func (p *ParserConfig) ParserTypeEnum() ParserType {
	return ParserType(p.Type)
}
