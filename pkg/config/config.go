package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// validParserName restricts parser names to path-safe tokens: they are
// embedded in intermediate and final file names.
var validParserName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// validFormats lists the supported table export formats.
var validFormats = map[string]bool{
	"tsv": true,
	"csv": true,
}

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and compiles regex patterns.
func Validate(cfg *Config) error {
	if cfg.ChunkBytes <= 0 {
		return errors.New("chunk_bytes: must be positive")
	}

	if cfg.MaxWorkers < 0 {
		return errors.New("max_workers: must not be negative")
	}

	if !validFormats[cfg.Format] {
		return fmt.Errorf("format: invalid format %q (must be tsv or csv)", cfg.Format)
	}

	if len(cfg.Parsers) == 0 {
		return errors.New("parsers: at least one parser is required")
	}

	seen := make(map[string]bool)
	for i := range cfg.Parsers {
		if err := validateParser(&cfg.Parsers[i], seen); err != nil {
			return fmt.Errorf("parsers[%d] (%s): %w", i, cfg.Parsers[i].Name, err)
		}
	}

	return nil
}

func validateParser(p *ParserConfig, seen map[string]bool) error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if !validParserName.MatchString(p.Name) {
		return fmt.Errorf("invalid name %q (allowed: letters, digits, underscore, hyphen)", p.Name)
	}
	if p.Name == UnparsedShortName {
		return fmt.Errorf("name %q is reserved for the unparsed-lines output", UnparsedShortName)
	}
	if seen[p.Name] {
		return fmt.Errorf("duplicate name %q", p.Name)
	}
	seen[p.Name] = true

	switch p.ParserTypeEnum() {
	case ParserTypeRegex:
		return validateRegexParser(p)
	case ParserTypeKeyValue:
		return validateKeyValueParser(p)
	default:
		return fmt.Errorf("invalid type %q (must be regex or keyvalue)", p.Type)
	}
}

func validateRegexParser(p *ParserConfig) error {
	if p.Pattern == "" {
		return errors.New("pattern is required for regex parsers")
	}

	re, err := regexp.Compile(p.Pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}

	named := 0
	for _, name := range re.SubexpNames() {
		if name != "" {
			named++
		}
	}
	if named == 0 {
		return errors.New("pattern must have at least one named capture group, e.g. (?P<field>...)")
	}

	p.compiledPattern = re
	return nil
}

func validateKeyValueParser(p *ParserConfig) error {
	if p.Prefix == "" {
		return errors.New("prefix is required for keyvalue parsers")
	}
	if p.PairSeparator != "" && p.PairSeparator == p.ValueSeparator {
		return errors.New("pair_separator and value_separator must differ")
	}
	return nil
}
