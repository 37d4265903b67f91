package parser

import (
	"fmt"
	"regexp"

	"ltab/pkg/config"
)

// FromConfig builds the ordered parser list from a validated
// configuration. The returned slice preserves configuration order,
// which is the match priority order.
func FromConfig(cfgs []config.ParserConfig) ([]LineParser, error) {
	parsers := make([]LineParser, 0, len(cfgs))
	for i := range cfgs {
		pc := &cfgs[i]
		switch pc.ParserTypeEnum() {
		case config.ParserTypeRegex:
			pattern := pc.CompiledPattern()
			if pattern == nil {
				// Config built in code rather than through Load/Validate.
				re, err := regexp.Compile(pc.Pattern)
				if err != nil {
					return nil, fmt.Errorf("parser %q: invalid pattern: %w", pc.Name, err)
				}
				pattern = re
			}
			p, err := NewRegexParser(pc.Name, pattern)
			if err != nil {
				return nil, err
			}
			parsers = append(parsers, p)
		case config.ParserTypeKeyValue:
			parsers = append(parsers, NewKeyValueParser(pc.Name, pc.Prefix, pc.PairSeparator, pc.ValueSeparator))
		default:
			return nil, fmt.Errorf("parser %q: unknown type %q", pc.Name, pc.Type)
		}
	}
	return parsers, nil
}
