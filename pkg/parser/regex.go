package parser

import (
	"fmt"
	"regexp"

	"ltab/pkg/record"
)

// RegexParser extracts fields from lines matching a regular expression.
// Each named capture group becomes a record field; groups that did not
// participate in the match (or matched the empty string) are omitted
// from the record rather than emitted as empty fields.
type RegexParser struct {
	name    string
	pattern *regexp.Regexp
}

// NewRegexParser creates a parser from a compiled pattern. The pattern
// must contain at least one named capture group.
func NewRegexParser(name string, pattern *regexp.Regexp) (*RegexParser, error) {
	named := 0
	for _, groupName := range pattern.SubexpNames() {
		if groupName != "" {
			named++
		}
	}
	if named == 0 {
		return nil, fmt.Errorf("parser %q: pattern has no named capture groups", name)
	}
	return &RegexParser{name: name, pattern: pattern}, nil
}

// ShortName returns the parser's identifier.
func (p *RegexParser) ShortName() string {
	return p.name
}

// Parse matches the line against the pattern and returns one field per
// named capture group.
func (p *RegexParser) Parse(line string) (record.Record, error) {
	match := p.pattern.FindStringSubmatch(line)
	if match == nil {
		return nil, ErrUnparsable
	}

	rec := make(record.Record)
	for i, groupName := range p.pattern.SubexpNames() {
		if groupName == "" || match[i] == "" {
			continue
		}
		rec[groupName] = coerceScalar(match[i])
	}
	return rec, nil
}
