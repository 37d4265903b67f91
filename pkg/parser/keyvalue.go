package parser

import (
	"strings"

	"ltab/pkg/record"
)

// Default separators for KeyValueParser.
const (
	DefaultPairSeparator  = ","
	DefaultValueSeparator = "="
)

// KeyValueParser extracts fields from lines that start with a literal
// prefix followed by separator-delimited key=value pairs, e.g.
// "INFO a=1,b=x". The prefix itself carries no fields.
type KeyValueParser struct {
	name     string
	prefix   string
	pairSep  string
	valueSep string
}

// NewKeyValueParser creates a key/value parser. Empty separators fall
// back to the defaults.
func NewKeyValueParser(name, prefix, pairSep, valueSep string) *KeyValueParser {
	if pairSep == "" {
		pairSep = DefaultPairSeparator
	}
	if valueSep == "" {
		valueSep = DefaultValueSeparator
	}
	return &KeyValueParser{
		name:     name,
		prefix:   prefix,
		pairSep:  pairSep,
		valueSep: valueSep,
	}
}

// ShortName returns the parser's identifier.
func (p *KeyValueParser) ShortName() string {
	return p.name
}

// Parse splits the line's payload into key=value fields. A line whose
// payload contains a pair without the value separator, or with an empty
// key, is unparsable for this parser.
func (p *KeyValueParser) Parse(line string) (record.Record, error) {
	if !strings.HasPrefix(line, p.prefix) {
		return nil, ErrUnparsable
	}

	payload := strings.TrimSpace(strings.TrimPrefix(line, p.prefix))
	if payload == "" {
		return nil, ErrUnparsable
	}

	rec := make(record.Record)
	for _, pair := range strings.Split(payload, p.pairSep) {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, found := strings.Cut(pair, p.valueSep)
		if !found || key == "" {
			return nil, ErrUnparsable
		}
		rec[key] = coerceScalar(value)
	}
	if len(rec) == 0 {
		return nil, ErrUnparsable
	}
	return rec, nil
}
