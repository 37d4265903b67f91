// Package parser provides the line parser plugin interface and the
// built-in pattern-based parsers.
package parser

import (
	"errors"

	"ltab/pkg/record"
)

// ErrUnparsable is the designated signal that a line does not match a
// parser. It is expected control flow, not a fault: the pipeline routes
// the line to the next parser in priority order, or to the unparsed
// stream if no parser claims it. Any other error from Parse is fatal to
// the enclosing chunk.
var ErrUnparsable = errors.New("line does not match parser")

// LineParser converts a single log line into a structured record.
// Implementations must be safe for concurrent use: one instance is
// shared across chunk tasks.
type LineParser interface {
	// ShortName returns the parser's identifier, used in intermediate
	// and final file names. Must be a non-empty path-safe token and
	// must not collide with the reserved unparsed-stream name "na".
	ShortName() string

	// Parse extracts a record from the line, or returns ErrUnparsable
	// if the line does not belong to this parser.
	Parse(line string) (record.Record, error)
}
