package parser

import (
	"encoding/json"
	"regexp"
)

// jsonNumber is the JSON number grammar (RFC 8259 §6). It is narrower
// than what strconv accepts: no leading zeros, no leading "+", no bare
// "." forms, no NaN/Inf, no underscores, no hex floats. Only text that
// can pass through the records codec verbatim may become a number.
var jsonNumber = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// coerceScalar converts a captured string to a typed scalar: JSON
// number literals become json.Number, "true"/"false" become bool,
// anything else stays a string. json.Number keeps 64-bit integers
// exact through the records codec.
func coerceScalar(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if jsonNumber.MatchString(s) {
		return json.Number(s)
	}
	return s
}
