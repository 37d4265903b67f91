// Package table provides the in-memory table value and delimited-text
// exporters for rendered chunk tables.
package table

import "fmt"

// Table is a chunk's records rendered against a fixed header. Every row
// has exactly len(Headers) cells; missing fields are empty strings.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Exporter serializes a schema-conformant table to a delimited text
// file. Implementations must write the header as the first line and one
// row per subsequent line, so that files sharing a header can be merged
// by line-level concatenation after the first header.
type Exporter interface {
	// Name returns the format name (tsv, csv).
	Name() string

	// Ext returns the file extension including the leading dot.
	Ext() string

	// Export writes the table to path, creating or truncating the file.
	Export(t *Table, path string) error
}

// ByName returns the exporter for a format name.
func ByName(name string) (Exporter, error) {
	switch name {
	case "tsv":
		return &DelimitedExporter{name: "tsv", ext: ".tsv", comma: '\t'}, nil
	case "csv":
		return &DelimitedExporter{name: "csv", ext: ".csv", comma: ','}, nil
	default:
		return nil, fmt.Errorf("unknown table format %q", name)
	}
}
