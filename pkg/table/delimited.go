package table

import (
	"encoding/csv"
	"fmt"
	"os"
)

// DelimitedExporter writes tables as delimiter-separated values using
// standard csv quoting, so cells containing the delimiter or newlines
// round-trip safely.
type DelimitedExporter struct {
	name  string
	ext   string
	comma rune
}

// Name returns the format name.
func (e *DelimitedExporter) Name() string {
	return e.name
}

// Ext returns the file extension including the leading dot.
func (e *DelimitedExporter) Ext() string {
	return e.ext
}

// Export writes the header line followed by one line per row.
func (e *DelimitedExporter) Export(t *Table, path string) error {
	f, err := os.Create(path) // #nosec G304 -- paths are pipeline-owned
	if err != nil {
		return fmt.Errorf("creating table file: %w", err)
	}

	w := csv.NewWriter(f)
	w.Comma = e.comma

	if err := w.Write(t.Headers); err != nil {
		f.Close()
		return fmt.Errorf("writing table header: %w", err)
	}
	for i, row := range t.Rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("writing table row %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flushing table file: %w", err)
	}
	return f.Close()
}
