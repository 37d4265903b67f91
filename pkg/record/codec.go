package record

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
)

// Magic is the first line of every records file. The version suffix is
// bumped on any change to the line format so stale intermediate files
// from another build are rejected instead of misread.
const Magic = "#ltab:records:v1"

// ErrBadMagic indicates a records file that does not start with the
// expected version line.
var ErrBadMagic = errors.New("records file has unknown or missing version line")

// api keeps numbers as json.Number (no float64 truncation of large
// integers) and orders map keys for deterministic output.
var api = sonic.Config{
	UseNumber:   true,
	SortMapKeys: true,
}.Froze()

// Writer persists records one JSON object per line, preceded by the
// Magic version line.
type Writer struct {
	bw *bufio.Writer
}

// NewWriter wraps w and writes the version line immediately.
func NewWriter(w io.Writer) (*Writer, error) {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Magic + "\n"); err != nil {
		return nil, fmt.Errorf("writing records header: %w", err)
	}
	return &Writer{bw: bw}, nil
}

// Write appends one record as a single JSON line.
func (w *Writer) Write(rec Record) error {
	data, err := api.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	if _, err := w.bw.Write(data); err != nil {
		return err
	}
	return w.bw.WriteByte('\n')
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.bw.Flush()
}

// ReadAll decodes every record from r, validating the version line
// first. Lines are read unbounded: a record is one source log line plus
// JSON framing, and source lines have no length limit.
func ReadAll(r io.Reader) ([]Record, error) {
	br := bufio.NewReaderSize(r, 64*1024)

	header, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading records header: %w", err)
	}
	if header == "" {
		return nil, ErrBadMagic
	}
	if strings.TrimSuffix(header, "\n") != Magic {
		return nil, fmt.Errorf("%w: got %q", ErrBadMagic, strings.TrimSuffix(header, "\n"))
	}

	var records []Record
	for {
		line, rerr := br.ReadString('\n')
		if rerr != nil && rerr != io.EOF {
			return nil, fmt.Errorf("reading records: %w", rerr)
		}
		if data := strings.TrimSuffix(line, "\n"); data != "" {
			var rec Record
			if err := api.Unmarshal([]byte(data), &rec); err != nil {
				return nil, fmt.Errorf("decoding record %d: %w", len(records)+1, err)
			}
			records = append(records, rec)
		}
		if rerr == io.EOF {
			break
		}
	}
	return records, nil
}
