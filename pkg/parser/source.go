package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// IsCompressed reports whether path names a gzip-compressed source.
func IsCompressed(path string) bool {
	return strings.HasSuffix(path, ".gz")
}

// OpenSource opens a log source for line-oriented reading, transparently
// decompressing gzip sources. Close releases the decompressor and the
// underlying file.
func OpenSource(path string) (io.ReadCloser, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, fmt.Errorf("opening source %s: %w", path, err)
	}

	if !IsCompressed(path) {
		return f, nil
	}

	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening gzip source %s: %w", path, err)
	}
	return &gzipSource{zr: zr, f: f}, nil
}

type gzipSource struct {
	zr *gzip.Reader
	f  *os.File
}

func (g *gzipSource) Read(p []byte) (int, error) {
	return g.zr.Read(p)
}

func (g *gzipSource) Close() error {
	err := g.zr.Close()
	if cerr := g.f.Close(); err == nil {
		err = cerr
	}
	return err
}
