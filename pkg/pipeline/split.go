package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"ltab/pkg/parser"
)

// splitIntoChunks partitions the source file into line-aligned chunk
// files under dstDir and returns the number of chunks produced. Chunk
// IDs are sequential from 1 with no gaps; concatenating the chunks in
// ID order reproduces the source byte for byte. No chunk exceeds
// chunkBytes unless a single line does.
//
// A plain file no larger than chunkBytes is copied whole as chunk 1,
// skipping the line scan. Gzip sources are decompressed while
// splitting, so their chunks carry the inner extension and always take
// the scanning path.
func (p *Pipeline) splitIntoChunks(srcPath, dstDir string, chunkBytes int64) (int, error) {
	ext := sourceExt(srcPath)

	if !parser.IsCompressed(srcPath) {
		info, err := os.Stat(srcPath)
		if err != nil {
			return 0, fmt.Errorf("stat source file: %w", err)
		}
		if info.Size() <= chunkBytes {
			dst := filepath.Join(dstDir, chunkFileName(1, ext))
			p.log.Debug("source fits in one chunk, copying", zap.String("dst", dst))
			if err := copyFile(srcPath, dst); err != nil {
				return 0, err
			}
			return 1, nil
		}
	}

	src, err := parser.OpenSource(srcPath)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	reader := bufio.NewReaderSize(src, 1<<20)

	var (
		chunk     *bufio.Writer
		chunkFile *os.File
		chunkSize int64
		chunkNum  int
	)

	closeChunk := func() error {
		if chunkFile == nil {
			return nil
		}
		if err := chunk.Flush(); err != nil {
			chunkFile.Close()
			return err
		}
		err := chunkFile.Close()
		chunkFile = nil
		return err
	}

	openChunk := func() error {
		chunkNum++
		path := filepath.Join(dstDir, chunkFileName(chunkNum, ext))
		p.log.Debug("creating chunk", zap.String("path", path))
		f, err := os.Create(path) // #nosec G304 -- pipeline-owned path
		if err != nil {
			return fmt.Errorf("creating chunk file: %w", err)
		}
		chunkFile = f
		chunk = bufio.NewWriterSize(f, 1<<20)
		chunkSize = 0
		return nil
	}

	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			lineSize := int64(len(line))
			if chunkFile == nil || (chunkSize > 0 && chunkSize+lineSize > chunkBytes) {
				if cerr := closeChunk(); cerr != nil {
					return 0, cerr
				}
				if oerr := openChunk(); oerr != nil {
					return 0, oerr
				}
			}
			if _, werr := chunk.WriteString(line); werr != nil {
				closeChunk()
				return 0, fmt.Errorf("writing chunk %d: %w", chunkNum, werr)
			}
			chunkSize += lineSize
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			closeChunk()
			return 0, fmt.Errorf("reading source file: %w", err)
		}
	}

	if err := closeChunk(); err != nil {
		return 0, err
	}

	// An empty source still yields exactly one (empty) chunk so later
	// stages have a uniform shape to work with.
	if chunkNum == 0 {
		if err := openChunk(); err != nil {
			return 0, err
		}
		if err := closeChunk(); err != nil {
			return 0, err
		}
	}

	return chunkNum, nil
}

// sourceExt returns the extension carried through to chunk and unparsed
// file names. For gzip sources the inner extension is used: chunks hold
// decompressed text.
func sourceExt(path string) string {
	name := filepath.Base(path)
	if parser.IsCompressed(path) {
		name = name[:len(name)-len(".gz")]
	}
	return filepath.Ext(name)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 -- user-provided path
	if err != nil {
		return fmt.Errorf("opening source file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst) // #nosec G304 -- pipeline-owned path
	if err != nil {
		return fmt.Errorf("creating chunk file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying source file: %w", err)
	}
	return out.Close()
}
