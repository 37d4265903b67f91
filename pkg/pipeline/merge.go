package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"ltab/pkg/config"
)

// mergeUnparsed concatenates every chunk's unparsed-lines file, in
// ascending chunk ID order, into <outDir>/<base>.na<srcExt>.
func (p *Pipeline) mergeUnparsed(parsedDir, outDir, base, srcExt string) error {
	unparsedDir := filepath.Join(parsedDir, config.UnparsedShortName)
	chunkNames, err := sortedChunkNames(unparsedDir, "")
	if err != nil {
		return err
	}

	dstPath := filepath.Join(outDir, base+"."+config.UnparsedShortName+srcExt)
	paths := make([]string, len(chunkNames))
	for i, name := range chunkNames {
		paths[i] = filepath.Join(unparsedDir, name)
	}

	p.log.Debug("merging unparsed chunks",
		zap.Int("chunks", len(paths)),
		zap.String("dst", dstPath))
	return concatenate(dstPath, paths, false)
}

// mergeTables concatenates, per parser, every chunk's table file in
// ascending chunk ID order into <outDir>/<base>.<parser><tableExt>. The
// header row is taken from the first chunk only; every chunk table was
// rendered against the identical finalized header, so dropping the
// first line of subsequent files is safe. A parser that produced no
// chunk tables is skipped: it gets no output file.
func (p *Pipeline) mergeTables(tabDir, outDir, base string) error {
	for _, lp := range p.parsers {
		name := lp.ShortName()
		parserDir := filepath.Join(tabDir, name)

		chunkNames, err := sortedChunkNames(parserDir, "")
		if err != nil {
			return fmt.Errorf("parser %s: %w", name, err)
		}
		if len(chunkNames) == 0 {
			p.log.Debug("parser produced no tables, skipping merge", zap.String("parser", name))
			continue
		}

		dstPath := filepath.Join(outDir, base+"."+name+p.exporter.Ext())
		paths := make([]string, len(chunkNames))
		for i, chunkName := range chunkNames {
			paths[i] = filepath.Join(parserDir, chunkName)
		}

		p.log.Debug("merging table chunks",
			zap.String("parser", name),
			zap.Int("chunks", len(paths)),
			zap.String("dst", dstPath))
		if err := concatenate(dstPath, paths, true); err != nil {
			return fmt.Errorf("parser %s: %w", name, err)
		}
	}
	return nil
}

// concatenate appends the given files to dstPath in order. With
// skipHeaderAfterFirst, the first line of every file after the first is
// dropped.
func concatenate(dstPath string, srcPaths []string, skipHeaderAfterFirst bool) error {
	dst, err := os.Create(dstPath) // #nosec G304 -- pipeline-owned path
	if err != nil {
		return fmt.Errorf("creating merged file: %w", err)
	}

	for i, srcPath := range srcPaths {
		if err := appendFile(dst, srcPath, skipHeaderAfterFirst && i > 0); err != nil {
			dst.Close()
			return err
		}
	}
	return dst.Close()
}

func appendFile(dst io.Writer, srcPath string, skipFirstLine bool) error {
	src, err := os.Open(srcPath) // #nosec G304 -- pipeline-owned path
	if err != nil {
		return fmt.Errorf("opening chunk file: %w", err)
	}
	defer src.Close()

	reader := bufio.NewReaderSize(src, 1<<20)
	if skipFirstLine {
		if _, err := reader.ReadString('\n'); err != nil && err != io.EOF {
			return fmt.Errorf("skipping header of %s: %w", srcPath, err)
		}
	}

	if _, err := io.Copy(dst, reader); err != nil {
		return fmt.Errorf("appending %s: %w", srcPath, err)
	}
	return nil
}
