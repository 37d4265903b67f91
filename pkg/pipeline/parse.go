package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"ltab/pkg/config"
	"ltab/pkg/parser"
	"ltab/pkg/record"
)

// File extensions for the parse stage's intermediate outputs.
const (
	recordsExt = ".records"
	keysExt    = ".keys"
)

// parseChunks runs the per-chunk classify step over every chunk in
// splitDir, fanning out across the worker pool. Chunks are independent:
// each task reads one chunk file and writes only under paths derived
// from that chunk's ID, so completion order does not matter.
func (p *Pipeline) parseChunks(ctx context.Context, splitDir, parsedDir, srcExt string) error {
	chunkNames, err := sortedChunkNames(splitDir, "")
	if err != nil {
		return err
	}

	return runParallel(ctx, p.workers, len(chunkNames), func(_ context.Context, i int) error {
		chunkPath := filepath.Join(splitDir, chunkNames[i])
		if err := p.parseChunk(chunkPath, parsedDir, srcExt); err != nil {
			return fmt.Errorf("parsing chunk %s: %w", chunkNames[i], err)
		}
		return nil
	})
}

// parseChunk classifies every line of one chunk file: the first parser
// (in configured order) that claims a line wins; unclaimed lines go to
// the chunk's unparsed file with trailing whitespace trimmed. Per
// parser it writes a records file and a keys file, both scoped to this
// chunk, even when the parser claimed nothing in it.
func (p *Pipeline) parseChunk(chunkPath, dstDir, srcExt string) error {
	chunkName := filepath.Base(chunkPath)
	chunkBase := strings.TrimSuffix(chunkName, filepath.Ext(chunkName))

	type parserOutput struct {
		file   *os.File
		writer *record.Writer
		keys   map[string]struct{}
	}

	outputs := make([]*parserOutput, len(p.parsers))
	closeAll := func() {
		for _, out := range outputs {
			if out != nil && out.file != nil {
				out.file.Close()
				out.file = nil
			}
		}
	}
	defer closeAll()

	for i, lp := range p.parsers {
		name := lp.ShortName()
		parserDir := filepath.Join(dstDir, name)
		// Concurrent chunk tasks create the same parser directories.
		if err := os.MkdirAll(parserDir, 0o750); err != nil {
			return fmt.Errorf("creating parser directory: %w", err)
		}

		recordsPath := filepath.Join(parserDir, chunkBase+"."+name+recordsExt)
		p.log.Debug("creating records file", zap.String("path", recordsPath))
		f, err := os.Create(recordsPath) // #nosec G304 -- pipeline-owned path
		if err != nil {
			return fmt.Errorf("creating records file: %w", err)
		}
		w, err := record.NewWriter(f)
		if err != nil {
			f.Close()
			return err
		}
		outputs[i] = &parserOutput{file: f, writer: w, keys: make(map[string]struct{})}
	}

	unparsedDir := filepath.Join(dstDir, config.UnparsedShortName)
	if err := os.MkdirAll(unparsedDir, 0o750); err != nil {
		return fmt.Errorf("creating unparsed directory: %w", err)
	}
	unparsedPath := filepath.Join(unparsedDir, chunkBase+"."+config.UnparsedShortName+srcExt)
	unparsedFile, err := os.Create(unparsedPath) // #nosec G304 -- pipeline-owned path
	if err != nil {
		return fmt.Errorf("creating unparsed file: %w", err)
	}
	defer unparsedFile.Close()
	unparsed := bufio.NewWriter(unparsedFile)

	chunk, err := os.Open(chunkPath) // #nosec G304 -- pipeline-owned path
	if err != nil {
		return fmt.Errorf("opening chunk: %w", err)
	}
	defer chunk.Close()

	// ReadString instead of a Scanner: the splitter passes lines of any
	// length through to chunks, so the classify step must not cap them.
	reader := bufio.NewReaderSize(chunk, 1<<20)

	for {
		line, rerr := reader.ReadString('\n')
		if rerr != nil && rerr != io.EOF {
			return fmt.Errorf("reading chunk: %w", rerr)
		}
		if len(line) == 0 && rerr == io.EOF {
			break
		}
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")

		claimed := false
		for i, lp := range p.parsers {
			rec, perr := lp.Parse(line)
			if perr != nil {
				if errors.Is(perr, parser.ErrUnparsable) {
					continue
				}
				// Anything other than the designated unparsable signal
				// is a fault, fatal to this chunk.
				return fmt.Errorf("parser %s: %w", lp.ShortName(), perr)
			}
			if err := outputs[i].writer.Write(rec); err != nil {
				return fmt.Errorf("persisting record: %w", err)
			}
			for k := range rec {
				outputs[i].keys[k] = struct{}{}
			}
			claimed = true
			break
		}

		if !claimed {
			if _, err := unparsed.WriteString(strings.TrimRight(line, " \t\r") + "\n"); err != nil {
				return fmt.Errorf("persisting unparsed line: %w", err)
			}
		}

		if rerr == io.EOF {
			break
		}
	}

	if err := unparsed.Flush(); err != nil {
		return fmt.Errorf("flushing unparsed file: %w", err)
	}
	if err := unparsedFile.Close(); err != nil {
		return err
	}

	for i, lp := range p.parsers {
		out := outputs[i]
		if err := out.writer.Flush(); err != nil {
			return fmt.Errorf("flushing records file: %w", err)
		}
		if err := out.file.Close(); err != nil {
			return err
		}
		out.file = nil

		name := lp.ShortName()
		keysPath := filepath.Join(dstDir, name, chunkBase+"."+name+keysExt)
		if err := writeKeysFile(keysPath, out.keys); err != nil {
			return err
		}
	}

	return nil
}

// writeKeysFile persists one field name per line, sorted for
// deterministic output.
func writeKeysFile(path string, keys map[string]struct{}) error {
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	f, err := os.Create(path) // #nosec G304 -- pipeline-owned path
	if err != nil {
		return fmt.Errorf("creating keys file: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, k := range sorted {
		if _, err := w.WriteString(k + "\n"); err != nil {
			f.Close()
			return fmt.Errorf("writing keys file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flushing keys file: %w", err)
	}
	return f.Close()
}
