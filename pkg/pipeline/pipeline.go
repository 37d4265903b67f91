// Package pipeline implements the staged split/parse/unify/tabularize/
// merge protocol that converts one large log file into per-parser
// tables plus an unparsed-lines file, processing chunks in parallel
// while keeping final output identical to sequential processing.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"go.uber.org/zap"

	"ltab/pkg/config"
	"ltab/pkg/parser"
	"ltab/pkg/table"
)

// Staging directory names under the run output directory. Each exists
// only between adjacent stages and is deleted once consumed, unless the
// run keeps intermediates.
const (
	splitDirName       = ".0_split"
	parsedDirName      = ".1_parsed"
	tabularizedDirName = ".2_tabularized"
)

// ErrDirExists indicates a staging or output directory that already
// exists. Re-running into an existing directory is an error, not a
// resume point: partial state from an earlier run must be inspected or
// removed explicitly.
var ErrDirExists = errors.New("directory already exists")

// Pipeline drives the staged run. It is immutable after New and safe to
// reuse for a batch of files in sequence.
type Pipeline struct {
	parsers          []parser.LineParser
	exporter         table.Exporter
	chunkBytes       int64
	workers          int
	keepIntermediate bool
	outputDir        string
	log              *zap.Logger
}

// New builds a pipeline from a validated configuration.
func New(cfg *config.Config, log *zap.Logger) (*Pipeline, error) {
	parsers, err := parser.FromConfig(cfg.Parsers)
	if err != nil {
		return nil, err
	}

	exporter, err := table.ByName(cfg.Format)
	if err != nil {
		return nil, err
	}

	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Pipeline{
		parsers:          parsers,
		exporter:         exporter,
		chunkBytes:       cfg.ChunkBytes,
		workers:          workers,
		keepIntermediate: cfg.KeepIntermediate,
		outputDir:        cfg.OutputDir,
		log:              log,
	}, nil
}

// RunResult reports the outcome of one file's run. Err is non-nil for a
// failed run; the pipeline never propagates the failure any other way.
type RunResult struct {
	Source    string
	OutputDir string
	Chunks    int
	Duration  time.Duration
	Err       error
}

// Run processes one source file end to end. It is the single
// containment boundary: any fault escaping any stage, including a
// panic, is logged once here and recorded in the result instead of
// propagating, so a caller driving a batch of files continues with the
// next one. Whatever directories were already created are left in place
// for inspection.
func (p *Pipeline) Run(ctx context.Context, srcPath string) (res *RunResult) {
	res = &RunResult{Source: srcPath}
	start := time.Now()

	defer func() {
		res.Duration = time.Since(start)
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("pipeline panic: %v", r)
		}
		if res.Err != nil {
			p.log.Error("parsing failed",
				zap.String("source", srcPath),
				zap.Error(res.Err))
		} else {
			p.log.Info("parsing completed",
				zap.String("source", srcPath),
				zap.String("output_dir", res.OutputDir),
				zap.Int("chunks", res.Chunks),
				zap.Duration("wall_time", res.Duration))
		}
	}()

	p.log.Info("parsing", zap.String("source", srcPath))
	res.Err = p.run(ctx, srcPath, res)
	return res
}

func (p *Pipeline) run(ctx context.Context, srcPath string, res *RunResult) error {
	// Preconditions: checked before any side effect.
	if _, err := os.Stat(srcPath); err != nil {
		return fmt.Errorf("source file: %w", err)
	}
	if p.outputDir != "" {
		if _, err := os.Stat(p.outputDir); err == nil {
			return fmt.Errorf("output %w: %s", ErrDirExists, p.outputDir)
		}
	}

	srcDir, base, ext := splitFilePath(srcPath)
	outDir := p.outputDir
	if outDir == "" {
		outDir = filepath.Join(srcDir, fmt.Sprintf("%s_%s", base, time.Now().Format("20060102_150405")))
	}
	res.OutputDir = outDir

	splitDir := filepath.Join(outDir, splitDirName)
	parsedDir := filepath.Join(outDir, parsedDirName)
	tabDir := filepath.Join(outDir, tabularizedDirName)

	p.log.Info("initializing output directory", zap.String("path", outDir))
	if err := ensureDir(outDir); err != nil {
		return err
	}

	p.log.Info("stage 1/6: splitting source file into chunks")
	if err := ensureDir(splitDir); err != nil {
		return err
	}
	chunks, err := p.splitIntoChunks(srcPath, splitDir, p.chunkBytes)
	if err != nil {
		return fmt.Errorf("split: %w", err)
	}
	res.Chunks = chunks
	p.log.Info("stage 1/6: source file split", zap.Int("chunks", chunks))

	p.log.Info("stage 2/6: parsing chunks", zap.Int("workers", p.workers))
	if err := ensureDir(parsedDir); err != nil {
		return err
	}
	if err := p.parseChunks(ctx, splitDir, parsedDir, ext); err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	p.removeStaging(splitDir)
	p.log.Info("stage 2/6: done parsing chunks")

	p.log.Info("stage 3/6: unifying schemas")
	headers, err := p.unifySchemas(parsedDir)
	if err != nil {
		return fmt.Errorf("unify schemas: %w", err)
	}
	p.log.Info("stage 3/6: done unifying schemas")

	p.log.Info("stage 4/6: tabularizing parsed chunks")
	if err := ensureDir(tabDir); err != nil {
		return err
	}
	if err := p.tabularizeChunks(ctx, parsedDir, tabDir, headers); err != nil {
		return fmt.Errorf("tabularize: %w", err)
	}
	p.log.Info("stage 4/6: done tabularizing parsed chunks")

	p.log.Info("stage 5/6: merging unparsed chunks")
	if err := p.mergeUnparsed(parsedDir, outDir, base, ext); err != nil {
		return fmt.Errorf("merge unparsed: %w", err)
	}
	p.removeStaging(parsedDir)
	p.log.Info("stage 5/6: done merging unparsed chunks")

	p.log.Info("stage 6/6: merging table chunks")
	if err := p.mergeTables(tabDir, outDir, base); err != nil {
		return fmt.Errorf("merge tables: %w", err)
	}
	p.removeStaging(tabDir)
	p.log.Info("stage 6/6: done merging table chunks")

	return nil
}

// ensureDir creates dir, failing with ErrDirExists if it is already
// present.
func ensureDir(dir string) error {
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("%w: %s", ErrDirExists, dir)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return nil
}

func (p *Pipeline) removeStaging(dir string) {
	if p.keepIntermediate {
		p.log.Debug("keeping staging directory", zap.String("path", dir))
		return
	}
	p.log.Debug("removing staging directory", zap.String("path", dir))
	if err := os.RemoveAll(dir); err != nil {
		p.log.Warn("removing staging directory failed", zap.String("path", dir), zap.Error(err))
	}
}

// splitFilePath splits a path into directory, base name without
// extension, and extension. Gzip sources report the inner extension;
// their base drops both suffixes.
func splitFilePath(path string) (dir, base, ext string) {
	dir = filepath.Dir(path)
	name := filepath.Base(path)
	if parser.IsCompressed(path) {
		name = name[:len(name)-len(".gz")]
	}
	ext = filepath.Ext(name)
	base = name[:len(name)-len(ext)]
	return dir, base, ext
}
