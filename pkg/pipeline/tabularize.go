package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"ltab/pkg/record"
	"ltab/pkg/table"
)

// tabularizeChunks renders every (chunk, parser) records file into a
// table file against that parser's finalized header, fanning the pairs
// out across the worker pool. Parsers whose unified header is empty
// matched nothing anywhere; they are skipped entirely so the merge
// stage sees no tables for them and produces no output file.
func (p *Pipeline) tabularizeChunks(ctx context.Context, parsedDir, tabDir string, headers map[string][]string) error {
	type job struct {
		src     string
		dst     string
		headers []string
	}

	var jobs []job
	for _, lp := range p.parsers {
		name := lp.ShortName()
		parserHeaders := headers[name]
		if len(parserHeaders) == 0 {
			p.log.Debug("parser matched no lines, skipping tabularization", zap.String("parser", name))
			continue
		}

		srcDir := filepath.Join(parsedDir, name)
		recordNames, err := sortedChunkNames(srcDir, recordsExt)
		if err != nil {
			return fmt.Errorf("parser %s: %w", name, err)
		}

		dstDir := filepath.Join(tabDir, name)
		if err := os.MkdirAll(dstDir, 0o750); err != nil {
			return fmt.Errorf("creating table directory: %w", err)
		}

		for _, recordName := range recordNames {
			chunkBase := strings.SplitN(recordName, ".", 2)[0]
			jobs = append(jobs, job{
				src:     filepath.Join(srcDir, recordName),
				dst:     filepath.Join(dstDir, chunkBase+p.exporter.Ext()),
				headers: parserHeaders,
			})
		}
	}

	return runParallel(ctx, p.workers, len(jobs), func(_ context.Context, i int) error {
		j := jobs[i]
		if err := p.tabularizeChunk(j.src, j.dst, j.headers); err != nil {
			return fmt.Errorf("tabularizing %s: %w", filepath.Base(j.src), err)
		}
		return nil
	})
}

// tabularizeChunk renders one records file as a table whose columns are
// exactly the finalized header list. Fields absent from a record render
// as empty cells. A chunk with zero records still produces a
// header-only table so the merge sees a uniform set of files.
func (p *Pipeline) tabularizeChunk(srcPath, dstPath string, headers []string) error {
	f, err := os.Open(srcPath) // #nosec G304 -- pipeline-owned path
	if err != nil {
		return fmt.Errorf("opening records file: %w", err)
	}
	records, err := record.ReadAll(f)
	f.Close()
	if err != nil {
		return err
	}

	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(headers))
		for col, h := range headers {
			row[col] = record.FormatValue(rec[h])
		}
		rows[i] = row
	}

	return p.exporter.Export(&table.Table{Headers: headers, Rows: rows}, dstPath)
}
