package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// unifySchemas computes, per parser, the finalized ordered header list:
// the union of that parser's field names across every chunk's keys
// file. The schema is fixed here, before any rendering, so every chunk
// table for a parser shares an identical header and the merge stage can
// concatenate blindly after the first one. A parser with zero matched
// chunks yields an empty header.
func (p *Pipeline) unifySchemas(parsedDir string) (map[string][]string, error) {
	headers := make(map[string][]string, len(p.parsers))

	for _, lp := range p.parsers {
		name := lp.ShortName()
		parserDir := filepath.Join(parsedDir, name)

		keyNames, err := sortedChunkNames(parserDir, keysExt)
		if err != nil {
			return nil, fmt.Errorf("parser %s: %w", name, err)
		}

		unique := make(map[string]struct{})
		for _, keyName := range keyNames {
			if err := readKeysFile(filepath.Join(parserDir, keyName), unique); err != nil {
				return nil, fmt.Errorf("parser %s: %w", name, err)
			}
		}

		headers[name] = orderHeaders(unique)
	}

	return headers, nil
}

func readKeysFile(path string, into map[string]struct{}) error {
	f, err := os.Open(path) // #nosec G304 -- pipeline-owned path
	if err != nil {
		return fmt.Errorf("opening keys file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if key := scanner.Text(); key != "" {
			into[key] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading keys file: %w", err)
	}
	return nil
}

// orderHeaders sorts field names so user-made fields (underscore
// prefix) come before all others, case-insensitively within each group.
// Names equal under the sort key fall back to byte order so the result
// is fully deterministic.
func orderHeaders(keys map[string]struct{}) []string {
	headers := make([]string, 0, len(keys))
	for k := range keys {
		headers = append(headers, k)
	}

	sort.Slice(headers, func(i, j int) bool {
		a, b := headerSortKey(headers[i]), headerSortKey(headers[j])
		if a != b {
			return a < b
		}
		return headers[i] < headers[j]
	})
	return headers
}

func headerSortKey(name string) string {
	if strings.HasPrefix(name, "_") {
		return "0" + strings.ToLower(name)
	}
	return "1" + strings.ToLower(name)
}
