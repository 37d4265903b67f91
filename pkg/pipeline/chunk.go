package pipeline

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// chunkNameMask extracts the numeric chunk ID from file names of the
// form chunk_<id> or chunk_<id>.<anything>. The ID is the only ordering
// authority between stages: tasks complete out of order and stages
// re-derive total order from names alone.
var chunkNameMask = regexp.MustCompile(`^chunk_(\d+)(?:[.].*)?$`)

// chunkFileName builds the file name for a chunk ID. ext includes the
// leading dot and may be empty.
func chunkFileName(id int, ext string) string {
	return fmt.Sprintf("chunk_%d%s", id, ext)
}

// chunkID recovers the chunk ID from a file name produced by
// chunkFileName or derived from it by later stages.
func chunkID(name string) (int, error) {
	m := chunkNameMask.FindStringSubmatch(name)
	if m == nil {
		return 0, fmt.Errorf("file name %q does not encode a chunk ID", name)
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("file name %q: %w", name, err)
	}
	return id, nil
}

// sortedChunkNames lists the files in dir whose names end with suffix,
// sorted by ascending chunk ID. A missing directory yields an empty
// list: a parser that never matched has no output to enumerate.
func sortedChunkNames(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing chunk directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if suffix != "" && !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		names = append(names, entry.Name())
	}

	var sortErr error
	sort.Slice(names, func(i, j int) bool {
		a, err := chunkID(names[i])
		if err != nil && sortErr == nil {
			sortErr = err
		}
		b, err := chunkID(names[j])
		if err != nil && sortErr == nil {
			sortErr = err
		}
		return a < b
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return names, nil
}
