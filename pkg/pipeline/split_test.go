package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

func testPipeline() *Pipeline {
	return &Pipeline{workers: 2, log: zap.NewNop()}
}

// concatChunks reads the produced chunks in ID order and joins them.
func concatChunks(t *testing.T, dir string) string {
	t.Helper()
	names, err := sortedChunkNames(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	var sb strings.Builder
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		sb.Write(data)
	}
	return sb.String()
}

func TestSplit_RoundTrip(t *testing.T) {
	// Lines of varying length, last one without a trailing newline.
	var sb strings.Builder
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&sb, "line %d %s\n", i, strings.Repeat("x", i%17))
	}
	sb.WriteString("final line without newline")
	content := sb.String()

	for _, chunkBytes := range []int64{1, 16, 64, 257, 1 << 10, 1 << 20} {
		t.Run(fmt.Sprintf("chunkBytes=%d", chunkBytes), func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "app.log")
			if err := os.WriteFile(src, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
			dst := filepath.Join(dir, "split")
			if err := os.Mkdir(dst, 0o750); err != nil {
				t.Fatal(err)
			}

			chunks, err := testPipeline().splitIntoChunks(src, dst, chunkBytes)
			if err != nil {
				t.Fatalf("splitIntoChunks() error = %v", err)
			}
			if chunks < 1 {
				t.Fatalf("chunks = %d, want >= 1", chunks)
			}

			if got := concatChunks(t, dst); got != content {
				t.Errorf("concatenated chunks differ from source (len %d vs %d)", len(got), len(content))
			}

			// IDs must be sequential from 1 with no gaps.
			for id := 1; id <= chunks; id++ {
				path := filepath.Join(dst, chunkFileName(id, ".log"))
				if _, err := os.Stat(path); err != nil {
					t.Errorf("missing chunk file %s: %v", path, err)
				}
			}

			// No chunk except the last exceeds the target (all lines
			// here are shorter than the smallest budget that splits).
			if chunkBytes >= 64 {
				names, _ := sortedChunkNames(dst, "")
				for _, name := range names[:len(names)-1] {
					info, err := os.Stat(filepath.Join(dst, name))
					if err != nil {
						t.Fatal(err)
					}
					if info.Size() > chunkBytes {
						t.Errorf("chunk %s size %d exceeds target %d", name, info.Size(), chunkBytes)
					}
				}
			}
		})
	}
}

func TestSplit_SmallFileSingleChunk(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "app.log")
	content := "a\nb\nc\n"
	if err := os.WriteFile(src, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "split")
	if err := os.Mkdir(dst, 0o750); err != nil {
		t.Fatal(err)
	}

	chunks, err := testPipeline().splitIntoChunks(src, dst, 1<<20)
	if err != nil {
		t.Fatalf("splitIntoChunks() error = %v", err)
	}
	if chunks != 1 {
		t.Fatalf("chunks = %d, want exactly 1 for file below threshold", chunks)
	}

	data, err := os.ReadFile(filepath.Join(dst, "chunk_1.log"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != content {
		t.Errorf("single chunk content = %q, want %q", data, content)
	}
}

func TestSplit_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "app.log")
	if err := os.WriteFile(src, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "split")
	if err := os.Mkdir(dst, 0o750); err != nil {
		t.Fatal(err)
	}

	chunks, err := testPipeline().splitIntoChunks(src, dst, 1<<20)
	if err != nil {
		t.Fatalf("splitIntoChunks() error = %v", err)
	}
	if chunks != 1 {
		t.Errorf("chunks = %d, want 1 empty chunk", chunks)
	}
}

func TestSplit_GzipSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "app.log.gz")
	content := "one\ntwo\nthree\n"

	f, err := os.Create(src)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(dir, "split")
	if err := os.Mkdir(dst, 0o750); err != nil {
		t.Fatal(err)
	}

	if _, err := testPipeline().splitIntoChunks(src, dst, 4); err != nil {
		t.Fatalf("splitIntoChunks() error = %v", err)
	}

	// Chunks carry the inner extension and hold decompressed text.
	if got := concatChunks(t, dst); got != content {
		t.Errorf("concatenated chunks = %q, want %q", got, content)
	}
	names, _ := sortedChunkNames(dst, "")
	for _, name := range names {
		if !strings.HasSuffix(name, ".log") {
			t.Errorf("chunk %q does not carry inner extension", name)
		}
	}
}

func TestSourceExt(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/a/b/app.log", ".log"},
		{"/a/b/app.log.gz", ".log"},
		{"/a/b/app", ""},
		{"/a/b/app.gz", ""},
	}
	for _, tt := range tests {
		if got := sourceExt(tt.path); got != tt.want {
			t.Errorf("sourceExt(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
