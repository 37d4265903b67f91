package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func TestChunkID(t *testing.T) {
	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{"chunk_1", 1, false},
		{"chunk_42.log", 42, false},
		{"chunk_7.info.records", 7, false},
		{"chunk_.log", 0, true},
		{"notachunk", 0, true},
		{"chunk_x1", 0, true},
	}
	for _, tt := range tests {
		got, err := chunkID(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("chunkID(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("chunkID(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestSortedChunkNames_NumericOrder(t *testing.T) {
	dir := t.TempDir()
	// Written out of order, including IDs that sort wrong lexically.
	for _, name := range []string{"chunk_10.log", "chunk_2.log", "chunk_1.log", "chunk_11.log"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := sortedChunkNames(dir, "")
	if err != nil {
		t.Fatalf("sortedChunkNames() error = %v", err)
	}
	want := []string{"chunk_1.log", "chunk_2.log", "chunk_10.log", "chunk_11.log"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSortedChunkNames_SuffixFilter(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"chunk_1.app.records", "chunk_1.app.keys", "chunk_2.app.records"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := sortedChunkNames(dir, ".records")
	if err != nil {
		t.Fatalf("sortedChunkNames() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %v, want only .records files", got)
	}
}

func TestSortedChunkNames_MissingDir(t *testing.T) {
	got, err := sortedChunkNames(filepath.Join(t.TempDir(), "absent"), "")
	if err != nil {
		t.Fatalf("sortedChunkNames() error = %v for missing dir", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want empty for missing dir", got)
	}
}
