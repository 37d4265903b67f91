package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestCodecRoundTrip(t *testing.T) {
	records := []Record{
		{"msg": "hello", "count": json.Number("3"), "ok": true},
		{"big": json.Number("9007199254740993")}, // beyond float64 precision
		{"_user": "x", "empty": ""},
		{},
	}

	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	if !strings.HasPrefix(buf.String(), Magic+"\n") {
		t.Fatalf("records file does not start with version line: %q", buf.String())
	}

	got, err := ReadAll(&buf)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("got %d records, want %d", len(got), len(records))
	}

	// 64-bit integers must survive exactly.
	if v := got[1]["big"]; FormatValue(v) != "9007199254740993" {
		t.Errorf("big int round trip = %q, want 9007199254740993", FormatValue(v))
	}
	if v := got[0]["ok"]; v != true {
		t.Errorf("bool round trip = %v (%T), want true", v, v)
	}
	if v := got[0]["msg"]; v != "hello" {
		t.Errorf("string round trip = %v, want hello", v)
	}
}

func TestCodecRoundTripNumberLikeStrings(t *testing.T) {
	// Values that look numeric to strconv but are not JSON numbers
	// reach the codec as plain strings and must survive as such.
	rec := Record{
		"nan":  "NaN",
		"inf":  "-infinity",
		"oct":  "05",
		"frac": ".5",
		"sep":  "1_000",
	}

	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if err := w.Write(rec); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	got, err := ReadAll(&buf)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	for key, want := range rec {
		if v := got[0][key]; v != want {
			t.Errorf("%s round trip = %v (%T), want %q", key, v, v, want)
		}
	}
}

func TestReadAllRejectsMissingMagic(t *testing.T) {
	for _, input := range []string{"", "{\"a\":1}\n", "#ltab:records:v999\n"} {
		_, err := ReadAll(strings.NewReader(input))
		if !errors.Is(err, ErrBadMagic) {
			t.Errorf("ReadAll(%q) error = %v, want ErrBadMagic", input, err)
		}
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{json.Number("42"), "42"},
		{json.Number("1.5"), "1.5"},
		{true, "true"},
		{false, "false"},
		{int64(7), "7"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRecordKeys(t *testing.T) {
	rec := Record{"b": 1, "_a": 2, "A": 3}
	got := rec.Keys()
	want := []string{"A", "_a", "b"}
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
