package repl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewHistory(t *testing.T) {
	h := NewHistory("", 0)
	if h.maxSize != DefaultHistorySize {
		t.Errorf("maxSize = %d, want %d", h.maxSize, DefaultHistorySize)
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
}

func TestHistory_Add(t *testing.T) {
	h := NewHistory("", 3)

	for _, cmd := range []string{"1+1", "2*3", "2*3", "4/2", "5-1"} {
		h.Add(cmd)
	}

	want := []string{"2*3", "4/2", "5-1"}
	if diff := cmp.Diff(want, h.Entries()); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}
}

func TestHistory_Get(t *testing.T) {
	h := NewHistory("", 10)
	h.Add("first")
	h.Add("second")
	h.Add("third")

	tests := []struct {
		index int
		want  string
	}{
		{0, "third"},
		{1, "second"},
		{2, "first"},
		{3, ""},
		{-1, ""},
	}

	for _, tt := range tests {
		if got := h.Get(tt.index); got != tt.want {
			t.Errorf("Get(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestHistory_SaveLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "history")

	h := NewHistory(file, 10)
	h.Add("1 + 2")
	h.Add("(3 - 1) / 4")
	if err := h.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(file)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("history file mode = %o, want 600", perm)
	}

	loaded := NewHistory(file, 10)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(h.Entries(), loaded.Entries()); diff != "" {
		t.Errorf("loaded entries mismatch (-want +got):\n%s", diff)
	}
}

func TestHistory_Load_Trims(t *testing.T) {
	file := filepath.Join(t.TempDir(), "history")
	if err := os.WriteFile(file, []byte("a\n\nb\nc\nd\n"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	h := NewHistory(file, 2)
	if err := h.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff([]string{"c", "d"}, h.Entries()); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}
}

func TestHistory_NoFile(t *testing.T) {
	h := NewHistory("", 10)
	h.Add("1")
	if err := h.Save(); err != nil {
		t.Errorf("Save() without file error = %v", err)
	}
	if err := h.Load(); err != nil {
		t.Errorf("Load() without file error = %v", err)
	}

	missing := NewHistory(filepath.Join(t.TempDir(), "missing"), 10)
	if err := missing.Load(); err != nil {
		t.Errorf("Load() of missing file error = %v", err)
	}
}
