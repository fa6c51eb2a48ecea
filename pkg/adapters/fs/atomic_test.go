package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("Creates and Replaces", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "doc.json")

		if err := writeFileAtomic(target, []byte("one")); err != nil {
			t.Fatalf("first write failed: %v", err)
		}
		if err := writeFileAtomic(target, []byte("two")); err != nil {
			t.Fatalf("second write failed: %v", err)
		}

		data, err := os.ReadFile(target)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if string(data) != "two" {
			t.Errorf("expected 'two', got %q", data)
		}

		entries, _ := os.ReadDir(dir)
		if len(entries) != 1 {
			t.Errorf("expected no temp files left, got %d entries", len(entries))
		}
	})

	t.Run("Fails on Missing Directory", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "missing", "doc.json")
		if err := writeFileAtomic(target, []byte("x")); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}
