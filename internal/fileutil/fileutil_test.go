package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "dispatched.json")

	if err := WriteFileAtomic(path, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(path, []byte(`[{"team":"rojo"}]`), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `[{"team":"rojo"}]` {
		t.Fatalf("content mismatch: got %q", got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected mode 0600, got %o", info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files cleaned up, found %d entries", len(entries))
	}
}

func TestReadFileIfExists(t *testing.T) {
	dir := t.TempDir()
	data, err := ReadFileIfExists(filepath.Join(dir, "missing.json"))
	if err != nil || data != nil {
		t.Fatalf("expected nil, nil for missing file, got %q, %v", data, err)
	}

	path := filepath.Join(dir, "present.json")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, err = ReadFileIfExists(path)
	if err != nil || string(data) != "x" {
		t.Fatalf("unexpected read: %q, %v", data, err)
	}
}
