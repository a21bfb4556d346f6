package artifacts

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestCleanRemovesArtifactsRecursively(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.gcda"))
	touch(t, filepath.Join(dir, "deps", "b.gcda"))
	touch(t, filepath.Join(dir, "deps", "nested", "c.gcda"))
	touch(t, filepath.Join(dir, "deps", "keep.gcno"))
	touch(t, filepath.Join(dir, "keep.rlib"))

	removed, err := Cleaner{}.Clean(dir, []string{"gcda"})
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
	if _, err := os.Stat(filepath.Join(dir, "deps", "keep.gcno")); err != nil {
		t.Fatalf("expected unrelated file kept: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.gcda")); !os.IsNotExist(err) {
		t.Fatal("expected artifact removed")
	}
}

func TestCleanMultipleExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.gcda"))
	touch(t, filepath.Join(dir, "b.profraw"))

	removed, err := Cleaner{}.Clean(dir, []string{"gcda", "profraw"})
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
}

func TestCleanIdempotent(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.gcda"))

	for i, want := range []int{1, 0} {
		removed, err := Cleaner{}.Clean(dir, []string{"gcda"})
		if err != nil {
			t.Fatalf("clean pass %d: %v", i, err)
		}
		if removed != want {
			t.Fatalf("pass %d: expected %d removed, got %d", i, want, removed)
		}
	}
}

func TestCleanMissingDir(t *testing.T) {
	removed, err := Cleaner{}.Clean(filepath.Join(t.TempDir(), "target", "debug"), []string{"gcda"})
	if err != nil {
		t.Fatalf("expected missing dir to be treated as clean: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected 0 removed, got %d", removed)
	}
}

func TestCleanNoExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.gcda"))

	removed, err := Cleaner{}.Clean(dir, nil)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected nothing removed without extensions, got %d", removed)
	}
}
