package mapper

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPublish_CreatesParentsAndCopies(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.usmap")
	if err := os.WriteFile(src, []byte("mapping-bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(dir, "out", "nested", "final.usmap")
	got, err := Publish(src, dst)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if got != dst {
		t.Errorf("Publish returned %s, want %s", got, dst)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("Failed to read published file: %v", err)
	}
	if string(data) != "mapping-bytes" {
		t.Errorf("Published content = %q, want %q", data, "mapping-bytes")
	}

	// Source must survive: the bundle is a non-destructive read.
	if _, err := os.Stat(src); err != nil {
		t.Errorf("Source file was removed: %v", err)
	}
}

func TestPublish_OverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.usmap")
	dst := filepath.Join(dir, "final.usmap")
	if err := os.WriteFile(src, []byte("new"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("old-stale-content"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Publish(src, dst); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	data, _ := os.ReadFile(dst)
	if string(data) != "new" {
		t.Errorf("Destination content = %q, want %q", data, "new")
	}
}

func TestPublish_MissingSource(t *testing.T) {
	dir := t.TempDir()

	_, err := Publish(filepath.Join(dir, "missing.usmap"), filepath.Join(dir, "out.usmap"))
	if err == nil {
		t.Fatal("Expected error for missing source")
	}
	perr, ok := err.(*PublishError)
	if !ok {
		t.Fatalf("Expected PublishError, got %T", err)
	}
	if perr.Src == "" || perr.Dst == "" {
		t.Error("PublishError must carry both paths for diagnosis")
	}
}

func TestClearDir_KeepsDirectory(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "stale-bundle", "stale.usmap")
	if err := os.WriteFile(filepath.Join(dir, "loose.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := clearDir(dir); err != nil {
		t.Fatalf("clearDir failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Directory itself must survive: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty directory, found %d entries", len(entries))
	}
}
