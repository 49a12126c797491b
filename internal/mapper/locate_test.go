package mapper

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeBundle creates <dir>/<bundle>/Mappings with the given files
func writeBundle(t *testing.T, dir, bundle string, files ...string) {
	t.Helper()
	mappings := filepath.Join(dir, bundle, MappingsDirName)
	if err := os.MkdirAll(mappings, 0755); err != nil {
		t.Fatalf("Failed to create bundle: %v", err)
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(mappings, f), []byte("usmap-data"), 0644); err != nil {
			t.Fatalf("Failed to write mapping file: %v", err)
		}
	}
}

func TestLocate_SingleBundleSingleFile(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "WRFrontiers-SDK", "WRFrontiers.usmap")

	got, err := Locate(dir)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}

	want := filepath.Join(dir, "WRFrontiers-SDK", MappingsDirName, "WRFrontiers.usmap")
	if got != want {
		t.Errorf("Locate returned %s, want %s", got, want)
	}
}

func TestLocate_NoBundle(t *testing.T) {
	dir := t.TempDir()

	_, err := Locate(dir)
	var serr *StructuralError
	if !errors.As(err, &serr) {
		t.Fatalf("Expected StructuralError, got %v", err)
	}
	if serr.Count != 0 {
		t.Errorf("Expected count 0 in error, got %d", serr.Count)
	}
}

// TestLocate_MultipleBundles tests that ambiguity is never silently resolved
func TestLocate_MultipleBundles(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "SDK-old", "old.usmap")
	writeBundle(t, dir, "SDK-new", "new.usmap")

	_, err := Locate(dir)
	var serr *StructuralError
	if !errors.As(err, &serr) {
		t.Fatalf("Expected StructuralError for two bundles, got %v", err)
	}
	if serr.Count != 2 {
		t.Errorf("Expected count 2 in error, got %d", serr.Count)
	}
}

func TestLocate_MissingMappingsDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "SDK"), 0755); err != nil {
		t.Fatal(err)
	}

	_, err := Locate(dir)
	var serr *StructuralError
	if !errors.As(err, &serr) {
		t.Fatalf("Expected StructuralError for missing Mappings dir, got %v", err)
	}
}

func TestLocate_NoMappingFile(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "SDK")

	_, err := Locate(dir)
	var serr *StructuralError
	if !errors.As(err, &serr) {
		t.Fatalf("Expected StructuralError for empty Mappings dir, got %v", err)
	}
	if serr.Count != 0 {
		t.Errorf("Expected count 0 in error, got %d", serr.Count)
	}
}

func TestLocate_MultipleMappingFiles(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "SDK", "a.usmap", "b.usmap")

	_, err := Locate(dir)
	var serr *StructuralError
	if !errors.As(err, &serr) {
		t.Fatalf("Expected StructuralError for two mapping files, got %v", err)
	}
	if serr.Count != 2 {
		t.Errorf("Expected count 2 in error, got %d", serr.Count)
	}
}

// TestLocate_IgnoresSubdirsInMappings tests that only files count at the
// mapping level
func TestLocate_IgnoresSubdirsInMappings(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "SDK", "game.usmap")
	if err := os.MkdirAll(filepath.Join(dir, "SDK", MappingsDirName, "extra"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := Locate(dir)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if filepath.Base(got) != "game.usmap" {
		t.Errorf("Expected game.usmap, got %s", got)
	}
}
