package deps

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wrfdata/wrf-exporter/internal/logging"
	"github.com/wrfdata/wrf-exporter/internal/retry"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.ERROR, false)
}

// zipArchive builds an in-memory ZIP with the given name -> content entries
func zipArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func fastManager(log *logging.Logger, dir string) *Manager {
	m := NewManager(log, dir)
	m.retryCfg = retry.Config{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
		Multiplier:     1.0,
	}
	return m
}

func TestEnsure_DownloadsAndExtracts(t *testing.T) {
	archive := zipArchive(t, map[string]string{
		"DepotDownloader.exe": "binary",
		"README.md":           "docs",
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer srv.Close()

	dir := t.TempDir()
	m := fastManager(testLogger(), dir)

	dep := Dependency{
		Name:       "DepotDownloader",
		Version:    "3.4.0",
		URL:        srv.URL + "/DepotDownloader.zip",
		Executable: "DepotDownloader.exe",
	}
	if err := m.Ensure(context.Background(), dep, false); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	exe := filepath.Join(dir, "DepotDownloader", "DepotDownloader.exe")
	data, err := os.ReadFile(exe)
	if err != nil {
		t.Fatalf("Executable missing after install: %v", err)
	}
	if string(data) != "binary" {
		t.Errorf("Executable content = %q, want %q", data, "binary")
	}

	version, err := os.ReadFile(filepath.Join(dir, "DepotDownloader", versionFileName))
	if err != nil {
		t.Fatalf("Version file missing: %v", err)
	}
	if string(version) != "3.4.0" {
		t.Errorf("Pinned version = %q, want 3.4.0", version)
	}
}

func TestEnsure_SkipsPinnedVersion(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write(zipArchive(t, map[string]string{"tool.exe": "binary"}))
	}))
	defer srv.Close()

	dir := t.TempDir()
	m := fastManager(testLogger(), dir)
	dep := Dependency{Name: "tool", Version: "1.2.3", URL: srv.URL, Executable: "tool.exe"}

	if err := m.Ensure(context.Background(), dep, false); err != nil {
		t.Fatalf("First install failed: %v", err)
	}
	if err := m.Ensure(context.Background(), dep, false); err != nil {
		t.Fatalf("Second install failed: %v", err)
	}
	if requests != 1 {
		t.Errorf("Expected one download for a pinned version, got %d", requests)
	}

	// Force re-downloads regardless of the pin.
	if err := m.Ensure(context.Background(), dep, true); err != nil {
		t.Fatalf("Forced install failed: %v", err)
	}
	if requests != 2 {
		t.Errorf("Expected forced re-download, got %d requests", requests)
	}
}

func TestEnsure_RetriesTransientFailures(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write(zipArchive(t, map[string]string{"tool.exe": "binary"}))
	}))
	defer srv.Close()

	dir := t.TempDir()
	m := fastManager(testLogger(), dir)
	dep := Dependency{Name: "tool", Version: "1.0.0", URL: srv.URL, Executable: "tool.exe"}

	if err := m.Ensure(context.Background(), dep, false); err != nil {
		t.Fatalf("Ensure should have retried through transient failures: %v", err)
	}
	if requests != 3 {
		t.Errorf("Expected 3 requests, got %d", requests)
	}
}

func TestEnsure_RejectsInvalidArchive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not a zip"))
	}))
	defer srv.Close()

	m := fastManager(testLogger(), t.TempDir())
	dep := Dependency{Name: "tool", Version: "1.0.0", URL: srv.URL, Executable: "tool.exe"}

	if err := m.Ensure(context.Background(), dep, false); err == nil {
		t.Fatal("Expected error for invalid archive")
	}
}

func TestEnsure_MissingExecutableAfterExtract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(zipArchive(t, map[string]string{"other.txt": "nope"}))
	}))
	defer srv.Close()

	m := fastManager(testLogger(), t.TempDir())
	dep := Dependency{Name: "tool", Version: "1.0.0", URL: srv.URL, Executable: "tool.exe"}

	if err := m.Ensure(context.Background(), dep, false); err == nil {
		t.Fatal("Expected error when the expected executable is absent")
	}
}

func TestExtractZip_RejectsPathEscape(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "evil.zip")

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("../escape.txt")
	if err != nil {
		t.Fatal(err)
	}
	f.Write([]byte("evil"))
	w.Close()
	if err := os.WriteFile(archivePath, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	target := filepath.Join(dir, "target")
	if err := os.MkdirAll(target, 0755); err != nil {
		t.Fatal(err)
	}
	if err := extractZip(archivePath, target); err == nil {
		t.Fatal("Expected error for archive entry escaping the target")
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deps.yaml")
	content := `dependencies:
  - name: DepotDownloader
    version: "3.4.0"
    url: https://example.com/dd.zip
    executable: DepotDownloader.exe
  - name: Dumper-7
    version: latest
    url: https://example.com/d7.zip
    executable: Dumper-7.dll
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}
	if len(m.Dependencies) != 2 {
		t.Fatalf("Expected 2 dependencies, got %d", len(m.Dependencies))
	}
	if m.Dependencies[0].Name != "DepotDownloader" || m.Dependencies[0].Version != "3.4.0" {
		t.Errorf("Unexpected first dependency: %+v", m.Dependencies[0])
	}
}

func TestLoadManifest_MissingFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deps.yaml")
	if err := os.WriteFile(path, []byte("dependencies:\n  - name: broken\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadManifest(path); err == nil {
		t.Fatal("Expected error for dependency without url")
	}
}
