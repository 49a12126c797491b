// Package deps downloads and pins the external tools the pipeline shells
// out to: DepotDownloader, BatchExport and the dumper module.
package deps

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wrfdata/wrf-exporter/internal/logging"
	"github.com/wrfdata/wrf-exporter/internal/retry"
)

// versionFileName pins the installed release inside each dependency dir.
const versionFileName = "version.txt"

// Manager installs dependencies from GitHub release archives.
type Manager struct {
	log        *logging.Logger
	client     *http.Client
	retryCfg   retry.Config
	installDir string
}

// NewManager creates a Manager installing under installDir.
func NewManager(log *logging.Logger, installDir string) *Manager {
	return &Manager{
		log:        log,
		client:     &http.Client{Timeout: 10 * time.Minute},
		retryCfg:   retry.DefaultConfig(),
		installDir: installDir,
	}
}

// EnsureAll installs every dependency in the manifest.
func (m *Manager) EnsureAll(ctx context.Context, manifest Manifest, force bool) error {
	for _, dep := range manifest.Dependencies {
		if err := m.Ensure(ctx, dep, force); err != nil {
			return fmt.Errorf("dependency %s: %w", dep.Name, err)
		}
	}
	return nil
}

// Ensure installs a single dependency unless the pinned version already
// matches and force is off.
func (m *Manager) Ensure(ctx context.Context, dep Dependency, force bool) error {
	dir := dep.Dir
	if dir == "" {
		dir = dep.Name
	}
	target := filepath.Join(m.installDir, dir)

	if err := os.MkdirAll(target, 0755); err != nil {
		return fmt.Errorf("failed to create install directory %s: %w", target, err)
	}

	if !force && m.isCurrent(dep, target) {
		return nil
	}

	m.log.Info(fmt.Sprintf("Downloading %s %s from %s", dep.Name, dep.Version, dep.URL))

	archive, err := m.download(ctx, dep.URL)
	if err != nil {
		return err
	}
	defer os.Remove(archive)

	m.log.Info(fmt.Sprintf("Extracting %s to %s", dep.Name, target))
	if err := extractZip(archive, target); err != nil {
		return fmt.Errorf("failed to extract %s: %w", dep.Name, err)
	}

	if dep.Executable != "" {
		exe := filepath.Join(target, dep.Executable)
		if _, err := os.Stat(exe); err != nil {
			return fmt.Errorf("extraction of %s finished but %s is missing", dep.Name, exe)
		}
	}

	if dep.Version != "" {
		if err := os.WriteFile(filepath.Join(target, versionFileName), []byte(dep.Version), 0644); err != nil {
			m.log.Warn(fmt.Sprintf("Could not write version file for %s: %v", dep.Name, err))
		}
	}

	m.log.Info(fmt.Sprintf("Installed %s %s", dep.Name, dep.Version))
	return nil
}

// InstalledPath returns where a dependency's executable lives.
func (m *Manager) InstalledPath(dep Dependency) string {
	dir := dep.Dir
	if dir == "" {
		dir = dep.Name
	}
	return filepath.Join(m.installDir, dir, dep.Executable)
}

// isCurrent reports whether the pinned version matches, falling back to an
// executable-presence check for unpinned dependencies.
func (m *Manager) isCurrent(dep Dependency, target string) bool {
	if dep.Version != "" && dep.Version != "latest" {
		data, err := os.ReadFile(filepath.Join(target, versionFileName))
		if err == nil && strings.TrimSpace(string(data)) == dep.Version {
			m.log.Info(fmt.Sprintf("%s %s already installed, skipping download", dep.Name, dep.Version))
			return true
		}
		return false
	}

	if dep.Executable != "" {
		if _, err := os.Stat(filepath.Join(target, dep.Executable)); err == nil {
			m.log.Info(fmt.Sprintf("%s already present at %s, skipping download", dep.Name, target))
			return true
		}
	}
	return false
}

// download fetches the release archive into a temp file, with retries.
func (m *Manager) download(ctx context.Context, url string) (string, error) {
	tmp, err := os.CreateTemp("", "wrfexport-dep-*.zip")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	err = retry.Do(ctx, m.retryCfg, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}

		resp, err := m.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %s fetching %s", resp.Status, url)
		}

		f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(f, resp.Body)
		return err
	})
	if err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("download of %s failed: %w", url, err)
	}

	return tmpPath, nil
}

// extractZip unpacks an archive, refusing entries that escape the target.
func extractZip(archive, target string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("not a valid ZIP archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		dst := filepath.Join(target, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(dst, filepath.Clean(target)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes extraction directory", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dst, 0755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return err
		}

		src, err := f.Open()
		if err != nil {
			return err
		}
		out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.Mode())
		if err != nil {
			src.Close()
			return err
		}
		_, err = io.Copy(out, src)
		src.Close()
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	}
	return nil
}
