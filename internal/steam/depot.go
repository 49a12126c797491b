// Package steam wraps the DepotDownloader executable that fetches the game
// build. The injection pipeline only consumes the install root this stage
// produces.
package steam

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wrfdata/wrf-exporter/internal/logging"
	"github.com/wrfdata/wrf-exporter/internal/runner"
)

// manifestFileName records which manifest is currently on disk in the game
// directory, so unchanged builds are not re-downloaded.
const manifestFileName = "manifest.txt"

// DepotDownloader drives the external DepotDownloader tool.
type DepotDownloader struct {
	log    *logging.Logger
	runner *runner.Runner

	// Exe is the DepotDownloader executable path.
	Exe string
	// AppID and DepotID identify the game on Steam.
	AppID   string
	DepotID string
	// GameDir is where the build is downloaded to.
	GameDir string
	// Steam credentials.
	Username string
	Password string
	// Force re-downloads even when the manifest is already current.
	Force bool
}

// New creates a DepotDownloader stage.
func New(log *logging.Logger, run *runner.Runner, exe, appID, depotID, gameDir, username, password string, force bool) (*DepotDownloader, error) {
	if _, err := os.Stat(exe); err != nil {
		return nil, fmt.Errorf("DepotDownloader not found at %s - is it installed? Run the deps stage first", exe)
	}
	if username == "" || password == "" {
		return nil, fmt.Errorf("steam username and password are required")
	}

	return &DepotDownloader{
		log:      log,
		runner:   run,
		Exe:      exe,
		AppID:    appID,
		DepotID:  depotID,
		GameDir:  gameDir,
		Username: username,
		Password: password,
		Force:    force,
	}, nil
}

// Run downloads the build for manifestID. An empty or "latest" manifest id
// resolves to the newest one first.
func (d *DepotDownloader) Run(ctx context.Context, manifestID string) error {
	if manifestID == "" || manifestID == "latest" {
		latest, err := d.latestManifestID(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve latest manifest id: %w", err)
		}
		d.log.Debug(fmt.Sprintf("DepotDownloader retrieved latest manifest id of: %s", latest))
		manifestID = latest
	}

	if current := d.downloadedManifestID(); current == manifestID && !d.Force {
		d.log.Info(fmt.Sprintf("Already downloaded manifest %s", manifestID))
		return nil
	}

	if err := d.download(ctx, manifestID); err != nil {
		return err
	}
	return d.writeDownloadedManifestID(manifestID)
}

// download invokes DepotDownloader for a concrete manifest.
func (d *DepotDownloader) download(ctx context.Context, manifestID string) error {
	d.log.Debug(fmt.Sprintf("Downloading game with manifest id %s", manifestID))

	return d.runner.Run(ctx, "download-game-files", d.Exe,
		"-app", d.AppID,
		"-depot", d.DepotID,
		"-manifest", manifestID,
		"-username", d.Username,
		"-password", d.Password,
		"-remember-password",
		"-dir", d.GameDir,
	)
}

// latestManifestID probes the depot with a manifest-only run into a temp
// directory and parses the manifest id out of the produced file name.
func (d *DepotDownloader) latestManifestID(ctx context.Context) (string, error) {
	tempDir := filepath.Join(d.GameDir, "temp")
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return "", err
	}
	defer os.RemoveAll(tempDir)

	err := d.runner.Run(ctx, "get-latest-manifest-id", d.Exe,
		"-app", d.AppID,
		"-depot", d.DepotID,
		"-username", d.Username,
		"-password", d.Password,
		"-remember-password",
		"-dir", tempDir,
		"-manifest-only",
		"-validate",
	)
	if err != nil {
		return "", err
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if id, ok := ParseManifestFilename(e.Name()); ok {
			return id, nil
		}
	}
	return "", fmt.Errorf("no manifest file produced in %s", tempDir)
}

// ParseManifestFilename extracts the manifest id from a DepotDownloader
// manifest file named manifest_<depot_id>_<manifest_id>.txt.
func ParseManifestFilename(name string) (string, bool) {
	if !strings.HasPrefix(name, "manifest_") || !strings.HasSuffix(name, ".txt") {
		return "", false
	}
	trimmed := strings.TrimSuffix(strings.TrimPrefix(name, "manifest_"), ".txt")
	parts := strings.Split(trimmed, "_")
	id := parts[len(parts)-1]
	if id == "" {
		return "", false
	}
	return id, true
}

// downloadedManifestID reads the manifest id recorded by the last download,
// or "" when none exists.
func (d *DepotDownloader) downloadedManifestID() string {
	data, err := os.ReadFile(filepath.Join(d.GameDir, manifestFileName))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (d *DepotDownloader) writeDownloadedManifestID(manifestID string) error {
	path := filepath.Join(d.GameDir, manifestFileName)
	d.log.Debug(fmt.Sprintf("Writing manifest id %s to %s", manifestID, path))
	if err := os.WriteFile(path, []byte(manifestID), 0644); err != nil {
		return fmt.Errorf("failed to record downloaded manifest id: %w", err)
	}
	return nil
}
