// Package export wraps the BatchExport tool that converts game pak assets
// to JSON using the published mapping file.
package export

import (
	"context"
	"fmt"
	"os"

	"github.com/wrfdata/wrf-exporter/internal/logging"
	"github.com/wrfdata/wrf-exporter/internal/runner"
)

// BatchExporter drives the external BatchExport executable.
type BatchExporter struct {
	log    *logging.Logger
	runner *runner.Runner

	Exe         string
	Preset      string
	PakDir      string
	OutputDir   string
	MappingPath string
	Verbose     bool
	// Force re-exports even when the output directory already has contents.
	Force bool
}

// New creates a BatchExporter and validates its inputs up front.
func New(log *logging.Logger, run *runner.Runner, exe, preset, pakDir, outputDir, mappingPath string, verbose, force bool) (*BatchExporter, error) {
	b := &BatchExporter{
		log:         log,
		runner:      run,
		Exe:         exe,
		Preset:      preset,
		PakDir:      pakDir,
		OutputDir:   outputDir,
		MappingPath: mappingPath,
		Verbose:     verbose,
		Force:       force,
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *BatchExporter) validate() error {
	if _, err := os.Stat(b.Exe); err != nil {
		return fmt.Errorf("BatchExport not found at %s - is it installed? Run the deps stage first", b.Exe)
	}
	if _, err := os.Stat(b.PakDir); err != nil {
		return fmt.Errorf("game pak directory not found: %s", b.PakDir)
	}
	if _, err := os.Stat(b.MappingPath); err != nil {
		return fmt.Errorf("mapping file not found: %s", b.MappingPath)
	}
	if err := os.MkdirAll(b.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create export output directory %s: %w", b.OutputDir, err)
	}
	return nil
}

// Command returns the full argument vector, executable first.
func (b *BatchExporter) Command() []string {
	logging := "false"
	if b.Verbose {
		logging = "true"
	}
	return []string{
		b.Exe,
		"--preset", b.Preset,
		"--pak-files-directory", b.PakDir,
		"--export-output-path", b.OutputDir,
		"--mapping-file-path", b.MappingPath,
		"--is-logging-enabled", logging,
	}
}

// Run executes BatchExport to completion. A populated output directory means
// a previous export already ran; it is skipped unless Force is set.
func (b *BatchExporter) Run(ctx context.Context) error {
	if !b.Force {
		populated, err := dirHasContents(b.OutputDir)
		if err != nil {
			return fmt.Errorf("failed to inspect export output directory %s: %w", b.OutputDir, err)
		}
		if populated {
			b.log.Info(fmt.Sprintf("Export output already exists in %s and force is off, skipping export", b.OutputDir))
			return nil
		}
	}

	cmd := b.Command()
	b.log.Info(fmt.Sprintf("Running BatchExport with mapping file: %s", b.MappingPath))
	return b.runner.Run(ctx, "batch-export", cmd[0], cmd[1:]...)
}

func dirHasContents(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	return len(entries) > 0, nil
}
