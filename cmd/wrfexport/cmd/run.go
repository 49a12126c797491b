package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/wrfdata/wrf-exporter/internal/config"
	"github.com/wrfdata/wrf-exporter/internal/deps"
	"github.com/wrfdata/wrf-exporter/internal/export"
	"github.com/wrfdata/wrf-exporter/internal/inject"
	"github.com/wrfdata/wrf-exporter/internal/logging"
	"github.com/wrfdata/wrf-exporter/internal/mapper"
	"github.com/wrfdata/wrf-exporter/internal/metrics"
	"github.com/wrfdata/wrf-exporter/internal/procutil"
	"github.com/wrfdata/wrf-exporter/internal/runner"
	"github.com/wrfdata/wrf-exporter/internal/steam"
)

var (
	skipDeps   bool
	skipSteam  bool
	skipMapper bool
	skipExport bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the complete extraction pipeline",
	Long: `Runs all four pipeline stages in order: dependency download, game
download via DepotDownloader, mapping-file creation via module injection,
and asset export via BatchExport. Individual stages can be skipped.`,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&skipDeps, "skip-deps", false, "skip the dependency download stage")
	runCmd.Flags().BoolVar(&skipSteam, "skip-steam", false, "skip the game download stage")
	runCmd.Flags().BoolVar(&skipMapper, "skip-mapper", false, "skip the mapping-file stage")
	runCmd.Flags().BoolVar(&skipExport, "skip-export", false, "skip the asset export stage")
}

// stageResult is one row of the end-of-run summary.
type stageResult struct {
	Name     string
	Status   string
	Duration time.Duration
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newRunLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	log.Info(fmt.Sprintf("Environment: %s", procutil.EnvironmentSummary()))

	rec := metrics.NewRecorder()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := rec.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Warn(fmt.Sprintf("Metrics server failed: %v", err))
			}
		}()
		log.Info(fmt.Sprintf("Serving metrics on %s", cfg.MetricsAddr))
	}

	var summary []stageResult
	var pipelineErr error
	mappingPath := cfg.Mapper.Destination

	stages := []struct {
		name string
		skip bool
		fn   func() error
	}{
		{"deps", skipDeps, func() error { return runDepsStage(ctx, cfg, log) }},
		{"steam", skipSteam, func() error { return runSteamStage(ctx, cfg, log) }},
		{"mapper", skipMapper, func() error {
			res, err := runMapperStage(cfg, log, rec)
			if err == nil {
				mappingPath = res.Path
			}
			return err
		}},
		{"export", skipExport, func() error { return runExportStage(ctx, cfg, log, mappingPath) }},
	}

	for _, stage := range stages {
		if stage.skip {
			summary = append(summary, stageResult{Name: stage.name, Status: "skipped"})
			continue
		}
		if pipelineErr != nil {
			summary = append(summary, stageResult{Name: stage.name, Status: "not run"})
			continue
		}

		log.Info(fmt.Sprintf("==== STAGE: %s ====", stage.name))
		start := time.Now()
		err := stage.fn()
		elapsed := time.Since(start).Round(time.Second)
		rec.ObserveStage(stage.name, elapsed, err)

		status := "ok"
		if err != nil {
			status = "failed"
			pipelineErr = fmt.Errorf("stage %s failed: %w", stage.name, err)
			log.Error(fmt.Sprintf("Stage %s failed after %s: %v", stage.name, elapsed, err))
		} else {
			log.Info(fmt.Sprintf("Stage %s completed in %s", stage.name, elapsed))
		}
		summary = append(summary, stageResult{Name: stage.name, Status: status, Duration: elapsed})
	}

	printSummary(summary)
	return pipelineErr
}

func printSummary(summary []stageResult) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Stage", "Status", "Duration")
	for _, s := range summary {
		duration := ""
		if s.Status == "ok" || s.Status == "failed" {
			duration = s.Duration.String()
		}
		table.Append(s.Name, s.Status, duration)
	}
	table.Render()
}

func runDepsStage(ctx context.Context, cfg config.Config, log *logging.Logger) error {
	manifest := deps.DefaultManifest()
	if cfg.Deps.ManifestPath != "" {
		var err error
		manifest, err = deps.LoadManifest(cfg.Deps.ManifestPath)
		if err != nil {
			return err
		}
	}

	mgr := deps.NewManager(log, cfg.Deps.InstallDir)
	return mgr.EnsureAll(ctx, manifest, cfg.Deps.Force)
}

func runSteamStage(ctx context.Context, cfg config.Config, log *logging.Logger) error {
	if err := cfg.ValidateSteam(); err != nil {
		return err
	}

	exe := filepath.Join(cfg.Deps.InstallDir, "DepotDownloader", "DepotDownloader.exe")
	dd, err := steam.New(log, runner.New(log), exe,
		config.DefaultAppID, config.DefaultDepotID,
		cfg.Steam.GameDir, cfg.Steam.Username, cfg.Steam.Password, cfg.Steam.Force)
	if err != nil {
		return err
	}
	return dd.Run(ctx, cfg.Steam.ManifestID)
}

func runMapperStage(cfg config.Config, log *logging.Logger, rec *metrics.Recorder) (mapper.Result, error) {
	injector := inject.NewCommandInjector(log, cfg.Mapper.InjectorPath)
	pipeline := mapper.New(cfg, log, injector)

	res, err := pipeline.Run()
	if err != nil {
		return mapper.Result{}, err
	}
	rec.ObserveMapperOutcome(res.Status.String())
	log.Info(fmt.Sprintf("Mapping file ready (%s): %s", res.Status, res.Path))
	return res, nil
}

func runExportStage(ctx context.Context, cfg config.Config, log *logging.Logger, mappingPath string) error {
	if err := cfg.ValidateExport(); err != nil {
		return err
	}

	exe := filepath.Join(cfg.Deps.InstallDir, "BatchExport", "BatchExport.exe")
	verbose := logging.ParseLevel(cfg.LogLevel) == logging.DEBUG

	exporter, err := export.New(log, runner.New(log), exe, cfg.Export.Preset,
		cfg.Steam.GameDir, cfg.Export.OutputDir, mappingPath, verbose, cfg.Export.Force)
	if err != nil {
		return err
	}
	return exporter.Run(ctx)
}
