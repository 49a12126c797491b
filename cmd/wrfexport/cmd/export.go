package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wrfdata/wrf-exporter/internal/export"
	"github.com/wrfdata/wrf-exporter/internal/logging"
	"github.com/wrfdata/wrf-exporter/internal/runner"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export game assets to JSON with BatchExport",
	Long: `Runs BatchExport against the downloaded game build using the published
mapping file. Requires the deps and steam stages to have run, and a mapping
file at mapper.destination (produce one with the mapper command).`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("output-dir", "", "export output directory (overrides export.output_dir)")
	exportCmd.Flags().String("preset", "", "BatchExport preset (overrides export.preset)")
	exportCmd.Flags().Bool("force", false, "re-export even when the output directory already has contents")

	viper.BindPFlag("export.output_dir", exportCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("export.preset", exportCmd.Flags().Lookup("preset"))
	viper.BindPFlag("export.force", exportCmd.Flags().Lookup("force"))
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateExport(); err != nil {
		return err
	}

	log, err := newRunLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	exe := filepath.Join(cfg.Deps.InstallDir, "BatchExport", "BatchExport.exe")
	verbose := logging.ParseLevel(cfg.LogLevel) == logging.DEBUG

	exporter, err := export.New(log, runner.New(log), exe, cfg.Export.Preset,
		cfg.Steam.GameDir, cfg.Export.OutputDir, cfg.Mapper.Destination, verbose, cfg.Export.Force)
	if err != nil {
		return err
	}
	return exporter.Run(cmd.Context())
}
