package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wrfdata/wrf-exporter/internal/deps"
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Download and install the external tools the pipeline needs",
	Long: `Downloads DepotDownloader, BatchExport, the dumper module and the
injector from their GitHub release pages and installs them under the
configured directory. Versioned dependencies are pinned via a version file
and skipped when already current.`,
	RunE: runDeps,
}

func init() {
	rootCmd.AddCommand(depsCmd)

	depsCmd.Flags().Bool("force", false, "re-download even when the pinned version is current")
	depsCmd.Flags().String("manifest", "", "dependency manifest YAML (overrides the built-in toolset)")

	viper.BindPFlag("deps.force", depsCmd.Flags().Lookup("force"))
	viper.BindPFlag("deps.manifest_path", depsCmd.Flags().Lookup("manifest"))
}

func runDeps(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newRunLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	manifest := deps.DefaultManifest()
	if cfg.Deps.ManifestPath != "" {
		manifest, err = deps.LoadManifest(cfg.Deps.ManifestPath)
		if err != nil {
			return err
		}
	}

	mgr := deps.NewManager(log, cfg.Deps.InstallDir)
	return mgr.EnsureAll(cmd.Context(), manifest, cfg.Deps.Force)
}
