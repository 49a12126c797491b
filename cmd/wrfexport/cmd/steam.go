package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wrfdata/wrf-exporter/internal/config"
	"github.com/wrfdata/wrf-exporter/internal/runner"
	"github.com/wrfdata/wrf-exporter/internal/steam"
)

var steamCmd = &cobra.Command{
	Use:   "steam",
	Short: "Download the game build via DepotDownloader",
	Long: `Fetches the game depot into the configured directory. With no manifest
id (or "latest") the newest manifest is resolved first; a build that is
already on disk for that manifest is not downloaded again.

Credentials come from steam.username/steam.password in the config file or
from the STEAM_USERNAME and STEAM_PASSWORD environment variables.`,
	RunE: runSteam,
}

func init() {
	rootCmd.AddCommand(steamCmd)

	steamCmd.Flags().String("manifest-id", "", "depot manifest id to download (default: latest)")
	steamCmd.Flags().Bool("force", false, "re-download even when the manifest is already current")

	viper.BindPFlag("steam.manifest_id", steamCmd.Flags().Lookup("manifest-id"))
	viper.BindPFlag("steam.force", steamCmd.Flags().Lookup("force"))
}

func runSteam(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateSteam(); err != nil {
		return err
	}

	log, err := newRunLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	exe := filepath.Join(cfg.Deps.InstallDir, "DepotDownloader", "DepotDownloader.exe")
	dd, err := steam.New(log, runner.New(log), exe,
		config.DefaultAppID, config.DefaultDepotID,
		cfg.Steam.GameDir, cfg.Steam.Username, cfg.Steam.Password, cfg.Steam.Force)
	if err != nil {
		return err
	}
	return dd.Run(cmd.Context(), cfg.Steam.ManifestID)
}
