package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wrfdata/wrf-exporter/internal/config"
	"github.com/wrfdata/wrf-exporter/internal/logging"
)

var (
	cfgFile  string
	logLevel string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "wrfexport",
	Short: "CLI for extracting War Robots Frontiers game data",
	Long: `wrfexport automates the full extraction pipeline for War Robots
Frontiers: downloading the required tools, fetching the game build via
DepotDownloader, creating the .usmap mapping file by injecting the dumper
module into the running game, and exporting game assets to JSON with
BatchExport.`,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.wrfexport/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: DEBUG, INFO, WARN, ERROR")
	rootCmd.PersistentFlags().String("metrics-addr", "", "serve Prometheus metrics on this address during the run")

	viper.BindPFlag("metrics_addr", rootCmd.PersistentFlags().Lookup("metrics-addr"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		// Search config in home directory with name ".wrfexport/config"
		viper.AddConfigPath(filepath.Join(home, ".wrfexport"))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	config.SetDefaults(viper.GetViper())

	viper.SetEnvPrefix("WRFEXPORT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Credentials come from the conventional unprefixed variables too.
	viper.BindEnv("steam.username", "WRFEXPORT_STEAM_USERNAME", "STEAM_USERNAME")
	viper.BindEnv("steam.password", "WRFEXPORT_STEAM_PASSWORD", "STEAM_PASSWORD")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}

	if logLevel != "" {
		viper.Set("log_level", logLevel)
	}
}

// loadConfig resolves the effective configuration for a command run.
func loadConfig() (config.Config, error) {
	return config.Load(viper.GetViper())
}

// newRunLogger builds the per-run logger, named after today's date so each
// day's extraction keeps one log file.
func newRunLogger(cfg config.Config) (*logging.Logger, error) {
	runName := time.Now().Format("2006-01-02")
	return logging.NewRunLogger(cfg.LogDir, runName, logging.ParseLevel(cfg.LogLevel), cfg.LogJSON)
}
