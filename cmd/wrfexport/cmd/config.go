package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wrfdata/wrf-exporter/internal/config"
)

var configOutput string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	Long: `Prints the configuration after merging defaults, the config file,
environment variables and flags. The Steam password is never printed.`,
	RunE: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)

	configShowCmd.Flags().StringVarP(&configOutput, "output", "o", "table", "output format: table, json, yaml")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	switch configOutput {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
	case "table":
		printConfigTable(cfg)
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", configOutput)
	}
	return nil
}

func printConfigTable(cfg config.Config) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Key", "Value")
	for _, row := range configRows(cfg) {
		table.Append(row[0], row[1])
	}
	table.Render()
}

// configRows flattens the config into key/value rows, password redacted.
func configRows(cfg config.Config) [][]string {
	password := "(not set)"
	if cfg.Steam.Password != "" {
		password = "(set)"
	}

	return [][]string{
		{"log_level", cfg.LogLevel},
		{"log_json", strconv.FormatBool(cfg.LogJSON)},
		{"log_dir", cfg.LogDir},
		{"metrics_addr", cfg.MetricsAddr},
		{"deps.install_dir", cfg.Deps.InstallDir},
		{"deps.manifest_path", cfg.Deps.ManifestPath},
		{"deps.force", strconv.FormatBool(cfg.Deps.Force)},
		{"steam.username", cfg.Steam.Username},
		{"steam.password", password},
		{"steam.game_dir", cfg.Steam.GameDir},
		{"steam.manifest_id", cfg.Steam.ManifestID},
		{"steam.force", strconv.FormatBool(cfg.Steam.Force)},
		{"mapper.module_path", cfg.Mapper.ModulePath},
		{"mapper.injector_path", cfg.Mapper.InjectorPath},
		{"mapper.game_executable", cfg.Mapper.GameExecutable},
		{"mapper.output_dir", cfg.Mapper.OutputDir},
		{"mapper.destination", cfg.Mapper.Destination},
		{"mapper.force", strconv.FormatBool(cfg.Mapper.Force)},
		{"mapper.find_timeout_seconds", strconv.Itoa(cfg.Mapper.FindTimeoutSeconds)},
		{"mapper.settle_seconds", strconv.Itoa(cfg.Mapper.SettleSeconds)},
		{"export.output_dir", cfg.Export.OutputDir},
		{"export.preset", cfg.Export.Preset},
		{"export.force", strconv.FormatBool(cfg.Export.Force)},
	}
}
