package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Default game identity on Steam. The big depot carries the Win64 build.
const (
	DefaultAppID   = "1491000"
	DefaultDepotID = "1491005"

	// Relative path from the game install root to the shipping executable.
	DefaultGameExecutable = "13_2017027/WRFrontiers/Binaries/Win64/WRFrontiers-Win64-Shipping.exe"
)

// DepsConfig configures the dependency acquisition stage.
type DepsConfig struct {
	InstallDir   string `yaml:"install_dir" json:"install_dir"`
	ManifestPath string `yaml:"manifest_path" json:"manifest_path"`
	Force        bool   `yaml:"force" json:"force"`
}

// SteamConfig configures the DepotDownloader stage.
type SteamConfig struct {
	Username   string `yaml:"username" json:"username"`
	Password   string `yaml:"-" json:"-"`
	GameDir    string `yaml:"game_dir" json:"game_dir"`
	ManifestID string `yaml:"manifest_id" json:"manifest_id"`
	Force      bool   `yaml:"force" json:"force"`
}

// MapperConfig configures the injection pipeline that produces the .usmap
// mapping file.
type MapperConfig struct {
	// ModulePath is the dumper module injected into the game process.
	ModulePath string `yaml:"module_path" json:"module_path"`
	// InjectorPath is the external injector executable.
	InjectorPath string `yaml:"injector_path" json:"injector_path"`
	// GameExecutable is the shipping binary path relative to steam.game_dir.
	GameExecutable string `yaml:"game_executable" json:"game_executable"`
	// OutputDir is where the injected module writes its SDK bundle.
	OutputDir string `yaml:"output_dir" json:"output_dir"`
	// Destination is the final .usmap path the pipeline publishes to.
	Destination string `yaml:"destination" json:"destination"`
	// Force regenerates the mapping file even when Destination exists.
	Force bool `yaml:"force" json:"force"`

	FindTimeoutSeconds int `yaml:"find_timeout_seconds" json:"find_timeout_seconds"`
	SettleSeconds      int `yaml:"settle_seconds" json:"settle_seconds"`
}

// ExportConfig configures the BatchExport stage.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir" json:"output_dir"`
	Preset    string `yaml:"preset" json:"preset"`
	Force     bool   `yaml:"force" json:"force"`
}

// Config is the resolved configuration for a single invocation. It is built
// once in the command layer and passed into every stage constructor; nothing
// reads configuration ambiently.
type Config struct {
	LogLevel    string `yaml:"log_level" json:"log_level"`
	LogJSON     bool   `yaml:"log_json" json:"log_json"`
	LogDir      string `yaml:"log_dir" json:"log_dir"`
	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr"`

	Deps   DepsConfig   `yaml:"deps" json:"deps"`
	Steam  SteamConfig  `yaml:"steam" json:"steam"`
	Mapper MapperConfig `yaml:"mapper" json:"mapper"`
	Export ExportConfig `yaml:"export" json:"export"`
}

// SetDefaults registers every default on the given viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "INFO")
	v.SetDefault("log_json", false)
	v.SetDefault("log_dir", "logs")
	v.SetDefault("metrics_addr", "")

	v.SetDefault("deps.install_dir", "deps")
	v.SetDefault("deps.manifest_path", "")
	v.SetDefault("deps.force", false)

	v.SetDefault("steam.game_dir", "")
	v.SetDefault("steam.manifest_id", "latest")
	v.SetDefault("steam.force", false)

	v.SetDefault("mapper.module_path", filepath.Join("deps", "Dumper-7", "Dumper-7.dll"))
	v.SetDefault("mapper.injector_path", filepath.Join("deps", "Injector", "Injector.exe"))
	v.SetDefault("mapper.game_executable", DefaultGameExecutable)
	v.SetDefault("mapper.output_dir", "")
	v.SetDefault("mapper.destination", "")
	v.SetDefault("mapper.force", false)
	v.SetDefault("mapper.find_timeout_seconds", 60)
	v.SetDefault("mapper.settle_seconds", 10)

	v.SetDefault("export.output_dir", "")
	v.SetDefault("export.preset", "WarRobotsFrontiers")
	v.SetDefault("export.force", false)
}

// Load resolves the configuration from the given viper instance
// (flags > env > config file > defaults).
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		LogLevel:    v.GetString("log_level"),
		LogJSON:     v.GetBool("log_json"),
		LogDir:      v.GetString("log_dir"),
		MetricsAddr: v.GetString("metrics_addr"),
		Deps: DepsConfig{
			InstallDir:   v.GetString("deps.install_dir"),
			ManifestPath: v.GetString("deps.manifest_path"),
			Force:        v.GetBool("deps.force"),
		},
		Steam: SteamConfig{
			Username:   v.GetString("steam.username"),
			Password:   v.GetString("steam.password"),
			GameDir:    v.GetString("steam.game_dir"),
			ManifestID: v.GetString("steam.manifest_id"),
			Force:      v.GetBool("steam.force"),
		},
		Mapper: MapperConfig{
			ModulePath:         v.GetString("mapper.module_path"),
			InjectorPath:       v.GetString("mapper.injector_path"),
			GameExecutable:     v.GetString("mapper.game_executable"),
			OutputDir:          v.GetString("mapper.output_dir"),
			Destination:        v.GetString("mapper.destination"),
			Force:              v.GetBool("mapper.force"),
			FindTimeoutSeconds: v.GetInt("mapper.find_timeout_seconds"),
			SettleSeconds:      v.GetInt("mapper.settle_seconds"),
		},
		Export: ExportConfig{
			OutputDir: v.GetString("export.output_dir"),
			Preset:    v.GetString("export.preset"),
			Force:     v.GetBool("export.force"),
		},
	}

	if cfg.Mapper.FindTimeoutSeconds <= 0 {
		return cfg, fmt.Errorf("mapper.find_timeout_seconds must be positive, got %d", cfg.Mapper.FindTimeoutSeconds)
	}
	if cfg.Mapper.SettleSeconds <= 0 {
		return cfg, fmt.Errorf("mapper.settle_seconds must be positive, got %d", cfg.Mapper.SettleSeconds)
	}

	return cfg, nil
}

// GameExecutablePath derives the absolute shipping executable path from the
// configured game install root.
func (c Config) GameExecutablePath() string {
	return filepath.Join(c.Steam.GameDir, filepath.FromSlash(c.Mapper.GameExecutable))
}

// GameProcessName is the process-table name of the launched game.
func (c Config) GameProcessName() string {
	return filepath.Base(filepath.FromSlash(c.Mapper.GameExecutable))
}

// ValidateMapper checks the fields the mapper stage needs up front.
func (c Config) ValidateMapper() error {
	var missing []string
	if c.Steam.GameDir == "" {
		missing = append(missing, "steam.game_dir")
	}
	if c.Mapper.OutputDir == "" {
		missing = append(missing, "mapper.output_dir")
	}
	if c.Mapper.Destination == "" {
		missing = append(missing, "mapper.destination")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateSteam checks the fields the steam stage needs up front.
func (c Config) ValidateSteam() error {
	var missing []string
	if c.Steam.Username == "" {
		missing = append(missing, "steam.username")
	}
	if c.Steam.Password == "" {
		missing = append(missing, "steam.password")
	}
	if c.Steam.GameDir == "" {
		missing = append(missing, "steam.game_dir")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateExport checks the fields the export stage needs up front.
func (c Config) ValidateExport() error {
	var missing []string
	if c.Steam.GameDir == "" {
		missing = append(missing, "steam.game_dir")
	}
	if c.Export.OutputDir == "" {
		missing = append(missing, "export.output_dir")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
